package order

import (
	"context"
	"strconv"
	"time"

	"miaumarket-be/internal/logger"

	"go.uber.org/zap"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// Publisher delivers order events outside the process. The order is already
// committed when an event is published, so a failure is logged, not returned.
type Publisher interface {
	Publish(ctx context.Context, key, eventType string, event any) error
}

type EventLine struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type OrderCreatedEvent struct {
	OrderID       uint        `json:"order_id"`
	InvoiceNumber string      `json:"invoice_number"`
	UserID        uint        `json:"user_id"`
	Total         string      `json:"total"`
	Lines         []EventLine `json:"lines"`
	CreatedAt     time.Time   `json:"created_at"`
}

type StatusChangedEvent struct {
	OrderID uint      `json:"order_id"`
	UserID  uint      `json:"user_id"`
	Status  Status    `json:"status"`
	At      time.Time `json:"at"`
}

func (s *service) publish(ctx context.Context, o *Order, eventType string, event any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, strconv.FormatUint(uint64(o.ID), 10), eventType, event); err != nil {
		logger.FromCtx(ctx).Warn("order event not delivered",
			zap.Uint("order_id", o.ID),
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}

func createdEvent(o *Order) OrderCreatedEvent {
	lines := make([]EventLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, EventLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice.String()})
	}
	return OrderCreatedEvent{
		OrderID:       o.ID,
		InvoiceNumber: o.InvoiceNumber,
		UserID:        o.UserID,
		Total:         o.Total.String(),
		Lines:         lines,
		CreatedAt:     o.CreatedAt,
	}
}
