package order

import (
	"context"
	"errors"
	"strings"

	"miaumarket-be/internal/apperr"
	"miaumarket-be/internal/logger"
	"miaumarket-be/internal/metrics"
	"miaumarket-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	PlaceOrder(ctx context.Context, p PlaceOrderParams) (*Order, error)
	UpdateStatus(ctx context.Context, id uint, status string) (*Order, error)
	ListMine(ctx context.Context) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
}

type service struct {
	repo    Repository
	events  Publisher
	metrics *metrics.Recorder
}

// NewService wires the order workflow. events and rec may be nil.
func NewService(repo Repository, events Publisher, rec *metrics.Recorder) Service {
	return &service{repo: repo, events: events, metrics: rec}
}

func (s *service) PlaceOrder(ctx context.Context, p PlaceOrderParams) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
	)

	callerID, _ := utils.GetUserIDFromContext(ctx)
	if p.UserID == 0 {
		p.UserID = callerID
	}
	if p.UserID != callerID && !utils.IsAdmin(ctx) {
		log.Warn("order for another user rejected",
			zap.Uint("caller_id", callerID),
			zap.Uint("user_id", p.UserID),
		)
		return nil, ErrForeignOrder
	}

	p.PaymentMethod = strings.TrimSpace(p.PaymentMethod)
	p.ShippingAddress = strings.TrimSpace(p.ShippingAddress)
	p.ShippingPhone = strings.TrimSpace(p.ShippingPhone)
	if err := validatePlaceOrder(p); err != nil {
		s.metrics.OrderFailed(ctx, "validation")
		return nil, err
	}

	o, err := s.repo.PlaceOrder(ctx, p)
	if err != nil {
		s.metrics.OrderFailed(ctx, failureReason(err))
		return nil, err
	}

	s.metrics.OrderPlaced(ctx)
	s.publish(ctx, o, EventOrderCreated, createdEvent(o))
	return o, nil
}

func validatePlaceOrder(p PlaceOrderParams) error {
	fields := apperr.FieldErrors{}

	if p.PaymentMethod == "" {
		fields.Add("Metodo_Pago", msgRequired)
	}
	if p.ShippingAddress == "" {
		fields.Add("direccion_envio", msgRequired)
	}
	if p.ShippingPhone == "" {
		fields.Add("telefono_envio", msgRequired)
	}
	if p.Total.IsNegative() {
		fields.Add("Total", msgNegativeTotal)
	}
	if len(p.Lines) == 0 {
		fields.Add("productos", msgNoLines)
	}
	for _, l := range p.Lines {
		if l.ProductID == 0 {
			fields.Add("Id_Products", msgInvalidProductID)
		}
		if l.Quantity <= 0 {
			fields.Add("Cantidad", msgBadQuantity)
		} else if l.Quantity > maxQuantity {
			fields.Add("Cantidad", msgQuantityTooLarge)
		}
		if l.UnitPrice.IsNegative() {
			fields.Add("Precio_Unitario", msgNegativePrice)
		}
	}

	if fields.Empty() {
		if _, err := p.quantities(); err != nil {
			fields.Add("Cantidad", msgQuantityTooLarge)
		}
	}

	return fields.Err()
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	case apperr.KindOf(err) == apperr.KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

func (s *service) UpdateStatus(ctx context.Context, id uint, status string) (*Order, error) {
	if !utils.IsAdmin(ctx) {
		return nil, ErrAdminOnly
	}

	next, err := ParseStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, err
	}

	o, err := s.repo.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, o, EventOrderStatusChanged, StatusChangedEvent{
		OrderID: o.ID,
		UserID:  o.UserID,
		Status:  o.Status,
		At:      o.UpdatedAt,
	})
	return o, nil
}

func (s *service) ListMine(ctx context.Context) ([]Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, apperr.Auth("autenticación requerida")
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListAll(ctx context.Context) ([]Order, error) {
	if !utils.IsAdmin(ctx) {
		return nil, ErrAdminOnly
	}
	return s.repo.ListAll(ctx)
}
