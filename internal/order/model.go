package order

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "Pendiente"
	StatusShipped   Status = "Enviado"
	StatusDelivered Status = "Entregado"
	StatusReturned  Status = "Devuelto"
)

// statusRank orders the lifecycle; an order may only move to a higher rank.
var statusRank = map[Status]int{
	StatusPending:   0,
	StatusShipped:   1,
	StatusDelivered: 2,
	StatusReturned:  3,
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := statusRank[st]; !ok {
		return "", ErrInvalidStatus
	}
	return st, nil
}

func (s Status) CanMoveTo(next Status) bool {
	return statusRank[next] > statusRank[s]
}

type Order struct {
	ID              uint
	InvoiceNumber   string
	UserID          uint
	CustomerName    string
	Total           decimal.Decimal
	PaymentMethod   string
	Status          Status
	ShippingAddress string
	ShippingPhone   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Lines           []Line
}

type Line struct {
	ID           uint
	OrderID      uint
	ProductID    uint
	ProductTitle string
	Quantity     int
	UnitPrice    decimal.Decimal
	Subtotal     decimal.Decimal
}

type LineParams struct {
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
}

type PlaceOrderParams struct {
	UserID          uint
	Total           decimal.Decimal
	PaymentMethod   string
	ShippingAddress string
	ShippingPhone   string
	Lines           []LineParams
}

// maxQuantity is the range of the INTEGER quantity and stock columns.
const maxQuantity = math.MaxInt32

// quantities sums the requested quantity per product, since the same product
// may appear on several lines. A sum past maxQuantity is rejected.
func (p PlaceOrderParams) quantities() (map[uint]int, error) {
	out := make(map[uint]int, len(p.Lines))
	for _, l := range p.Lines {
		if l.Quantity > maxQuantity-out[l.ProductID] {
			return nil, fmt.Errorf("%w: producto %d", ErrQuantityTooLarge, l.ProductID)
		}
		out[l.ProductID] += l.Quantity
	}
	return out, nil
}

func (l LineParams) subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
