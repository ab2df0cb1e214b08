package order

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"miaumarket-be/internal/apperr"
	"miaumarket-be/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) PlaceOrder(ctx context.Context, p PlaceOrderParams) (*Order, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id uint, next Status) (*Order, error) {
	args := m.Called(ctx, id, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uint) ([]Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]Order), args.Error(1)
}

func (m *MockRepository) ListAll(ctx context.Context) ([]Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Order), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key, eventType string, event any) error {
	return m.Called(ctx, key, eventType, event).Error(0)
}

func userCtx(id uint) context.Context {
	return utils.SetUserContext(context.Background(), id, "ana@miau.co", utils.RoleUser)
}

func adminCtx() context.Context {
	return utils.SetUserContext(context.Background(), 1, "admin@miau.co", utils.RoleAdmin)
}

func validParams() PlaceOrderParams {
	return PlaceOrderParams{
		Total:           decimal.NewFromInt(20),
		PaymentMethod:   "Nequi",
		ShippingAddress: "Calle 1",
		ShippingPhone:   "3001234567",
		Lines:           []LineParams{{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(10)}},
	}
}

func TestService_PlaceOrder(t *testing.T) {
	t.Run("Defaults to caller and publishes event", func(t *testing.T) {
		repo := new(MockRepository)
		pub := new(MockPublisher)
		svc := NewService(repo, pub, nil)
		ctx := userCtx(5)

		repo.On("PlaceOrder", ctx, mock.MatchedBy(func(p PlaceOrderParams) bool { return p.UserID == 5 })).
			Return(&Order{ID: 42, UserID: 5, InvoiceNumber: "FAC-1"}, nil)
		pub.On("Publish", ctx, "42", EventOrderCreated, mock.AnythingOfType("order.OrderCreatedEvent")).
			Return(nil)

		o, err := svc.PlaceOrder(ctx, validParams())

		require.NoError(t, err)
		assert.Equal(t, uint(42), o.ID)
		repo.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("Publish failure does not fail the order", func(t *testing.T) {
		repo := new(MockRepository)
		pub := new(MockPublisher)
		ctx := userCtx(5)

		repo.On("PlaceOrder", ctx, mock.Anything).Return(&Order{ID: 42}, nil)
		pub.On("Publish", ctx, "42", EventOrderCreated, mock.Anything).Return(errors.New("broker down"))

		_, err := NewService(repo, pub, nil).PlaceOrder(ctx, validParams())
		assert.NoError(t, err)
	})

	t.Run("Order for someone else", func(t *testing.T) {
		repo := new(MockRepository)
		p := validParams()
		p.UserID = 9

		_, err := NewService(repo, nil, nil).PlaceOrder(userCtx(5), p)

		assert.ErrorIs(t, err, ErrForeignOrder)
		repo.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
	})

	t.Run("Admin may order for a customer", func(t *testing.T) {
		repo := new(MockRepository)
		p := validParams()
		p.UserID = 9

		repo.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(p PlaceOrderParams) bool { return p.UserID == 9 })).
			Return(&Order{ID: 1}, nil)

		_, err := NewService(repo, nil, nil).PlaceOrder(adminCtx(), p)
		assert.NoError(t, err)
	})

	t.Run("Validation", func(t *testing.T) {
		repo := new(MockRepository)
		p := PlaceOrderParams{
			Total: decimal.NewFromInt(-1),
			Lines: []LineParams{{ProductID: 1, Quantity: 0, UnitPrice: decimal.NewFromInt(-5)}},
		}

		_, err := NewService(repo, nil, nil).PlaceOrder(userCtx(5), p)

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		for _, field := range []string{"Metodo_Pago", "direccion_envio", "telefono_envio", "Total", "Cantidad", "Precio_Unitario"} {
			assert.Contains(t, appErr.Fields, field)
		}
	})

	t.Run("Quantity past the column range", func(t *testing.T) {
		repo := new(MockRepository)
		p := validParams()
		p.Lines[0].Quantity = math.MaxInt32 + 1

		_, err := NewService(repo, nil, nil).PlaceOrder(userCtx(5), p)

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, []string{msgQuantityTooLarge}, appErr.Fields["Cantidad"])
		repo.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
	})

	t.Run("Repeated lines that overflow when summed", func(t *testing.T) {
		repo := new(MockRepository)
		huge := math.MaxInt64/2 + 1
		p := validParams()
		p.Lines = []LineParams{
			{ProductID: 1, Quantity: huge, UnitPrice: decimal.NewFromInt(1)},
			{ProductID: 1, Quantity: huge, UnitPrice: decimal.NewFromInt(1)},
		}

		_, err := NewService(repo, nil, nil).PlaceOrder(userCtx(5), p)

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperr.KindValidation, appErr.Kind)
		assert.Contains(t, appErr.Fields, "Cantidad")
		repo.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
	})

	t.Run("Repeated lines summing past the column range", func(t *testing.T) {
		repo := new(MockRepository)
		p := validParams()
		p.Lines = []LineParams{
			{ProductID: 1, Quantity: math.MaxInt32, UnitPrice: decimal.NewFromInt(1)},
			{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
		}

		_, err := NewService(repo, nil, nil).PlaceOrder(userCtx(5), p)

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, []string{msgQuantityTooLarge}, appErr.Fields["Cantidad"])
		repo.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
	})

	t.Run("No lines", func(t *testing.T) {
		p := validParams()
		p.Lines = nil

		_, err := NewService(new(MockRepository), nil, nil).PlaceOrder(userCtx(5), p)

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Fields, "productos")
	})
}

func TestPlaceOrderParams_Quantities(t *testing.T) {
	t.Run("Sums repeated products", func(t *testing.T) {
		p := PlaceOrderParams{Lines: []LineParams{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
			{ProductID: 1, Quantity: 3},
		}}

		got, err := p.quantities()

		require.NoError(t, err)
		assert.Equal(t, map[uint]int{1: 5, 2: 1}, got)
	})

	t.Run("Rejects overflow", func(t *testing.T) {
		huge := math.MaxInt64/2 + 1
		p := PlaceOrderParams{Lines: []LineParams{
			{ProductID: 1, Quantity: huge},
			{ProductID: 1, Quantity: huge},
		}}

		got, err := p.quantities()

		assert.ErrorIs(t, err, ErrQuantityTooLarge)
		assert.Nil(t, got)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	t.Run("Admin only", func(t *testing.T) {
		_, err := NewService(new(MockRepository), nil, nil).UpdateStatus(userCtx(5), 42, "Enviado")
		assert.ErrorIs(t, err, ErrAdminOnly)
	})

	t.Run("Unknown status", func(t *testing.T) {
		_, err := NewService(new(MockRepository), nil, nil).UpdateStatus(adminCtx(), 42, "Cancelado")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("Publishes change", func(t *testing.T) {
		repo := new(MockRepository)
		pub := new(MockPublisher)
		ctx := adminCtx()

		repo.On("UpdateStatus", ctx, uint(42), StatusDelivered).
			Return(&Order{ID: 42, UserID: 5, Status: StatusDelivered}, nil)
		pub.On("Publish", ctx, "42", EventOrderStatusChanged, mock.MatchedBy(func(e StatusChangedEvent) bool {
			return e.Status == StatusDelivered && e.UserID == 5
		})).Return(nil)

		o, err := NewService(repo, pub, nil).UpdateStatus(ctx, 42, " Entregado ")

		require.NoError(t, err)
		assert.Equal(t, StatusDelivered, o.Status)
		pub.AssertExpectations(t)
	})
}

func TestStatus_CanMoveTo(t *testing.T) {
	assert.True(t, StatusPending.CanMoveTo(StatusShipped))
	assert.True(t, StatusShipped.CanMoveTo(StatusDelivered))
	assert.True(t, StatusDelivered.CanMoveTo(StatusReturned))
	assert.False(t, StatusDelivered.CanMoveTo(StatusShipped))
	assert.False(t, StatusShipped.CanMoveTo(StatusShipped))
}

func TestHandler_Place(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandler(NewService(repo, nil, nil))

	repo.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(p PlaceOrderParams) bool {
		return len(p.Lines) == 1 && p.Lines[0].ProductID == 1 && p.Lines[0].Quantity == 2 &&
			p.Lines[0].UnitPrice.Equal(decimal.RequireFromString("10.5"))
	})).Return(&Order{ID: 42, InvoiceNumber: "FAC-20261016"}, nil)

	body := `{"Total":21,"Metodo_Pago":"Nequi","direccion_envio":"Calle 1","telefono_envio":"300",
		"productos":[{"Id_Products":1,"Cantidad":2,"Precio_Unitario":10.5}]}`
	req := httptest.NewRequest(http.MethodPost, "/pedidos/", strings.NewReader(body))
	req = req.WithContext(userCtx(5))
	w := httptest.NewRecorder()

	h.Place(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"Id_Factura":42`)
}

func TestHandler_Place_InsufficientStock(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandler(NewService(repo, nil, nil))

	repo.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, ErrInsufficientStock)

	body := `{"Total":21,"Metodo_Pago":"Nequi","direccion_envio":"Calle 1","telefono_envio":"300",
		"productos":[{"Id_Products":5,"Cantidad":5,"Precio_Unitario":10}]}`
	req := httptest.NewRequest(http.MethodPost, "/pedidos/", strings.NewReader(body))
	req = req.WithContext(userCtx(5))
	w := httptest.NewRecorder()

	h.Place(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "stock insuficiente")
}

func TestHandler_UpdateStatus(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandler(NewService(repo, nil, nil))

	repo.On("UpdateStatus", mock.Anything, uint(42), StatusShipped).
		Return(nil, ErrInvalidTransition)

	req := httptest.NewRequest(http.MethodPut, "/pedidos/42/", strings.NewReader(`{"Estado":"Enviado"}`))
	req.SetPathValue("id", "42")
	req = req.WithContext(adminCtx())
	w := httptest.NewRecorder()

	h.UpdateStatus(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ListMine(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandler(NewService(repo, nil, nil))

	repo.On("ListByUser", mock.Anything, uint(5)).Return([]Order{{
		ID:     42,
		Status: StatusPending,
		Total:  decimal.RequireFromString("25"),
		Lines:  []Line{{ProductID: 1, ProductTitle: "Croquetas", Quantity: 2, UnitPrice: decimal.RequireFromString("12.5"), Subtotal: decimal.RequireFromString("25")}},
	}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/mis-pedidos/", nil)
	req = req.WithContext(userCtx(5))
	w := httptest.NewRecorder()

	h.ListMine(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"Estado":"Pendiente"`)
	assert.Contains(t, body, `"Subtotal":25.00`)
	assert.Contains(t, body, `"Titulo":"Croquetas"`)
}
