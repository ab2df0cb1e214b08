package product

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

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

func (m *MockRepository) List(ctx context.Context, opts ListOptions) ([]Product, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Product), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uint) (*Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, p CreateParams) (*Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, p *Product) (*Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) LockForUpdate(ctx context.Context, ids []uint) ([]Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]Product), args.Error(1)
}

func (m *MockRepository) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	args := m.Called(ctx, id, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListExpiredFoodOn(ctx context.Context, d time.Time) ([]Product, error) {
	args := m.Called(ctx, d)
	return args.Get(0).([]Product), args.Error(1)
}

func (m *MockRepository) ListCatalog(ctx context.Context, today time.Time) ([]CatalogEntry, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CatalogEntry), args.Error(1)
}

var fixedNow = time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)

func newTestService(repo Repository) *service {
	return &service{repo: repo, loc: time.UTC, now: func() time.Time { return fixedNow }}
}

func adminCtx() context.Context {
	return utils.SetUserContext(context.Background(), 1, "admin@miau.co", utils.RoleAdmin)
}

func userCtx() context.Context {
	return utils.SetUserContext(context.Background(), 5, "ana@miau.co", utils.RoleUser)
}

func TestService_List_Visibility(t *testing.T) {
	today := day("2026-10-16")

	tests := []struct {
		name    string
		ctx     context.Context
		include bool
	}{
		{"anonymous", context.Background(), false},
		{"regular user", userCtx(), false},
		{"admin", adminCtx(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("List", tt.ctx, ListOptions{IncludeExpired: tt.include, Today: today, Category: "Comida"}).
				Return([]Product{}, nil)

			_, err := newTestService(repo).List(tt.ctx, " Comida ")
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Get_HidesExpiredFood(t *testing.T) {
	today := day("2026-10-16")
	expired := &Product{ID: 3, Category: CategoryFood, ExpiresOn: &today}

	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, uint(3)).Return(expired, nil)
	svc := newTestService(repo)

	_, err := svc.Get(userCtx(), 3)
	assert.ErrorIs(t, err, ErrProductNotFound)

	p, err := svc.Get(adminCtx(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint(3), p.ID)
}

func TestService_Create(t *testing.T) {
	t.Run("Validation", func(t *testing.T) {
		repo := new(MockRepository)

		_, err := newTestService(repo).Create(adminCtx(), CreateParams{
			Title: "  ",
			Price: decimal.NewFromInt(-1),
			Stock: -2,
		})

		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Fields, "Titulo")
		assert.Contains(t, appErr.Fields, "Categoria")
		assert.Contains(t, appErr.Fields, "Precio")
		assert.Contains(t, appErr.Fields, "Stock")
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Records creator", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(p CreateParams) bool {
			return p.CreatedBy == 1 && p.Title == "Rascador"
		})).Return(&Product{ID: 9, Title: "Rascador"}, nil)

		p, err := newTestService(repo).Create(adminCtx(), CreateParams{
			Title:    " Rascador ",
			Category: "Accesorios",
			Price:    decimal.NewFromInt(80000),
			Stock:    2,
		})

		require.NoError(t, err)
		assert.Equal(t, uint(9), p.ID)
	})
}

func TestService_Update_Partial(t *testing.T) {
	expires := day("2026-12-01")
	current := &Product{ID: 4, Title: "Croquetas", Category: CategoryFood, Price: decimal.NewFromInt(100), Stock: 3, ExpiresOn: &expires}

	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, uint(4)).Return(current, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *Product) bool {
		return p.Stock == 10 && p.Title == "Croquetas" && p.ExpiresOn == nil
	})).Return(&Product{ID: 4, Stock: 10}, nil)

	stock := 10
	p, err := newTestService(repo).Update(adminCtx(), UpdateParams{ID: 4, Stock: &stock, ClearExpiry: true})

	require.NoError(t, err)
	assert.Equal(t, 10, p.Stock)
	repo.AssertExpectations(t)
}

type stubSweeper struct {
	created int
	err     error
}

func (s stubSweeper) Sweep(context.Context) (int, error) { return s.created, s.err }

func TestHandler_Create(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p CreateParams) bool {
		return p.ExpiresOn != nil && p.ExpiresOn.Format(dateLayout) == "2026-11-30" && p.Price.Equal(decimal.RequireFromString("45000.5"))
	})).Return(&Product{ID: 7, Title: "Croquetas", Category: CategoryFood, Price: decimal.RequireFromString("45000.5")}, nil)

	h := NewHandler(newTestService(repo), stubSweeper{})

	body := `{"Titulo":"Croquetas","Categoria":"Comida","Precio":45000.5,"Stock":3,"Fecha_Caducidad":"2026-11-30"}`
	req := httptest.NewRequest(http.MethodPost, "/productos/", strings.NewReader(body))
	req = req.WithContext(adminCtx())
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"Precio":45000.50`)
}

func TestHandler_Create_BadDate(t *testing.T) {
	h := NewHandler(newTestService(new(MockRepository)), stubSweeper{})

	body := `{"Titulo":"Croquetas","Categoria":"Comida","Precio":1,"Fecha_Caducidad":"30/11/2026"}`
	req := httptest.NewRequest(http.MethodPost, "/productos/", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Fecha_Caducidad")
}

func TestHandler_Get_NotFound(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, uint(8)).Return(nil, ErrProductNotFound)
	h := NewHandler(newTestService(repo), stubSweeper{})

	req := httptest.NewRequest(http.MethodGet, "/productos/8/", nil)
	req.SetPathValue("id", "8")
	w := httptest.NewRecorder()

	h.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Delete(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Delete", mock.Anything, uint(2)).Return(ErrProductInUse)
	h := NewHandler(newTestService(repo), stubSweeper{})

	req := httptest.NewRequest(http.MethodDelete, "/productos/2/", nil)
	req.SetPathValue("id", "2")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_SweepExpired(t *testing.T) {
	h := NewHandler(newTestService(new(MockRepository)), stubSweeper{created: 2})

	req := httptest.NewRequest(http.MethodPost, "/notificaciones/verificar-caducados/", nil)
	w := httptest.NewRecorder()

	h.SweepExpired(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"creadas":2`)
}
