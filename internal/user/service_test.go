package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"miaumarket-be/internal/apperr"
	"miaumarket-be/internal/auth"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *User) (*User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindConflicts(ctx context.Context, u *User) (Conflicts, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(Conflicts), args.Error(1)
}

func (m *MockRepository) UpdateProfile(ctx context.Context, u *User) (*User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *MockRepository) List(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockRepository) ListAdminIDs(ctx context.Context) ([]uint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockRepository) IsStaff(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

var fixedNow = time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)

func newTestService(repo Repository) *service {
	svc := NewService(repo, auth.NewTokenManager("testsecret", time.Hour), time.UTC).(*service)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func validParams() RegisterParams {
	return RegisterParams{
		FirstName:       "Ana",
		LastName:        "Gómez",
		Email:           "Ana@Miau.co",
		Password:        "gatitos123",
		PasswordConfirm: "gatitos123",
		Phone:           "3001234567",
		Address:         "Calle 1 #2-3",
		City:            "Bogotá",
		BirthDate:       time.Date(1995, 5, 20, 0, 0, 0, 0, time.UTC),
	}
}

func fieldsOf(t *testing.T, err error) map[string][]string {
	t.Helper()
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	return appErr.Fields
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		repo.On("FindConflicts", ctx, mock.Anything).Return(Conflicts{}, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
			return u.Email == "ana@miau.co" && u.Password != "gatitos123" && CheckPasswordHash("gatitos123", u.Password)
		})).Return(&User{ID: 1, Email: "ana@miau.co"}, nil)

		u, err := svc.Register(ctx, validParams())

		require.NoError(t, err)
		assert.Equal(t, uint(1), u.ID)
		repo.AssertExpectations(t)
	})

	t.Run("Age 18 exactly today is accepted", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		p := validParams()
		p.BirthDate = time.Date(2008, 10, 16, 0, 0, 0, 0, time.UTC)

		repo.On("FindConflicts", ctx, mock.Anything).Return(Conflicts{}, nil)
		repo.On("Create", ctx, mock.Anything).Return(&User{ID: 2}, nil)

		_, err := svc.Register(ctx, p)
		assert.NoError(t, err)
	})

	t.Run("Age 17 is rejected", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		p := validParams()
		p.BirthDate = time.Date(2008, 10, 17, 0, 0, 0, 0, time.UTC)

		_, err := svc.Register(ctx, p)

		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Equal(t, []string{msgUnderage}, fieldsOf(t, err)["BirthDate"])
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Password mismatch and missing fields", func(t *testing.T) {
		svc := newTestService(new(MockRepository))

		p := validParams()
		p.PasswordConfirm = "otra"
		p.Phone = ""

		_, err := svc.Register(ctx, p)

		fields := fieldsOf(t, err)
		assert.Contains(t, fields["password2"], msgPasswordMismatch)
		assert.Contains(t, fields["Telefono"], msgRequired)
	})

	t.Run("Duplicates reported per field", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		repo.On("FindConflicts", ctx, mock.Anything).
			Return(Conflicts{Email: true, Phone: true, Address: true, FullName: true}, nil)

		_, err := svc.Register(ctx, validParams())

		fields := fieldsOf(t, err)
		assert.Equal(t, []string{msgEmailTaken}, fields["Email"])
		assert.Equal(t, []string{msgPhoneTaken}, fields["Telefono"])
		assert.Equal(t, []string{msgAddressTaken}, fields["Address"])
		assert.Equal(t, []string{msgFullNameTaken}, fields["Nombre"])
	})

	t.Run("Unique violation race maps to field", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		repo.On("FindConflicts", ctx, mock.Anything).Return(Conflicts{}, nil)
		repo.On("Create", ctx, mock.Anything).
			Return(nil, &pq.Error{Code: "23505", Constraint: "users_phone_key"})

		_, err := svc.Register(ctx, validParams())

		assert.Equal(t, []string{msgPhoneTaken}, fieldsOf(t, err)["Telefono"])
	})

	t.Run("RepoError", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		repo.On("FindConflicts", ctx, mock.Anything).Return(Conflicts{}, errors.New("db error"))

		_, err := svc.Register(ctx, validParams())
		assert.EqualError(t, err, "db error")
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	hash, _ := HashPassword("gatitos123")

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		repo.On("FindByEmail", ctx, "ana@miau.co").
			Return(&User{ID: 1, Email: "ana@miau.co", Password: hash, IsStaff: true, IsActive: true}, nil)

		token, u, err := svc.Login(ctx, "ana@miau.co", "gatitos123")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, uint(1), u.ID)

		claims, err := svc.tokens.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "ADMIN", claims.Role)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		repo.On("FindByEmail", ctx, "ana@miau.co").
			Return(&User{ID: 1, Password: hash, IsActive: true}, nil)

		_, _, err := svc.Login(ctx, "ana@miau.co", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		repo.On("FindByEmail", ctx, "x@miau.co").Return(nil, ErrUserNotFound)

		_, _, err := svc.Login(ctx, "x@miau.co", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	})

	t.Run("Disabled", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		repo.On("FindByEmail", ctx, "ana@miau.co").
			Return(&User{ID: 1, Password: hash, IsActive: false}, nil)

		_, _, err := svc.Login(ctx, "ana@miau.co", "gatitos123")
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})
}

func TestService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	hash, _ := HashPassword("gatitos123")
	current := func() *User {
		return &User{ID: 5, FirstName: "Ana", LastName: "Gómez", Email: "ana@miau.co", Password: hash,
			Phone: "300", Address: "Calle 1", City: "Bogotá", IsActive: true}
	}

	t.Run("Updates fields and password", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		repo.On("FindByID", ctx, uint(5)).Return(current(), nil)
		repo.On("FindConflicts", ctx, mock.Anything).Return(Conflicts{}, nil)
		repo.On("UpdateProfile", ctx, mock.MatchedBy(func(u *User) bool {
			return u.City == "Medellín" && u.FirstName == "Ana"
		})).Return(&User{ID: 5, City: "Medellín"}, nil)
		repo.On("UpdatePassword", ctx, uint(5), mock.AnythingOfType("string")).Return(nil)

		city := " Medellín "
		u, err := svc.UpdateProfile(ctx, UpdateProfileParams{
			UserID: 5, City: &city, CurrentPassword: "gatitos123", NewPassword: "perritos",
		})

		require.NoError(t, err)
		assert.Equal(t, "Medellín", u.City)
		repo.AssertExpectations(t)
	})

	t.Run("Wrong current password", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		repo.On("FindByID", ctx, uint(5)).Return(current(), nil)

		_, err := svc.UpdateProfile(ctx, UpdateProfileParams{
			UserID: 5, CurrentPassword: "bad", NewPassword: "perritos",
		})
		assert.ErrorIs(t, err, ErrWrongPassword)
		repo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
	})

	t.Run("Short new password", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		repo.On("FindByID", ctx, uint(5)).Return(current(), nil)

		_, err := svc.UpdateProfile(ctx, UpdateProfileParams{
			UserID: 5, CurrentPassword: "gatitos123", NewPassword: "abc",
		})
		assert.Contains(t, fieldsOf(t, err)["password_nueva"], msgNewPasswordTooShort)
	})

	t.Run("Phone taken by someone else", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo)

		repo.On("FindByID", ctx, uint(5)).Return(current(), nil)
		repo.On("FindConflicts", ctx, mock.Anything).Return(Conflicts{Phone: true, Email: true}, nil)

		phone := "311"
		_, err := svc.UpdateProfile(ctx, UpdateProfileParams{UserID: 5, Phone: &phone})

		fields := fieldsOf(t, err)
		assert.Contains(t, fields, "Telefono")
		assert.NotContains(t, fields, "Email")
	})
}
