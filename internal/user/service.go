package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"miaumarket-be/internal/apperr"
	"miaumarket-be/internal/auth"
	"miaumarket-be/internal/db"
	"miaumarket-be/internal/logger"
	"miaumarket-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, params RegisterParams) (*User, error)
	Login(ctx context.Context, email, password string) (string, *User, error)
	GetProfile(ctx context.Context, userID uint) (*User, error)
	UpdateProfile(ctx context.Context, params UpdateProfileParams) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

type service struct {
	repo   Repository
	tokens *auth.TokenManager
	loc    *time.Location
	now    func() time.Time
}

// NewService wires the account service. loc decides which calendar day
// counts as "today" for the age check.
func NewService(repo Repository, tokens *auth.TokenManager, loc *time.Location) Service {
	return &service{repo: repo, tokens: tokens, loc: loc, now: time.Now}
}

func (s *service) Register(ctx context.Context, p RegisterParams) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	u := &User{
		FirstName: strings.TrimSpace(p.FirstName),
		LastName:  strings.TrimSpace(p.LastName),
		Email:     strings.ToLower(strings.TrimSpace(p.Email)),
		Phone:     strings.TrimSpace(p.Phone),
		Address:   strings.TrimSpace(p.Address),
		City:      strings.TrimSpace(p.City),
		BirthDate: p.BirthDate,
	}

	fields := s.validateRegistration(u, p)
	if !fields.Empty() {
		return nil, fields.Err()
	}

	conflicts, err := s.repo.FindConflicts(ctx, u)
	if err != nil {
		return nil, err
	}
	if conflicts.Any() {
		return nil, conflictErrors(conflicts).Err()
	}

	hashed, err := HashPassword(p.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}
	u.Password = hashed

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		// Lost a race with a concurrent registration.
		if db.IsUniqueViolation(err) {
			return nil, constraintErrors(db.ConstraintName(err)).Err()
		}
		return nil, err
	}

	log.Info("user registered", zap.Uint("user_id", created.ID))
	return created, nil
}

func (s *service) validateRegistration(u *User, p RegisterParams) apperr.FieldErrors {
	fields := apperr.FieldErrors{}

	required := map[string]string{
		"Nombre":    u.FirstName,
		"Apellido":  u.LastName,
		"Email":     u.Email,
		"Telefono":  u.Phone,
		"Address":   u.Address,
		"password":  p.Password,
		"password2": p.PasswordConfirm,
	}
	for field, value := range required {
		if value == "" {
			fields.Add(field, msgRequired)
		}
	}

	if u.Email != "" {
		if _, err := mail.ParseAddress(u.Email); err != nil {
			fields.Add("Email", msgInvalidEmail)
		}
	}

	if p.Password != "" && len(p.Password) < minPasswordLength {
		fields.Add("password", msgPasswordTooShort)
	}
	if p.Password != p.PasswordConfirm {
		fields.Add("password2", msgPasswordMismatch)
	}

	if u.BirthDate.IsZero() {
		fields.Add("BirthDate", msgRequired)
	} else {
		today := utils.Today(s.now(), s.loc)
		birth := time.Date(u.BirthDate.Year(), u.BirthDate.Month(), u.BirthDate.Day(), 0, 0, 0, 0, today.Location())
		switch {
		case birth.After(today):
			fields.Add("BirthDate", msgBirthDateInFuture)
		case utils.AgeOn(birth, today) < minimumAge:
			fields.Add("BirthDate", msgUnderage)
		}
	}

	return fields
}

func conflictErrors(c Conflicts) apperr.FieldErrors {
	fields := apperr.FieldErrors{}
	if c.Email {
		fields.Add("Email", msgEmailTaken)
	}
	if c.Phone {
		fields.Add("Telefono", msgPhoneTaken)
	}
	if c.Address {
		fields.Add("Address", msgAddressTaken)
	}
	if c.FullName {
		fields.Add("Nombre", msgFullNameTaken)
	}
	return fields
}

func constraintErrors(constraint string) apperr.FieldErrors {
	switch constraint {
	case "users_phone_key":
		return conflictErrors(Conflicts{Phone: true})
	case "users_address_key":
		return conflictErrors(Conflicts{Address: true})
	case "users_full_name_key":
		return conflictErrors(Conflicts{FullName: true})
	default:
		return conflictErrors(Conflicts{Email: true})
	}
}

func (s *service) Login(ctx context.Context, email, password string) (string, *User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	u, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Info("login with unknown email")
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !CheckPasswordHash(password, u.Password) {
		log.Info("login password mismatch", zap.Uint("user_id", u.ID))
		return "", nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return "", nil, ErrAccountDisabled
	}

	token, err := s.tokens.Issue(u.ID, u.Email, utils.RoleFor(u.IsStaff))
	if err != nil {
		log.Error("failed to issue token", zap.Uint("user_id", u.ID), zap.Error(err))
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, u, nil
}

func (s *service) GetProfile(ctx context.Context, userID uint) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, p UpdateProfileParams) (*User, error) {
	current, err := s.repo.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	next := *current
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&next.FirstName, p.FirstName)
	apply(&next.LastName, p.LastName)
	apply(&next.Phone, p.Phone)
	apply(&next.Address, p.Address)
	apply(&next.City, p.City)

	fields := apperr.FieldErrors{}
	for field, value := range map[string]string{
		"Nombre":   next.FirstName,
		"Apellido": next.LastName,
		"Telefono": next.Phone,
		"Address":  next.Address,
	} {
		if value == "" {
			fields.Add(field, msgRequired)
		}
	}

	changingPassword := p.NewPassword != ""
	if changingPassword {
		if p.CurrentPassword == "" {
			fields.Add("password_actual", msgCurrentPasswordEmpty)
		}
		if len(p.NewPassword) < minNewPasswordLength {
			fields.Add("password_nueva", msgNewPasswordTooShort)
		}
	}
	if !fields.Empty() {
		return nil, fields.Err()
	}

	if changingPassword && !CheckPasswordHash(p.CurrentPassword, current.Password) {
		return nil, ErrWrongPassword
	}

	conflicts, err := s.repo.FindConflicts(ctx, &next)
	if err != nil {
		return nil, err
	}
	// Email is not editable here, so only the remaining attributes matter.
	conflicts.Email = false
	if conflicts.Any() {
		return nil, conflictErrors(conflicts).Err()
	}

	updated, err := s.repo.UpdateProfile(ctx, &next)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, constraintErrors(db.ConstraintName(err)).Err()
		}
		return nil, err
	}

	if changingPassword {
		hashed, err := HashPassword(p.NewPassword)
		if err != nil {
			return nil, err
		}
		if err := s.repo.UpdatePassword(ctx, p.UserID, hashed); err != nil {
			return nil, err
		}
		logger.FromCtx(ctx).Info("password changed", zap.Uint("user_id", p.UserID))
	}

	return updated, nil
}

func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}
