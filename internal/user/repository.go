package user

import (
	"context"
	"database/sql"
	"errors"

	"miaumarket-be/internal/db"
	"miaumarket-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	FindConflicts(ctx context.Context, u *User) (Conflicts, error)
	UpdateProfile(ctx context.Context, u *User) (*User, error)
	UpdatePassword(ctx context.Context, id uint, hash string) error
	List(ctx context.Context) ([]User, error)
	ListAdminIDs(ctx context.Context) ([]uint, error)
	IsStaff(ctx context.Context, id uint) (bool, error)
}

type repository struct {
	db db.DBTX
}

// NewRepository accepts a pool or a transaction.
func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const userColumns = `id, first_name, last_name, email, password, phone, address, city, birth_date, is_staff, is_active, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password,
		&u.Phone, &u.Address, &u.City, &u.BirthDate, &u.IsStaff, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) Create(ctx context.Context, u *User) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	query := `
		INSERT INTO users (first_name, last_name, email, password, phone, address, city, birth_date, is_staff)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRowContext(ctx, query,
		u.FirstName, u.LastName, u.Email, u.Password, u.Phone, u.Address, u.City, u.BirthDate, u.IsStaff,
	))
	if err != nil {
		log.Error("failed to insert user", zap.String("email", u.Email), zap.Error(err))
		return nil, err
	}

	return created, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// FindConflicts checks every unique attribute of u against other users in a
// single round trip. u.ID is excluded so profile edits do not collide with themselves.
func (r *repository) FindConflicts(ctx context.Context, u *User) (Conflicts, error) {
	query := `
		SELECT
			EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1) AND id <> $6),
			EXISTS (SELECT 1 FROM users WHERE phone = $2 AND id <> $6),
			EXISTS (SELECT 1 FROM users WHERE lower(address) = lower($3) AND id <> $6),
			EXISTS (SELECT 1 FROM users WHERE lower(first_name) = lower($4) AND lower(last_name) = lower($5) AND id <> $6)
	`

	var c Conflicts
	err := r.db.QueryRowContext(ctx, query, u.Email, u.Phone, u.Address, u.FirstName, u.LastName, u.ID).
		Scan(&c.Email, &c.Phone, &c.Address, &c.FullName)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to check user conflicts", zap.Error(err))
		return Conflicts{}, err
	}
	return c, nil
}

func (r *repository) UpdateProfile(ctx context.Context, u *User) (*User, error) {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, phone = $3, address = $4, city = $5
		WHERE id = $6
		RETURNING ` + userColumns

	updated, err := scanUser(r.db.QueryRowContext(ctx, query,
		u.FirstName, u.LastName, u.Phone, u.Address, u.City, u.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update profile", zap.Uint("user_id", u.ID), zap.Error(err))
		return nil, err
	}
	return updated, nil
}

func (r *repository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *repository) ListAdminIDs(ctx context.Context) ([]uint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM users WHERE is_staff = TRUE AND is_active = TRUE ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repository) IsStaff(ctx context.Context, id uint) (bool, error) {
	var staff bool
	err := r.db.QueryRowContext(ctx, `SELECT is_staff FROM users WHERE id = $1`, id).Scan(&staff)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrUserNotFound
	}
	return staff, err
}
