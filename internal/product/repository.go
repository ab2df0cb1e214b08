package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"miaumarket-be/internal/db"
	"miaumarket-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type Repository interface {
	List(ctx context.Context, opts ListOptions) ([]Product, error)
	GetByID(ctx context.Context, id uint) (*Product, error)
	Create(ctx context.Context, p CreateParams) (*Product, error)
	Update(ctx context.Context, p *Product) (*Product, error)
	Delete(ctx context.Context, id uint) error

	// LockForUpdate row-locks the given products in ascending id order.
	// Must run inside a transaction.
	LockForUpdate(ctx context.Context, ids []uint) ([]Product, error)
	// DecrementStock subtracts qty only if enough stock remains and reports
	// whether the row was updated.
	DecrementStock(ctx context.Context, id uint, qty int) (bool, error)

	ListExpiredFoodOn(ctx context.Context, day time.Time) ([]Product, error)
	ListCatalog(ctx context.Context, today time.Time) ([]CatalogEntry, error)
}

type repository struct {
	db db.DBTX
}

// NewRepository accepts a pool or a transaction.
func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const productColumns = `id, title, description, category, price, stock, image, expires_on, created_by, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner, extra ...any) (*Product, error) {
	var (
		p         Product
		expiresOn sql.NullTime
		createdBy sql.NullInt64
	)
	dest := []any{&p.ID, &p.Title, &p.Description, &p.Category, &p.Price, &p.Stock,
		&p.Image, &expiresOn, &createdBy, &p.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if expiresOn.Valid {
		t := expiresOn.Time
		p.ExpiresOn = &t
	}
	if createdBy.Valid {
		id := uint(createdBy.Int64)
		p.CreatedBy = &id
	}
	return &p, nil
}

func collect(rows *sql.Rows) ([]Product, error) {
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1 OR NOT (category = $2 AND expires_on IS NOT NULL AND expires_on <= $3::date))
		  AND ($4 = '' OR category = $4)
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query,
		opts.IncludeExpired, CategoryFood, opts.Today.Format(dateLayout), opts.Category)
	if err != nil {
		log.Error("failed to list products", zap.Error(err))
		return nil, err
	}
	return collect(rows)
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p CreateParams) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	var createdBy any
	if p.CreatedBy != 0 {
		createdBy = p.CreatedBy
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO products (title, description, category, price, stock, image, expires_on, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7::date, $8)
		RETURNING `+productColumns,
		p.Title, p.Description, p.Category, p.Price, p.Stock, p.Image, dateArg(p.ExpiresOn), createdBy,
	)

	created, err := scanProduct(row)
	if err != nil {
		log.Error("failed to insert product", zap.Error(err))
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, p *Product) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET title = $1, description = $2, category = $3, price = $4, stock = $5, image = $6, expires_on = $7::date
		WHERE id = $8
		RETURNING `+productColumns,
		p.Title, p.Description, p.Category, p.Price, p.Stock, p.Image, dateArg(p.ExpiresOn), p.ID,
	)

	updated, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product %d: %w", p.ID, err)
	}
	return updated, nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrProductInUse
		}
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) LockForUpdate(ctx context.Context, ids []uint) ([]Product, error) {
	arg := make([]int64, len(ids))
	for i, id := range ids {
		arg[i] = int64(id)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`,
		pq.Array(arg),
	)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	return collect(rows)
}

func (r *repository) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`, qty, id)
	if err != nil {
		return false, fmt.Errorf("decrement stock of product %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *repository) ListExpiredFoodOn(ctx context.Context, day time.Time) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE category = $1 AND expires_on = $2::date
		ORDER BY id`,
		CategoryFood, day.Format(dateLayout),
	)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repository) ListCatalog(ctx context.Context, today time.Time) ([]CatalogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`, pr.average_rating, pr.total_reviews
		FROM products
		JOIN product_ratings pr ON pr.product_id = products.id
		WHERE stock > 0
		  AND NOT (category = $1 AND expires_on IS NOT NULL AND expires_on <= $2::date)
		ORDER BY pr.average_rating DESC, id`,
		CategoryFood, today.Format(dateLayout),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CatalogEntry{}
	for rows.Next() {
		var e CatalogEntry
		p, err := scanProduct(rows, &e.AverageRating, &e.TotalReviews)
		if err != nil {
			return nil, err
		}
		e.Product = *p
		out = append(out, e)
	}
	return out, rows.Err()
}
