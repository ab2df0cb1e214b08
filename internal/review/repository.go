package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"miaumarket-be/internal/db"
	"miaumarket-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	ProductExists(ctx context.Context, productID uint) (bool, error)
	Create(ctx context.Context, r *Review) (*Review, error)
	FindMine(ctx context.Context, productID, userID uint) (*Review, error)
	UpdateMine(ctx context.Context, r *Review) (*Review, error)
	DeleteMine(ctx context.Context, productID, userID uint) error
	ListForProduct(ctx context.Context, productID uint) ([]Review, error)
	Rating(ctx context.Context, productID uint) (*Rating, error)
	AllRatings(ctx context.Context) ([]Rating, error)
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const reviewColumns = `id, product_id, user_id, rating, comment, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func (r *repository) ProductExists(ctx context.Context, productID uint) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	return exists, err
}

func scanReview(row scanner) (*Review, error) {
	var rv Review
	err := row.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *repository) Create(ctx context.Context, rv *Review) (*Review, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.Uint("product_id", rv.ProductID),
	)

	created, err := scanReview(r.db.QueryRowContext(ctx, `
		INSERT INTO reviews (product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING `+reviewColumns,
		rv.ProductID, rv.UserID, rv.Rating, rv.Comment,
	))
	switch {
	case err == nil:
		return created, nil
	case db.IsUniqueViolation(err):
		return nil, ErrDuplicateReview
	case db.IsForeignKeyViolation(err):
		return nil, ErrProductNotFound
	default:
		log.Error("failed to insert review", zap.Error(err))
		return nil, fmt.Errorf("insert review: %w", err)
	}
}

func (r *repository) FindMine(ctx context.Context, productID, userID uint) (*Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE product_id = $1 AND user_id = $2`,
		productID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	return rv, err
}

func (r *repository) UpdateMine(ctx context.Context, rv *Review) (*Review, error) {
	updated, err := scanReview(r.db.QueryRowContext(ctx, `
		UPDATE reviews SET rating = $1, comment = $2, updated_at = NOW()
		WHERE product_id = $3 AND user_id = $4
		RETURNING `+reviewColumns,
		rv.Rating, rv.Comment, rv.ProductID, rv.UserID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	return updated, err
}

func (r *repository) DeleteMine(ctx context.Context, productID, userID uint) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reviews WHERE product_id = $1 AND user_id = $2`, productID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *repository) ListForProduct(ctx context.Context, productID uint) ([]Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.product_id, r.user_id, r.rating, r.comment, r.created_at, r.updated_at,
		       u.first_name, u.last_name
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC, r.id DESC`,
		productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Review{}
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Comment,
			&rv.CreatedAt, &rv.UpdatedAt, &rv.FirstName, &rv.LastName); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

const ratingQuery = `
	SELECT pr.product_id, p.title, pr.total_reviews, pr.average_rating,
	       pr.five_stars, pr.four_stars, pr.three_stars, pr.two_stars, pr.one_star
	FROM product_ratings pr
	JOIN products p ON p.id = pr.product_id`

func scanRating(row scanner) (*Rating, error) {
	var rt Rating
	err := row.Scan(&rt.ProductID, &rt.Title, &rt.TotalReviews, &rt.Average,
		&rt.FiveStars, &rt.FourStars, &rt.ThreeStars, &rt.TwoStars, &rt.OneStar)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// Rating reads the aggregate for one product. The view left-joins reviews, so
// a product without reviews yields a zeroed row rather than no row.
func (r *repository) Rating(ctx context.Context, productID uint) (*Rating, error) {
	rt, err := scanRating(r.db.QueryRowContext(ctx, ratingQuery+` WHERE pr.product_id = $1`, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return rt, err
}

func (r *repository) AllRatings(ctx context.Context) ([]Rating, error) {
	rows, err := r.db.QueryContext(ctx, ratingQuery+`
	WHERE pr.total_reviews > 0
	ORDER BY pr.average_rating DESC, pr.total_reviews DESC, pr.product_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Rating{}
	for rows.Next() {
		rt, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rt)
	}
	return out, rows.Err()
}
