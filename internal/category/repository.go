package category

import (
	"context"
	"fmt"

	"miaumarket-be/internal/db"
	"miaumarket-be/internal/logger"
	"miaumarket-be/internal/product"

	"go.uber.org/zap"
)

type Repository interface {
	// List returns one page of categories and the total number of
	// categories matching the filter.
	List(ctx context.Context, p ListParams) ([]Category, int, error)
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

func (r *repository) List(ctx context.Context, p ListParams) ([]Category, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.String("filter", p.Filter),
		zap.Int("limit", p.Limit),
		zap.Int("page", p.Page),
	)

	pattern := ""
	if p.Filter != "" {
		pattern = "%" + p.Filter + "%"
	}

	// Expired food counts only for admins, same rule as the product listing.
	query := `
		SELECT category, COUNT(*) AS products, COUNT(*) OVER () AS total
		FROM products
		WHERE ($1 OR NOT (category = $2 AND expires_on IS NOT NULL AND expires_on <= $3::date))
		  AND ($4 = '' OR category ILIKE $4)
		GROUP BY category
		ORDER BY category ASC
		LIMIT $5 OFFSET $6`

	rows, err := r.db.QueryContext(ctx, query,
		p.IncludeExpired, product.CategoryFood, p.Today.Format("2006-01-02"), pattern,
		p.Limit, p.offset())
	if err != nil {
		log.Error("DB query failed", zap.Error(err))
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var (
		out   = make([]Category, 0, p.Limit)
		total int
	)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Name, &c.Products, &total); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate categories: %w", err)
	}

	return out, total, nil
}
