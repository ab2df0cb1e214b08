package category

import (
	"context"
	"strings"
	"time"

	"miaumarket-be/internal/utils"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Service interface {
	List(ctx context.Context, filter string, limit, page int) ([]Category, int, error)
}

type service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

func NewService(repo Repository, loc *time.Location) Service {
	return &service{repo: repo, loc: loc, now: time.Now}
}

// List pages through categories. Out of range limit and page values fall
// back to the defaults instead of failing.
func (s *service) List(ctx context.Context, filter string, limit, page int) ([]Category, int, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if page <= 0 {
		page = 1
	}

	return s.repo.List(ctx, ListParams{
		Filter:         strings.TrimSpace(filter),
		Limit:          limit,
		Page:           page,
		IncludeExpired: utils.IsAdmin(ctx),
		Today:          utils.Today(s.now(), s.loc),
	})
}
