package notification

import (
	"context"

	"miaumarket-be/internal/utils"
)

type Service interface {
	List(ctx context.Context) ([]Notification, error)
	MarkRead(ctx context.Context, id uint) error
	MarkAllRead(ctx context.Context) (int64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// List returns the caller's newest notifications, at most their role's cap.
func (s *service) List(ctx context.Context) ([]Notification, error) {
	userID, _ := utils.GetUserIDFromContext(ctx)
	return s.repo.ListRecent(ctx, userID, CapFor(utils.IsAdmin(ctx)))
}

func (s *service) MarkRead(ctx context.Context, id uint) error {
	userID, _ := utils.GetUserIDFromContext(ctx)
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *service) MarkAllRead(ctx context.Context) (int64, error) {
	userID, _ := utils.GetUserIDFromContext(ctx)
	return s.repo.MarkAllRead(ctx, userID)
}
