package review

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"miaumarket-be/internal/apperr"
	"miaumarket-be/internal/logger"
	"miaumarket-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, productID uint, in Input) (*Review, error)
	// GetMine returns nil, nil when the caller has not reviewed the product.
	GetMine(ctx context.Context, productID uint) (*Review, error)
	UpdateMine(ctx context.Context, productID uint, in Input) (*Review, error)
	DeleteMine(ctx context.Context, productID uint) error
	ListForProduct(ctx context.Context, productID uint) ([]Review, error)
	Rating(ctx context.Context, productID uint) (*Rating, error)
	AllRatings(ctx context.Context) ([]Rating, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validate(in *Input) error {
	in.Comment = strings.TrimSpace(in.Comment)

	fields := apperr.FieldErrors{}
	if in.Rating < 1 || in.Rating > 5 {
		fields.Add("Rating", msgRatingRange)
	}
	if utf8.RuneCountInString(in.Comment) > maxCommentLength {
		fields.Add("Comentario", msgCommentLong)
	}
	return fields.Err()
}

func (s *service) Create(ctx context.Context, productID uint, in Input) (*Review, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}
	userID, _ := utils.GetUserIDFromContext(ctx)

	rv, err := s.repo.Create(ctx, &Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    in.Rating,
		Comment:   in.Comment,
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("review created",
		zap.Uint("review_id", rv.ID),
		zap.Uint("product_id", productID),
		zap.Int("rating", rv.Rating),
	)
	return rv, nil
}

func (s *service) GetMine(ctx context.Context, productID uint) (*Review, error) {
	userID, _ := utils.GetUserIDFromContext(ctx)
	rv, err := s.repo.FindMine(ctx, productID, userID)
	if errors.Is(err, ErrReviewNotFound) {
		return nil, nil
	}
	return rv, err
}

func (s *service) UpdateMine(ctx context.Context, productID uint, in Input) (*Review, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}
	userID, _ := utils.GetUserIDFromContext(ctx)

	return s.repo.UpdateMine(ctx, &Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    in.Rating,
		Comment:   in.Comment,
	})
}

func (s *service) DeleteMine(ctx context.Context, productID uint) error {
	userID, _ := utils.GetUserIDFromContext(ctx)
	return s.repo.DeleteMine(ctx, productID, userID)
}

func (s *service) ListForProduct(ctx context.Context, productID uint) ([]Review, error) {
	exists, err := s.repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProductNotFound
	}
	return s.repo.ListForProduct(ctx, productID)
}

func (s *service) Rating(ctx context.Context, productID uint) (*Rating, error) {
	return s.repo.Rating(ctx, productID)
}

func (s *service) AllRatings(ctx context.Context) ([]Rating, error) {
	return s.repo.AllRatings(ctx)
}
