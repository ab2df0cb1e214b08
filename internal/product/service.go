package product

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"miaumarket-be/internal/apperr"
	"miaumarket-be/internal/logger"
	"miaumarket-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, category string) ([]Product, error)
	Get(ctx context.Context, id uint) (*Product, error)
	Create(ctx context.Context, p CreateParams) (*Product, error)
	Update(ctx context.Context, p UpdateParams) (*Product, error)
	Delete(ctx context.Context, id uint) error
	Catalog(ctx context.Context) ([]CatalogEntry, error)
}

type service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

func NewService(repo Repository, loc *time.Location) Service {
	return &service{repo: repo, loc: loc, now: time.Now}
}

func (s *service) today() time.Time {
	return utils.Today(s.now(), s.loc)
}

// List hides expired food from everyone but admins.
func (s *service) List(ctx context.Context, category string) ([]Product, error) {
	return s.repo.List(ctx, ListOptions{
		IncludeExpired: utils.IsAdmin(ctx),
		Today:          s.today(),
		Category:       strings.TrimSpace(category),
	})
}

func (s *service) Get(ctx context.Context, id uint) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !utils.IsAdmin(ctx) && p.ExpiredOn(s.today()) {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *service) Create(ctx context.Context, p CreateParams) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	p.Title = strings.TrimSpace(p.Title)
	p.Category = strings.TrimSpace(p.Category)
	p.Description = strings.TrimSpace(p.Description)
	p.Image = strings.TrimSpace(p.Image)

	fields := apperr.FieldErrors{}
	validateTitle(fields, p.Title)
	validateCategory(fields, p.Category)
	validateImage(fields, p.Image)
	if p.Price.IsNegative() {
		fields.Add("Precio", msgNegativePrice)
	}
	if p.Stock < 0 {
		fields.Add("Stock", msgNegativeStock)
	}
	if !fields.Empty() {
		return nil, fields.Err()
	}

	if id, ok := utils.GetUserIDFromContext(ctx); ok {
		p.CreatedBy = id
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	log.Info("product created", zap.Uint("product_id", created.ID), zap.String("category", created.Category))
	return created, nil
}

func (s *service) Update(ctx context.Context, p UpdateParams) (*Product, error) {
	current, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	fields := apperr.FieldErrors{}
	if p.Title != nil {
		current.Title = strings.TrimSpace(*p.Title)
		validateTitle(fields, current.Title)
	}
	if p.Category != nil {
		current.Category = strings.TrimSpace(*p.Category)
		validateCategory(fields, current.Category)
	}
	if p.Description != nil {
		current.Description = strings.TrimSpace(*p.Description)
	}
	if p.Image != nil {
		current.Image = strings.TrimSpace(*p.Image)
		validateImage(fields, current.Image)
	}
	if p.Price != nil {
		if p.Price.IsNegative() {
			fields.Add("Precio", msgNegativePrice)
		}
		current.Price = *p.Price
	}
	if p.Stock != nil {
		if *p.Stock < 0 {
			fields.Add("Stock", msgNegativeStock)
		}
		current.Stock = *p.Stock
	}
	switch {
	case p.ClearExpiry:
		current.ExpiresOn = nil
	case p.ExpiresOn != nil:
		current.ExpiresOn = p.ExpiresOn
	}
	if !fields.Empty() {
		return nil, fields.Err()
	}

	return s.repo.Update(ctx, current)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("product deleted", zap.Uint("product_id", id))
	return nil
}

// Catalog lists in-stock, unexpired products with their ratings.
func (s *service) Catalog(ctx context.Context) ([]CatalogEntry, error) {
	return s.repo.ListCatalog(ctx, s.today())
}

func validateTitle(fields apperr.FieldErrors, title string) {
	switch {
	case title == "":
		fields.Add("Titulo", msgRequired)
	case utf8.RuneCountInString(title) > maxTitleLength:
		fields.Add("Titulo", msgTitleTooLong)
	}
}

func validateCategory(fields apperr.FieldErrors, category string) {
	switch {
	case category == "":
		fields.Add("Categoria", msgRequired)
	case utf8.RuneCountInString(category) > maxCategoryLength:
		fields.Add("Categoria", msgCategoryLong)
	}
}

func validateImage(fields apperr.FieldErrors, image string) {
	if utf8.RuneCountInString(image) > maxImageLength {
		fields.Add("Imagen", msgImageTooLong)
	}
}
