package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	domain "github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/cache"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	maxCategoryNameLength = 100
	maxProductNameLength  = 200

	cacheKeyCategories = "catalog:categories"
	cacheKeyProducts   = "catalog:products"
	cachePattern       = "catalog:*"
)

// maxPrice is the first value that no longer fits decimal(10,2).
var maxPrice = decimal.New(1, domain.PricePrecision-domain.PriceScale)

func cacheKeyProduct(id uint) string {
	return "catalog:product:" + strconv.FormatUint(uint64(id), 10)
}

// Service provides catalog operations. Reads go through the cache
// (cache-aside); every write invalidates all catalog keys.
type Service struct {
	repo    *Repository
	cache   cache.Cache
	sfGroup singleflight.Group
}

var _ CatalogPort = (*Service)(nil)

// NewService creates a new catalog service.
func NewService(repo *Repository, c cache.Cache) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{
		repo:  repo,
		cache: c,
	}
}

// cached serves key from the cache, or loads it once across concurrent
// callers and stores the result.
func cached[T any](ctx context.Context, s *Service, key string, load func() (T, error)) (T, error) {
	var hit T
	found, err := s.cache.Get(ctx, key, &hit)
	if err != nil {
		log.Printf("[catalog] Cache error for %s: %v", key, err)
	}
	if found {
		return hit, nil
	}

	val, err, _ := s.sfGroup.Do(key, func() (any, error) {
		v, err := load()
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, v); err != nil {
			log.Printf("[catalog] Warning: failed to cache %s: %v", key, err)
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return val.(T), nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, cachePattern); err != nil {
		log.Printf("[catalog] Warning: failed to invalidate cache: %v", err)
	}
}

// ListCategories returns every category with its active products.
func (s *Service) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	return cached(ctx, s, cacheKeyCategories, func() ([]CategoryResponse, error) {
		categories, err := s.repo.ListCategories(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list categories: %w", err)
		}
		out := make([]CategoryResponse, 0, len(categories))
		for i := range categories {
			out = append(out, toCategoryResponse(&categories[i]))
		}
		return out, nil
	})
}

// CreateCategory creates a category.
func (s *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.New(apperr.Validation, "name is required")
	}
	if len(name) > maxCategoryNameLength {
		return nil, apperr.Newf(apperr.Validation, "name must be at most %d characters", maxCategoryNameLength)
	}

	c := &domain.Category{
		Name:        name,
		Description: req.Description,
		Image:       req.Image,
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	s.invalidate(ctx)

	log.Printf("[catalog] Created category ID=%d", c.ID)
	resp := toCategoryResponse(c)
	return &resp, nil
}

// DeleteCategory removes a category; its products lose their category.
func (s *Service) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return apperr.Newf(apperr.NotFound, "category %d not found", id)
		}
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	s.invalidate(ctx)

	log.Printf("[catalog] Deleted category ID=%d", id)
	return nil
}

// ListActiveProducts returns every active product.
func (s *Service) ListActiveProducts(ctx context.Context) ([]ProductResponse, error) {
	return cached(ctx, s, cacheKeyProducts, func() ([]ProductResponse, error) {
		products, err := s.repo.ListActiveProducts(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list products: %w", err)
		}
		out := make([]ProductResponse, 0, len(products))
		for i := range products {
			out = append(out, toProductResponse(&products[i]))
		}
		return out, nil
	})
}

// GetActiveProduct returns an active product. Inactive products are reported
// as not found.
func (s *Service) GetActiveProduct(ctx context.Context, id uint) (*ProductResponse, error) {
	p, err := cached(ctx, s, cacheKeyProduct(id), func() (*ProductResponse, error) {
		p, err := s.repo.FindActiveProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		resp := toProductResponse(p)
		return &resp, nil
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "product %d not found", id)
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return p, nil
}

// CreateProduct creates an active product. The caller is expected to have
// been authorized already.
func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.New(apperr.Validation, "name is required")
	}
	if len(name) > maxProductNameLength {
		return nil, apperr.Newf(apperr.Validation, "name must be at most %d characters", maxProductNameLength)
	}
	if err := validatePrice(req.Price); err != nil {
		return nil, err
	}

	stock := 0
	if req.Stock != nil {
		stock = *req.Stock
	}
	if stock < 0 {
		return nil, apperr.New(apperr.Validation, "stock must not be negative")
	}

	categoryID := req.CategoryID
	p := &domain.Product{
		Name:        name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  &categoryID,
		Image:       req.Image,
		Stock:       stock,
		IsActive:    true,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "category %d not found", req.CategoryID)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.invalidate(ctx)

	log.Printf("[catalog] Created product ID=%d", p.ID)
	resp := toProductResponse(p)
	return &resp, nil
}

// CreateReview records req.UserID's review of an active product.
func (s *Service) CreateReview(ctx context.Context, req CreateReviewRequest) (*ReviewResponse, error) {
	if req.Rating < domain.MinRating || req.Rating > domain.MaxRating {
		return nil, apperr.Newf(apperr.Validation, "rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}

	review := &domain.Review{
		ProductID: req.ProductID,
		UserID:    req.UserID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		switch {
		case errors.Is(err, ErrProductNotFound):
			return nil, apperr.Newf(apperr.NotFound, "product %d not found", req.ProductID)
		case errors.Is(err, ErrReviewExists):
			return nil, apperr.New(apperr.DuplicateReview, "you have already reviewed this product")
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	s.invalidate(ctx)

	resp := toReviewResponse(review)
	return &resp, nil
}

// CacheStats exposes the cache counters for health reporting.
func (s *Service) CacheStats() cache.StatsSnapshot {
	return s.cache.Stats()
}

func validatePrice(price decimal.Decimal) error {
	switch {
	case price.IsNegative():
		return apperr.New(apperr.Validation, "price must not be negative")
	case !price.Equal(price.Round(domain.PriceScale)):
		return apperr.Newf(apperr.Validation, "price must have at most %d decimal places", domain.PriceScale)
	case price.GreaterThanOrEqual(maxPrice):
		return apperr.Newf(apperr.Validation, "price must have at most %d digits before the decimal point", domain.PricePrecision-domain.PriceScale)
	}
	return nil
}
