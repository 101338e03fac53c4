package catalog

import (
	"context"
	"errors"

	domain "github.com/example/storefront/domain/catalog"
	"gorm.io/gorm"
)

var (
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrProductNotFound is returned when a product is absent or inactive.
	ErrProductNotFound = errors.New("product not found")
	// ErrReviewExists is returned when the user already reviewed the product.
	ErrReviewExists = errors.New("review already exists")
)

// Repository handles catalog persistence using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// activeProducts restricts a product query to rows visible to callers.
func activeProducts(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true).Order("id")
}

func withProductView(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("Reviews", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Reviews.User")
}

// ListCategories returns every category with its active products.
func (r *Repository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	err := r.db.WithContext(ctx).
		Preload("Products", activeProducts).
		Preload("Products.Reviews", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Products.Reviews.User").
		Order("id").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, c *domain.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// DeleteCategory removes a category. The foreign key keeps its products
// with a null category.
func (r *Repository) DeleteCategory(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Category{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// ListActiveProducts returns every active product.
func (r *Repository) ListActiveProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := withProductView(activeProducts(r.db.WithContext(ctx))).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindActiveProduct returns the product only if it exists and is active.
func (r *Repository) FindActiveProduct(ctx context.Context, id uint) (*domain.Product, error) {
	var p domain.Product
	err := withProductView(activeProducts(r.db.WithContext(ctx))).First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// CreateProduct inserts a product after checking that its category exists.
func (r *Repository) CreateProduct(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c domain.Category
		if err := tx.First(&c, *p.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
		if err := tx.Omit("Category", "Reviews").Create(p).Error; err != nil {
			return err
		}
		p.Category = &c
		return nil
	})
}

// CreateReview inserts a review of an active product. The unique index on
// (product, user) rejects a second review.
func (r *Repository) CreateReview(ctx context.Context, review *domain.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Product
		if err := activeProducts(tx).Select("id").First(&p, review.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if err := tx.Omit("Product", "User").Create(review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrReviewExists
			}
			return err
		}
		return tx.Preload("User").First(review, review.ID).Error
	})
}
