package catalog

import (
	"context"

	"github.com/example/storefront/internal/rpc"
	"github.com/go-monolith/mono"
)

// CatalogPort defines the catalog operations other modules use.
type CatalogPort interface {
	ListCategories(ctx context.Context) ([]CategoryResponse, error)
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error)
	DeleteCategory(ctx context.Context, id uint) error
	ListActiveProducts(ctx context.Context) ([]ProductResponse, error)
	GetActiveProduct(ctx context.Context, id uint) (*ProductResponse, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error)
	CreateReview(ctx context.Context, req CreateReviewRequest) (*ReviewResponse, error)
}

// CatalogAdapter implements CatalogPort using the service container.
type CatalogAdapter struct {
	container mono.ServiceContainer
}

var _ CatalogPort = (*CatalogAdapter)(nil)

// NewCatalogAdapter creates a new CatalogAdapter.
func NewCatalogAdapter(container mono.ServiceContainer) *CatalogAdapter {
	return &CatalogAdapter{container: container}
}

// ListCategories returns every category.
func (a *CatalogAdapter) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	resp, err := rpc.Call[ListRequest, CategoriesResponse](ctx, a.container, ServiceListCategories, ListRequest{})
	if err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// CreateCategory creates a category.
func (a *CatalogAdapter) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	return rpc.Call[CreateCategoryRequest, CategoryResponse](ctx, a.container, ServiceCreateCategory, req)
}

// DeleteCategory removes a category.
func (a *CatalogAdapter) DeleteCategory(ctx context.Context, id uint) error {
	_, err := rpc.Call[IDRequest, DeleteResponse](ctx, a.container, ServiceDeleteCategory, IDRequest{ID: id})
	return err
}

// ListActiveProducts returns every active product.
func (a *CatalogAdapter) ListActiveProducts(ctx context.Context) ([]ProductResponse, error) {
	resp, err := rpc.Call[ListRequest, ProductsResponse](ctx, a.container, ServiceListProducts, ListRequest{})
	if err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// GetActiveProduct returns an active product.
func (a *CatalogAdapter) GetActiveProduct(ctx context.Context, id uint) (*ProductResponse, error) {
	return rpc.Call[IDRequest, ProductResponse](ctx, a.container, ServiceGetProduct, IDRequest{ID: id})
}

// CreateProduct creates a product.
func (a *CatalogAdapter) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	return rpc.Call[CreateProductRequest, ProductResponse](ctx, a.container, ServiceCreateProduct, req)
}

// CreateReview records a review.
func (a *CatalogAdapter) CreateReview(ctx context.Context, req CreateReviewRequest) (*ReviewResponse, error) {
	return rpc.Call[CreateReviewRequest, ReviewResponse](ctx, a.container, ServiceCreateReview, req)
}
