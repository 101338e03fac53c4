package catalog

import (
	"context"
	"fmt"
	"log"

	"github.com/example/storefront/internal/cache"
	"github.com/example/storefront/internal/database"
	"github.com/example/storefront/internal/rpc"
	"github.com/go-monolith/mono"
	"gorm.io/gorm"
)

// Request-reply service names registered by the catalog module.
const (
	ServiceListCategories = "list-categories"
	ServiceCreateCategory = "create-category"
	ServiceDeleteCategory = "delete-category"
	ServiceListProducts   = "list-products"
	ServiceGetProduct     = "get-product"
	ServiceCreateProduct  = "create-product"
	ServiceCreateReview   = "create-review"
)

// CatalogModule owns categories, products and reviews.
type CatalogModule struct {
	db      *gorm.DB
	cache   cache.Cache
	service *Service
}

// Compile-time interface checks.
var _ mono.Module = (*CatalogModule)(nil)
var _ mono.ServiceProviderModule = (*CatalogModule)(nil)
var _ mono.HealthCheckableModule = (*CatalogModule)(nil)

// NewModule creates a new CatalogModule. A nil cache disables caching.
func NewModule(db *gorm.DB, c cache.Cache) *CatalogModule {
	if c == nil {
		c = cache.Nop{}
	}
	return &CatalogModule{
		db:      db,
		cache:   c,
		service: NewService(NewRepository(db), c),
	}
}

// Name returns the module name.
func (m *CatalogModule) Name() string {
	return "catalog"
}

// Service returns the in-process implementation of CatalogPort.
func (m *CatalogModule) Service() *Service {
	return m.service
}

// Start initializes the catalog module.
func (m *CatalogModule) Start(_ context.Context) error {
	_, cached := m.cache.(*cache.Redis)
	log.Printf("[catalog] Module started (redis cache: %t)", cached)
	return nil
}

// Stop shuts down the module. Database and cache are owned by the application.
func (m *CatalogModule) Stop(_ context.Context) error {
	log.Println("[catalog] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *CatalogModule) Health(ctx context.Context) mono.HealthStatus {
	if err := database.Ping(ctx, m.db); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	details := map[string]any{
		"cache": m.service.CacheStats(),
	}
	// A cache outage degrades reads to the database; the module stays healthy.
	if err := m.cache.Ping(ctx); err != nil {
		details["cache_error"] = err.Error()
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: details,
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *CatalogModule) RegisterServices(container mono.ServiceContainer) error {
	if err := rpc.Register(container, ServiceListCategories, m.handleListCategories); err != nil {
		return err
	}
	if err := rpc.Register(container, ServiceCreateCategory, m.handleCreateCategory); err != nil {
		return err
	}
	if err := rpc.Register(container, ServiceDeleteCategory, m.handleDeleteCategory); err != nil {
		return err
	}
	if err := rpc.Register(container, ServiceListProducts, m.handleListProducts); err != nil {
		return err
	}
	if err := rpc.Register(container, ServiceGetProduct, m.handleGetProduct); err != nil {
		return err
	}
	if err := rpc.Register(container, ServiceCreateProduct, m.handleCreateProduct); err != nil {
		return err
	}
	if err := rpc.Register(container, ServiceCreateReview, m.handleCreateReview); err != nil {
		return err
	}

	log.Printf("[catalog] Registered services: %s, %s, %s, %s, %s, %s, %s",
		ServiceListCategories, ServiceCreateCategory, ServiceDeleteCategory,
		ServiceListProducts, ServiceGetProduct, ServiceCreateProduct, ServiceCreateReview)
	return nil
}

func (m *CatalogModule) handleListCategories(ctx context.Context, _ ListRequest) (CategoriesResponse, error) {
	categories, err := m.service.ListCategories(ctx)
	if err != nil {
		return CategoriesResponse{}, err
	}
	return CategoriesResponse{Categories: categories}, nil
}

func (m *CatalogModule) handleCreateCategory(ctx context.Context, req CreateCategoryRequest) (CategoryResponse, error) {
	category, err := m.service.CreateCategory(ctx, req)
	if err != nil {
		return CategoryResponse{}, err
	}
	return *category, nil
}

func (m *CatalogModule) handleDeleteCategory(ctx context.Context, req IDRequest) (DeleteResponse, error) {
	if err := m.service.DeleteCategory(ctx, req.ID); err != nil {
		return DeleteResponse{}, err
	}
	return DeleteResponse{Deleted: true}, nil
}

func (m *CatalogModule) handleListProducts(ctx context.Context, _ ListRequest) (ProductsResponse, error) {
	products, err := m.service.ListActiveProducts(ctx)
	if err != nil {
		return ProductsResponse{}, err
	}
	return ProductsResponse{Products: products}, nil
}

func (m *CatalogModule) handleGetProduct(ctx context.Context, req IDRequest) (ProductResponse, error) {
	product, err := m.service.GetActiveProduct(ctx, req.ID)
	if err != nil {
		return ProductResponse{}, err
	}
	return *product, nil
}

func (m *CatalogModule) handleCreateProduct(ctx context.Context, req CreateProductRequest) (ProductResponse, error) {
	product, err := m.service.CreateProduct(ctx, req)
	if err != nil {
		return ProductResponse{}, err
	}
	return *product, nil
}

func (m *CatalogModule) handleCreateReview(ctx context.Context, req CreateReviewRequest) (ReviewResponse, error) {
	review, err := m.service.CreateReview(ctx, req)
	if err != nil {
		return ReviewResponse{}, err
	}
	return *review, nil
}
