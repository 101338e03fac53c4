package catalog

import (
	"time"

	domain "github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/domain/user"
	"github.com/shopspring/decimal"
)

// CategoryRef is the shallow view of a category embedded in a product.
type CategoryRef struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CategoryResponse is a category with its active products.
type CategoryResponse struct {
	ID          uint              `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	CreatedAt   time.Time         `json:"createdAt"`
	Products    []ProductResponse `json:"products"`
}

// ProductResponse is the public view of a product.
type ProductResponse struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	Category    *CategoryRef     `json:"category"`
	Image       string           `json:"image"`
	Stock       int              `json:"stock"`
	IsActive    bool             `json:"isActive"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Reviews     []ReviewResponse `json:"reviews"`
}

// ReviewResponse is the public view of a review.
type ReviewResponse struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"productId"`
	User      user.PublicUser `json:"user"`
	Rating    int             `json:"rating"`
	Comment   string          `json:"comment"`
	CreatedAt time.Time       `json:"createdAt"`
}

// CreateCategoryRequest represents a category creation request.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// CreateProductRequest represents a product creation request. A nil Stock
// defaults to zero.
type CreateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  uint            `json:"category_id"`
	Stock       *int            `json:"stock,omitempty"`
	Image       string          `json:"image,omitempty"`
}

// CreateReviewRequest represents a review by UserID.
type CreateReviewRequest struct {
	ProductID uint   `json:"product_id"`
	UserID    uint   `json:"user_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// IDRequest addresses a single entity.
type IDRequest struct {
	ID uint `json:"id"`
}

// ListRequest is the empty request of list services.
type ListRequest struct{}

// DeleteResponse acknowledges a delete.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// CategoriesResponse wraps a list of categories.
type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

// ProductsResponse wraps a list of products.
type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

func toCategoryRef(c *domain.Category) *CategoryRef {
	if c == nil {
		return nil
	}
	return &CategoryRef{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Image:       c.Image,
		CreatedAt:   c.CreatedAt,
	}
}

func toCategoryResponse(c *domain.Category) CategoryResponse {
	resp := CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Image:       c.Image,
		CreatedAt:   c.CreatedAt,
		Products:    make([]ProductResponse, 0, len(c.Products)),
	}
	ref := toCategoryRef(c)
	for i := range c.Products {
		p := toProductResponse(&c.Products[i])
		p.Category = ref
		resp.Products = append(resp.Products, p)
	}
	return resp
}

func toProductResponse(p *domain.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    toCategoryRef(p.Category),
		Image:       p.Image,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Reviews:     make([]ReviewResponse, 0, len(p.Reviews)),
	}
	for i := range p.Reviews {
		resp.Reviews = append(resp.Reviews, toReviewResponse(&p.Reviews[i]))
	}
	return resp
}

func toReviewResponse(r *domain.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
	if r.User != nil {
		resp.User = r.User.Public()
	}
	return resp
}
