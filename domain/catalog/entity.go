package catalog

import (
	"time"

	"github.com/example/storefront/domain/user"
	"github.com/shopspring/decimal"
)

// Category groups products. The ON DELETE rules of a pair of relations are
// read from the has-many side, so they are tagged there.
type Category struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"type:text"`
	Image       string `gorm:"size:255"`
	CreatedAt   time.Time
	Products    []Product `gorm:"constraint:OnDelete:SET NULL"`
}

// TableName returns the table name for the Category entity.
func (Category) TableName() string {
	return "categories"
}

// Product is a sellable catalog item. A product outlives its category:
// deleting the category clears CategoryID. Deleting a product deletes its
// reviews.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:200;not null"`
	Description string          `gorm:"type:text;not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CategoryID  *uint           `gorm:"index"`
	Category    *Category
	Image       string `gorm:"size:255"`
	Stock       int    `gorm:"not null"`
	IsActive    bool   `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Reviews     []Review `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for the Product entity.
func (Product) TableName() string {
	return "products"
}

// Review is a user's rating of a product. A user reviews a product at most once.
type Review struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_reviews_product_user"`
	Product   *Product
	UserID    uint       `gorm:"not null;uniqueIndex:idx_reviews_product_user"`
	User      *user.User `gorm:"constraint:OnDelete:CASCADE"`
	Rating    int        `gorm:"not null"`
	Comment   string     `gorm:"type:text"`
	CreatedAt time.Time
}

// TableName returns the table name for the Review entity.
func (Review) TableName() string {
	return "reviews"
}

const (
	// MinRating and MaxRating bound Review.Rating.
	MinRating = 1
	MaxRating = 5

	// PriceScale is the number of fractional digits a price may carry.
	PriceScale = 2
	// PricePrecision is the total number of digits a price may carry.
	PricePrecision = 10
)
