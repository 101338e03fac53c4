package api

import (
	"github.com/example/storefront/domain/user"
	"github.com/example/storefront/modules/account"
	"github.com/example/storefront/modules/catalog"
)

// GraphQLRequest is the body of POST /graphql.
type GraphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// ErrorResponse represents a transport-level error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CreateUserInput holds the arguments of createUser.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateUserInput holds the arguments of updateUser. Nil fields were not
// supplied and are left untouched.
type UpdateUserInput struct {
	UserID uint
	Phone  *string
	Bio    *string
}

// UpdateProfileInput holds the arguments of updateProfile.
type UpdateProfileInput struct {
	Address    *string
	City       *string
	Country    *string
	PostalCode *string
}

// UserPayload is the result of createUser and updateUser.
type UserPayload struct {
	User *user.PublicUser `json:"user"`
}

// ProfilePayload is the result of updateProfile.
type ProfilePayload struct {
	Profile *account.ProfileResponse `json:"profile"`
}

// CategoryPayload is the result of createCategory.
type CategoryPayload struct {
	Category *catalog.CategoryResponse `json:"category"`
}

// DeleteCategoryPayload is the result of deleteCategory.
type DeleteCategoryPayload struct {
	OK bool `json:"ok"`
}

// ProductPayload is the result of createProduct.
type ProductPayload struct {
	Product *catalog.ProductResponse `json:"product"`
}

// ReviewPayload is the result of createReview.
type ReviewPayload struct {
	Review *catalog.ReviewResponse `json:"review"`
}
