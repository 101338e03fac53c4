package api

import (
	"context"

	"github.com/example/storefront/domain/user"
	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/modules/account"
	"github.com/example/storefront/modules/catalog"
)

const (
	msgUnauthenticated = "Authentication credentials were not provided"
	msgForbidden       = "You do not have permission to perform this action"
)

// Resolver implements every query and mutation. The caller's identity is
// passed explicitly; authorization happens here and nowhere else.
type Resolver struct {
	accounts account.AccountPort
	catalog  catalog.CatalogPort
}

// NewResolver creates a Resolver over the account and catalog ports.
func NewResolver(accounts account.AccountPort, catalog catalog.CatalogPort) *Resolver {
	return &Resolver{
		accounts: accounts,
		catalog:  catalog,
	}
}

func requireAuthenticated(caller user.Identity) error {
	if caller.IsAnonymous() {
		return apperr.New(apperr.Unauthenticated, msgUnauthenticated)
	}
	return nil
}

func requireStaff(caller user.Identity) error {
	if err := requireAuthenticated(caller); err != nil {
		return err
	}
	if !caller.IsStaff {
		return apperr.New(apperr.Forbidden, msgForbidden)
	}
	return nil
}

// Users lists every user.
func (r *Resolver) Users(ctx context.Context, _ user.Identity) ([]user.PublicUser, error) {
	return r.accounts.ListUsers(ctx)
}

// UserByID fetches one user.
func (r *Resolver) UserByID(ctx context.Context, _ user.Identity, id uint) (*user.PublicUser, error) {
	return r.accounts.GetUser(ctx, id)
}

// Me returns the caller's own user.
func (r *Resolver) Me(ctx context.Context, caller user.Identity) (*user.PublicUser, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	return r.accounts.GetUser(ctx, caller.UserID)
}

// Profiles lists every profile.
func (r *Resolver) Profiles(ctx context.Context, _ user.Identity) ([]account.ProfileResponse, error) {
	return r.accounts.ListProfiles(ctx)
}

// Categories lists every category.
func (r *Resolver) Categories(ctx context.Context, _ user.Identity) ([]catalog.CategoryResponse, error) {
	return r.catalog.ListCategories(ctx)
}

// Products lists active products.
func (r *Resolver) Products(ctx context.Context, _ user.Identity) ([]catalog.ProductResponse, error) {
	return r.catalog.ListActiveProducts(ctx)
}

// Product fetches an active product.
func (r *Resolver) Product(ctx context.Context, _ user.Identity, id uint) (*catalog.ProductResponse, error) {
	return r.catalog.GetActiveProduct(ctx, id)
}

// CreateUser registers a new account. Anyone may sign up.
func (r *Resolver) CreateUser(ctx context.Context, _ user.Identity, in CreateUserInput) (*UserPayload, error) {
	u, err := r.accounts.CreateUser(ctx, account.CreateUserRequest{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
	if err != nil {
		return nil, err
	}
	return &UserPayload{User: u}, nil
}

// UpdateUser changes phone and bio of a user. Only the owner or staff may
// do so; authorization is decided before the target is looked up.
func (r *Resolver) UpdateUser(ctx context.Context, caller user.Identity, in UpdateUserInput) (*UserPayload, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	if !caller.CanModify(in.UserID) {
		return nil, apperr.New(apperr.Forbidden, "Cannot update other users")
	}

	u, err := r.accounts.UpdateUser(ctx, account.UpdateUserRequest{
		UserID: in.UserID,
		Phone:  in.Phone,
		Bio:    in.Bio,
	})
	if err != nil {
		return nil, err
	}
	return &UserPayload{User: u}, nil
}

// UpdateProfile creates or updates the caller's own profile.
func (r *Resolver) UpdateProfile(ctx context.Context, caller user.Identity, in UpdateProfileInput) (*ProfilePayload, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}

	p, err := r.accounts.SaveProfile(ctx, account.SaveProfileRequest{
		UserID:     caller.UserID,
		Address:    in.Address,
		City:       in.City,
		Country:    in.Country,
		PostalCode: in.PostalCode,
	})
	if err != nil {
		return nil, err
	}
	return &ProfilePayload{Profile: p}, nil
}

// CreateCategory creates a category. Staff only.
func (r *Resolver) CreateCategory(ctx context.Context, caller user.Identity, in catalog.CreateCategoryRequest) (*CategoryPayload, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}

	c, err := r.catalog.CreateCategory(ctx, in)
	if err != nil {
		return nil, err
	}
	return &CategoryPayload{Category: c}, nil
}

// DeleteCategory removes a category. Staff only.
func (r *Resolver) DeleteCategory(ctx context.Context, caller user.Identity, id uint) (*DeleteCategoryPayload, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}

	if err := r.catalog.DeleteCategory(ctx, id); err != nil {
		return nil, err
	}
	return &DeleteCategoryPayload{OK: true}, nil
}

// CreateProduct creates a product. Staff only.
func (r *Resolver) CreateProduct(ctx context.Context, caller user.Identity, in catalog.CreateProductRequest) (*ProductPayload, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}

	p, err := r.catalog.CreateProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	return &ProductPayload{Product: p}, nil
}

// CreateReview records the caller's review of a product.
func (r *Resolver) CreateReview(ctx context.Context, caller user.Identity, productID uint, rating int, comment string) (*ReviewPayload, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}

	rv, err := r.catalog.CreateReview(ctx, catalog.CreateReviewRequest{
		ProductID: productID,
		UserID:    caller.UserID,
		Rating:    rating,
		Comment:   comment,
	})
	if err != nil {
		return nil, err
	}
	return &ReviewPayload{Review: rv}, nil
}

// TokenAuth logs a user in.
func (r *Resolver) TokenAuth(ctx context.Context, username, password string) (*account.TokenResponse, error) {
	return r.accounts.ObtainToken(ctx, username, password)
}

// VerifyToken reports whether a token is valid.
func (r *Resolver) VerifyToken(ctx context.Context, token string) (*account.VerifyTokenResponse, error) {
	return r.accounts.VerifyToken(ctx, token)
}

// RefreshToken extends a session.
func (r *Resolver) RefreshToken(ctx context.Context, token string) (*account.TokenResponse, error) {
	return r.accounts.RefreshToken(ctx, token)
}
