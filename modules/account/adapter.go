package account

import (
	"context"

	domain "github.com/example/storefront/domain/user"
	"github.com/example/storefront/internal/rpc"
	"github.com/go-monolith/mono"
)

// AccountPort defines the identity and authentication operations other
// modules use. AccountService implements it in-process and AccountAdapter
// implements it over the service container.
type AccountPort interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*domain.PublicUser, error)
	UpdateUser(ctx context.Context, req UpdateUserRequest) (*domain.PublicUser, error)
	GetUser(ctx context.Context, userID uint) (*domain.PublicUser, error)
	ListUsers(ctx context.Context) ([]domain.PublicUser, error)
	ListProfiles(ctx context.Context) ([]ProfileResponse, error)
	SaveProfile(ctx context.Context, req SaveProfileRequest) (*ProfileResponse, error)
	ObtainToken(ctx context.Context, username, password string) (*TokenResponse, error)
	VerifyToken(ctx context.Context, token string) (*VerifyTokenResponse, error)
	RefreshToken(ctx context.Context, token string) (*TokenResponse, error)
	ResolveIdentity(ctx context.Context, token string) (domain.Identity, error)
}

// AccountAdapter implements AccountPort using the service container.
type AccountAdapter struct {
	container mono.ServiceContainer
}

var _ AccountPort = (*AccountAdapter)(nil)

// NewAccountAdapter creates a new AccountAdapter.
func NewAccountAdapter(container mono.ServiceContainer) *AccountAdapter {
	return &AccountAdapter{
		container: container,
	}
}

// CreateUser registers a new account.
func (a *AccountAdapter) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.PublicUser, error) {
	resp, err := rpc.Call[CreateUserRequest, UserResponse](ctx, a.container, ServiceCreateUser, req)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UpdateUser changes the supplied contact fields of a user.
func (a *AccountAdapter) UpdateUser(ctx context.Context, req UpdateUserRequest) (*domain.PublicUser, error) {
	resp, err := rpc.Call[UpdateUserRequest, UserResponse](ctx, a.container, ServiceUpdateUser, req)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// GetUser retrieves a user by ID.
func (a *AccountAdapter) GetUser(ctx context.Context, userID uint) (*domain.PublicUser, error) {
	resp, err := rpc.Call[GetUserRequest, UserResponse](ctx, a.container, ServiceGetUser, GetUserRequest{UserID: userID})
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ListUsers returns every user.
func (a *AccountAdapter) ListUsers(ctx context.Context) ([]domain.PublicUser, error) {
	resp, err := rpc.Call[ListRequest, UsersResponse](ctx, a.container, ServiceListUsers, ListRequest{})
	if err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// ListProfiles returns every profile.
func (a *AccountAdapter) ListProfiles(ctx context.Context) ([]ProfileResponse, error) {
	resp, err := rpc.Call[ListRequest, ProfilesResponse](ctx, a.container, ServiceListProfiles, ListRequest{})
	if err != nil {
		return nil, err
	}
	return resp.Profiles, nil
}

// SaveProfile creates or updates a user's profile.
func (a *AccountAdapter) SaveProfile(ctx context.Context, req SaveProfileRequest) (*ProfileResponse, error) {
	return rpc.Call[SaveProfileRequest, ProfileResponse](ctx, a.container, ServiceSaveProfile, req)
}

// ObtainToken logs a user in.
func (a *AccountAdapter) ObtainToken(ctx context.Context, username, password string) (*TokenResponse, error) {
	return rpc.Call[ObtainTokenRequest, TokenResponse](ctx, a.container, ServiceObtainToken, ObtainTokenRequest{
		Username: username,
		Password: password,
	})
}

// VerifyToken reports whether a token is valid.
func (a *AccountAdapter) VerifyToken(ctx context.Context, token string) (*VerifyTokenResponse, error) {
	return rpc.Call[TokenRequest, VerifyTokenResponse](ctx, a.container, ServiceVerifyToken, TokenRequest{Token: token})
}

// RefreshToken issues a new token within the same session.
func (a *AccountAdapter) RefreshToken(ctx context.Context, token string) (*TokenResponse, error) {
	return rpc.Call[TokenRequest, TokenResponse](ctx, a.container, ServiceRefreshToken, TokenRequest{Token: token})
}

// ResolveIdentity maps a bearer token to the calling user.
func (a *AccountAdapter) ResolveIdentity(ctx context.Context, token string) (domain.Identity, error) {
	resp, err := rpc.Call[TokenRequest, IdentityResponse](ctx, a.container, ServiceResolveIdentity, TokenRequest{Token: token})
	if err != nil {
		return domain.Anonymous(), err
	}
	return resp.Identity, nil
}
