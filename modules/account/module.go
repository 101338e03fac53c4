package account

import (
	"context"
	"fmt"
	"log"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/database"
	"github.com/example/storefront/internal/rpc"
	"github.com/go-monolith/mono"
	"gorm.io/gorm"
)

// Request-reply service names registered by the account module.
const (
	ServiceCreateUser      = "create-user"
	ServiceUpdateUser      = "update-user"
	ServiceGetUser         = "get-user"
	ServiceListUsers       = "list-users"
	ServiceListProfiles    = "list-profiles"
	ServiceSaveProfile     = "save-profile"
	ServiceObtainToken     = "obtain-token"
	ServiceVerifyToken     = "verify-token"
	ServiceRefreshToken    = "refresh-token"
	ServiceResolveIdentity = "resolve-identity"
)

// AccountModule owns users, profiles and tokens.
type AccountModule struct {
	db         *gorm.DB
	jwtConfig  JWTConfig
	bcryptCost int
	service    *AccountService
}

// Compile-time interface checks.
var _ mono.Module = (*AccountModule)(nil)
var _ mono.ServiceProviderModule = (*AccountModule)(nil)
var _ mono.HealthCheckableModule = (*AccountModule)(nil)

// NewModule creates a new AccountModule over an open database.
func NewModule(db *gorm.DB, jwtConfig JWTConfig, bcryptCost int) *AccountModule {
	m := &AccountModule{
		db:         db,
		jwtConfig:  jwtConfig,
		bcryptCost: bcryptCost,
	}
	m.service = NewAccountService(
		NewUserRepository(db),
		NewPasswordHasher(bcryptCost),
		NewJWTManager(jwtConfig),
	)
	return m
}

// Name returns the module name.
func (m *AccountModule) Name() string {
	return "account"
}

// Service returns the in-process implementation of AccountPort.
func (m *AccountModule) Service() *AccountService {
	return m.service
}

// Start initializes the account module.
func (m *AccountModule) Start(_ context.Context) error {
	log.Printf("[account] Module started (issuer: %s, token ttl: %s)", m.jwtConfig.Issuer, m.jwtConfig.Expiration)
	return nil
}

// Stop shuts down the module. The database is owned by the application.
func (m *AccountModule) Stop(_ context.Context) error {
	log.Println("[account] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AccountModule) Health(ctx context.Context) mono.HealthStatus {
	if err := database.Ping(ctx, m.db); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"bcrypt_cost": m.service.hasher.cost,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AccountModule) RegisterServices(container mono.ServiceContainer) error {
	if err := rpc.Register(container, ServiceCreateUser, m.handleCreateUser); err != nil {
		return err
	}
	if err := rpc.Register(container, ServiceUpdateUser, m.handleUpdateUser); err != nil {
		return err
	}
	if err := rpc.Register(container, ServiceGetUser, m.handleGetUser); err != nil {
		return err
	}
	if err := rpc.Register(container, ServiceListUsers, m.handleListUsers); err != nil {
		return err
	}
	if err := rpc.Register(container, ServiceListProfiles, m.handleListProfiles); err != nil {
		return err
	}
	if err := rpc.Register(container, ServiceSaveProfile, m.handleSaveProfile); err != nil {
		return err
	}
	if err := rpc.Register(container, ServiceObtainToken, m.handleObtainToken); err != nil {
		return err
	}
	if err := rpc.Register(container, ServiceVerifyToken, m.handleVerifyToken); err != nil {
		return err
	}
	if err := rpc.Register(container, ServiceRefreshToken, m.handleRefreshToken); err != nil {
		return err
	}
	if err := rpc.Register(container, ServiceResolveIdentity, m.handleResolveIdentity); err != nil {
		return err
	}

	log.Printf("[account] Registered services: %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		ServiceCreateUser, ServiceUpdateUser, ServiceGetUser, ServiceListUsers, ServiceListProfiles,
		ServiceSaveProfile, ServiceObtainToken, ServiceVerifyToken, ServiceRefreshToken, ServiceResolveIdentity)
	return nil
}

func (m *AccountModule) handleCreateUser(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	user, err := m.service.CreateUser(ctx, req)
	if err != nil {
		return UserResponse{}, err
	}
	return UserResponse{User: *user}, nil
}

func (m *AccountModule) handleUpdateUser(ctx context.Context, req UpdateUserRequest) (UserResponse, error) {
	user, err := m.service.UpdateUser(ctx, req)
	if err != nil {
		return UserResponse{}, err
	}
	return UserResponse{User: *user}, nil
}

func (m *AccountModule) handleGetUser(ctx context.Context, req GetUserRequest) (UserResponse, error) {
	user, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return UserResponse{}, err
	}
	return UserResponse{User: *user}, nil
}

func (m *AccountModule) handleListUsers(ctx context.Context, _ ListRequest) (UsersResponse, error) {
	users, err := m.service.ListUsers(ctx)
	if err != nil {
		return UsersResponse{}, err
	}
	return UsersResponse{Users: users}, nil
}

func (m *AccountModule) handleListProfiles(ctx context.Context, _ ListRequest) (ProfilesResponse, error) {
	profiles, err := m.service.ListProfiles(ctx)
	if err != nil {
		return ProfilesResponse{}, err
	}
	return ProfilesResponse{Profiles: profiles}, nil
}

func (m *AccountModule) handleSaveProfile(ctx context.Context, req SaveProfileRequest) (ProfileResponse, error) {
	profile, err := m.service.SaveProfile(ctx, req)
	if err != nil {
		return ProfileResponse{}, err
	}
	return *profile, nil
}

func (m *AccountModule) handleObtainToken(ctx context.Context, req ObtainTokenRequest) (TokenResponse, error) {
	token, err := m.service.ObtainToken(ctx, req.Username, req.Password)
	if err != nil {
		return TokenResponse{}, err
	}
	return *token, nil
}

// handleVerifyToken answers with valid=false rather than an error for bad tokens.
func (m *AccountModule) handleVerifyToken(ctx context.Context, req TokenRequest) (VerifyTokenResponse, error) {
	resp, err := m.service.VerifyToken(ctx, req.Token)
	if err != nil {
		return VerifyTokenResponse{}, err
	}
	return *resp, nil
}

func (m *AccountModule) handleRefreshToken(ctx context.Context, req TokenRequest) (TokenResponse, error) {
	token, err := m.service.RefreshToken(ctx, req.Token)
	if err != nil {
		return TokenResponse{}, err
	}
	return *token, nil
}

func (m *AccountModule) handleResolveIdentity(ctx context.Context, req TokenRequest) (IdentityResponse, error) {
	identity, err := m.service.ResolveIdentity(ctx, req.Token)
	if err != nil {
		log.Printf("[account] Failed to resolve identity: %v", err)
		return IdentityResponse{}, err
	}
	return IdentityResponse{Identity: identity}, nil
}

// JWTConfigFrom maps the process configuration onto JWTConfig.
func JWTConfigFrom(cfg config.JWT) JWTConfig {
	return JWTConfig{
		SecretKey:         cfg.SecretKey,
		Issuer:            cfg.Issuer,
		Expiration:        cfg.Expiration,
		RefreshExpiration: cfg.RefreshExpiration,
		RefreshGrace:      cfg.RefreshGrace,
	}
}
