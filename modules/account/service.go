package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	domain "github.com/example/storefront/domain/user"
	"github.com/example/storefront/internal/apperr"
	"gorm.io/gorm"
)

const (
	maxUsernameLength = 150
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordLength = 72
	maxPhoneLength    = 20
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// AccountService handles identity and authentication business logic.
type AccountService struct {
	repo   *UserRepository
	hasher *PasswordHasher
	jwt    *JWTManager
	now    func() time.Time
}

var _ AccountPort = (*AccountService)(nil)

// NewAccountService creates a new AccountService.
func NewAccountService(repo *UserRepository, hasher *PasswordHasher, jwt *JWTManager) *AccountService {
	return &AccountService{
		repo:   repo,
		hasher: hasher,
		jwt:    jwt,
		now:    time.Now,
	}
}

// CreateUser registers a new active, non-staff account.
func (s *AccountService) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.PublicUser, error) {
	username := strings.TrimSpace(req.Username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
		DateJoined:   s.now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.classifyDuplicate(ctx, username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	public := user.Public()
	return &public, nil
}

// classifyDuplicate decides which unique index rejected an insert.
func (s *AccountService) classifyDuplicate(ctx context.Context, username string) error {
	exists, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check username existence: %w", err)
	}
	if exists {
		return apperr.New(apperr.DuplicateUsername, "A user with that username already exists.")
	}
	return apperr.New(apperr.DuplicateEmail, "A user with that email already exists.")
}

// UpdateUser changes the supplied contact fields. The caller is expected to
// have been authorized already.
func (s *AccountService) UpdateUser(ctx context.Context, req UpdateUserRequest) (*domain.PublicUser, error) {
	if req.Phone != nil && len(*req.Phone) > maxPhoneLength {
		return nil, apperr.Newf(apperr.Validation, "phone must be at most %d characters", maxPhoneLength)
	}

	user, err := s.repo.Update(ctx, req.UserID, UserFields{Phone: req.Phone, Bio: req.Bio})
	if err != nil {
		return nil, s.userError(err, req.UserID)
	}

	public := user.Public()
	return &public, nil
}

// GetUser retrieves a user by ID.
func (s *AccountService) GetUser(ctx context.Context, userID uint) (*domain.PublicUser, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, s.userError(err, userID)
	}
	public := user.Public()
	return &public, nil
}

// ListUsers returns every user.
func (s *AccountService) ListUsers(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return toPublicUsers(users), nil
}

// ListProfiles returns every profile with its user.
func (s *AccountService) ListProfiles(ctx context.Context) ([]ProfileResponse, error) {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	out := make([]ProfileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, toProfileResponse(&profiles[i]))
	}
	return out, nil
}

// SaveProfile creates or updates the profile of req.UserID.
func (s *AccountService) SaveProfile(ctx context.Context, req SaveProfileRequest) (*ProfileResponse, error) {
	profile, err := s.repo.SaveProfile(ctx, req.UserID, ProfileFields{
		Address:    req.Address,
		City:       req.City,
		Country:    req.Country,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		return nil, s.userError(err, req.UserID)
	}
	resp := toProfileResponse(profile)
	return &resp, nil
}

// ObtainToken authenticates a user and issues a token for a new session.
func (s *AccountService) ObtainToken(ctx context.Context, username, password string) (*TokenResponse, error) {
	invalid := apperr.New(apperr.InvalidCredentials, "Please enter valid credentials")

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) || !user.IsActive {
		return nil, invalid
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	return s.issue(user.ID, user.Username, 0)
}

// VerifyToken reports whether token is currently valid. It never fails on a
// bad token.
func (s *AccountService) VerifyToken(_ context.Context, token string) (*VerifyTokenResponse, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return &VerifyTokenResponse{Valid: false}, nil
	}
	payload := payloadOf(claims)
	return &VerifyTokenResponse{Valid: true, Payload: &payload}, nil
}

// RefreshToken issues a new token within the same session.
func (s *AccountService) RefreshToken(ctx context.Context, token string) (*TokenResponse, error) {
	claims, err := s.jwt.ValidateForRefresh(token)
	if err != nil {
		switch {
		case errors.Is(err, ErrExpiredToken):
			return nil, apperr.New(apperr.ExpiredToken, "Signature has expired")
		case errors.Is(err, ErrRefreshExpired):
			return nil, apperr.New(apperr.ExpiredToken, "Refresh has expired")
		default:
			return nil, apperr.New(apperr.InvalidToken, "Error decoding signature")
		}
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.New(apperr.InvalidToken, "Invalid payload")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, apperr.New(apperr.InvalidToken, "User is disabled")
	}

	return s.issue(user.ID, user.Username, claims.OrigIat)
}

// ResolveIdentity maps a bearer token to the calling user. Invalid or expired
// tokens, and tokens of deleted or inactive users, resolve to the anonymous
// identity. Only store failures are returned as errors.
func (s *AccountService) ResolveIdentity(ctx context.Context, token string) (domain.Identity, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return domain.Anonymous(), nil
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return domain.Anonymous(), nil
		}
		return domain.Anonymous(), fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return domain.Anonymous(), nil
	}

	return domain.Identity{
		UserID:   user.ID,
		Username: user.Username,
		IsStaff:  user.IsStaff,
	}, nil
}

func (s *AccountService) issue(userID uint, username string, origIat int64) (*TokenResponse, error) {
	token, claims, err := s.jwt.Generate(userID, username, origIat)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &TokenResponse{
		Token:            token,
		Payload:          payloadOf(claims),
		RefreshExpiresIn: claims.RefreshDeadline(s.jwt.RefreshExpiration()),
	}, nil
}

func (s *AccountService) userError(err error, userID uint) error {
	if errors.Is(err, ErrUserNotFound) {
		return apperr.Newf(apperr.NotFound, "user %d not found", userID)
	}
	return fmt.Errorf("user %d: %w", userID, err)
}

func payloadOf(claims *JWTClaims) domain.TokenPayload {
	return domain.TokenPayload{
		Username: claims.Username,
		Exp:      claims.ExpiresAt.Unix(),
		OrigIat:  claims.OrigIat,
	}
}

func validateUsername(username string) error {
	switch {
	case username == "":
		return apperr.New(apperr.Validation, "username is required")
	case len(username) > maxUsernameLength:
		return apperr.Newf(apperr.Validation, "username must be at most %d characters", maxUsernameLength)
	case !usernamePattern.MatchString(username):
		return apperr.New(apperr.Validation, "username may contain only letters, numbers, and @/./+/-/_ characters")
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperr.New(apperr.Validation, "invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperr.Newf(apperr.Validation, "password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return apperr.Newf(apperr.Validation, "password must be at most %d characters", maxPasswordLength)
	}
	return nil
}
