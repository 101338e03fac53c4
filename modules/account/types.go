package account

import (
	"time"

	domain "github.com/example/storefront/domain/user"
)

// CreateUserRequest represents a sign-up request.
type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// UpdateUserRequest changes the contact fields of a user. Nil fields are
// left untouched.
type UpdateUserRequest struct {
	UserID uint    `json:"user_id"`
	Phone  *string `json:"phone,omitempty"`
	Bio    *string `json:"bio,omitempty"`
}

// SaveProfileRequest creates or updates the profile of a user.
type SaveProfileRequest struct {
	UserID     uint    `json:"user_id"`
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	Country    *string `json:"country,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
}

// GetUserRequest represents a get user request.
type GetUserRequest struct {
	UserID uint `json:"user_id"`
}

// ListRequest is the empty request of list services.
type ListRequest struct{}

// UserResponse wraps a single public user.
type UserResponse struct {
	User domain.PublicUser `json:"user"`
}

// UsersResponse wraps a list of public users.
type UsersResponse struct {
	Users []domain.PublicUser `json:"users"`
}

// ProfileResponse is the public view of a profile.
type ProfileResponse struct {
	ID         uint              `json:"id"`
	User       domain.PublicUser `json:"user"`
	Address    string            `json:"address"`
	City       string            `json:"city"`
	Country    string            `json:"country"`
	PostalCode string            `json:"postalCode"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// ProfilesResponse wraps a list of profiles.
type ProfilesResponse struct {
	Profiles []ProfileResponse `json:"profiles"`
}

// ObtainTokenRequest represents a login request.
type ObtainTokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenRequest carries a token to verify, refresh or resolve.
type TokenRequest struct {
	Token string `json:"token"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	Token   string              `json:"token"`
	Payload domain.TokenPayload `json:"payload"`
	// RefreshExpiresIn is the unix time after which the session cannot be refreshed.
	RefreshExpiresIn int64 `json:"refreshExpiresIn"`
}

// VerifyTokenResponse reports whether a token is currently valid.
type VerifyTokenResponse struct {
	Valid   bool                 `json:"valid"`
	Payload *domain.TokenPayload `json:"payload"`
}

// IdentityResponse carries the caller resolved from a token.
type IdentityResponse struct {
	Identity domain.Identity `json:"identity"`
}

func toProfileResponse(p *domain.Profile) ProfileResponse {
	resp := ProfileResponse{
		ID:         p.ID,
		Address:    p.Address,
		City:       p.City,
		Country:    p.Country,
		PostalCode: p.PostalCode,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.User != nil {
		resp.User = p.User.Public()
	}
	return resp
}

func toPublicUsers(users []domain.User) []domain.PublicUser {
	out := make([]domain.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out
}
