package account

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when the token is malformed or badly signed.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
	// ErrRefreshExpired is returned when the session a token belongs to can
	// no longer be refreshed.
	ErrRefreshExpired = errors.New("refresh has expired")
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	SecretKey string
	Issuer    string
	// Expiration is the lifetime of a single token.
	Expiration time.Duration
	// RefreshExpiration bounds how long after the original login a token
	// can still be refreshed.
	RefreshExpiration time.Duration
	// RefreshGrace is how long past exp a token is still accepted for refresh.
	RefreshGrace time.Duration
}

// DefaultJWTConfig returns a default JWT configuration.
// In production, the secret key should be loaded from environment variables.
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey:         "your-secret-key-change-in-production",
		Issuer:            "storefront",
		Expiration:        5 * time.Minute,
		RefreshExpiration: 7 * 24 * time.Hour,
		RefreshGrace:      time.Minute,
	}
}

// JWTClaims represents the custom claims for JWT tokens.
type JWTClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	OrigIat  int64  `json:"orig_iat"`
	jwt.RegisteredClaims
}

// RefreshDeadline is the unix time after which the session cannot be refreshed.
func (c *JWTClaims) RefreshDeadline(refreshExpiration time.Duration) int64 {
	return c.OrigIat + int64(refreshExpiration.Seconds())
}

// JWTManager handles JWT token operations.
type JWTManager struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTManager creates a new JWTManager with the given configuration.
func NewJWTManager(config JWTConfig) *JWTManager {
	return &JWTManager{
		config: config,
		now:    time.Now,
	}
}

// Generate issues a token for the user. A zero origIat starts a new session.
func (m *JWTManager) Generate(userID uint, username string, origIat int64) (string, *JWTClaims, error) {
	now := m.now()
	if origIat == 0 {
		origIat = now.Unix()
	}

	claims := &JWTClaims{
		UserID:   userID,
		Username: username,
		OrigIat:  origIat,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.config.Issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.Expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.config.SecretKey))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Validate checks signature and expiry and returns the claims if valid.
func (m *JWTManager) Validate(tokenString string) (*JWTClaims, error) {
	return m.parse(tokenString, 0)
}

// ValidateForRefresh accepts a token up to RefreshGrace past its expiry, as
// long as its session is still within RefreshExpiration.
func (m *JWTManager) ValidateForRefresh(tokenString string) (*JWTClaims, error) {
	claims, err := m.parse(tokenString, m.config.RefreshGrace)
	if err != nil {
		return nil, err
	}
	if m.now().Unix() > claims.RefreshDeadline(m.config.RefreshExpiration) {
		return nil, ErrRefreshExpired
	}
	return claims, nil
}

// RefreshExpiration returns the configured session length.
func (m *JWTManager) RefreshExpiration() time.Duration {
	return m.config.RefreshExpiration
}

func (m *JWTManager) parse(tokenString string, leeway time.Duration) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.config.SecretKey), nil
	},
		jwt.WithLeeway(leeway),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
