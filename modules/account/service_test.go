package account

import (
	"context"
	"testing"
	"time"

	domain "github.com/example/storefront/domain/user"
	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupTestService(t *testing.T) (*AccountService, *gorm.DB) {
	t.Helper()

	db, err := database.Open(config.Database{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	svc := NewAccountService(NewUserRepository(db), NewPasswordHasher(bcrypt.MinCost), NewJWTManager(testJWTConfig()))
	return svc, db
}

func createTestUser(t *testing.T, svc *AccountService, username string) *domain.PublicUser {
	t.Helper()

	user, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return user
}

func strPtr(s string) *string { return &s }

func TestCreateUser(t *testing.T) {
	svc, db := setupTestService(t)

	user, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "password123",
		FirstName: "Alice",
	})
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Alice", user.FirstName)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.Nil(t, user.LastLogin)
	assert.False(t, user.DateJoined.IsZero())

	var stored domain.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.False(t, stored.IsSuperuser)
}

func TestCreateUser_Validation(t *testing.T) {
	svc, _ := setupTestService(t)

	tests := []struct {
		name string
		req  CreateUserRequest
	}{
		{
			name: "empty username",
			req:  CreateUserRequest{Username: "  ", Email: "a@example.com", Password: "password123"},
		},
		{
			name: "username with spaces",
			req:  CreateUserRequest{Username: "a b", Email: "a@example.com", Password: "password123"},
		},
		{
			name: "invalid email",
			req:  CreateUserRequest{Username: "a", Email: "not-an-email", Password: "password123"},
		},
		{
			name: "email with display name",
			req:  CreateUserRequest{Username: "a", Email: "A <a@example.com>", Password: "password123"},
		},
		{
			name: "short password",
			req:  CreateUserRequest{Username: "a", Email: "a@example.com", Password: "short"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(context.Background(), tt.req)
			assert.True(t, apperr.Is(err, apperr.Validation), "got %v", err)
		})
	}
}

func TestCreateUser_Duplicates(t *testing.T) {
	svc, db := setupTestService(t)
	createTestUser(t, svc, "alice")

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "alice",
		Email:    "new@example.com",
		Password: "password123",
	})
	assert.True(t, apperr.Is(err, apperr.DuplicateUsername), "got %v", err)

	_, err = svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "password123",
	})
	assert.True(t, apperr.Is(err, apperr.DuplicateEmail), "got %v", err)

	var count int64
	db.Model(&domain.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateUser_PartialUpdate(t *testing.T) {
	svc, _ := setupTestService(t)
	user := createTestUser(t, svc, "alice")
	ctx := context.Background()

	updated, err := svc.UpdateUser(ctx, UpdateUserRequest{UserID: user.ID, Phone: strPtr("555-0100"), Bio: strPtr("hi")})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, "hi", updated.Bio)

	// Only bio supplied: phone stays.
	updated, err = svc.UpdateUser(ctx, UpdateUserRequest{UserID: user.ID, Bio: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, "", updated.Bio)

	// Nothing supplied: no-op.
	updated, err = svc.UpdateUser(ctx, UpdateUserRequest{UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", updated.Phone)
}

func TestUpdateUser_Errors(t *testing.T) {
	svc, _ := setupTestService(t)
	user := createTestUser(t, svc, "alice")

	_, err := svc.UpdateUser(context.Background(), UpdateUserRequest{UserID: 999, Bio: strPtr("x")})
	assert.True(t, apperr.Is(err, apperr.NotFound), "got %v", err)

	_, err = svc.UpdateUser(context.Background(), UpdateUserRequest{UserID: user.ID, Phone: strPtr("012345678901234567890")})
	assert.True(t, apperr.Is(err, apperr.Validation), "got %v", err)
}

func TestGetUserAndList(t *testing.T) {
	svc, _ := setupTestService(t)
	alice := createTestUser(t, svc, "alice")
	createTestUser(t, svc, "bob")
	ctx := context.Background()

	got, err := svc.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = svc.GetUser(ctx, 999)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}

func TestSaveProfile(t *testing.T) {
	svc, _ := setupTestService(t)
	user := createTestUser(t, svc, "alice")
	ctx := context.Background()

	profile, err := svc.SaveProfile(ctx, SaveProfileRequest{UserID: user.ID, City: strPtr("Lisbon"), Country: strPtr("PT")})
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", profile.City)
	assert.Equal(t, "alice", profile.User.Username)

	profile, err = svc.SaveProfile(ctx, SaveProfileRequest{UserID: user.ID, PostalCode: strPtr("1000-001")})
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", profile.City)
	assert.Equal(t, "1000-001", profile.PostalCode)

	profiles, err := svc.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "PT", profiles[0].Country)
	assert.Equal(t, user.ID, profiles[0].User.ID)

	_, err = svc.SaveProfile(ctx, SaveProfileRequest{UserID: 999, City: strPtr("x")})
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestObtainToken(t *testing.T) {
	svc, db := setupTestService(t)
	user := createTestUser(t, svc, "alice")
	ctx := context.Background()

	resp, err := svc.ObtainToken(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.Payload.Username)
	assert.Equal(t, resp.Payload.OrigIat+int64(time.Hour.Seconds()), resp.RefreshExpiresIn)

	var stored domain.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.NotNil(t, stored.LastLogin)

	_, err = svc.ObtainToken(ctx, "alice", "wrong-password")
	assert.True(t, apperr.Is(err, apperr.InvalidCredentials))

	_, err = svc.ObtainToken(ctx, "nobody", "password123")
	assert.True(t, apperr.Is(err, apperr.InvalidCredentials))

	require.NoError(t, db.Model(&domain.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = svc.ObtainToken(ctx, "alice", "password123")
	assert.True(t, apperr.Is(err, apperr.InvalidCredentials))
}

func TestVerifyToken(t *testing.T) {
	svc, _ := setupTestService(t)
	createTestUser(t, svc, "alice")
	ctx := context.Background()

	tok, err := svc.ObtainToken(ctx, "alice", "password123")
	require.NoError(t, err)

	resp, err := svc.VerifyToken(ctx, tok.Token)
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	require.NotNil(t, resp.Payload)
	assert.Equal(t, "alice", resp.Payload.Username)

	resp, err = svc.VerifyToken(ctx, "garbage")
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Nil(t, resp.Payload)
}

func TestRefreshToken(t *testing.T) {
	svc, db := setupTestService(t)
	user := createTestUser(t, svc, "alice")
	ctx := context.Background()

	now := time.Unix(1_700_000_000, 0)
	svc.jwt.now = func() time.Time { return now }

	tok, err := svc.ObtainToken(ctx, "alice", "password123")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	refreshed, err := svc.RefreshToken(ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, tok.Payload.OrigIat, refreshed.Payload.OrigIat)
	assert.Greater(t, refreshed.Payload.Exp, tok.Payload.Exp)
	assert.Equal(t, tok.RefreshExpiresIn, refreshed.RefreshExpiresIn)

	_, err = svc.RefreshToken(ctx, "garbage")
	assert.True(t, apperr.Is(err, apperr.InvalidToken))

	now = now.Add(time.Hour)
	_, err = svc.RefreshToken(ctx, refreshed.Token)
	assert.True(t, apperr.Is(err, apperr.ExpiredToken))

	// Inactive users cannot refresh.
	now = time.Unix(1_700_000_000, 0)
	require.NoError(t, db.Model(&domain.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = svc.RefreshToken(ctx, tok.Token)
	assert.True(t, apperr.Is(err, apperr.InvalidToken))
}

func TestResolveIdentity(t *testing.T) {
	svc, db := setupTestService(t)
	user := createTestUser(t, svc, "alice")
	ctx := context.Background()

	tok, err := svc.ObtainToken(ctx, "alice", "password123")
	require.NoError(t, err)

	identity, err := svc.ResolveIdentity(ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.False(t, identity.IsStaff)

	// Staff flag is read per request, not from the token.
	require.NoError(t, db.Model(&domain.User{}).Where("id = ?", user.ID).Update("is_staff", true).Error)
	identity, err = svc.ResolveIdentity(ctx, tok.Token)
	require.NoError(t, err)
	assert.True(t, identity.IsStaff)

	identity, err = svc.ResolveIdentity(ctx, "garbage")
	require.NoError(t, err)
	assert.True(t, identity.IsAnonymous())

	require.NoError(t, db.Delete(&domain.User{}, user.ID).Error)
	identity, err = svc.ResolveIdentity(ctx, tok.Token)
	require.NoError(t, err)
	assert.True(t, identity.IsAnonymous())
}
