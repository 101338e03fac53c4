package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	domain "github.com/example/storefront/domain/user"
	"github.com/example/storefront/modules/account"
	"github.com/gofiber/fiber/v2"
)

// mockAccountPort implements account.AccountPort for testing. Methods other
// than ResolveIdentity are not expected to be called.
type mockAccountPort struct {
	account.AccountPort
	resolveIdentityFunc func(ctx context.Context, token string) (domain.Identity, error)
	calls               int
}

func (m *mockAccountPort) ResolveIdentity(ctx context.Context, token string) (domain.Identity, error) {
	m.calls++
	if m.resolveIdentityFunc != nil {
		return m.resolveIdentityFunc(ctx, token)
	}
	return domain.Identity{}, errors.New("not implemented")
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "", want: ""},
		{header: "Bearer abc", want: "abc"},
		{header: "bearer abc", want: "abc"},
		{header: "JWT abc", want: "abc"},
		{header: "Basic abc", want: ""},
		{header: "Bearer", want: ""},
		{header: "abc", want: ""},
	}

	for _, tt := range tests {
		if got := bearerToken(tt.header); got != tt.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestIdentityMiddleware(t *testing.T) {
	alice := domain.Identity{UserID: 7, Username: "alice"}

	tests := []struct {
		name           string
		authHeader     string
		mockAccounts   *mockAccountPort
		expectedStatus int
		expectedUser   string
		expectedCalls  int
	}{
		{
			name:           "no authorization header is anonymous",
			authHeader:     "",
			mockAccounts:   &mockAccountPort{},
			expectedStatus: http.StatusOK,
			expectedUser:   "",
			expectedCalls:  0,
		},
		{
			name:           "unsupported scheme is anonymous",
			authHeader:     "Basic dXNlcjpwYXNz",
			mockAccounts:   &mockAccountPort{},
			expectedStatus: http.StatusOK,
			expectedUser:   "",
			expectedCalls:  0,
		},
		{
			name:       "invalid token is anonymous",
			authHeader: "Bearer invalid-token",
			mockAccounts: &mockAccountPort{
				resolveIdentityFunc: func(ctx context.Context, token string) (domain.Identity, error) {
					return domain.Anonymous(), nil
				},
			},
			expectedStatus: http.StatusOK,
			expectedUser:   "",
			expectedCalls:  1,
		},
		{
			name:       "valid token",
			authHeader: "JWT good-token",
			mockAccounts: &mockAccountPort{
				resolveIdentityFunc: func(ctx context.Context, token string) (domain.Identity, error) {
					if token != "good-token" {
						return domain.Anonymous(), nil
					}
					return alice, nil
				},
			},
			expectedStatus: http.StatusOK,
			expectedUser:   "alice",
			expectedCalls:  1,
		},
		{
			name:       "lookup failure",
			authHeader: "Bearer good-token",
			mockAccounts: &mockAccountPort{
				resolveIdentityFunc: func(ctx context.Context, token string) (domain.Identity, error) {
					return domain.Identity{}, errors.New("database is locked")
				},
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: customErrorHandler})
			app.Use(IdentityMiddleware(tt.mockAccounts))
			app.Get("/whoami", func(c *fiber.Ctx) error {
				local := c.Locals(IdentityContextKey).(domain.Identity)
				fromCtx := IdentityFrom(c.UserContext())
				if local != fromCtx {
					return fiber.NewError(fiber.StatusTeapot, "identity mismatch")
				}
				return c.SendString(local.Username)
			})

			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to test request: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, resp.StatusCode)
			}
			if tt.mockAccounts.calls != tt.expectedCalls {
				t.Errorf("Expected %d ResolveIdentity calls, got %d", tt.expectedCalls, tt.mockAccounts.calls)
			}

			if tt.expectedStatus == http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != tt.expectedUser {
					t.Errorf("Expected user %q, got %q", tt.expectedUser, string(body))
				}
			}
		})
	}
}

func TestIdentityFrom_DefaultsToAnonymous(t *testing.T) {
	if !IdentityFrom(context.Background()).IsAnonymous() {
		t.Error("Expected anonymous identity for empty context")
	}

	ctx := WithIdentity(context.Background(), domain.Identity{UserID: 3, Username: "bob", IsStaff: true})
	got := IdentityFrom(ctx)
	if got.UserID != 3 || !got.IsStaff {
		t.Errorf("Unexpected identity: %+v", got)
	}
}
