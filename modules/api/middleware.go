package api

import (
	"context"
	"log"
	"strings"

	domain "github.com/example/storefront/domain/user"
	"github.com/example/storefront/modules/account"
	"github.com/gofiber/fiber/v2"
)

const (
	// IdentityContextKey is the key used to store the caller identity in the Fiber context.
	IdentityContextKey = "identity"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the caller identity.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the caller identity stored in ctx, or an anonymous one.
func IdentityFrom(ctx context.Context) domain.Identity {
	if ctx == nil {
		return domain.Anonymous()
	}
	if identity, ok := ctx.Value(identityKey{}).(domain.Identity); ok {
		return identity
	}
	return domain.Anonymous()
}

// bearerToken extracts the token from an Authorization header. Both the
// "Bearer" and "JWT" schemes are accepted.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	if !strings.EqualFold(scheme, "Bearer") && !strings.EqualFold(scheme, "JWT") {
		return ""
	}
	return strings.TrimSpace(token)
}

// IdentityMiddleware resolves the caller of every request. Requests without
// a usable token proceed anonymously; each resolver decides what anonymous
// callers may do.
func IdentityMiddleware(accounts account.AccountPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := domain.Anonymous()

		if token := bearerToken(c.Get(fiber.HeaderAuthorization)); token != "" {
			resolved, err := accounts.ResolveIdentity(c.UserContext(), token)
			if err != nil {
				log.Printf("[api] Failed to resolve identity: %v", err)
				return fiber.NewError(fiber.StatusInternalServerError, "Failed to resolve identity")
			}
			identity = resolved
		}

		c.Locals(IdentityContextKey, identity)
		c.SetUserContext(WithIdentity(c.UserContext(), identity))

		return c.Next()
	}
}
