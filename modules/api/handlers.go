package api

import (
	"strings"

	domain "github.com/example/storefront/domain/user"
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	schema graphql.Schema
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(schema graphql.Schema) *Handlers {
	return &Handlers{
		schema: schema,
	}
}

// GraphQL executes a query or mutation for the caller resolved by
// IdentityMiddleware. Field errors are reported inside the result with
// status 200.
func (h *Handlers) GraphQL(c *fiber.Ctx) error {
	var req GraphQLRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Query is required",
		})
	}

	identity, ok := c.Locals(IdentityContextKey).(domain.Identity)
	if !ok {
		identity = domain.Anonymous()
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        WithIdentity(c.UserContext(), identity),
	})

	return c.JSON(result)
}
