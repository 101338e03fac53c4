package api

import (
	"context"
	"fmt"
	"log"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/ratelimit"
	"github.com/example/storefront/modules/account"
	"github.com/example/storefront/modules/catalog"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// APIModule serves the GraphQL endpoint over HTTP.
type APIModule struct {
	cfg            config.Config
	limiter        ratelimit.Limiter
	app            *fiber.App
	accountAdapter account.AccountPort
	catalogAdapter catalog.CatalogPort
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule. A nil limiter disables rate limiting.
func NewModule(cfg config.Config, limiter ratelimit.Limiter) *APIModule {
	return &APIModule{cfg: cfg, limiter: limiter}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"account", "catalog"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "account":
		m.accountAdapter = account.NewAccountAdapter(container)
	case "catalog":
		m.catalogAdapter = catalog.NewCatalogAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.accountAdapter == nil {
		return fmt.Errorf("account dependency not set")
	}
	if m.catalogAdapter == nil {
		return fmt.Errorf("catalog dependency not set")
	}

	app, err := newApp(m.accountAdapter, m.catalogAdapter, m.cfg.CORSAllowedOrigins, m.limiter)
	if err != nil {
		return err
	}
	m.app = app

	// Start server in goroutine
	go func() {
		if err := m.app.Listen(m.cfg.HTTPAddr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s", m.cfg.HTTPAddr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr":          m.cfg.HTTPAddr,
			"rate_limiting": m.limiter != nil,
		},
	}
}

// newApp builds the Fiber application with its middleware and routes.
func newApp(accounts account.AccountPort, products catalog.CatalogPort, allowOrigins string, limiter ratelimit.Limiter) (*fiber.App, error) {
	schema, err := NewSchema(NewResolver(accounts, products))
	if err != nil {
		return nil, fmt.Errorf("failed to build graphql schema: %w", err)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	// Add middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	setupRoutes(app, accounts, limiter, NewHandlers(schema))
	return app, nil
}

// setupRoutes configures all API routes.
func setupRoutes(app *fiber.App, accounts account.AccountPort, limiter ratelimit.Limiter, handlers *Handlers) {
	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "api",
		})
	})

	chain := []fiber.Handler{IdentityMiddleware(accounts), handlers.GraphQL}
	if limiter != nil {
		chain = append([]fiber.Handler{ratelimit.IPRateLimit(limiter)}, chain...)
	}
	app.Post("/graphql", chain...)
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
