package main

import (
	"context"
	"log"
	"os"

	"github.com/example/storefront/internal/cache"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/database"
	"github.com/example/storefront/internal/ratelimit"
	"github.com/example/storefront/modules/account"
	"github.com/example/storefront/modules/api"
	"github.com/example/storefront/modules/catalog"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("=== Storefront GraphQL API ===")

	// A missing .env file is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env file: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	c, err := cache.New(context.Background(), cfg.Redis)
	if err != nil {
		// The catalog falls back to the database when redis is unavailable.
		log.Printf("Redis unavailable, caching disabled: %v", err)
		c = cache.Nop{}
	}

	// Rate limiting shares the cache's redis connection.
	var limiter ratelimit.Limiter
	if r, ok := c.(*cache.Redis); ok && cfg.RateLimit.Requests > 0 {
		limiter = ratelimit.NewSlidingWindowLimiter(r.Client(), ratelimit.Config{
			RequestsPerWindow: cfg.RateLimit.Requests,
			WindowSize:        cfg.RateLimit.Window,
		}, ratelimit.KeyPrefix)
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Register modules with the framework
	// Order: independent modules first, then dependent modules
	app.Register(account.NewModule(db, account.JWTConfigFrom(cfg.JWT), cfg.BcryptCost))
	app.Register(catalog.NewModule(db, c))
	app.Register(api.NewModule(cfg, limiter)) // Depends on account and catalog

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			// Stores close only after the modules using them have stopped.
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				if err := app.Stop(ctx); err != nil {
					return err
				}
				if err := c.Close(); err != nil {
					log.Printf("Failed to close cache: %v", err)
				}
				return database.Close(db)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("  Database: %s", cfg.Database.Driver)
	if cfg.Redis.Addr != "" {
		log.Printf("  Catalog cache: redis at %s (ttl %s)", cfg.Redis.Addr, cfg.Redis.TTL)
		if cfg.RateLimit.Requests > 0 {
			log.Printf("  Rate limit: %d requests per %s per IP", cfg.RateLimit.Requests, cfg.RateLimit.Window)
		}
	}
	log.Println("")
	log.Printf("Endpoints (%s):", cfg.HTTPAddr)
	log.Println("  POST   /graphql  - GraphQL queries and mutations")
	log.Println("  GET    /health   - Health check")
	log.Println("")
	log.Println("Send 'Authorization: Bearer <token>' with a token from the tokenAuth mutation")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
