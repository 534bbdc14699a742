package backend

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/wagus-labs/agent-portal/backend/handlers"
	"github.com/wagus-labs/agent-portal/backend/middleware"
)

// NewApp builds the Fiber app with global middleware and all routes
func NewApp(webApp *handlers.WebApp, limiter *middleware.RateLimiter) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "WAGUS Agent Portal API",
		ServerHeader:          "WAGUS-Portal",
		ErrorHandler:          middleware.CustomErrorHandler,
		ReadTimeout:           webApp.Config.ReadTimeout,
		WriteTimeout:          webApp.Config.WriteTimeout,
		DisableStartupMessage: !webApp.Config.Debug,
	})

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(middleware.CORS(webApp.Config.Web.AllowedOrigins))
	app.Use(middleware.LoggingMiddleware(webApp.Metrics))

	setupRoutes(app, webApp, limiter)
	return app
}

func setupRoutes(app *fiber.App, webApp *handlers.WebApp, limiter *middleware.RateLimiter) {
	app.Get("/health", handlers.HealthCheck(webApp))
	if webApp.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(webApp.Metrics.Handler()))
	}

	api := app.Group("/api")

	token := api.Group("/token")
	token.Get("/history", handlers.TokenHistory(webApp))
	token.Get("/health", handlers.TokenHealth(webApp))

	walletRequired := middleware.WalletRequired()
	token.Get("/", walletRequired, handlers.TokenSnapshot(webApp))
	token.Get("/breakdown", walletRequired, handlers.TokenBreakdown(webApp))
	token.Post("/refresh", walletRequired, middleware.RateLimit(limiter), handlers.TokenRefresh(webApp))

	spot := api.Group("/spot")
	spot.Get("/", handlers.SpotPrices(webApp))
	spot.Get("/search", handlers.SpotSearch(webApp))
	spot.Get("/:symbol", handlers.SpotPrice(webApp))
}

// Serve listens until ctx is cancelled, then shuts the app down gracefully
func Serve(ctx context.Context, app *fiber.App, address string) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server",
			slog.String("type", "api"),
			slog.String("address", address))
		errCh <- app.Listen(address)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}
	slog.Info("API server stopped", slog.String("type", "api"))
	return nil
}
