package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wagus-labs/agent-portal/backend/config"
	"github.com/wagus-labs/agent-portal/backend/models"
	"github.com/wagus-labs/agent-portal/backend/utils"
	"github.com/wagus-labs/agent-portal/portal/database"
	"github.com/wagus-labs/agent-portal/portal/economy"
	"github.com/wagus-labs/agent-portal/portal/economy/pricing"
	"github.com/wagus-labs/agent-portal/portal/metrics"
	"github.com/wagus-labs/agent-portal/portal/services"
)

// WebApp represents the web application with all dependencies
type WebApp struct {
	Config    *config.WebAppConfig
	DB        *database.DB // nil unless persistence is postgres
	Engine    *pricing.Engine
	Store     *pricing.PriceStore
	Analyzer  *pricing.MarketAnalyzer
	Scheduler *pricing.PriceScheduler
	Spot      *services.SpotPriceService
	Metrics   *metrics.Metrics
	Version   string
	Commit    string
}

func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := models.NewHealthCheck(webApp.Version, webApp.Commit)

		snap := webApp.Engine.Snapshot()
		details := map[string]interface{}{
			"cycle": snap.Cycle,
			"price": snap.Price,
		}
		if snap.LastUpdate != nil {
			details["last_update"] = snap.LastUpdate
			details["age_seconds"] = int(time.Since(*snap.LastUpdate).Seconds())
		}
		if snap.Stale {
			health.AddComponent("engine", "stale", snap.LastError, details)
		} else {
			health.AddComponent("engine", "healthy", "", details)
		}

		if webApp.Scheduler != nil {
			status := "healthy"
			if !webApp.Scheduler.Running() {
				status = "stopped"
			}
			health.AddComponent("scheduler", status, "", map[string]interface{}{
				"interval": webApp.Scheduler.Interval().String(),
				"ticks":    webApp.Scheduler.Ticks(),
				"failures": webApp.Scheduler.Failures(),
			})
		}

		if webApp.DB != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			err := webApp.DB.Ping(ctx)
			cancel()
			if err != nil {
				health.AddComponent("database", "unhealthy", err.Error(), nil)
			} else {
				health.AddComponent("database", "healthy", "", nil)
			}
		}

		return utils.SendSuccess(c, health, "Health check successful")
	}
}

// TokenSnapshot returns the current price. A stale price is still served,
// flagged in the payload.
func TokenSnapshot(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		wallet, _ := utils.ExtractWallet(c)
		snap := webApp.Engine.Snapshot()

		return utils.SendSuccess(c, models.TokenResponse{
			Snapshot:      snap,
			ChangePercent: snap.ChangePercent(),
			Wallet:        wallet,
		}, "Token price retrieved")
	}
}

func TokenBreakdown(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		breakdown, err := webApp.Engine.Breakdown()
		if err != nil {
			if errors.Is(err, economy.ErrInvariantViolation) {
				return utils.SendServiceUnavailable(c, "Economic state cannot be priced", map[string]string{
					"reason": err.Error(),
				})
			}
			return err
		}
		return utils.SendSuccess(c, breakdown, "Price breakdown retrieved")
	}
}

// TokenRefresh runs one price cycle on demand
func TokenRefresh(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		wallet, _ := utils.ExtractWallet(c)

		ctx, cancel := context.WithTimeout(c.UserContext(), webApp.Config.RefreshTimeout)
		defer cancel()

		snap, err := webApp.Engine.RunCycle(ctx)
		if err != nil {
			slog.Warn("Manual price refresh failed",
				slog.String("type", "api"),
				slog.String("wallet", wallet),
				slog.Any("error", err))
			return utils.SendServiceUnavailable(c, "Price refresh failed, serving last good price", map[string]string{
				"reason":     err.Error(),
				"last_price": formatPrice(snap.Price),
			})
		}

		slog.Info("Manual price refresh",
			slog.String("type", "api"),
			slog.String("wallet", wallet),
			slog.String("cycle_id", snap.CycleID),
			slog.Float64("price", snap.Price))

		return utils.SendSuccess(c, models.TokenResponse{
			Snapshot:      snap,
			ChangePercent: snap.ChangePercent(),
			Wallet:        wallet,
		}, "Token price refreshed")
	}
}

func TokenHistory(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, verrs := utils.ParseHistoryQuery(c.Query("hours"), c.Query("limit"))
		if len(verrs) > 0 {
			return utils.HandleValidationErrors(c, verrs)
		}

		since := time.Now().Add(-time.Duration(q.Hours) * time.Hour)
		points, err := webApp.Store.GetPriceHistory(c.UserContext(), since, q.Limit)
		if err != nil {
			slog.Error("Failed to load price history",
				slog.String("type", "api"),
				slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to load price history")
		}

		return utils.SendSuccess(c, models.HistoryResponse{
			Hours:  q.Hours,
			Limit:  q.Limit,
			Count:  len(points),
			Points: points,
		}, "Price history retrieved")
	}
}

func TokenHealth(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := webApp.Analyzer.Analyze(c.UserContext())
		if err != nil {
			slog.Error("Failed to analyze market",
				slog.String("type", "api"),
				slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to analyze market")
		}
		return utils.SendSuccess(c, stats, "Market health retrieved")
	}
}

func SpotPrices(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		prices := webApp.Spot.GetPrices(c.UserContext())
		return utils.SendSuccess(c, models.SpotResponse{
			Count:  len(prices),
			Prices: prices,
		}, "Spot prices retrieved")
	}
}

// SpotPrice looks one configured token up by symbol
func SpotPrice(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		symbol := c.Params("symbol")
		price, ok := webApp.Spot.GetPrice(c.UserContext(), symbol)
		if !ok {
			return utils.SendNotFound(c, "Unknown token "+symbol)
		}
		return utils.SendSuccess(c, price, "Spot price retrieved")
	}
}

func SpotSearch(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return utils.SendBadRequest(c, "Query parameter q is required", nil)
		}

		prices := webApp.Spot.Search(c.UserContext(), query)
		if len(prices) == 0 {
			return utils.SendNotFound(c, "No token matches "+query)
		}
		return utils.SendSuccess(c, models.SpotResponse{
			Query:  query,
			Count:  len(prices),
			Prices: prices,
		}, "Spot prices retrieved")
	}
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 6, 64)
}
