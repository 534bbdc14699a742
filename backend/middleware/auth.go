package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/wagus-labs/agent-portal/backend/utils"
)

const WalletHeader = "X-Wallet-Address"

// WalletRequired rejects requests without a valid Solana wallet address and
// stores the address for later handlers.
func WalletRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		wallet := c.Get(WalletHeader)
		if err := utils.ValidateWalletAddress(wallet); err != nil {
			slog.Debug("Wallet required: rejected request",
				slog.String("type", "api"),
				slog.String("path", c.Path()),
				slog.String("ip", utils.GetIPAddress(c)),
				slog.Any("error", err))
			return utils.SendUnauthorized(c, err.Error())
		}

		c.Locals(utils.WalletLocalKey, wallet)
		return c.Next()
	}
}
