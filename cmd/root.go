package cmd

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/wagus-labs/agent-portal/portal"
	"github.com/wagus-labs/agent-portal/portal/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "portalctl",
	Short:         "maintenance tools for the WAGUS agent portal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(slog.New(logger.NewHandler("portalctl", cmd.ErrOrStderr(), slog.LevelInfo)))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "path to config")
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	start := time.Now()
	cmd, err := rootCmd.ExecuteContextC(ctx)
	logger.LogCommand(cmd.Name(), time.Since(start), err)
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig falls back to defaults when the config file does not exist
func loadConfig() (*portal.Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := portal.DefaultConfig()
		return &cfg, nil
	}
	return portal.LoadConfig(configPath)
}
