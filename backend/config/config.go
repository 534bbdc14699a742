package config

import (
	"time"

	"github.com/wagus-labs/agent-portal/portal"
)

// WebAppConfig contains web-specific configuration
type WebAppConfig struct {
	Web          portal.WebConfig
	Debug        bool
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// RefreshTimeout bounds a manual price cycle triggered over HTTP
	RefreshTimeout time.Duration
}

func NewWebAppConfig(cfg *portal.Config, debug bool) *WebAppConfig {
	environment := "production"
	if debug {
		environment = "development"
	}

	return &WebAppConfig{
		Web:            cfg.Web,
		Debug:          debug,
		Environment:    environment,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		RefreshTimeout: 15 * time.Second,
	}
}
