package models

import (
	"time"

	"github.com/wagus-labs/agent-portal/portal/economy/pricing"
	"github.com/wagus-labs/agent-portal/portal/services"
)

// APIResponse represents a standard API response structure
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// APIError represents an API error response
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// ValidationError describes one rejected request field
type ValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

func NewSuccessResponse(data interface{}, message string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func NewErrorResponse(code, message string, details map[string]string) *APIResponse {
	return &APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now(),
	}
}

// TokenResponse is the wallet-facing view of the current price
type TokenResponse struct {
	pricing.Snapshot
	ChangePercent float64 `json:"change_percent"`
	Wallet        string  `json:"wallet"`
}

type HistoryResponse struct {
	Hours  int                  `json:"hours"`
	Limit  int                  `json:"limit"`
	Count  int                  `json:"count"`
	Points []pricing.PricePoint `json:"points"`
}

type SpotResponse struct {
	Query  string              `json:"query,omitempty"`
	Count  int                 `json:"count"`
	Prices []services.SpotPrice `json:"prices"`
}

// HealthCheck represents a health check response
type HealthCheck struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version"`
	Commit     string                     `json:"commit"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health status of a component
type ComponentHealth struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func NewHealthCheck(version, commit string) *HealthCheck {
	return &HealthCheck{
		Status:     "healthy",
		Timestamp:  time.Now(),
		Version:    version,
		Commit:     commit,
		Components: make(map[string]ComponentHealth),
	}
}

// AddComponent adds a component health status. Any non-healthy component
// degrades the overall status.
func (h *HealthCheck) AddComponent(name, status, message string, details map[string]interface{}) {
	h.Components[name] = ComponentHealth{
		Status:  status,
		Message: message,
		Details: details,
	}

	if status != "healthy" && h.Status == "healthy" {
		h.Status = "degraded"
	}
}
