package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/wagus-labs/agent-portal/backend/models"
)

const (
	// Solana public keys are 32 bytes
	WalletKeyLength = 32

	DefaultHistoryHours = 24
	MaxHistoryHours     = 24 * 7
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1440
)

// ValidateWalletAddress checks that addr is a base58-encoded 32-byte key
func ValidateWalletAddress(addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return fmt.Errorf("wallet address is required")
	}

	key, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("wallet address is not valid base58: %w", err)
	}
	if len(key) != WalletKeyLength {
		return fmt.Errorf("wallet address decodes to %d bytes, want %d", len(key), WalletKeyLength)
	}
	return nil
}

// HistoryQuery holds the parsed ?hours=&limit= parameters
type HistoryQuery struct {
	Hours int
	Limit int
}

// ParseHistoryQuery applies defaults to missing values and rejects ones out of range
func ParseHistoryQuery(hours, limit string) (HistoryQuery, []models.ValidationError) {
	q := HistoryQuery{Hours: DefaultHistoryHours, Limit: DefaultHistoryLimit}
	var errors []models.ValidationError

	if hours != "" {
		v, err := strconv.Atoi(hours)
		switch {
		case err != nil:
			errors = append(errors, models.ValidationError{Field: "hours", Description: "hours must be an integer"})
		case v < 1 || v > MaxHistoryHours:
			errors = append(errors, models.ValidationError{
				Field:       "hours",
				Description: fmt.Sprintf("hours must be between 1 and %d", MaxHistoryHours),
			})
		default:
			q.Hours = v
		}
	}

	if limit != "" {
		v, err := strconv.Atoi(limit)
		switch {
		case err != nil:
			errors = append(errors, models.ValidationError{Field: "limit", Description: "limit must be an integer"})
		case v < 1 || v > MaxHistoryLimit:
			errors = append(errors, models.ValidationError{
				Field:       "limit",
				Description: fmt.Sprintf("limit must be between 1 and %d", MaxHistoryLimit),
			})
		default:
			q.Limit = v
		}
	}

	return q, errors
}
