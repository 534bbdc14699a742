package pricing

import (
	"fmt"
	"math"

	"github.com/wagus-labs/agent-portal/portal/economy"
	"github.com/wagus-labs/agent-portal/portal/economy/utils"
)

// PricingConfig holds all configuration for price calculation
type PricingConfig struct {
	MinPrice           float64 `toml:"min_price"`            // Absolute minimum price
	MaxPrice           float64 `toml:"max_price"`            // Absolute maximum price
	VolumeBonusDivisor float64 `toml:"volume_bonus_divisor"` // Volume yielding a 1.0 bonus
	VolumeBonusCap     float64 `toml:"volume_bonus_cap"`     // Maximum volume bonus
	StakingBonusWeight float64 `toml:"staking_bonus_weight"` // Weight of staked share
	BurnBonusWeight    float64 `toml:"burn_bonus_weight"`    // Weight of burned share
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		MinPrice:           utils.MinPrice,
		MaxPrice:           utils.MaxPrice,
		VolumeBonusDivisor: utils.VolumeBonusDivisor,
		VolumeBonusCap:     utils.VolumeBonusCap,
		StakingBonusWeight: utils.StakingBonusWeight,
		BurnBonusWeight:    utils.BurnBonusWeight,
	}
}

// Validate checks that the configured bounds are usable
func (c PricingConfig) Validate() error {
	if c.MinPrice <= 0 {
		return fmt.Errorf("min_price must be positive, got %g", c.MinPrice)
	}
	if c.MaxPrice < c.MinPrice {
		return fmt.Errorf("max_price %g is below min_price %g", c.MaxPrice, c.MinPrice)
	}
	if c.VolumeBonusDivisor <= 0 {
		return fmt.Errorf("volume_bonus_divisor must be positive, got %g", c.VolumeBonusDivisor)
	}
	return nil
}

// PriceBreakdown exposes every intermediate term of a price calculation
type PriceBreakdown struct {
	EffectiveSupply float64 `json:"effective_supply"`
	BasePrice       float64 `json:"base_price"`
	DemandMult      float64 `json:"demand_multiplier"`
	VolumeBonus     float64 `json:"volume_bonus"`
	StakingBonus    float64 `json:"staking_bonus"`
	BurnBonus       float64 `json:"burn_bonus"`
	TotalMultiplier float64 `json:"total_multiplier"`
	RawPrice        float64 `json:"raw_price"`
	FinalPrice      float64 `json:"final_price"`
	Clamped         bool    `json:"clamped"`
}

// Calculator handles pure price calculation logic
type Calculator struct {
	config PricingConfig
}

// NewCalculator creates a new price calculator with the given configuration
func NewCalculator(config PricingConfig) *Calculator {
	return &Calculator{config: config}
}

func (c *Calculator) Config() PricingConfig {
	return c.config
}

// Price maps a state to its clamped token price. It has no side effects.
func (c *Calculator) Price(state economy.EconomicState) (float64, error) {
	b, err := c.Breakdown(state)
	if err != nil {
		return 0, err
	}
	return b.FinalPrice, nil
}

// Breakdown calculates the price and returns all factors that produced it
func (c *Calculator) Breakdown(state economy.EconomicState) (PriceBreakdown, error) {
	if err := state.Validate(); err != nil {
		return PriceBreakdown{}, err
	}

	b := PriceBreakdown{
		EffectiveSupply: state.EffectiveSupply(),
		DemandMult:      state.DemandMultiplier,
	}

	b.BasePrice = state.TreasuryValueUSD / b.EffectiveSupply
	b.VolumeBonus = math.Min(state.DailyVolume/c.config.VolumeBonusDivisor, c.config.VolumeBonusCap)
	b.StakingBonus = (state.TotalStaked / state.CirculatingSupply) * c.config.StakingBonusWeight
	b.BurnBonus = (state.BurnedTokens / state.CirculatingSupply) * c.config.BurnBonusWeight
	b.TotalMultiplier = b.DemandMult + b.VolumeBonus + b.StakingBonus + b.BurnBonus
	b.RawPrice = b.BasePrice * b.TotalMultiplier

	if math.IsNaN(b.RawPrice) || math.IsInf(b.RawPrice, 0) {
		return PriceBreakdown{}, &economy.InvariantError{
			Field:  "raw_price",
			Value:  b.RawPrice,
			Reason: "price computation overflowed",
		}
	}

	b.FinalPrice = c.ApplyPriceLimits(b.RawPrice)
	b.Clamped = b.FinalPrice != b.RawPrice

	return b, nil
}

// ApplyPriceLimits ensures price stays within configured bounds
func (c *Calculator) ApplyPriceLimits(price float64) float64 {
	if price < c.config.MinPrice {
		return c.config.MinPrice
	}
	if price > c.config.MaxPrice {
		return c.config.MaxPrice
	}
	return price
}
