package economy

import (
	"math"
	"time"

	"github.com/wagus-labs/agent-portal/portal/economy/utils"
)

// EconomicState holds the simulated metrics backing the token price.
// CirculatingSupply is fixed once the state is created.
type EconomicState struct {
	TreasuryValueUSD  float64    `json:"treasury_value_usd"`
	CirculatingSupply float64    `json:"circulating_supply"`
	TotalStaked       float64    `json:"total_staked"`
	BurnedTokens      float64    `json:"burned_tokens"`
	DailyVolume       float64    `json:"daily_volume"`
	DemandMultiplier  float64    `json:"demand_multiplier"`
	LastPrice         float64    `json:"last_price"`
	LastUpdate        *time.Time `json:"last_update,omitempty"`
}

// Seed is the configured starting point of the economy.
type Seed struct {
	TreasuryValueUSD  float64 `toml:"treasury_value_usd"`
	CirculatingSupply float64 `toml:"circulating_supply"`
	TotalStaked       float64 `toml:"total_staked"`
	BurnedTokens      float64 `toml:"burned_tokens"`
	DailyVolume       float64 `toml:"daily_volume"`
	DemandMultiplier  float64 `toml:"demand_multiplier"`
}

func DefaultSeed() Seed {
	return Seed{
		TreasuryValueUSD:  utils.SeedTreasuryValueUSD,
		CirculatingSupply: utils.SeedCirculatingSupply,
		TotalStaked:       utils.SeedTotalStaked,
		BurnedTokens:      utils.SeedBurnedTokens,
		DailyVolume:       utils.SeedDailyVolume,
		DemandMultiplier:  utils.SeedDemandMultiplier,
	}
}

// NewState builds a fresh state from a seed. LastPrice and LastUpdate stay
// empty until the state is priced.
func NewState(seed Seed) EconomicState {
	return EconomicState{
		TreasuryValueUSD:  seed.TreasuryValueUSD,
		CirculatingSupply: seed.CirculatingSupply,
		TotalStaked:       seed.TotalStaked,
		BurnedTokens:      seed.BurnedTokens,
		DailyVolume:       seed.DailyVolume,
		DemandMultiplier:  seed.DemandMultiplier,
	}
}

// EffectiveSupply is circulating supply minus staked and burned tokens.
func (s EconomicState) EffectiveSupply() float64 {
	return s.CirculatingSupply - s.TotalStaked - s.BurnedTokens
}

// Clone returns a copy that does not share the LastUpdate pointer.
func (s EconomicState) Clone() EconomicState {
	c := s
	if s.LastUpdate != nil {
		t := *s.LastUpdate
		c.LastUpdate = &t
	}
	return c
}

// Validate reports the first invariant the state breaks, if any.
func (s EconomicState) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"treasury_value_usd", s.TreasuryValueUSD},
		{"circulating_supply", s.CirculatingSupply},
		{"total_staked", s.TotalStaked},
		{"burned_tokens", s.BurnedTokens},
		{"daily_volume", s.DailyVolume},
		{"demand_multiplier", s.DemandMultiplier},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return violation(f.name, f.value, "not a finite number")
		}
		if f.value < 0 {
			return violation(f.name, f.value, "must not be negative")
		}
	}

	if s.CirculatingSupply == 0 {
		return violation("circulating_supply", s.CirculatingSupply, "must be positive")
	}

	if eff := s.EffectiveSupply(); eff <= 0 {
		return violation("effective_supply", eff, "staked and burned tokens exhaust circulating supply")
	}

	return nil
}
