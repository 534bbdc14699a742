package economy

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/wagus-labs/agent-portal/portal/economy/utils"
)

// RandSource yields uniform values in [0, 1).
type RandSource interface {
	Float64() float64
}

// Range is a closed interval drifts are drawn from.
type Range struct {
	Min float64 `toml:"min"`
	Max float64 `toml:"max"`
}

func (r Range) draw(rng RandSource) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// EvolutionConfig holds the per-tick drift ranges.
type EvolutionConfig struct {
	TreasuryGrowth    Range   `toml:"treasury_growth"`
	BurnRate          Range   `toml:"burn_rate"`
	StakingDrift      Range   `toml:"staking_drift"`
	VolumeDrift       Range   `toml:"volume_drift"`
	VolumeFloor       float64 `toml:"volume_floor"`
	DemandVolumeBase  float64 `toml:"demand_volume_base"`
	DemandActivityCap float64 `toml:"demand_activity_cap"`
}

func DefaultEvolutionConfig() EvolutionConfig {
	return EvolutionConfig{
		TreasuryGrowth:    Range{Min: utils.TreasuryGrowthMin, Max: utils.TreasuryGrowthMax},
		BurnRate:          Range{Min: utils.BurnRateMin, Max: utils.BurnRateMax},
		StakingDrift:      Range{Min: utils.StakingDriftMin, Max: utils.StakingDriftMax},
		VolumeDrift:       Range{Min: utils.VolumeDriftMin, Max: utils.VolumeDriftMax},
		VolumeFloor:       utils.VolumeFloor,
		DemandVolumeBase:  utils.DemandVolumeBase,
		DemandActivityCap: utils.DemandActivityCap,
	}
}

// Validate rejects ranges that would break monotonic treasury and burn growth.
func (c EvolutionConfig) Validate() error {
	ranges := []struct {
		name string
		r    Range
	}{
		{"treasury_growth", c.TreasuryGrowth},
		{"burn_rate", c.BurnRate},
		{"staking_drift", c.StakingDrift},
		{"volume_drift", c.VolumeDrift},
	}
	for _, rg := range ranges {
		if rg.r.Min > rg.r.Max {
			return fmt.Errorf("%s: min %g is greater than max %g", rg.name, rg.r.Min, rg.r.Max)
		}
	}
	if c.TreasuryGrowth.Min < 0 {
		return fmt.Errorf("treasury_growth: min must not be negative")
	}
	if c.BurnRate.Min < 0 {
		return fmt.Errorf("burn_rate: min must not be negative")
	}
	if c.VolumeFloor <= 0 {
		return fmt.Errorf("volume_floor must be positive")
	}
	if c.DemandVolumeBase <= 0 {
		return fmt.Errorf("demand_volume_base must be positive")
	}
	return nil
}

// Evolver advances an EconomicState by one tick. It is not safe for
// concurrent use; the pricing engine serializes calls.
type Evolver struct {
	config EvolutionConfig
	rng    RandSource
}

// NewEvolver creates an evolver. A nil rng selects a time-seeded PCG source.
func NewEvolver(config EvolutionConfig, rng RandSource) *Evolver {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>7|1))
	}
	return &Evolver{
		config: config,
		rng:    rng,
	}
}

// Evolve returns the state after one tick of simulated platform activity.
// The input is not modified. Circulating supply, LastPrice and LastUpdate
// are carried over unchanged.
func (e *Evolver) Evolve(s EconomicState) EconomicState {
	next := s.Clone()

	growth := e.config.TreasuryGrowth.draw(e.rng)
	next.TreasuryValueUSD = s.TreasuryValueUSD + s.TreasuryValueUSD*growth

	// Burn is proportional to the volume of the tick that just happened
	burnRate := e.config.BurnRate.draw(e.rng)
	next.BurnedTokens = s.BurnedTokens + s.DailyVolume*burnRate

	stakingDelta := e.config.StakingDrift.draw(e.rng)
	next.TotalStaked = math.Max(0, s.TotalStaked+s.TotalStaked*stakingDelta)

	volumeDelta := e.config.VolumeDrift.draw(e.rng)
	next.DailyVolume = math.Max(e.config.VolumeFloor, s.DailyVolume+s.DailyVolume*volumeDelta)

	next.DemandMultiplier = 1.0 + math.Min(e.config.DemandActivityCap, e.activityScore(next))

	return next
}

func (e *Evolver) activityScore(s EconomicState) float64 {
	if s.CirculatingSupply <= 0 {
		return 0
	}
	return (s.DailyVolume / e.config.DemandVolumeBase) * (s.TotalStaked / s.CirculatingSupply) * 2
}
