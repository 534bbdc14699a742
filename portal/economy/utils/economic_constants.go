package utils

import "time"

// Pricing Constants
const (
	// Price boundaries
	MinPrice = 0.0001 // Minimum token price floor (USD)
	MaxPrice = 1.0    // Maximum token price ceiling (USD)

	// Bonus terms
	VolumeBonusDivisor = 10000.0 // Daily volume that yields a full 1.0 volume bonus
	VolumeBonusCap     = 0.5     // Volume bonus ceiling
	StakingBonusWeight = 0.3     // Weight of the staked share of supply
	BurnBonusWeight    = 0.4     // Weight of the burned share of supply
)

// Evolution Constants
const (
	TreasuryGrowthMin = 0.02 // 2% minimum treasury growth per tick
	TreasuryGrowthMax = 0.05 // 5% maximum treasury growth per tick
	BurnRateMin       = 0.001
	BurnRateMax       = 0.005
	StakingDriftMin   = -0.03
	StakingDriftMax   = 0.03
	VolumeDriftMin    = -0.3
	VolumeDriftMax    = 0.3

	VolumeFloor       = 1000.0 // Daily volume never drops below this
	DemandVolumeBase  = 5000.0 // Volume normalizer for the activity score
	DemandActivityCap = 1.0    // Activity score ceiling added to the base demand of 1.0
)

// Seed Constants
const (
	SeedTreasuryValueUSD  = 50000.0
	SeedCirculatingSupply = 10000000.0
	SeedTotalStaked       = 2000000.0
	SeedBurnedTokens      = 100000.0
	SeedDailyVolume       = 5000.0
	SeedDemandMultiplier  = 1.2
)

// Scheduling Constants
const (
	DefaultUpdateInterval = 60 * time.Second
	PublishTimeout        = 5 * time.Second
	PersistTimeout        = 10 * time.Second
	MaxConcurrentPublish  = 4
)

// Health Constants
const (
	// Effective supply below this share of circulating supply is flagged
	LowEffectiveSupplyRatio = 0.10
	HighVolatility          = 0.5
)
