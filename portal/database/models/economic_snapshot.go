package models

import (
	"time"

	"github.com/uptrace/bun"
)

// EconomicSnapshot is the persisted form of the economy after a cycle.
type EconomicSnapshot struct {
	bun.BaseModel `bun:"table:economic_snapshots,alias:es" bson:"-"`

	ID                int64     `bun:"id,pk,autoincrement" bson:"-" json:"id,omitempty"`
	CycleID           string    `bun:"cycle_id,notnull" bson:"cycle_id" json:"cycle_id"`
	TreasuryValueUSD  float64   `bun:"treasury_value_usd,notnull" bson:"treasury_value_usd" json:"treasury_value_usd"`
	CirculatingSupply float64   `bun:"circulating_supply,notnull" bson:"circulating_supply" json:"circulating_supply"`
	TotalStaked       float64   `bun:"total_staked,notnull" bson:"total_staked" json:"total_staked"`
	BurnedTokens      float64   `bun:"burned_tokens,notnull" bson:"burned_tokens" json:"burned_tokens"`
	DailyVolume       float64   `bun:"daily_volume,notnull" bson:"daily_volume" json:"daily_volume"`
	DemandMultiplier  float64   `bun:"demand_multiplier,notnull" bson:"demand_multiplier" json:"demand_multiplier"`
	LastPrice         float64   `bun:"last_price,notnull" bson:"last_price" json:"last_price"`
	LastUpdate        time.Time `bun:"last_update,notnull" bson:"last_update" json:"last_update"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" bson:"created_at" json:"created_at"`
}
