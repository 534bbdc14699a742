package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TokenPriceHistory struct {
	bun.BaseModel `bun:"table:token_price_history,alias:tph" bson:"-"`

	ID                 int64     `bun:"id,pk,autoincrement" bson:"-" json:"id,omitempty"`
	CycleID            string    `bun:"cycle_id,notnull" bson:"cycle_id" json:"cycle_id"`
	Price              float64   `bun:"price,notnull" bson:"price" json:"price"`
	EffectiveSupply    float64   `bun:"effective_supply,notnull" bson:"effective_supply" json:"effective_supply"`
	DailyVolume        float64   `bun:"daily_volume,notnull" bson:"daily_volume" json:"daily_volume"`
	DemandMultiplier   float64   `bun:"demand_multiplier,notnull" bson:"demand_multiplier" json:"demand_multiplier"`
	PriceChangePercent float64   `bun:"price_change_percentage" bson:"price_change_percentage" json:"price_change_percentage"`
	Timestamp          time.Time `bun:"timestamp,notnull" bson:"timestamp" json:"timestamp"`
}
