package pricing

import (
	"time"

	"github.com/wagus-labs/agent-portal/portal/economy"
)

// Snapshot is the read model handed to dashboards and publishers.
type Snapshot struct {
	Price             float64    `json:"price"`
	TreasuryValueUSD  float64    `json:"treasury_value_usd"`
	EffectiveSupply   float64    `json:"effective_supply"`
	CirculatingSupply float64    `json:"circulating_supply"`
	TotalStaked       float64    `json:"total_staked"`
	DailyVolume       float64    `json:"daily_volume"`
	BurnedTokens      float64    `json:"burned_tokens"`
	DemandMultiplier  float64    `json:"demand_multiplier"`
	LastUpdate        *time.Time `json:"last_update"`

	// Stale is set when the most recent cycle failed and Price is the last
	// good value.
	Stale     bool   `json:"stale"`
	LastError string `json:"last_error,omitempty"`
	Cycle     uint64 `json:"cycle"`
	CycleID   string `json:"cycle_id,omitempty"`

	PreviousPrice float64 `json:"previous_price"`
}

// ChangePercent is the relative move from the previous price.
func (s Snapshot) ChangePercent() float64 {
	if s.PreviousPrice == 0 {
		return 0
	}
	return (s.Price - s.PreviousPrice) / s.PreviousPrice * 100
}

// State rebuilds the economic state the snapshot was taken from.
func (s Snapshot) State() economy.EconomicState {
	state := economy.EconomicState{
		TreasuryValueUSD:  s.TreasuryValueUSD,
		CirculatingSupply: s.CirculatingSupply,
		TotalStaked:       s.TotalStaked,
		BurnedTokens:      s.BurnedTokens,
		DailyVolume:       s.DailyVolume,
		DemandMultiplier:  s.DemandMultiplier,
		LastPrice:         s.Price,
	}
	if s.LastUpdate != nil {
		t := *s.LastUpdate
		state.LastUpdate = &t
	}
	return state
}

func newSnapshot(state economy.EconomicState) Snapshot {
	s := Snapshot{
		Price:             state.LastPrice,
		TreasuryValueUSD:  state.TreasuryValueUSD,
		EffectiveSupply:   state.EffectiveSupply(),
		CirculatingSupply: state.CirculatingSupply,
		TotalStaked:       state.TotalStaked,
		DailyVolume:       state.DailyVolume,
		BurnedTokens:      state.BurnedTokens,
		DemandMultiplier:  state.DemandMultiplier,
	}
	if state.LastUpdate != nil {
		t := *state.LastUpdate
		s.LastUpdate = &t
	}
	return s
}
