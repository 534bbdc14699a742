package economy

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestEconomicState_Validate(t *testing.T) {
	valid := NewState(DefaultSeed())

	tests := []struct {
		name      string
		mutate    func(s *EconomicState)
		wantField string
	}{
		{name: "seed is valid", mutate: func(s *EconomicState) {}},
		{name: "zero circulating", mutate: func(s *EconomicState) { s.CirculatingSupply = 0 }, wantField: "circulating_supply"},
		{name: "negative treasury", mutate: func(s *EconomicState) { s.TreasuryValueUSD = -1 }, wantField: "treasury_value_usd"},
		{name: "NaN volume", mutate: func(s *EconomicState) { s.DailyVolume = math.NaN() }, wantField: "daily_volume"},
		{name: "infinite demand", mutate: func(s *EconomicState) { s.DemandMultiplier = math.Inf(1) }, wantField: "demand_multiplier"},
		{
			name: "staked and burned exhaust supply",
			mutate: func(s *EconomicState) {
				s.TotalStaked = 9000000
				s.BurnedTokens = 1000000
			},
			wantField: "effective_supply",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid.Clone()
			tt.mutate(&s)

			err := s.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("EconomicState.Validate() unexpected error = %v", err)
				}
				return
			}

			if !errors.Is(err, ErrInvariantViolation) {
				t.Fatalf("EconomicState.Validate() error = %v, want ErrInvariantViolation", err)
			}
			var ie *InvariantError
			if !errors.As(err, &ie) || ie.Field != tt.wantField {
				t.Errorf("EconomicState.Validate() field = %v, want %v", ie, tt.wantField)
			}
		})
	}
}

func TestEconomicState_Clone(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewState(DefaultSeed())
	s.LastUpdate = &ts

	c := s.Clone()
	*c.LastUpdate = c.LastUpdate.Add(time.Hour)

	if !s.LastUpdate.Equal(ts) {
		t.Errorf("Clone() shares LastUpdate: got %v, want %v", s.LastUpdate, ts)
	}
}

func TestEconomicState_EffectiveSupply(t *testing.T) {
	if got := NewState(DefaultSeed()).EffectiveSupply(); got != 7900000 {
		t.Errorf("EffectiveSupply() = %v, want %v", got, 7900000)
	}
}
