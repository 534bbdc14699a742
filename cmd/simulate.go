package cmd

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/wagus-labs/agent-portal/portal/economy"
	"github.com/wagus-labs/agent-portal/portal/economy/pricing"
)

var (
	simulateTicks int
	simulateSeed  uint64
)

var simulateCMD = &cobra.Command{
	Use:   "simulate",
	Short: "evolve the economy offline and print the price path",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateTicks <= 0 {
			return errors.New("--ticks must be positive")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var rng economy.RandSource
		if cmd.Flags().Changed("seed") {
			rng = rand.New(rand.NewPCG(simulateSeed, simulateSeed))
		}

		return runSimulation(cmd.OutOrStdout(),
			economy.NewState(cfg.Economy.Seed),
			economy.NewEvolver(cfg.Economy.Evolution, rng),
			pricing.NewCalculator(cfg.Economy.Pricing),
			simulateTicks)
	},
}

func init() {
	simulateCMD.Flags().IntVar(&simulateTicks, "ticks", 60, "number of ticks to simulate")
	simulateCMD.Flags().Uint64Var(&simulateSeed, "seed", 0, "seed for a reproducible run")
	rootCmd.AddCommand(simulateCMD)
}

// runSimulation stops at the first tick that cannot be priced
func runSimulation(out io.Writer, state economy.EconomicState, evolver *economy.Evolver, calc *pricing.Calculator, ticks int) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	defer w.Flush()

	fmt.Fprintln(w, "tick\tprice\ttreasury\teffective\tstaked\tburned\tvolume\tdemand\t")

	price, err := calc.Price(state)
	if err != nil {
		return fmt.Errorf("seed state cannot be priced: %w", err)
	}
	printTick(w, 0, price, state)

	for i := 1; i <= ticks; i++ {
		state = evolver.Evolve(state)
		price, err = calc.Price(state)
		if err != nil {
			w.Flush()
			return fmt.Errorf("tick %d: %w", i, err)
		}
		printTick(w, i, price, state)
	}
	return nil
}

func printTick(w io.Writer, tick int, price float64, s economy.EconomicState) {
	fmt.Fprintf(w, "%d\t%.6f\t%.2f\t%.0f\t%.0f\t%.0f\t%.0f\t%.4f\t\n",
		tick, price, s.TreasuryValueUSD, s.EffectiveSupply(), s.TotalStaked, s.BurnedTokens, s.DailyVolume, s.DemandMultiplier)
}
