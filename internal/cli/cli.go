// Package cli binds the simulator's config.Config onto a Cobra command
// tree, the teacher's cmd/empower1d/cli wiring pattern generalized from a
// hand-rolled blockchain CLI onto this simulator's §6 run parameters.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stringhandler/dansim/internal/config"
	"github.com/stringhandler/dansim/internal/driver"
)

// NewCLI returns the "dansim" root command.
func NewCLI() *cobra.Command {
	cfg := config.Default()

	rootCmd := &cobra.Command{
		Use:   "dansim",
		Short: "dansim simulates a sharded BFT consensus protocol with cross-shard transactions.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.IntVar(&cfg.NumVNs, "num-vns", cfg.NumVNs, "total number of validator nodes")
	flags.IntVar(&cfg.NumShards, "num-shards", cfg.NumShards, "number of shards, validators are assigned round-robin")
	flags.Uint64Var(&cfg.MinLatency, "min-latency", cfg.MinLatency, "minimum network edge latency, milliseconds")
	flags.Uint64Var(&cfg.MaxLatency, "max-latency", cfg.MaxLatency, "maximum network edge latency, milliseconds")
	flags.Uint64Var(&cfg.Delta, "delta", cfg.Delta, "leader timeout budget, milliseconds")
	flags.IntVar(&cfg.NumSteps, "num-steps", cfg.NumSteps, "number of driver ticks to run")
	flags.Uint64Var(&cfg.TimePerStep, "time-per-step", cfg.TimePerStep, "logical clock advance per tick, milliseconds")
	flags.IntVar(&cfg.MaxBlockSize, "max-block-size", cfg.MaxBlockSize, "maximum transactions a block may carry in total")
	flags.IntVar(&cfg.MaxTxPerStepPerBlock, "max-tx-per-step-per-block", cfg.MaxTxPerStepPerBlock, "maximum transactions pulled from each mempool position per proposal")
	flags.IntVar(&cfg.NumTransactions, "num-transactions", cfg.NumTransactions, "total number of transactions to generate")
	flags.Float64Var(&cfg.Probability2Shards, "p-2-shards", cfg.Probability2Shards, "probability a generated transaction touches 2 shards")
	flags.Float64Var(&cfg.Probability3Shards, "p-3-shards", cfg.Probability3Shards, "probability a generated transaction touches 3 shards")
	flags.Float64Var(&cfg.Probability4Shards, "p-4-shards", cfg.Probability4Shards, "probability a generated transaction touches 4 shards")
	flags.Float64Var(&cfg.Probability5Shards, "p-5-shards", cfg.Probability5Shards, "probability a generated transaction touches 5 shards")
	flags.IntVar(&cfg.PrintStatsEvery, "print-stats-every", cfg.PrintStatsEvery, "print stats every N ticks; 0 disables")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "PRNG seed for latency sampling and transaction generation")

	rootCmd.AddCommand(newStatsCmd(&cfg))

	return rootCmd
}

func runSimulate(cfg config.Config) error {
	fmt.Printf("dansim: %d validators, %d shards, %d steps\n", cfg.NumVNs, cfg.NumShards, cfg.NumSteps)

	d, s := driver.Build(cfg)
	d.Run(cfg.NumSteps)
	s.PrintStats()

	fmt.Printf("dansim: finished at logical time %d\n", d.Now())
	return nil
}

// newStatsCmd is a convenience subcommand that runs with print-stats-every
// forced to 1, useful for watching a short run tick-by-tick.
func newStatsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "trace",
		Short: "run the simulation printing stats on every tick",
		RunE: func(cmd *cobra.Command, args []string) error {
			traced := *cfg
			traced.PrintStatsEvery = 1
			return runSimulate(traced)
		},
	}
}
