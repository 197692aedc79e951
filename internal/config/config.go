// Package config holds the simulator's runtime parameters: the §6 CLI
// options plus their defaults. cmd/simulator binds Cobra flags onto a
// Config; tests construct one directly.
package config

import "github.com/stringhandler/dansim/internal/txgen"

// Config is the full set of knobs needed to construct and drive a
// simulation run.
type Config struct {
	NumVNs     int
	NumShards  int
	MinLatency uint64 // milliseconds
	MaxLatency uint64 // milliseconds
	Delta      uint64 // leader timeout budget, milliseconds

	NumSteps    int
	TimePerStep uint64 // milliseconds advanced per driver tick

	MaxBlockSize          int
	MaxTxPerStepPerBlock  int
	NumTransactions       int

	Probability2Shards float64
	Probability3Shards float64
	Probability4Shards float64
	Probability5Shards float64

	PrintStatsEvery int // in ticks; 0 disables periodic stats

	Seed int64
}

// Default returns the simulator's out-of-the-box configuration.
func Default() Config {
	return Config{
		NumVNs:               4,
		NumShards:            1,
		MinLatency:           10,
		MaxLatency:           100,
		Delta:                1000,
		NumSteps:             100,
		TimePerStep:          10,
		MaxBlockSize:         100,
		MaxTxPerStepPerBlock: 10,
		NumTransactions:      20,
		Probability2Shards:   0.2,
		Probability3Shards:   0.05,
		Probability4Shards:   0.02,
		Probability5Shards:   0.01,
		PrintStatsEvery:      10,
		Seed:                 1,
	}
}

// Distribution adapts the config's cross-shardedness knobs into the shape
// txgen.Default expects.
func (c Config) Distribution() txgen.Distribution {
	return txgen.Distribution{
		Probability2Shards: c.Probability2Shards,
		Probability3Shards: c.Probability3Shards,
		Probability4Shards: c.Probability4Shards,
		Probability5Shards: c.Probability5Shards,
	}
}
