package driver

import (
	"math/rand"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stringhandler/dansim/internal/committee"
	"github.com/stringhandler/dansim/internal/config"
	"github.com/stringhandler/dansim/internal/ids"
	"github.com/stringhandler/dansim/internal/network"
	"github.com/stringhandler/dansim/internal/shardtx"
	"github.com/stringhandler/dansim/internal/sink"
	"github.com/stringhandler/dansim/internal/txgen"
	"github.com/stringhandler/dansim/internal/validator"
)

// Build wires a complete simulation from cfg: num_shards committees of
// roughly num_vns/num_shards validators each, a fully-connected network
// simulator, the Prometheus-backed sink.Collector (registered against a
// private registry; it keeps the in-memory Recorder), and the default probability-driven
// transaction generator. It's the convenience path cmd/simulator uses;
// tests that need exact control over topology or transaction sets build
// Deps and call New directly.
func Build(cfg config.Config) (*Driver, sink.Sink) {
	rng := rand.New(rand.NewSource(cfg.Seed))

	committeeMgr := committee.NewManager()
	blockIDs := ids.NewProvider()
	msgIDs := ids.NewProvider()
	qcIDs := ids.NewProvider()
	txIDs := ids.NewProvider()
	s, err := sink.NewCollector(prometheus.NewRegistry())
	if err != nil {
		panic(err)
	}

	// The indexer is the nominal sender identity for externally-injected
	// transactions (original_source/src/indexer.rs): id 0, disjoint from
	// validator ids which start at 1.
	const indexerID = 0
	s.CreateIndexer(indexerID)

	validatorIDs := make([]uint64, 0, cfg.NumVNs)
	for i := 0; i < cfg.NumVNs; i++ {
		validatorIDs = append(validatorIDs, uint64(i+1))
	}

	shardOf := make(map[uint64]shardtx.Shard, len(validatorIDs))
	for i, id := range validatorIDs {
		shard := shardtx.Shard(i % cfg.NumShards)
		shardOf[id] = shard
		committeeMgr.Add(shard, id)
		s.CreateVN(id, uint64(shard), cfg.MinLatency)
	}
	for i := 0; i < cfg.NumShards; i++ {
		s.CreateShard(uint64(i))
	}

	vcfg := validator.Config{MaxTxPerStepPerBlock: cfg.MaxTxPerStepPerBlock, MaxBlockSize: cfg.MaxBlockSize, Delta: cfg.Delta}
	validators := make(map[uint64]*validator.Validator, len(validatorIDs))
	for _, id := range validatorIDs {
		validators[id] = validator.New(id, shardOf[id], committeeMgr, vcfg, blockIDs, msgIDs, qcIDs, s)
	}

	net := network.New(rng, cfg.MinLatency, cfg.MaxLatency)
	for _, from := range validatorIDs {
		for _, to := range validatorIDs {
			net.Connect(from, to)
		}
	}

	gen := txgen.NewDefault(cfg.NumTransactions, cfg.NumShards, cfg.Distribution(), rng, txIDs)

	d := New(Deps{
		Network:         net,
		Validators:      validators,
		Generator:       gen,
		Sink:            s,
		TimePerStep:     cfg.TimePerStep,
		PrintStatsEvery: cfg.PrintStatsEvery,
		MessageIDs:      msgIDs,
	})
	return d, s
}
