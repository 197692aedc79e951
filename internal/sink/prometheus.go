package sink

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stringhandler/dansim/internal/blockdag"
)

// Collector is the default Sink for real runs: it keeps the full in-memory
// Recorder (so CountersFor and print_stats still work without a separate
// query path) and additionally mirrors the three aggregate counters into a
// prometheus.CounterVec labeled by vn_id, registered against reg. Modeled
// on the Registry/Counter split in luxfi-consensus's metrics package.
type Collector struct {
	*Recorder

	leavesCreated     *prometheus.CounterVec
	requestBlockCount *prometheus.CounterVec
	leaderFailures    *prometheus.CounterVec
}

// NewCollector registers the three counter vectors against reg and returns
// a ready-to-use Collector. reg must not be nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	leavesCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dansim_leaves_created_total",
		Help: "Total blocks proposed, by validator.",
	}, []string{"vn_id"})
	requestBlockCount := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dansim_request_block_total",
		Help: "Total RequestBlock messages emitted, by validator.",
	}, []string{"vn_id"})
	leaderFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dansim_leader_failures_total",
		Help: "Total view changes triggered by leader timeout, by validator.",
	}, []string{"vn_id"})

	for _, c := range []prometheus.Collector{leavesCreated, requestBlockCount, leaderFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		Recorder:          NewRecorder(),
		leavesCreated:     leavesCreated,
		requestBlockCount: requestBlockCount,
		leaderFailures:    leaderFailures,
	}, nil
}

func label(vnID uint64) string {
	return strconv.FormatUint(vnID, 10)
}

// OnCreateLeaf overrides Recorder's to additionally bump the Prometheus
// counter; it still records the event and folds the in-memory counter via
// the embedded Recorder.
func (c *Collector) OnCreateLeaf(block *blockdag.Block, t uint64) {
	c.Recorder.OnCreateLeaf(block, t)
	c.leavesCreated.WithLabelValues(label(block.ProposedBy)).Inc()
}

func (c *Collector) OnRequestBlock(vnID uint64) {
	c.Recorder.OnRequestBlock(vnID)
	c.requestBlockCount.WithLabelValues(label(vnID)).Inc()
}

func (c *Collector) OnLeaderFailure(vnID uint64) {
	c.Recorder.OnLeaderFailure(vnID)
	c.leaderFailures.WithLabelValues(label(vnID)).Inc()
}
