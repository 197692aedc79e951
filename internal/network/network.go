// Package network simulates point-to-point message delivery between
// validators: directed edges with a fixed, once-sampled latency and
// per-edge FIFO queues. Order across distinct edges is unspecified by
// design (see spec §4.2/§5); consensus correctness must not depend on it.
package network

import (
	"log"
	"math/rand"
	"os"

	"github.com/stringhandler/dansim/internal/message"
)

type edgeKey struct {
	from, to uint64
}

type scheduled struct {
	arrive uint64
	msg    message.Message
}

type edge struct {
	latency uint64
	queue   []scheduled
}

// Envelope pairs a delivered message with its destination validator.
type Envelope struct {
	To  uint64
	Msg message.Message
}

// Network owns every directed edge between validators.
type Network struct {
	rng         *rand.Rand
	minLatency  uint64
	maxLatency  uint64
	edges       map[edgeKey]*edge
	logger      *log.Logger
}

// New returns a Network that samples new edges' latency uniformly from
// [minLatency, maxLatency] using rng. rng must be supplied by the caller so
// simulation runs are reproducible given a fixed seed.
func New(rng *rand.Rand, minLatency, maxLatency uint64) *Network {
	return &Network{
		rng:        rng,
		minLatency: minLatency,
		maxLatency: maxLatency,
		edges:      make(map[edgeKey]*edge),
		logger:     log.New(os.Stdout, "NETWORK: ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// Connect samples (once) the fixed latency for the directed edge from->to.
// Calling it again for an already-connected pair is a no-op. Self-edges
// (from == to) always get zero latency so a leader can deliver to itself
// within the same tick.
func (n *Network) Connect(from, to uint64) {
	key := edgeKey{from, to}
	if _, ok := n.edges[key]; ok {
		return
	}
	latency := uint64(0)
	if from != to {
		latency = n.sampleLatency()
	}
	n.edges[key] = &edge{latency: latency}
}

func (n *Network) sampleLatency() uint64 {
	if n.maxLatency <= n.minLatency {
		return n.minLatency
	}
	span := n.maxLatency - n.minLatency + 1
	return n.minLatency + uint64(n.rng.Int63n(int64(span)))
}

// Send enqueues msg for delivery on the from->to edge, scheduled to arrive
// at now + the edge's latency. Connect must have been called for the pair
// beforehand; Send is a no-op (logged) for unknown edges.
func (n *Network) Send(from, to uint64, msg message.Message, now uint64) {
	e, ok := n.edges[edgeKey{from, to}]
	if !ok {
		n.logger.Printf("send on unconnected edge %d->%d dropped", from, to)
		return
	}
	e.queue = append(e.queue, scheduled{arrive: now + e.latency, msg: msg})
}

// Update scans every edge and returns every message scheduled to arrive at
// or before now, in FIFO order within each edge. Messages returned are
// removed from their edge's queue. Order across edges is unspecified.
func (n *Network) Update(now uint64) []Envelope {
	var out []Envelope
	for key, e := range n.edges {
		i := 0
		for i < len(e.queue) && e.queue[i].arrive <= now {
			out = append(out, Envelope{To: key.to, Msg: e.queue[i].msg})
			i++
		}
		if i > 0 {
			e.queue = e.queue[i:]
		}
	}
	return out
}
