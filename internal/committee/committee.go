// Package committee implements the shard -> committee registry: the
// read-only-after-setup mapping from shard to its ordered validator set,
// and deterministic round-robin leader rotation over it.
package committee

import (
	"sort"
	"sync"

	"github.com/stringhandler/dansim/internal/shardtx"
)

// Manager is safe for concurrent reads; Add is expected to run only during
// setup before any validator starts ticking.
type Manager struct {
	mu      sync.RWMutex
	members map[shardtx.Shard][]uint64
}

// NewManager returns an empty registry.
func NewManager() *Manager {
	return &Manager{members: make(map[shardtx.Shard][]uint64)}
}

// Add appends validatorID to shard's committee, keeping it sorted.
func (m *Manager) Add(shard shardtx.Shard, validatorID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[shard] = append(m.members[shard], validatorID)
	sort.Slice(m.members[shard], func(i, j int) bool {
		return m.members[shard][i] < m.members[shard][j]
	})
}

// Get returns a copy of shard's sorted committee.
func (m *Manager) Get(shard shardtx.Shard) []uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.members[shard]
	out := make([]uint64, len(src))
	copy(out, src)
	return out
}

// Size returns the committee size n used in quorum arithmetic.
func (m *Manager) Size(shard shardtx.Shard) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.members[shard])
}

// NextLeader returns the validator id that follows currentLeader in shard's
// sorted committee, wrapping modulo size. currentLeader == 0 (genesis, no
// previous proposer) returns the first element.
func (m *Manager) NextLeader(shard shardtx.Shard, currentLeader uint64) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	members := m.members[shard]
	if len(members) == 0 {
		return 0
	}
	if currentLeader == 0 {
		return members[0]
	}
	for i, id := range members {
		if id == currentLeader {
			return members[(i+1)%len(members)]
		}
	}
	// currentLeader isn't a member of this shard (shouldn't happen on the
	// happy path); fall back to the first member rather than guessing.
	return members[0]
}
