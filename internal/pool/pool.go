// Package pool implements the central shared proxy pool: two disjoint
// ordered tiers of candidate.Candidate values plus a map of mutable Stats,
// all guarded by a single readers-writer lock.
//
// Splitting Stats from the tier lists was attempted in the source this
// design is distilled from and abandoned: promotion/demotion reads Stats
// and mutates tier membership together and must be atomic, and sharding by
// endpoint key does not help because tier membership is a cross-key
// concern. One lock it is.
package pool

import (
	"math/rand"
	"sync"

	"github.com/greywire/proxypool/internal/candidate"
)

// Key is the endpoint key type tier maps and Stats are indexed by.
type Key = candidate.Key

// Pool is the sole owner of tier lists and the Stats map. All mutation
// paths go through its methods; every exported method is one critical
// section.
type Pool struct {
	mu sync.RWMutex

	unstable []candidate.Candidate
	stable   []candidate.Candidate
	stats    map[Key]*Stats
}

// New returns an empty Pool.
func New() *Pool {
	return &Pool{stats: make(map[Key]*Stats)}
}

// InsertUnstable appends c to the unstable tier with fresh zero Stats if
// its endpoint key is not already present in either tier; otherwise it is a
// no-op. Returns whether the candidate was newly inserted.
func (p *Pool) InsertUnstable(c candidate.Candidate) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.insertUnstableLocked(c)
}

func (p *Pool) insertUnstableLocked(c candidate.Candidate) bool {
	key := c.Key()
	if _, exists := p.stats[key]; exists {
		return false
	}
	p.stats[key] = &Stats{}
	p.unstable = append(p.unstable, c)
	return true
}

// Extend bulk-inserts candidates into the unstable tier via InsertUnstable,
// returning the count actually inserted (novel endpoint keys).
func (p *Pool) Extend(candidates []candidate.Candidate) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range candidates {
		if p.insertUnstableLocked(c) {
			n++
		}
	}
	return n
}

// MoveToStable moves c from unstable to stable, preserving its Stats.
// Returns an *InvariantError if c is not currently in unstable.
func (p *Pool) MoveToStable(c candidate.Candidate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := indexOf(p.unstable, c.Key())
	if idx < 0 {
		return &InvariantError{Op: "MoveToStable", Key: c.Key()}
	}
	p.unstable = removeAt(p.unstable, idx)
	p.stable = append(p.stable, c)
	return nil
}

// MoveToUnstable is the symmetric counterpart of MoveToStable.
func (p *Pool) MoveToUnstable(c candidate.Candidate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := indexOf(p.stable, c.Key())
	if idx < 0 {
		return &InvariantError{Op: "MoveToUnstable", Key: c.Key()}
	}
	p.stable = removeAt(p.stable, idx)
	p.unstable = append(p.unstable, c)
	return nil
}

// RemoveUnstable deletes c from the unstable tier along with its Stats.
func (p *Pool) RemoveUnstable(c candidate.Candidate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := indexOf(p.unstable, c.Key())
	if idx < 0 {
		return &InvariantError{Op: "RemoveUnstable", Key: c.Key()}
	}
	p.unstable = removeAt(p.unstable, idx)
	delete(p.stats, c.Key())
	return nil
}

// RemoveStable deletes c from the stable tier along with its Stats.
func (p *Pool) RemoveStable(c candidate.Candidate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := indexOf(p.stable, c.Key())
	if idx < 0 {
		return &InvariantError{Op: "RemoveStable", Key: c.Key()}
	}
	p.stable = removeAt(p.stable, idx)
	delete(p.stats, c.Key())
	return nil
}

// IncSuccess records a successful probe for key: success += 1,
// consecutive_failures reset to 0.
func (p *Pool) IncSuccess(key Key) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.stats[key]
	if !ok {
		return &InvariantError{Op: "IncSuccess", Key: key}
	}
	s.incSuccess()
	return nil
}

// IncFailure records a failed probe for key: failed += 1,
// consecutive_failures += 1 (saturating).
func (p *Pool) IncFailure(key Key) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.stats[key]
	if !ok {
		return &InvariantError{Op: "IncFailure", Key: key}
	}
	s.incFailure()
	return nil
}

// StatsOf returns a snapshot read of the three values the rule cascades
// need, and whether key is present at all.
func (p *Pool) StatsOf(key Key) (stability float64, checks uint32, consecutiveFailures uint8, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, present := p.stats[key]
	if !present {
		return 0, 0, 0, false
	}
	return s.Stability(), s.Checks(), s.ConsecutiveFailures, true
}

// Random returns a uniformly chosen Candidate from the stable tier, or the
// zero value and false if stable is empty.
func (p *Pool) Random() (candidate.Candidate, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.stable) == 0 {
		return candidate.Candidate{}, false
	}
	return p.stable[rand.Intn(len(p.stable))], true
}

// Select returns a materialized copy of every stable Candidate matching
// filter.
func (p *Pool) Select(filter Filter) []candidate.Candidate {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]candidate.Candidate, 0, len(p.stable))
	for _, c := range p.stable {
		if filter.Match(c, p.stats[c.Key()]) {
			out = append(out, c)
		}
	}
	return out
}

// SelectRandom is Select followed by a uniform pick; false if the result is
// empty.
func (p *Pool) SelectRandom(filter Filter) (candidate.Candidate, bool) {
	matches := p.Select(filter)
	if len(matches) == 0 {
		return candidate.Candidate{}, false
	}
	return matches[rand.Intn(len(matches))], true
}

// StableCount returns len(stable).
func (p *Pool) StableCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.stable)
}

// UnstableCount returns len(unstable).
func (p *Pool) UnstableCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.unstable)
}

// SnapshotStable returns a read-locked copy of the current stable tier,
// used by the Validator to drive check_stable without holding the lock
// across probe I/O.
func (p *Pool) SnapshotStable() []candidate.Candidate {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]candidate.Candidate, len(p.stable))
	copy(out, p.stable)
	return out
}

// SnapshotUnstable is the unstable-tier counterpart of SnapshotStable.
func (p *Pool) SnapshotUnstable() []candidate.Candidate {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]candidate.Candidate, len(p.unstable))
	copy(out, p.unstable)
	return out
}

func indexOf(tier []candidate.Candidate, key Key) int {
	for i, c := range tier {
		if c.Key() == key {
			return i
		}
	}
	return -1
}

func removeAt(tier []candidate.Candidate, idx int) []candidate.Candidate {
	tier[idx] = tier[len(tier)-1]
	return tier[:len(tier)-1]
}
