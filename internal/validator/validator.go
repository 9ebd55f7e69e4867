// Package validator implements the two-phase liveness revalidation round:
// check_stable then check_unstable, each run over a bounded-parallel worker
// group, applying promotion/demotion/eviction rule cascades to the Pool.
package validator

import (
	"context"
	"log"
	"sync"

	"github.com/greywire/proxypool/internal/candidate"
	"github.com/greywire/proxypool/internal/pool"
)

// Validator runs validation rounds against a Pool.
type Validator struct {
	Pool   *pool.Pool
	Config Config
	Prober Prober

	// RoundSummary, if non-nil, is invoked after each round with the
	// movement counts of that round. Used by the supplemental history
	// store (internal/history); nil is a valid no-op.
	RoundSummary func(Summary)
}

// Summary counts tier movements performed by one Round call.
type Summary struct {
	Promotions int
	Demotions  int
	Evictions  int
}

// New builds a Validator with the default HTTPProber.
func New(p *pool.Pool, cfg Config) *Validator {
	return &Validator{
		Pool:   p,
		Config: cfg,
		Prober: &HTTPProber{
			Timeout:  cfg.CheckTimeout,
			URLHTTP:  cfg.URLHTTP,
			URLHTTPS: cfg.URLHTTPS,
		},
	}
}

// Round executes check_stable followed by check_unstable exactly once.
// Both tier snapshots are taken under the Pool's read lock before either
// phase starts probing, so a Candidate demoted during check_stable is not
// re-probed by this round's check_unstable: its membership in unstable is
// a side effect of check_stable's own execution, not of the pre-round
// snapshot check_unstable schedules against.
func (v *Validator) Round(ctx context.Context) Summary {
	stableSnapshot := v.Pool.SnapshotStable()
	unstableSnapshot := v.Pool.SnapshotUnstable()

	var summary Summary
	summary.Demotions = v.checkStable(ctx, stableSnapshot)
	summary.Promotions, summary.Evictions = v.checkUnstable(ctx, unstableSnapshot)

	if v.RoundSummary != nil {
		v.RoundSummary(summary)
	}
	return summary
}

func (v *Validator) workerLimit() int {
	if v.Config.MaxWorkers > 0 {
		return v.Config.MaxWorkers
	}
	return 1
}

func (v *Validator) checkStable(ctx context.Context, snapshot []candidate.Candidate) int {
	sem := make(chan struct{}, v.workerLimit())
	var wg sync.WaitGroup
	var mu sync.Mutex
	demotions := 0

	for _, c := range snapshot {
		wg.Add(1)
		sem <- struct{}{}
		go func(c candidate.Candidate) {
			defer wg.Done()
			defer func() { <-sem }()
			defer recoverInvariantViolation("checkStable")

			ok := v.Prober.Probe(ctx, c)
			v.recordProbe(c, ok)

			stability, _, consecutiveFailures, present := v.Pool.StatsOf(c.Key())
			if !present {
				// Concurrently removed by a cross-phase effect; tolerated
				// (logged, no panic) per spec.md's edge-case note.
				log.Printf("validator: %s absent from pool at check_stable, skipping", c.Key())
				return
			}

			if v.Config.decideStable(stability, consecutiveFailures) == demote {
				if err := v.Pool.MoveToUnstable(c); err != nil {
					panic(err)
				}
				mu.Lock()
				demotions++
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()
	return demotions
}

func (v *Validator) checkUnstable(ctx context.Context, snapshot []candidate.Candidate) (promotions, evictions int) {
	sem := make(chan struct{}, v.workerLimit())
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, c := range snapshot {
		wg.Add(1)
		sem <- struct{}{}
		go func(c candidate.Candidate) {
			defer wg.Done()
			defer func() { <-sem }()
			defer recoverInvariantViolation("checkUnstable")

			ok := v.Prober.Probe(ctx, c)
			v.recordProbe(c, ok)

			stability, checks, consecutiveFailures, present := v.Pool.StatsOf(c.Key())
			if !present {
				log.Printf("validator: %s absent from pool at check_unstable, skipping", c.Key())
				return
			}

			switch v.Config.decideUnstable(stability, checks, consecutiveFailures) {
			case promote:
				if err := v.Pool.MoveToStable(c); err != nil {
					panic(err)
				}
				mu.Lock()
				promotions++
				mu.Unlock()
			case evict:
				if err := v.Pool.RemoveUnstable(c); err != nil {
					panic(err)
				}
				mu.Lock()
				evictions++
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()
	return promotions, evictions
}

// recoverInvariantViolation is deferred at the root of every probe goroutine.
// Pool invariant violations (pool.InvariantError) are programmer errors that
// must crash their task loudly rather than be swallowed; since a panic in a
// detached goroutine would otherwise take the whole process down with it,
// each goroutine recovers on its own and logs, so one bad transition loses
// only its own candidate for this round instead of the entire validator.
func recoverInvariantViolation(phase string) {
	if r := recover(); r != nil {
		log.Printf("validator: %s: invariant violation: %v", phase, r)
	}
}

func (v *Validator) recordProbe(c candidate.Candidate, success bool) {
	var err error
	if success {
		err = v.Pool.IncSuccess(c.Key())
	} else {
		err = v.Pool.IncFailure(c.Key())
	}
	if err != nil {
		// Key vanished between snapshot and probe completion: a
		// cross-phase effect, logged and tolerated per spec.md §4.2.
		log.Printf("validator: probe result for vanished key %s: %v", c.Key(), err)
	}
}
