package scraper

import (
	"context"
	"log"

	"github.com/greywire/proxypool/internal/candidate"
	"github.com/greywire/proxypool/internal/pool"
)

// Scraper runs every enabled Source once per Round, in sequence, and
// extends the Pool with what it collected. A Source error is logged and
// does not abort the round — the remaining Sources still run.
type Scraper struct {
	Pool    *pool.Pool
	Sources []Source
}

// New builds a Scraper over the given sources.
func New(p *pool.Pool, sources []Source) *Scraper {
	return &Scraper{Pool: p, Sources: sources}
}

// Round runs every Source sequentially, collecting and deduplicating their
// output (by endpoint key, within this round's batch) before calling
// Pool.Extend once per Source. Returns the total number of Candidates
// newly inserted into the unstable tier.
func (s *Scraper) Round(ctx context.Context) int {
	inserted := 0
	for _, src := range s.Sources {
		candidates, err := src.Fetch(ctx)
		if err != nil {
			log.Printf("scraper: source %q failed: %v", src.Name(), err)
			continue
		}
		deduped := dedupeBatch(candidates)
		inserted += s.Pool.Extend(deduped)
	}
	return inserted
}

// dedupeBatch collapses a single Source's result to one Candidate per
// endpoint key before it ever reaches Pool.Extend. Pool.InsertUnstable
// already dedupes against the Pool's existing state, so this step is an
// optimization, not a correctness requirement: it only saves redundant
// key lookups under the Pool lock for a Source that returns the same
// endpoint twice in one batch (common with paginated listing sites).
func dedupeBatch(candidates []candidate.Candidate) []candidate.Candidate {
	seen := make(map[candidate.Key]struct{}, len(candidates))
	out := make([]candidate.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.Key()]; ok {
			continue
		}
		seen[c.Key()] = struct{}{}
		out = append(out, c)
	}
	return out
}
