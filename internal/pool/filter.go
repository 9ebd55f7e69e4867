package pool

import "github.com/greywire/proxypool/internal/candidate"

// Filter is the configuration object Select/SelectRandom match Candidates
// against. A zero-value Filter (all fields nil) matches everything.
type Filter struct {
	Scheme        *candidate.Scheme
	Anonymity     *candidate.Anonymity
	MinStability  *float64
}

// Match reports whether c satisfies every field Filter specifies. stats may
// be nil only in the defensive case of a stats-map miss racing a concurrent
// removal; such a Candidate is treated as not matching any MinStability
// filter (but still matches scheme/anonymity-only filters, mirroring the
// upstream behavior of filtering on the Candidate's own fields regardless
// of bookkeeping state).
func (f Filter) Match(c candidate.Candidate, stats *Stats) bool {
	if f.Scheme != nil && c.Scheme != *f.Scheme {
		return false
	}
	if f.Anonymity != nil && c.Anonymity != *f.Anonymity {
		return false
	}
	if f.MinStability != nil {
		if stats == nil {
			return false
		}
		if stats.StabilityForFilter() < *f.MinStability {
			return false
		}
	}
	return true
}
