package pool

import "math"

// Stats are the mutable per-endpoint counters that drive promotion,
// demotion and eviction decisions. One Stats value exists for every
// endpoint key currently present in either tier.
type Stats struct {
	Success              uint32
	Failed                uint32
	ConsecutiveFailures   uint8
}

// Checks is the total number of probes recorded for this endpoint.
func (s Stats) Checks() uint32 {
	return s.Success + s.Failed
}

// Stability is success / checks. When no probe has landed yet (checks == 0)
// the rule evaluators must not treat the endpoint as demotable, so this
// method follows spec.md §3/§4.2's "treated as 1.0" convention.
func (s Stats) Stability() float64 {
	checks := s.Checks()
	if checks == 0 {
		return 1.0
	}
	return float64(s.Success) / float64(checks)
}

// StabilityForFilter is the variant used by Filter.Match: Candidates with no
// data are treated as stability 0, per spec.md §4.1's Filter description,
// which is the opposite convention from the rule-cascade's "not yet
// demotable" default. The two are deliberately different: an unprobed
// Candidate should not survive a minStability filter, but it also should
// not be punished by the demotion cascade before it has had a chance to be
// probed at all.
func (s Stats) StabilityForFilter() float64 {
	checks := s.Checks()
	if checks == 0 {
		return 0
	}
	return float64(s.Success) / float64(checks)
}

func (s *Stats) incSuccess() {
	s.Success++
	s.ConsecutiveFailures = 0
}

func (s *Stats) incFailure() {
	s.Failed++
	if s.ConsecutiveFailures < math.MaxUint8 {
		s.ConsecutiveFailures++
	}
}
