package api

import (
	"net/netip"

	"github.com/greywire/proxypool/internal/candidate"
)

// CountryLookup resolves a best-effort country code for an IP. Nil means no
// GeoIP service is wired in; candidateView.Country is then simply omitted.
type CountryLookup func(ip netip.Addr) string

// candidateView is the JSON shape returned for a Candidate. net.IP already
// marshals to its dotted-quad text form, but Anonymity/Scheme are plain
// ints with no JSON tags of their own, so the API renders them through
// their String() form rather than leaking the underlying enum integers.
type candidateView struct {
	IP        string `json:"ip"`
	Port      uint16 `json:"port"`
	Anonymity string `json:"anonymity"`
	Scheme    string `json:"scheme"`
	Country   string `json:"country,omitempty"`
}

func toCandidateView(c candidate.Candidate, lookup CountryLookup) candidateView {
	v := candidateView{
		IP:        c.IP.String(),
		Port:      c.Port,
		Anonymity: c.Anonymity.String(),
		Scheme:    c.Scheme.String(),
	}
	if lookup != nil {
		if addr, ok := netip.AddrFromSlice(c.IP); ok {
			v.Country = lookup(addr)
		}
	}
	return v
}

func toCandidateViews(cs []candidate.Candidate, lookup CountryLookup) []candidateView {
	out := make([]candidateView, len(cs))
	for i, c := range cs {
		out[i] = toCandidateView(c, lookup)
	}
	return out
}
