package pool

import (
	"encoding/json"
	"net"
	"strconv"
	"strings"

	"github.com/greywire/proxypool/internal/candidate"
)

// wireCandidate is the textual, cross-version-stable representation of a
// Candidate used by SnapshotForPersist/LoadSnapshot. The endpoint key is
// serialized as a single "ip:port" string per spec.md §9 ("Serialized
// keys"), not as a structured object, so an older/newer reader can still
// locate an endpoint's Stats by string key alone.
type wireCandidate struct {
	Key       string `json:"key"`
	Anonymity string `json:"anonymity"`
	Scheme    string `json:"scheme"`
}

type wireStats struct {
	Success             uint32 `json:"success"`
	Failed              uint32 `json:"failed"`
	ConsecutiveFailures uint8  `json:"consecutive_failures"`
}

type wirePool struct {
	Unstable []wireCandidate      `json:"unstable"`
	Stable   []wireCandidate      `json:"stable"`
	Stats    map[string]wireStats `json:"stats"`
}

// SnapshotForPersist serializes the whole Pool to a stable JSON form under
// the read lock. Unknown fields are tolerated on load; this is a pure
// snapshot, not a transaction log.
func (p *Pool) SnapshotForPersist() ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	w := wirePool{
		Unstable: make([]wireCandidate, len(p.unstable)),
		Stable:   make([]wireCandidate, len(p.stable)),
		Stats:    make(map[string]wireStats, len(p.stats)),
	}
	for i, c := range p.unstable {
		w.Unstable[i] = toWireCandidate(c)
	}
	for i, c := range p.stable {
		w.Stable[i] = toWireCandidate(c)
	}
	for key, s := range p.stats {
		w.Stats[string(key)] = wireStats{
			Success:             s.Success,
			Failed:              s.Failed,
			ConsecutiveFailures: s.ConsecutiveFailures,
		}
	}
	return json.Marshal(w)
}

func toWireCandidate(c candidate.Candidate) wireCandidate {
	return wireCandidate{
		Key:       string(c.Key()),
		Anonymity: c.Anonymity.String(),
		Scheme:    c.Scheme.String(),
	}
}

// LoadSnapshot parses bytes produced by SnapshotForPersist (or an absent/
// corrupt byte slice) into a fresh Pool. Per spec.md §4.4/§6, an absent or
// corrupt file is tolerated and yields an empty Pool rather than an error
// that would block startup.
func LoadSnapshot(data []byte) *Pool {
	p := New()
	if len(data) == 0 {
		return p
	}
	var w wirePool
	if err := json.Unmarshal(data, &w); err != nil {
		return New()
	}
	for _, wc := range w.Unstable {
		if c, ok := fromWireCandidate(wc); ok {
			p.unstable = append(p.unstable, c)
			p.stats[c.Key()] = statsFromWire(w.Stats[wc.Key])
		}
	}
	for _, wc := range w.Stable {
		if c, ok := fromWireCandidate(wc); ok {
			p.stable = append(p.stable, c)
			p.stats[c.Key()] = statsFromWire(w.Stats[wc.Key])
		}
	}
	return p
}

func statsFromWire(w wireStats) *Stats {
	return &Stats{
		Success:             w.Success,
		Failed:              w.Failed,
		ConsecutiveFailures: w.ConsecutiveFailures,
	}
}

func fromWireCandidate(wc wireCandidate) (candidate.Candidate, bool) {
	host, portStr, err := net.SplitHostPort(wc.Key)
	if err != nil {
		return candidate.Candidate{}, false
	}
	ip := net.ParseIP(host)
	if ip == nil || ip.To4() == nil {
		return candidate.Candidate{}, false
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return candidate.Candidate{}, false
	}
	anonymity := candidate.Transparent
	switch strings.ToLower(wc.Anonymity) {
	case "elite":
		anonymity = candidate.Elite
	case "anonymous":
		anonymity = candidate.Anonymous
	}
	scheme := candidate.HTTP
	if strings.EqualFold(wc.Scheme, "HTTPS") {
		scheme = candidate.HTTPS
	}
	return candidate.Candidate{
		IP:        ip.To4(),
		Port:      uint16(port),
		Anonymity: anonymity,
		Scheme:    scheme,
	}, true
}
