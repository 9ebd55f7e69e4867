// Package candidate defines the immutable proxy endpoint value and its
// parsing rules.
package candidate

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Anonymity is the observed anonymity level of a proxy endpoint.
type Anonymity int

const (
	Transparent Anonymity = iota
	Anonymous
	Elite
)

func (a Anonymity) String() string {
	switch a {
	case Elite:
		return "elite"
	case Anonymous:
		return "anonymous"
	default:
		return "transparent"
	}
}

// ParseAnonymity applies the substring rules fixed by the data model: a
// source text containing "高" denotes Elite, "普" denotes Anonymous, and
// anything else is Transparent. These rules are deliberately forgiving and
// must not be tightened — tightening them changes behavior across source
// sites that were never standardized upstream.
func ParseAnonymity(raw string) Anonymity {
	switch {
	case strings.Contains(raw, "高"):
		return Elite
	case strings.Contains(raw, "普"):
		return Anonymous
	default:
		return Transparent
	}
}

// Scheme is the outbound scheme a proxy endpoint speaks.
type Scheme int

const (
	HTTP Scheme = iota
	HTTPS
)

func (s Scheme) String() string {
	if s == HTTPS {
		return "HTTPS"
	}
	return "HTTP"
}

// ParseScheme mirrors the source text rule: a mention of "HTTPS" or "https"
// selects HTTPS, anything else HTTP.
func ParseScheme(raw string) Scheme {
	if strings.Contains(raw, "HTTPS") || strings.Contains(raw, "https") {
		return HTTPS
	}
	return HTTP
}

// Key is the endpoint key used for deduplication, lookup and serialization:
// the (ip, port) pair in its canonical "ip:port" textual form.
type Key string

// NewKey builds the canonical textual key for an IPv4 address and port.
func NewKey(ip net.IP, port uint16) Key {
	return Key(fmt.Sprintf("%s:%d", ip.String(), port))
}

// Candidate is the immutable value describing one proxy endpoint. Equality
// and hashing are defined solely by Key(); Anonymity and Scheme may be
// re-observed with a different value without creating a new logical entry.
type Candidate struct {
	IP        net.IP
	Port      uint16
	Anonymity Anonymity
	Scheme    Scheme
}

// Key returns the endpoint key this Candidate is stored under.
func (c Candidate) Key() Key {
	return NewKey(c.IP, c.Port)
}

// New constructs a Candidate from raw source fields, applying the parsing
// rules for anonymity and scheme. ipStr must be a dotted-quad IPv4 address;
// portStr must parse as an integer in [1, 65535].
func New(ipStr, portStr, anonymityRaw, schemeRaw string) (Candidate, error) {
	ip := net.ParseIP(strings.TrimSpace(ipStr))
	if ip == nil || ip.To4() == nil {
		return Candidate{}, fmt.Errorf("candidate: %q is not a dotted-quad IPv4 address", ipStr)
	}
	port, err := strconv.ParseUint(strings.TrimSpace(portStr), 10, 32)
	if err != nil || port < 1 || port > 65535 {
		return Candidate{}, fmt.Errorf("candidate: %q is not a valid port (1-65535)", portStr)
	}
	return Candidate{
		IP:        ip.To4(),
		Port:      uint16(port),
		Anonymity: ParseAnonymity(anonymityRaw),
		Scheme:    ParseScheme(schemeRaw),
	}, nil
}

// ProxyURL returns the URL this Candidate should be dialed as an outbound
// HTTP(S) proxy, i.e. "<scheme>://<ip>:<port>" in lowercase scheme form,
// suitable for http.Transport.Proxy / http.ProxyURL.
func (c Candidate) ProxyURL() string {
	scheme := "http"
	if c.Scheme == HTTPS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.IP.String(), c.Port)
}
