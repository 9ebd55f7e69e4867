package validator

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/greywire/proxypool/internal/candidate"
)

// Prober issues one liveness check against c and reports whether it
// succeeded. Implementations must not block past the timeout they were
// configured with; the Validator treats a Prober call itself as the
// timeout boundary and does not additionally wrap it in a context
// deadline.
type Prober interface {
	Probe(ctx context.Context, c candidate.Candidate) bool
}

// HTTPProber is the default Prober: it builds a fresh http.Client per probe
// with c installed as the outbound proxy, and issues a HEAD request to the
// configured target URL for c's scheme. A 2xx response before the timeout
// is success; any transport error, non-2xx status, or timeout is failure.
// Building the client itself failing is also recorded as a failure — per
// spec.md §4.2, a misconfigured proxy is punished the same as an
// unreachable one.
type HTTPProber struct {
	Timeout  time.Duration
	URLHTTP  string
	URLHTTPS string
}

func (hp *HTTPProber) Probe(ctx context.Context, c candidate.Candidate) bool {
	proxyURL, err := url.Parse(c.ProxyURL())
	if err != nil {
		return false
	}

	target := hp.URLHTTP
	if c.Scheme == candidate.HTTPS {
		target = hp.URLHTTPS
	}

	client := &http.Client{
		Timeout: hp.Timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyURL(proxyURL),
		},
	}

	reqCtx, cancel := context.WithTimeout(ctx, hp.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
