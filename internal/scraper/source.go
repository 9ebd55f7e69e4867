// Package scraper runs Sources on a schedule, deduplicates their output,
// and feeds novel Candidates into the Pool. A Source fetches through
// whatever netutil.Downloader it is built with; cmd/proxypool builds every
// Source with a direct downloader, so a failed fetch is not retried
// through the Pool's own proxies.
package scraper

import (
	"context"

	"github.com/greywire/proxypool/internal/candidate"
)

// Source is the external collaborator spec.md §1 keeps out of core scope:
// anything that can produce a batch of Candidates. The HTML/regex
// extraction mechanics of a concrete Source are not this package's
// concern; Scraper only needs Fetch.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]candidate.Candidate, error)
}
