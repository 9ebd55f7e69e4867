package api

import (
	"net/http"
	"strconv"

	"github.com/greywire/proxypool/internal/candidate"
	"github.com/greywire/proxypool/internal/pool"
)

// parseFilter builds a pool.Filter from the ssl_type/anonymity/stability
// query parameters shared by /get and /get_all. An unset parameter leaves
// the corresponding Filter field nil, matching anything. hasParams reports
// whether any recognized parameter was present at all: /get uses it to
// choose Random() over SelectRandom(filter) (spec.md §6); /get_all ignores
// it, since Select with an empty Filter already returns all of stable.
func parseFilter(r *http.Request) (filter pool.Filter, hasParams bool, err error) {
	q := r.URL.Query()

	if raw := q.Get("ssl_type"); raw != "" {
		hasParams = true
		scheme := candidate.ParseScheme(raw)
		filter.Scheme = &scheme
	}

	if raw := q.Get("anonymity"); raw != "" {
		hasParams = true
		anonymity := candidate.ParseAnonymity(raw)
		filter.Anonymity = &anonymity
	}

	if raw := q.Get("stability"); raw != "" {
		hasParams = true
		v, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil || v < 0 || v > 1 {
			return pool.Filter{}, false, errInvalidStability
		}
		filter.MinStability = &v
	}

	return filter, hasParams, nil
}

var errInvalidStability = &invalidParamError{"stability must be a float in [0, 1]"}

type invalidParamError struct{ msg string }

func (e *invalidParamError) Error() string { return e.msg }
