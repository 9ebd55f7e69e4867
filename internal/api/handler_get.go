package api

import (
	"net/http"

	"github.com/greywire/proxypool/internal/pool"
)

// HandleGet returns a handler for GET /get: one Candidate chosen by
// Random() when no query parameters are supplied, else by
// SelectRandom(filter). Responds with JSON null if the pool (or the
// filtered subset) is empty.
func HandleGet(p *pool.Pool, lookup CountryLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, hasParams, err := parseFilter(r)
		if err != nil {
			writeInvalidArgument(w, err.Error())
			return
		}

		var (
			c  candidateView
			ok bool
		)
		if !hasParams {
			cand, found := p.Random()
			if found {
				c, ok = toCandidateView(cand, lookup), true
			}
		} else {
			cand, found := p.SelectRandom(filter)
			if found {
				c, ok = toCandidateView(cand, lookup), true
			}
		}

		if !ok {
			WriteJSON(w, http.StatusOK, nil)
			return
		}
		WriteJSON(w, http.StatusOK, c)
	}
}
