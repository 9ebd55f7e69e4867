package api

import (
	"net/http"

	"github.com/greywire/proxypool/internal/pool"
)

// HandleGetAll returns a handler for GET /get_all: the full stable set when
// no query parameters are supplied, else the matching subset.
func HandleGetAll(p *pool.Pool, lookup CountryLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, _, err := parseFilter(r)
		if err != nil {
			writeInvalidArgument(w, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, toCandidateViews(p.Select(filter), lookup))
	}
}
