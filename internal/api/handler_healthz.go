package api

import (
	"net/http"

	"github.com/greywire/proxypool/internal/buildinfo"
)

// HandleHealthz returns a handler for GET /healthz.
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
	}
}
