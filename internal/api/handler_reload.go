package api

import (
	"net/http"

	"github.com/greywire/proxypool/internal/reload"
)

type reloadResponse struct {
	Success bool `json:"success"`
}

// HandleReload returns a handler for GET /reload?password=. It never
// blocks: a matching password sets the reload flag and the workers pick it
// up at their next one-second poll tick, after any in-flight round
// (spec.md §4.5/§6).
func HandleReload(flag *reload.Flag, passwords *reload.PasswordGate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok := passwords.Check(r.URL.Query().Get("password"))
		if ok {
			flag.Set()
		}
		WriteJSON(w, http.StatusOK, reloadResponse{Success: ok})
	}
}
