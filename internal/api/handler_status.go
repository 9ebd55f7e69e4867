package api

import (
	"net/http"

	"github.com/greywire/proxypool/internal/pool"
)

type statusResponse struct {
	Total    int `json:"total"`
	Stable   int `json:"stable"`
	Unstable int `json:"unstable"`
}

// HandleGetStatus returns a handler for GET /get_status.
func HandleGetStatus(p *pool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stable := p.StableCount()
		unstable := p.UnstableCount()
		WriteJSON(w, http.StatusOK, statusResponse{
			Total:    stable + unstable,
			Stable:   stable,
			Unstable: unstable,
		})
	}
}
