package api

import "net/http"

const banner = `proxypool query API

  GET /get_status                                  -> {total, stable, unstable}
  GET /get?ssl_type=&anonymity=&stability=          -> one Candidate, or null
  GET /get_all?ssl_type=&anonymity=&stability=      -> matching list
  GET /reload?password=                             -> {"success": bool}
`

// HandleBanner returns a handler for GET /, a plain-text usage banner.
func HandleBanner() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(banner))
	}
}
