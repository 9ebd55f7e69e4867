package api

import "net/http"

// writeInvalidArgument responds 400 for a malformed query parameter. The
// query API has no other error class — no bodies are decoded, no backing
// service can return NOT_FOUND/CONFLICT, so this is the only error path.
func writeInvalidArgument(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "INVALID_ARGUMENT", message)
}
