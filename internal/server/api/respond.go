// Package api provides the HTTP API handlers exposing landmark reporters,
// menus, video mode and recordings.
package api

import (
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		sonic.ConfigStd.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	return sonic.ConfigStd.NewDecoder(r.Body).Decode(v)
}

// pathParts splits the request path below prefix into its segments.
func pathParts(r *http.Request, prefix string) []string {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
