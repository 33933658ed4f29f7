package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"financeiro/internal/core"
)

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// isHTMX reports whether r was issued by htmx and expects a partial.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// barWidth scales cents against max to a rounded percentage. Non-zero values
// stay visible.
func barWidth(cents, max int64) int {
	if max <= 0 || cents <= 0 {
		return 0
	}
	width := int((cents*100 + max/2) / max)
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// apiError is the body of every JSON error response.
type apiError struct {
	Error string `json:"error"`
}

// periodQuery renders the query string selecting p.
func periodQuery(p core.Period) string {
	return "year=" + strconv.Itoa(p.Year) + "&month=" + strconv.Itoa(p.Month)
}
