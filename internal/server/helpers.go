package server

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// QueryBool reports whether a query parameter is set to a true value.
func QueryBool(r *http.Request, name string) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(name))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// validateSymbol normalises a ticker and rejects anything that is not a
// plain US symbol such as AAPL or BRK.B.
func validateSymbol(symbol string) (string, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolPattern.MatchString(symbol) || strings.Contains(symbol, "..") {
		return "", false
	}
	return symbol, true
}

// pathSymbol reads the single path segment after prefix as a ticker.
// Any further segment makes the path invalid.
func pathSymbol(r *http.Request, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(r.URL.Path, prefix)
	if !ok || strings.Contains(rest, "/") {
		return "", false
	}
	return validateSymbol(rest)
}

const dateLayout = "2006-01-02"

// maxDateSpan bounds how far apart from and to may be.
const maxDateSpan = 5 * 366 * 24 * time.Hour

// parseDateRange reads from/to query parameters as YYYY-MM-DD dates in UTC.
// Missing values fall back to defFrom/defTo. The range is inclusive of to.
func parseDateRange(r *http.Request, defFrom, defTo time.Time) (time.Time, time.Time, string) {
	q := r.URL.Query()
	from, to := defFrom, defTo

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, "from must be a YYYY-MM-DD date"
		}
		from = t
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, "to must be a YYYY-MM-DD date"
		}
		to = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, "from must not be after to"
	}
	if to.Sub(from) > maxDateSpan {
		return time.Time{}, time.Time{}, "date range must not exceed 5 years"
	}
	return from, to, ""
}

// day truncates t to midnight UTC.
func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
