package errs

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// codes maps application error codes to http status codes.
var codes = map[string]int{
	EUNAUTHENTICATED: http.StatusUnauthorized,
	EUNAUTHORIZED:    http.StatusForbidden,
	ENOTFOUND:        http.StatusNotFound,
	ECONFLICT:        http.StatusConflict,
	EINVALID:         http.StatusBadRequest,
	EMETHOD:          http.StatusMethodNotAllowed,
	EUNAVAILABLE:     http.StatusServiceUnavailable,
	EINTERNAL:        http.StatusInternalServerError,
}

// StatusCode returns the http status code for an application error code.
func StatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// ReturnError writes err to the response as json: {"error": "<message>"}.
// Internal and store failures are logged, everything else is the client's problem.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)
	if code == EINTERNAL || code == EUNAVAILABLE {
		LogError(r, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(code))
	if err := json.NewEncoder(w).Encode(&errorResponse{Error: message}); err != nil {
		LogError(r, err)
	}
}

// errorResponse is the json body of every error response.
type errorResponse struct {
	Error string `json:"error"`
}

// LogError logs an error along with the request it occurred in.
func LogError(r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"err", err,
	)
}
