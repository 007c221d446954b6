package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/huangsam/timesheet/core"
	"github.com/huangsam/timesheet/internal/iocache"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFailure writes {success:false, error} as the holiday endpoints do.
func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// statusFor maps core and store errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNoSource):
		return http.StatusBadRequest
	case errors.Is(err, iocache.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeFailed writes the error body for err. Server-side failures are logged with the request id.
func (s *Server) writeFailed(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("request_id", requestIDFrom(r.Context())).Msg("Request failed")
	}
	writeError(w, status, err.Error())
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
