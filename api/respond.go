package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nineoclock/relay"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to marshal JSON response", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Warn("failed to write JSON response body", "err", err)
	}
}

// errorEnvelope is the body of every non-2xx response.
type errorEnvelope struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func statusForKind(k relay.Kind) int {
	switch k {
	case relay.KindValidation:
		return http.StatusBadRequest
	case relay.KindNotFound:
		return http.StatusNotFound
	case relay.KindConflict:
		return http.StatusConflict
	case relay.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status code via its relay.Kind and writes the
// standard error envelope. A nil err is a programmer mistake and writes a
// 500 rather than panicking.
func writeError(w http.ResponseWriter, err error) {
	if err == nil {
		writeJSON(w, http.StatusInternalServerError, errorEnvelope{Kind: relay.KindInternal.String(), Message: "internal"})
		return
	}
	var re *relay.Error
	if errors.As(err, &re) {
		writeJSON(w, statusForKind(re.Kind), errorEnvelope{Kind: re.Kind.String(), Message: re.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorEnvelope{Kind: relay.KindInternal.String(), Message: err.Error()})
}
