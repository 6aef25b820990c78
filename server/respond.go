package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/screenerhq/scan-server/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, detail string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"detail": detail,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// respondError maps domain sentinel errors onto HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, errors.ErrInvalidStartURL),
		errors.Is(err, errors.ErrUnknownAccountOrRole):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrNotAuthenticated),
		errors.Is(err, errors.ErrNoLoginInProgress),
		errors.Is(err, errors.ErrCredentialsExpired),
		errors.Is(err, errors.ErrAuthorizationExpired),
		errors.Is(err, errors.ErrAuthorizationDenied):
		status = http.StatusUnauthorized
	case errors.Is(err, errors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrProviderUnreachable),
		errors.Is(err, errors.ErrCredentialExchangeFailed):
		status = http.StatusBadGateway
	case errors.Is(err, errors.ErrScanLaunchFailed):
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSONError(w, err.Error(), status)
}
