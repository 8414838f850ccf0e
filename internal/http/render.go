package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/example/rideflow/internal/apiclient"
	"github.com/example/rideflow/internal/dashboard"
	"github.com/example/rideflow/internal/fare"
	"github.com/example/rideflow/internal/lifecycle"
	"github.com/example/rideflow/internal/session"
	"github.com/example/rideflow/internal/validate"
)

type errorBody struct {
	Message string                `json:"message"`
	Fields  []validate.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

// fail maps a controller error onto a status code. fallback is the text
// used when the error carries no message of its own.
func fail(w http.ResponseWriter, err error, fallback string) {
	var verr *validate.Errors
	var apiErr *apiclient.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Message: verr.Message(), Fields: verr.Fields})
	case errors.Is(err, dashboard.ErrBusy):
		writeError(w, http.StatusConflict, "Request already in progress.")
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, dashboard.ErrRideNotFound), errors.Is(err, dashboard.ErrNoActiveRide):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, fare.ErrUnknownOption):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrNoSession), apiclient.IsUnauthorized(err):
		writeError(w, http.StatusUnauthorized, "Session expired, please log in again")
	case errors.As(err, &apiErr):
		status := http.StatusBadGateway
		if apiErr.Kind == apiclient.KindClient {
			status = apiErr.Status
		}
		writeError(w, status, apiclient.Message(err, fallback))
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body.")
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func queryFloat(r *http.Request, key string) (float64, bool) {
	f, err := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	return f, err == nil
}
