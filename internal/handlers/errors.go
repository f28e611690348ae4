package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/rentcare/rentcare-gobackend/internal/repositories"
	"github.com/rentcare/rentcare-gobackend/internal/services"
)

const maxBodyBytes = 1 << 20

// statusError carries an explicit HTTP status for errors raised in handlers.
type statusError struct {
	status int
	msg    string
}

func (e *statusError) Error() string { return e.msg }

func badRequest(format string, args ...interface{}) error {
	return &statusError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func statusFor(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.status
	}
	switch {
	case errors.Is(err, services.ErrMissingCredentials),
		errors.Is(err, services.ErrMissingDetails),
		errors.Is(err, services.ErrMissingFlatNo),
		errors.Is(err, services.ErrInvalidRent),
		errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrEmptyDescription),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidUser),
		errors.Is(err, services.ErrNothingToPay),
		errors.Is(err, services.ErrInvalidSignature):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repositories.ErrNotFound),
		errors.Is(err, repositories.ErrUserNotFound),
		errors.Is(err, repositories.ErrTenantNotFound),
		errors.Is(err, repositories.ErrRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, repositories.ErrDuplicateFlat),
		errors.Is(err, repositories.ErrDuplicateUser),
		errors.Is(err, repositories.ErrPaymentRecorded),
		errors.Is(err, services.ErrRequestNotPending):
		return http.StatusConflict
	case errors.Is(err, services.ErrNoCheckoutID):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrPaymentDisabled),
		errors.Is(err, services.ErrWebhookDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError logs the failure and answers with its status and message as
// plain text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	log.Printf("%s %s failed (%d): %v", r.Method, r.URL.RequestURI(), status, err)
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("Invalid request body")
	}
	return nil
}
