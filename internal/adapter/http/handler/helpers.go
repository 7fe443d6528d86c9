package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/iho/energyledger/internal/adapter/http/dto"
	"github.com/iho/energyledger/internal/domain"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, code, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Code:    code,
		Message: details,
	})
}

// writeDomainError maps err to its status and stable code. Details of
// unclassified errors are not exposed.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := mapDomainError(err)
	details := err.Error()
	if status == http.StatusInternalServerError {
		details = ""
	}
	writeError(w, status, message, domain.ErrorCode(err), details)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAlreadyRegistered),
		errors.Is(err, domain.ErrInsufficientEnergy):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotProsumer),
		errors.Is(err, domain.ErrNotConsumer):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrSellerNotProsumer),
		errors.Is(err, domain.ErrPriceOverflow),
		errors.Is(err, domain.ErrEnergyOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInsufficientPayment),
		errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidIdentity),
		errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrWalletNotFound),
		errors.Is(err, domain.ErrTradeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes a single JSON object from the request body.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON object")
	}
	return nil
}

// callerIdentity returns the authenticated caller or writes 401.
func callerIdentity(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "caller identity required", "unauthenticated", "")
		return "", false
	}
	return identity, true
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
