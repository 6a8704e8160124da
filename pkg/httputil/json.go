package httputil

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/matzehuels/perimeter/pkg/errors"
)

// MaxBodyBytes limits request bodies read by DecodeJSON.
const MaxBodyBytes = 64 << 10

// ErrorBody is the JSON shape of an error response.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig,
		errors.ErrCodeInvalidLayout, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeFileNotFound, errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeSessionExpired:
		return http.StatusGone
	case errors.ErrCodeUnsupported:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an ErrorBody and returns the status used.
func WriteError(w http.ResponseWriter, err error) int {
	code := errors.GetCode(err)
	body := ErrorBody{Code: code, Message: errors.UserMessage(err)}
	if code == "" {
		body = ErrorBody{Code: errors.ErrCodeInternal, Message: "internal error"}
	}
	status := StatusFor(body.Code)
	WriteJSON(w, status, body)
	return status
}

// DecodeJSON decodes a request body into v. Malformed, oversized or
// trailing input is reported as INVALID_INPUT.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New(errors.ErrCodeInvalidInput, "invalid request body: trailing data")
	}
	return nil
}
