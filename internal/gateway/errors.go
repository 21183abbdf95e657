package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is the one failure shape the workflow branches on: an HTTP
// status code when present, a human-readable message, and a synthetic
// flag meaning the request was stored locally because we were offline.
type APIError struct {
	StatusCode    int
	Message       string
	StoredOffline bool
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

// IsConflict reports whether err is a server-side slot conflict.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// IsStoredOffline reports whether err is the "saved locally, will sync"
// outcome rather than a real failure.
func IsStoredOffline(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StoredOffline
}

// IsUnauthorized reports whether err means the session is no longer valid.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsTransport reports whether err is a transport-level failure with no
// HTTP response at all, meaning the server was never reached.
func IsTransport(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 0 && !apiErr.StoredOffline
}

// errorBody covers the message fields the remote API is known to use.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// normalize turns a non-2xx response into an APIError. Message
// precedence: structured error field, then message, then detail, then
// the raw body, then a canned status message.
func normalize(status int, body []byte) *APIError {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		for _, msg := range []string{parsed.Error, parsed.Message, parsed.Detail} {
			if msg != "" {
				return &APIError{StatusCode: status, Message: msg}
			}
		}
	}
	if raw := strings.TrimSpace(string(body)); raw != "" && !strings.HasPrefix(raw, "{") {
		return &APIError{StatusCode: status, Message: raw}
	}
	return &APIError{StatusCode: status, Message: cannedMessage(status)}
}

func cannedMessage(status int) string {
	switch status {
	case http.StatusConflict:
		return "Conflicto de horario: el aula ya está reservada en ese horario"
	case http.StatusBadRequest:
		return "Datos de la solicitud inválidos"
	case http.StatusUnauthorized:
		return "No autenticado"
	case http.StatusForbidden:
		return "Acceso denegado"
	case http.StatusInternalServerError:
		return "Error del servidor"
	default:
		return http.StatusText(status)
	}
}

// transportError wraps a failure that never produced an HTTP response.
func transportError(err error) *APIError {
	return &APIError{Message: err.Error()}
}
