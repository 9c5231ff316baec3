// Package apperr defines the application error codes shared by every
// function and the JSON failure payload handlers return for them.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Code is a stable, client-visible error code.
type Code string

const (
	// CodeEmpty means the credential environment variable is unset or blank.
	CodeEmpty Code = "EMPTY"
	// CodeParse means the credential could not be decoded by any strategy,
	// or decoded but failed field validation.
	CodeParse Code = "PARSE_ERROR"

	CodeAuthFailed            Code = "auth_failed"
	CodeInvalidRequest        Code = "invalid_request"
	CodeSourceVersionMismatch Code = "source_version_mismatch"
	CodeStorageDownloadFailed Code = "storage_download_failed"
	CodeLLMAnalyzeFailed      Code = "llm_analyze_failed"
	CodeTimeout               Code = "timeout"
)

// Error carries a code, a human-readable message, and optionally the list
// of credential fields that failed validation. It wraps the underlying
// cause so errors.Is/As keep working through it.
type Error struct {
	Code         Code
	Message      string
	BrokenFields []string
	cause        error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates an Error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an Error around an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// CodeOf extracts the application code from err, or empty if err carries none.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// failurePayload is the JSON body returned for any handler failure.
// The raw credential value is never part of it.
type failurePayload struct {
	Success      bool     `json:"success"`
	Code         Code     `json:"code,omitempty"`
	Message      string   `json:"error"`
	BrokenFields []string `json:"brokenFields,omitempty"`
}

// httpStatus maps codes to HTTP statuses. Analysis-stage failures stay 200
// so the client UI, which treats the upload as already confirmed, is never
// blocked by a failing AI stage.
func httpStatus(code Code) int {
	switch code {
	case CodeAuthFailed:
		return http.StatusUnauthorized
	case CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeSourceVersionMismatch, CodeStorageDownloadFailed, CodeLLMAnalyzeFailed:
		return http.StatusOK
	case CodeEmpty, CodeParse:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes err as the structured failure payload. Unknown errors are
// reported with a generic message rather than their raw text, which may
// reference internal state.
func WriteJSON(w http.ResponseWriter, err error) {
	payload := failurePayload{Message: "internal error"}
	var ae *Error
	if errors.As(err, &ae) {
		payload.Code = ae.Code
		payload.Message = ae.Message
		payload.BrokenFields = ae.BrokenFields
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus(payload.Code))
	if encodeErr := json.NewEncoder(w).Encode(payload); encodeErr != nil {
		slog.Error("Failed to encode error response", "error", encodeErr)
	}
}
