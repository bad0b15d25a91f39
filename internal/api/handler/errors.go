package handler

import (
	"net/http"

	"github.com/basedmerge/tokengate/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest    = apierr.CodeInvalidRequest
	CodeUnauthorized      = apierr.CodeUnauthorized
	CodeInvalidSignature  = apierr.CodeInvalidSignature
	CodeUnknownChallenge  = apierr.CodeUnknownChallenge
	CodeProfileNotFound   = apierr.CodeProfileNotFound
	CodeUsernameTaken     = apierr.CodeUsernameTaken
	CodeInvalidUsername   = apierr.CodeInvalidUsername
	CodeInvalidScore      = apierr.CodeInvalidScore
	CodeNotReady          = apierr.CodeNotReady
	CodeInvalidTransition = apierr.CodeInvalidTransition
	CodeWalletMismatch    = apierr.CodeWalletMismatch
	CodeInternalError     = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewWalletMismatchError creates a wallet mismatch error
func NewWalletMismatchError() error {
	return apierr.NewWalletMismatchError()
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
