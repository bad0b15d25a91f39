package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/basedmerge/tokengate/internal/access"
	"github.com/basedmerge/tokengate/internal/chain"
	"github.com/basedmerge/tokengate/internal/model"
	"github.com/basedmerge/tokengate/internal/services/auth"
	"github.com/basedmerge/tokengate/internal/services/profile"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidSignature    = "INVALID_SIGNATURE"
	CodeUnknownChallenge    = "UNKNOWN_CHALLENGE"
	CodeProfileNotFound     = "PROFILE_NOT_FOUND"
	CodeUsernameTaken       = "USERNAME_TAKEN"
	CodeInvalidUsername     = "INVALID_USERNAME"
	CodeInvalidScore        = "INVALID_SCORE"
	CodeNotReady            = "NOT_READY"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeWalletMismatch      = "WALLET_MISMATCH"
	CodeWalletNotConnected  = "WALLET_NOT_CONNECTED"
	CodeUserRejected        = "USER_REJECTED"
	CodeWrongNetwork        = "WRONG_NETWORK"
	CodeProviderAbsent      = "PROVIDER_ABSENT"
	CodeTransactionFailed   = "TRANSACTION_FAILED"
	CodeContractUnavailable = "CONTRACT_UNAVAILABLE"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Map model errors
	case errors.Is(err, model.ErrProfileNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeProfileNotFound, "Profile not found"}}
	case errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusConflict, APIError{CodeUsernameTaken, "Username already taken"}}
	case errors.Is(err, model.ErrInvalidScore):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidScore, "Score must be a positive number"}}
	case errors.Is(err, model.ErrNotReady):
		return &httpError{http.StatusConflict, APIError{CodeNotReady, "Game is not unlocked"}}
	case errors.Is(err, model.ErrStoreUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreUnavailable, "Profile store unavailable"}}

	// Map access flow errors
	case errors.Is(err, access.ErrInvalidTransition):
		return &httpError{http.StatusConflict, APIError{CodeInvalidTransition, "Operation not valid in current state"}}
	case errors.Is(err, profile.ErrInvalidUsername):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidUsername, "Username must be 3-24 word characters"}}

	// Map chain errors
	case errors.Is(err, chain.ErrNotConnected):
		return &httpError{http.StatusConflict, APIError{CodeWalletNotConnected, "No wallet connected"}}
	case errors.Is(err, chain.ErrUserRejected):
		return &httpError{http.StatusConflict, APIError{CodeUserRejected, "Request rejected by the wallet"}}
	case errors.Is(err, chain.ErrWrongNetwork):
		return &httpError{http.StatusConflict, APIError{CodeWrongNetwork, "Wallet is on the wrong network"}}
	case errors.Is(err, chain.ErrProviderAbsent):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeProviderAbsent, "No wallet provider configured"}}
	case errors.Is(err, chain.ErrTransactionFailed):
		return &httpError{http.StatusBadGateway, APIError{CodeTransactionFailed, "Transaction failed"}}
	case errors.Is(err, chain.ErrContractUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeContractUnavailable, "Token contract unavailable"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidSignature):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidSignature, "Signature does not match address"}}
	case errors.Is(err, auth.ErrUnknownChallenge):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnknownChallenge, "Unknown or expired challenge"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewWalletMismatchError creates an error for a session whose address is
// not the machine's active wallet
func NewWalletMismatchError() error {
	return &httpError{http.StatusForbidden, APIError{CodeWalletMismatch, "Session does not belong to the connected wallet"}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
