package chain

import "errors"

// Adapter-level errors. These never escape to the UI as raw errors; the
// access state machine converts each into a named state plus a status line.
var (
	// ErrProviderAbsent means no compatible wallet provider is available.
	ErrProviderAbsent = errors.New("no wallet provider available")

	// ErrUserRejected means the user declined a wallet prompt.
	ErrUserRejected = errors.New("user rejected the request")

	// ErrWrongNetwork means the provider is on a different chain and the
	// switch was declined or failed.
	ErrWrongNetwork = errors.New("wallet is on the wrong network")

	// ErrContractUnavailable means the token contract could not be read.
	// Callers treat this as "not owned" (fail closed).
	ErrContractUnavailable = errors.New("token contract unavailable")

	// ErrTransactionFailed means a submitted transaction reverted or was
	// dropped before returning a hash.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrNotConnected means an operation requiring an active account was
	// attempted without one.
	ErrNotConnected = errors.New("no wallet connected")
)
