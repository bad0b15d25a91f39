package chain

import (
	"context"
	"errors"

	"github.com/basedmerge/tokengate/internal/model"
)

// ErrUnknownChain is returned by Provider.SwitchChain when the provider
// has no registration for the requested chain. Callers are expected to
// AddChain and retry once.
var ErrUnknownChain = errors.New("chain not registered with provider")

// TxRequest is a transaction handed to the wallet provider for signing
// and submission.
type TxRequest struct {
	From string
	To   string
	Data []byte
}

// ChainParams describes a chain for provider registration.
type ChainParams struct {
	ChainID model.ChainID
	Name    string
	RPCURL  string
	Symbol  string
}

// Provider is the wallet side of the adapter: the component that holds
// keys, may prompt the user, and reports account changes. The Ethereum
// client composes a Provider with a read-only RPC connection.
type Provider interface {
	// Available reports whether a compatible wallet is present at all.
	Available() bool

	// AuthorizedAccounts returns accounts already authorized for this
	// application without prompting. Empty when none.
	AuthorizedAccounts(ctx context.Context) ([]string, error)

	// RequestAccounts asks for account access and may prompt.
	// Fails with ErrUserRejected when declined.
	RequestAccounts(ctx context.Context) ([]string, error)

	// ChainID returns the chain the provider is currently on.
	ChainID(ctx context.Context) (model.ChainID, error)

	// SwitchChain asks the provider to move to the given chain.
	// Fails with ErrUnknownChain when the chain is not registered and
	// ErrUserRejected when the user declines.
	SwitchChain(ctx context.Context, id model.ChainID) error

	// AddChain registers a chain with the provider.
	AddChain(ctx context.Context, params ChainParams) error

	// SendTransaction signs and submits a transaction, returning its
	// hash. Fails with ErrUserRejected or ErrTransactionFailed.
	SendTransaction(ctx context.Context, tx TxRequest) (string, error)

	// OnAccountsChanged registers a callback for account set changes.
	// An empty slice means the wallet disconnected.
	OnAccountsChanged(fn func(accounts []string))
}
