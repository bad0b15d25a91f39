package chain

import (
	"context"

	"github.com/basedmerge/tokengate/internal/model"
)

// AccountListener receives wallet account changes. An empty address means
// the wallet disconnected or locked.
type AccountListener func(address string)

// Client is the blockchain client adapter. It wraps wallet connection,
// network validation and the two token-contract operations the gate needs.
// Implementations must not prompt the user from Init.
type Client interface {
	// Init attempts a silent reconnection using an already-authorized
	// provider. It returns (nil, nil) when no provider is present or no
	// account is authorized; it never prompts. Init also registers the
	// adapter's own provider subscription so OnAccountChange listeners
	// start receiving events.
	Init(ctx context.Context) (*model.WalletAccount, error)

	// Connect performs an explicit, user-initiated connection and may
	// prompt. Fails with ErrUserRejected or ErrProviderAbsent.
	Connect(ctx context.Context) (*model.WalletAccount, error)

	// EnsureNetwork verifies the active chain is the configured target,
	// requesting a switch if not. If the provider does not know the
	// target chain it registers the chain and retries the switch once.
	// Fails with ErrWrongNetwork when the switch is declined or fails.
	EnsureNetwork(ctx context.Context) error

	// CheckOwnership runs the balance query against the token contract.
	// Any transport or ABI failure is reported as ErrContractUnavailable;
	// callers must treat that as "not owned", never as fatal.
	CheckOwnership(ctx context.Context, address string) (bool, error)

	// Mint submits a mint transaction for the given address and returns
	// the transaction hash. Requires the network to be validated first.
	// Fails with ErrUserRejected or ErrTransactionFailed.
	Mint(ctx context.Context, address string) (string, error)

	// Account returns the active address, or "" when disconnected.
	Account() string

	// IsConnected reports whether a wallet account is active.
	IsConnected() bool

	// OnAccountChange registers a listener for account switches and
	// disconnects. Listeners are invoked in registration order.
	OnAccountChange(fn AccountListener)
}
