package chain

import (
	"context"

	"github.com/basedmerge/tokengate/internal/model"
)

// Unconfigured is the client used when no chain configuration was
// supplied. Every operation behaves as if no provider were installed, so
// the gate stays closed and the process keeps running.
type Unconfigured struct{}

var _ Client = Unconfigured{}

func (Unconfigured) Init(context.Context) (*model.WalletAccount, error) { return nil, nil }

func (Unconfigured) Connect(context.Context) (*model.WalletAccount, error) {
	return nil, ErrProviderAbsent
}

func (Unconfigured) EnsureNetwork(context.Context) error { return ErrProviderAbsent }

func (Unconfigured) CheckOwnership(context.Context, string) (bool, error) {
	return false, ErrContractUnavailable
}

func (Unconfigured) Mint(context.Context, string) (string, error) {
	return "", ErrProviderAbsent
}

func (Unconfigured) Account() string { return "" }

func (Unconfigured) IsConnected() bool { return false }

func (Unconfigured) OnAccountChange(AccountListener) {}
