// Package chaintest provides a scriptable chain.Client for tests.
package chaintest

import (
	"context"
	"sync"

	"github.com/basedmerge/tokengate/internal/chain"
	"github.com/basedmerge/tokengate/internal/model"
)

// OwnershipResult is one scripted outcome for CheckOwnership.
type OwnershipResult struct {
	Owned bool
	Err   error
}

// FakeClient is a scriptable implementation of chain.Client. Results for
// each operation are queued; when a queue is empty the configured default
// is returned. All counters are safe for concurrent access.
type FakeClient struct {
	mu sync.Mutex

	// Scripted results
	InitAccount      *model.WalletAccount
	ConnectAccount   *model.WalletAccount
	ConnectErr       error
	NetworkErrs      []error
	OwnershipResults []OwnershipResult
	DefaultOwned     bool
	DefaultOwnErr    error
	MintHash         string
	MintErr          error

	// Call counters
	InitCalls      int
	ConnectCalls   int
	NetworkCalls   int
	OwnershipCalls int
	MintCalls      int

	account   string
	listeners []chain.AccountListener
}

var _ chain.Client = (*FakeClient)(nil)

// New creates a FakeClient with no scripted results: disconnected, gate
// closed, mint failing.
func New() *FakeClient {
	return &FakeClient{MintErr: chain.ErrTransactionFailed}
}

// QueueOwnership appends scripted CheckOwnership outcomes.
func (f *FakeClient) QueueOwnership(results ...OwnershipResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.OwnershipResults = append(f.OwnershipResults, results...)
}

// QueueOwned is shorthand for queueing error-free owned/not-owned ticks.
func (f *FakeClient) QueueOwned(owned ...bool) {
	for _, o := range owned {
		f.QueueOwnership(OwnershipResult{Owned: o})
	}
}

// ChangeAccount simulates a wallet account switch ("" = disconnect) and
// fires registered listeners synchronously.
func (f *FakeClient) ChangeAccount(address string) {
	f.mu.Lock()
	f.account = address
	listeners := make([]chain.AccountListener, len(f.listeners))
	copy(listeners, f.listeners)
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(address)
	}
}

func (f *FakeClient) Init(_ context.Context) (*model.WalletAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InitCalls++
	if f.InitAccount != nil {
		f.account = f.InitAccount.Address
	}
	return f.InitAccount, nil
}

func (f *FakeClient) Connect(_ context.Context) (*model.WalletAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ConnectCalls++
	if f.ConnectErr != nil {
		return nil, f.ConnectErr
	}
	if f.ConnectAccount == nil {
		return nil, chain.ErrProviderAbsent
	}
	f.account = f.ConnectAccount.Address
	return f.ConnectAccount, nil
}

func (f *FakeClient) EnsureNetwork(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.NetworkCalls++
	if len(f.NetworkErrs) == 0 {
		return nil
	}
	err := f.NetworkErrs[0]
	f.NetworkErrs = f.NetworkErrs[1:]
	return err
}

func (f *FakeClient) CheckOwnership(_ context.Context, _ string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.OwnershipCalls++
	if len(f.OwnershipResults) == 0 {
		return f.DefaultOwned, f.DefaultOwnErr
	}
	result := f.OwnershipResults[0]
	f.OwnershipResults = f.OwnershipResults[1:]
	return result.Owned, result.Err
}

func (f *FakeClient) Mint(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MintCalls++
	if f.MintErr != nil {
		return "", f.MintErr
	}
	return f.MintHash, nil
}

func (f *FakeClient) Account() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.account
}

func (f *FakeClient) IsConnected() bool {
	return f.Account() != ""
}

func (f *FakeClient) OnAccountChange(fn chain.AccountListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

// CheckCount returns the number of CheckOwnership calls observed.
func (f *FakeClient) CheckCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.OwnershipCalls
}
