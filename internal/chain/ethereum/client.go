package ethereum

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	gethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/basedmerge/tokengate/internal/chain"
	"github.com/basedmerge/tokengate/internal/model"
)

// Config holds the single target chain and contract for the adapter.
type Config struct {
	// RPCURL is the read-side JSON-RPC endpoint.
	RPCURL string
	// ChainID is the only supported network.
	ChainID model.ChainID
	// ChainName and Symbol are used when registering the chain with a
	// provider that does not know it.
	ChainName string
	Symbol    string
	// ContractAddress is the gating token contract. Empty means the
	// contract is unconfigured and every ownership read fails closed.
	ContractAddress string
}

// Client implements chain.Client against an EVM network. Reads go through
// a dedicated RPC connection; anything needing keys or consent goes
// through the wallet Provider.
type Client struct {
	cfg      Config
	provider chain.Provider
	eth      *ethclient.Client
	abi      abi.ABI
	logger   *slog.Logger

	mu        sync.RWMutex
	account   string
	listeners []chain.AccountListener
}

var _ chain.Client = (*Client)(nil)

// New dials the configured RPC endpoint and wires the provider
// subscription. The contract ABI is parsed eagerly so a malformed ABI is
// a construction error, not a per-call one.
func New(cfg Config, provider chain.Provider, logger *slog.Logger) (*Client, error) {
	parsed, err := parseTokenABI()
	if err != nil {
		return nil, err
	}

	var eth *ethclient.Client
	if cfg.RPCURL != "" {
		eth, err = ethclient.Dial(cfg.RPCURL)
		if err != nil {
			return nil, err
		}
	}

	return &Client{
		cfg:      cfg,
		provider: provider,
		eth:      eth,
		abi:      parsed,
		logger:   logger,
	}, nil
}

// Close releases the RPC connection.
func (c *Client) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
}

// Init silently restores an already-authorized account. It never prompts:
// when no provider is injected or nothing is authorized it returns
// (nil, nil) and the session simply starts disconnected.
func (c *Client) Init(ctx context.Context) (*model.WalletAccount, error) {
	if c.provider == nil || !c.provider.Available() {
		return nil, nil
	}

	c.provider.OnAccountsChanged(c.handleAccountsChanged)

	accounts, err := c.provider.AuthorizedAccounts(ctx)
	if err != nil || len(accounts) == 0 {
		if err != nil {
			c.logger.Debug("auto-connect skipped", slog.String("error", err.Error()))
		}
		return nil, nil
	}

	return c.adopt(ctx, accounts[0])
}

// Connect performs an explicit connection, prompting if necessary.
func (c *Client) Connect(ctx context.Context) (*model.WalletAccount, error) {
	if c.provider == nil || !c.provider.Available() {
		return nil, chain.ErrProviderAbsent
	}

	accounts, err := c.provider.RequestAccounts(ctx)
	if err != nil {
		if errors.Is(err, chain.ErrUserRejected) {
			return nil, chain.ErrUserRejected
		}
		return nil, chain.ErrProviderAbsent
	}
	if len(accounts) == 0 {
		return nil, chain.ErrUserRejected
	}

	return c.adopt(ctx, accounts[0])
}

func (c *Client) adopt(ctx context.Context, address string) (*model.WalletAccount, error) {
	chainID, err := c.provider.ChainID(ctx)
	if err != nil {
		chainID = 0
	}

	c.mu.Lock()
	c.account = address
	c.mu.Unlock()

	return &model.WalletAccount{Address: address, ChainID: chainID}, nil
}

// EnsureNetwork validates the provider is on the target chain, switching
// if needed. An unknown target chain is registered first and the switch
// retried exactly once.
func (c *Client) EnsureNetwork(ctx context.Context) error {
	if c.provider == nil {
		return chain.ErrProviderAbsent
	}

	current, err := c.provider.ChainID(ctx)
	if err != nil {
		return chain.ErrWrongNetwork
	}
	if current == c.cfg.ChainID {
		return nil
	}

	err = c.provider.SwitchChain(ctx, c.cfg.ChainID)
	if errors.Is(err, chain.ErrUnknownChain) {
		if addErr := c.provider.AddChain(ctx, chain.ChainParams{
			ChainID: c.cfg.ChainID,
			Name:    c.cfg.ChainName,
			RPCURL:  c.cfg.RPCURL,
			Symbol:  c.cfg.Symbol,
		}); addErr != nil {
			return chain.ErrWrongNetwork
		}
		err = c.provider.SwitchChain(ctx, c.cfg.ChainID)
	}
	if err != nil {
		return chain.ErrWrongNetwork
	}
	return nil
}

// CheckOwnership runs the balanceOf read. Every failure path collapses to
// ErrContractUnavailable so callers can apply the fail-closed policy
// without inspecting transport details.
func (c *Client) CheckOwnership(ctx context.Context, address string) (bool, error) {
	if c.eth == nil || c.cfg.ContractAddress == "" {
		return false, chain.ErrContractUnavailable
	}

	data, err := packBalanceOf(c.abi, address)
	if err != nil {
		return false, chain.ErrContractUnavailable
	}

	contract := common.HexToAddress(c.cfg.ContractAddress)
	out, err := c.eth.CallContract(ctx, gethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		c.logger.Warn("ownership read failed", slog.String("error", err.Error()))
		return false, chain.ErrContractUnavailable
	}

	balance, err := unpackBalance(c.abi, out)
	if err != nil {
		return false, chain.ErrContractUnavailable
	}
	return balance.Sign() > 0, nil
}

// Mint submits a claim transaction for one unit of the gating token.
func (c *Client) Mint(ctx context.Context, address string) (string, error) {
	if c.provider == nil {
		return "", chain.ErrProviderAbsent
	}
	if c.cfg.ContractAddress == "" {
		return "", chain.ErrTransactionFailed
	}

	data, err := packClaim(c.abi, address)
	if err != nil {
		return "", chain.ErrTransactionFailed
	}

	hash, err := c.provider.SendTransaction(ctx, chain.TxRequest{
		From: address,
		To:   c.cfg.ContractAddress,
		Data: data,
	})
	if err != nil {
		if errors.Is(err, chain.ErrUserRejected) {
			return "", chain.ErrUserRejected
		}
		return "", chain.ErrTransactionFailed
	}
	return hash, nil
}

// Account returns the active address, or "" when disconnected.
func (c *Client) Account() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.account
}

// IsConnected reports whether an account is active.
func (c *Client) IsConnected() bool {
	return c.Account() != ""
}

// OnAccountChange registers a listener for account switches/disconnects.
func (c *Client) OnAccountChange(fn chain.AccountListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func gethCallMsg(from, to common.Address, data []byte) gethereum.CallMsg {
	return gethereum.CallMsg{From: from, To: &to, Data: data}
}

func (c *Client) handleAccountsChanged(accounts []string) {
	address := ""
	if len(accounts) > 0 {
		address = accounts[0]
	}

	c.mu.Lock()
	c.account = address
	listeners := make([]chain.AccountListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(address)
	}
}
