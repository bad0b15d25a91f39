package ethereum

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/basedmerge/tokengate/internal/chain"
	"github.com/basedmerge/tokengate/internal/model"
)

// KeyWallet is a headless wallet provider backed by a local private key.
// It is bound to a single chain, auto-approves every request, and never
// prompts. Used for server-side agent sessions; browser sessions bring
// their own injected provider.
type KeyWallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID model.ChainID
	eth     *ethclient.Client
}

var _ chain.Provider = (*KeyWallet)(nil)

// NewKeyWallet parses a hex-encoded private key and binds it to the given
// RPC endpoint and chain.
func NewKeyWallet(hexKey string, chainID model.ChainID, rpcURL string) (*KeyWallet, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, err
	}

	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, err
	}

	return &KeyWallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
		eth:     eth,
	}, nil
}

// Available always reports true; the key is the provider.
func (w *KeyWallet) Available() bool { return true }

// AuthorizedAccounts returns the key's address. A key wallet is
// implicitly authorized, so auto-connect succeeds silently.
func (w *KeyWallet) AuthorizedAccounts(_ context.Context) ([]string, error) {
	return []string{w.address.Hex()}, nil
}

// RequestAccounts returns the key's address without prompting.
func (w *KeyWallet) RequestAccounts(ctx context.Context) ([]string, error) {
	return w.AuthorizedAccounts(ctx)
}

// ChainID returns the chain the wallet was constructed for.
func (w *KeyWallet) ChainID(_ context.Context) (model.ChainID, error) {
	return w.chainID, nil
}

// SwitchChain succeeds only for the bound chain; a key wallet cannot
// move networks.
func (w *KeyWallet) SwitchChain(_ context.Context, id model.ChainID) error {
	if id == w.chainID {
		return nil
	}
	return chain.ErrUnknownChain
}

// AddChain is unsupported for key wallets.
func (w *KeyWallet) AddChain(_ context.Context, _ chain.ChainParams) error {
	return chain.ErrUnknownChain
}

// SendTransaction signs the request with the local key and broadcasts it.
func (w *KeyWallet) SendTransaction(ctx context.Context, req chain.TxRequest) (string, error) {
	nonce, err := w.eth.PendingNonceAt(ctx, w.address)
	if err != nil {
		return "", chain.ErrTransactionFailed
	}

	gasPrice, err := w.eth.SuggestGasPrice(ctx)
	if err != nil {
		return "", chain.ErrTransactionFailed
	}

	to := common.HexToAddress(req.To)
	gasLimit, err := w.eth.EstimateGas(ctx, gethCallMsg(w.address, to, req.Data))
	if err != nil {
		return "", chain.ErrTransactionFailed
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     req.Data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(new(big.Int).SetUint64(uint64(w.chainID))), w.key)
	if err != nil {
		return "", chain.ErrTransactionFailed
	}

	if err := w.eth.SendTransaction(ctx, signed); err != nil {
		return "", chain.ErrTransactionFailed
	}
	return signed.Hash().Hex(), nil
}

// OnAccountsChanged is a no-op; a key wallet's account never changes.
func (w *KeyWallet) OnAccountsChanged(_ func(accounts []string)) {}

// Close releases the RPC connection.
func (w *KeyWallet) Close() {
	w.eth.Close()
}
