package ethereum

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Minimal ABI for the gating token: a balance read and a claim-style mint.
// This matches the drop-contract surface the game contract exposes.
const tokenABI = `[
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"claim","stateMutability":"payable",
	 "inputs":[{"name":"receiver","type":"address"},{"name":"quantity","type":"uint256"}],
	 "outputs":[]}
]`

func parseTokenABI() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(tokenABI))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse token abi: %w", err)
	}
	return parsed, nil
}

func packBalanceOf(parsed abi.ABI, owner string) ([]byte, error) {
	return parsed.Pack("balanceOf", common.HexToAddress(owner))
}

func unpackBalance(parsed abi.ABI, data []byte) (*big.Int, error) {
	out, err := parsed.Unpack("balanceOf", data)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected balanceOf output arity %d", len(out))
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf output type %T", out[0])
	}
	return balance, nil
}

func packClaim(parsed abi.ABI, receiver string) ([]byte, error) {
	return parsed.Pack("claim", common.HexToAddress(receiver), big.NewInt(1))
}
