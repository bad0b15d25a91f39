package auth

import (
	"errors"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/basedmerge/tokengate/internal/model"
)

// RecoverSigner recovers the lower-cased address that produced a
// personal_sign signature over message. The signature is the usual
// hex-encoded 65-byte r||s||v form; both v in {0,1} and the legacy
// {27,28} encoding are accepted.
func RecoverSigner(message, signature string) (string, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", ErrInvalidSignature
	}
	if len(sig) != crypto.SignatureLength {
		return "", ErrInvalidSignature
	}

	// Don't mutate the caller's slice when normalizing v.
	normalized := make([]byte, len(sig))
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}
	if normalized[crypto.RecoveryIDOffset] > 1 {
		return "", ErrInvalidSignature
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), normalized)
	if err != nil {
		return "", ErrInvalidSignature
	}

	return model.CanonicalAddress(crypto.PubkeyToAddress(*pub).Hex()), nil
}

// SignMessage produces a personal_sign signature with a raw private key.
// Exported for the key-wallet agent and tests; browser wallets sign on
// their own side.
func SignMessage(message string, hexKey string) (string, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return "", errors.New("invalid private key")
	}

	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		return "", err
	}
	// Present v as the legacy 27/28 form wallets emit.
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}
