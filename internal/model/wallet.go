package model

import "strings"

// ChainID identifies an EVM network by its numeric chain id
type ChainID uint64

// WalletAccount is the active wallet connection as reported by the
// blockchain client. The address keeps its checksum casing for display;
// use CanonicalAddress for storage keys.
type WalletAccount struct {
	Address string
	ChainID ChainID
}

// CanonicalAddress lower-cases a wallet address for use as a storage key.
// Hex addresses are case-insensitive, so this is the only form that may
// be used for lookups and writes.
func CanonicalAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
