package model

import "time"

// PlayerProfile is the persisted record for a wallet address.
// The primary key is the lower-cased wallet address.
type PlayerProfile struct {
	WalletAddress string
	Username      string
	BestScore     int
	ChainTag      string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// IsEphemeral marks profiles synthesized while the profile store is
	// unreachable. Ephemeral profiles are never written remotely.
	IsEphemeral bool
}

// OwnershipStatus records the outcome of an ownership check for a single
// address. It is recomputed on demand and never reused across addresses.
type OwnershipStatus struct {
	Owned          bool
	SubjectAddress string
	CheckedAt      time.Time
}

// MintAttempt tracks a submitted mint transaction while its confirmation
// poll is running. At most one attempt is live per session.
type MintAttempt struct {
	TransactionHash string
	SubmittedAt     time.Time
	PollAttempt     int
	MaxAttempts     int
	Interval        time.Duration
}
