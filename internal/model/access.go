package model

// AccessState is the single tagged state of the wallet-gated access flow.
// Exactly one state is live per session; transitions are owned by the
// access state machine.
type AccessState string

const (
	StateDisconnected   AccessState = "disconnected"
	StateConnecting     AccessState = "connecting"
	StateCheckingAccess AccessState = "checking_access"
	StateWrongNetwork   AccessState = "wrong_network"
	StateAccessDenied   AccessState = "access_denied"
	StateAccessGranted  AccessState = "access_granted"
	StateMinting        AccessState = "minting"
	StateConfirming     AccessState = "confirming"
	StateMintFailed     AccessState = "mint_failed"
	StateMintTimedOut   AccessState = "mint_timed_out"
	StateProfileLoading AccessState = "profile_loading"
	StateReady          AccessState = "ready"
)

// StorageMode says which profile-store tier was selected at startup.
// The choice is permanent for the process lifetime.
type StorageMode string

const (
	// StorageModePersistent means the remote profile store is in use.
	StorageModePersistent StorageMode = "persistent"
	// StorageModeDegraded means the remote store was unreachable at
	// startup; profiles are ephemeral and nothing is written remotely.
	StorageModeDegraded StorageMode = "degraded"
)
