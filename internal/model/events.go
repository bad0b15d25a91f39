package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Access flow events
	EventStateChanged  EventType = "state_changed"
	EventWalletChanged EventType = "wallet_changed"
	EventMintSubmitted EventType = "mint_submitted"
	EventMintConfirmed EventType = "mint_confirmed"
	EventMintTimedOut  EventType = "mint_timed_out"
	EventGameUnlocked  EventType = "game_unlocked"

	// Profile events
	EventScoreUpdated EventType = "score_updated"
)

// Event is the base structure for all events
type Event struct {
	Type      EventType
	Timestamp time.Time
	Address   string // Lower-cased wallet address, empty when disconnected
	Payload   any    // Type-specific data
}

// StateChangedPayload carries an access state transition
type StateChangedPayload struct {
	State  AccessState
	Status string // Human-readable status line for the shell
}

// MintSubmittedPayload carries a submitted mint transaction
type MintSubmittedPayload struct {
	TransactionHash string
}

// ScoreUpdatedPayload carries a best-score change
type ScoreUpdatedPayload struct {
	BestScore int
}

// GameUnlockedPayload carries the profile handed to the game shell
type GameUnlockedPayload struct {
	Username  string
	BestScore int
	Ephemeral bool
}
