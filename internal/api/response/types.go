package response

import (
	"time"

	"github.com/basedmerge/tokengate/internal/access"
	"github.com/basedmerge/tokengate/internal/model"
	"github.com/basedmerge/tokengate/internal/services/auth"
	"github.com/basedmerge/tokengate/internal/services/profile"
)

// Challenge is the response for a login challenge
type Challenge struct {
	Address   string    `json:"address"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ChallengeFromModel converts an auth.Challenge
func ChallengeFromModel(c *auth.Challenge) Challenge {
	return Challenge{
		Address:   c.Address,
		Message:   c.Message,
		ExpiresAt: c.ExpiresAt,
	}
}

// Session is the response for session creation
type Session struct {
	Token     string    `json:"token"`
	Address   string    `json:"address"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionFromModel converts an auth.Session
func SessionFromModel(s *auth.Session) Session {
	return Session{
		Token:     s.Token,
		Address:   s.Address,
		ExpiresAt: s.ExpiresAt,
	}
}

// Profile represents a player profile in API responses
type Profile struct {
	WalletAddress string    `json:"wallet_address"`
	Username      string    `json:"username"`
	BestScore     int       `json:"best_score"`
	ChainTag      string    `json:"chain_tag"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Ephemeral     bool      `json:"ephemeral,omitempty"`
}

// ProfileFromModel converts a model.PlayerProfile
func ProfileFromModel(p *model.PlayerProfile) Profile {
	return Profile{
		WalletAddress: p.WalletAddress,
		Username:      p.Username,
		BestScore:     p.BestScore,
		ChainTag:      p.ChainTag,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Ephemeral:     p.IsEphemeral,
	}
}

// Ownership represents an ownership check outcome
type Ownership struct {
	Owned     bool      `json:"owned"`
	Address   string    `json:"address"`
	CheckedAt time.Time `json:"checked_at"`
}

// MintAttempt represents a live mint confirmation poll
type MintAttempt struct {
	TransactionHash string    `json:"transaction_hash"`
	SubmittedAt     time.Time `json:"submitted_at"`
	PollAttempt     int       `json:"poll_attempt"`
	MaxAttempts     int       `json:"max_attempts"`
}

// AccessSnapshot is the response for the access state endpoint
type AccessSnapshot struct {
	State     string       `json:"state"`
	Status    string       `json:"status"`
	Address   string       `json:"address,omitempty"`
	ChainID   uint64       `json:"chain_id,omitempty"`
	Ownership *Ownership   `json:"ownership,omitempty"`
	Mint      *MintAttempt `json:"mint,omitempty"`
	Profile   *Profile     `json:"profile,omitempty"`
}

// AccessSnapshotFromModel converts an access.Snapshot
func AccessSnapshotFromModel(s access.Snapshot) AccessSnapshot {
	snap := AccessSnapshot{
		State:   string(s.State),
		Status:  s.Status,
		Address: s.Address,
		ChainID: uint64(s.ChainID),
	}
	if s.Ownership != nil {
		snap.Ownership = &Ownership{
			Owned:     s.Ownership.Owned,
			Address:   s.Ownership.SubjectAddress,
			CheckedAt: s.Ownership.CheckedAt,
		}
	}
	if s.Mint != nil {
		snap.Mint = &MintAttempt{
			TransactionHash: s.Mint.TransactionHash,
			SubmittedAt:     s.Mint.SubmittedAt,
			PollAttempt:     s.Mint.PollAttempt,
			MaxAttempts:     s.Mint.MaxAttempts,
		}
	}
	if s.Profile != nil {
		p := ProfileFromModel(s.Profile)
		snap.Profile = &p
	}
	return snap
}

// MintResult is the response after a mint cycle reaches a terminal outcome
type MintResult struct {
	Outcome  string         `json:"outcome"`
	Snapshot AccessSnapshot `json:"snapshot"`
}

// LeaderboardEntry is one row of the leaderboard
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	Username  string `json:"username"`
	BestScore int    `json:"best_score"`
}

// Leaderboard is the response for the leaderboard endpoint
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
	Offline bool               `json:"offline"`
}

// LeaderboardFromModel converts a profile.Leaderboard
func LeaderboardFromModel(board *profile.Leaderboard) Leaderboard {
	entries := make([]LeaderboardEntry, len(board.Entries))
	for i, p := range board.Entries {
		entries[i] = LeaderboardEntry{
			Rank:      i + 1,
			Username:  p.Username,
			BestScore: p.BestScore,
		}
	}
	return Leaderboard{
		Entries: entries,
		Offline: board.Offline,
	}
}

// Health is the response for the health endpoint
type Health struct {
	Status      string `json:"status"`
	StorageMode string `json:"storage_mode"`
	AccessState string `json:"access_state"`
}
