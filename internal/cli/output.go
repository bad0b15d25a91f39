package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Session:
		o.printSession(v)
	case Challenge:
		o.printChallenge(v)
	case AccessSnapshot:
		o.printAccessSnapshot(v)
	case MintResult:
		o.printMintResult(v)
	case Profile:
		o.printProfile(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Challenge response type (matches API)
type Challenge struct {
	Address   string    `json:"address"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Session response type
type Session struct {
	Token     string    `json:"token"`
	Address   string    `json:"address"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Profile response type
type Profile struct {
	WalletAddress string `json:"wallet_address"`
	Username      string `json:"username"`
	BestScore     int    `json:"best_score"`
	ChainTag      string `json:"chain_tag"`
	Ephemeral     bool   `json:"ephemeral,omitempty"`
}

// Ownership response type
type Ownership struct {
	Owned     bool      `json:"owned"`
	Address   string    `json:"address"`
	CheckedAt time.Time `json:"checked_at"`
}

// MintAttempt response type
type MintAttempt struct {
	TransactionHash string `json:"transaction_hash"`
	PollAttempt     int    `json:"poll_attempt"`
	MaxAttempts     int    `json:"max_attempts"`
}

// AccessSnapshot response type
type AccessSnapshot struct {
	State     string       `json:"state"`
	Status    string       `json:"status"`
	Address   string       `json:"address,omitempty"`
	ChainID   uint64       `json:"chain_id,omitempty"`
	Ownership *Ownership   `json:"ownership,omitempty"`
	Mint      *MintAttempt `json:"mint,omitempty"`
	Profile   *Profile     `json:"profile,omitempty"`
}

// MintResult response type
type MintResult struct {
	Outcome  string         `json:"outcome"`
	Snapshot AccessSnapshot `json:"snapshot"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	Username  string `json:"username"`
	BestScore int    `json:"best_score"`
}

// Leaderboard response type
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
	Offline bool               `json:"offline"`
}

// HealthResult response type
type HealthResult struct {
	Status      string `json:"status"`
	StorageMode string `json:"storage_mode"`
	AccessState string `json:"access_state"`
}

func (o *Output) printSession(s Session) {
	fmt.Printf("Logged in as: %s\n", s.Address)
	fmt.Printf("Token: %s\n", s.Token)
	fmt.Printf("Expires: %s\n", s.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printChallenge(c Challenge) {
	fmt.Printf("Address: %s\n", c.Address)
	fmt.Printf("Message to sign:\n%s\n", c.Message)
	fmt.Printf("Expires: %s\n", c.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printAccessSnapshot(s AccessSnapshot) {
	fmt.Printf("State: %s\n", s.State)
	if s.Status != "" {
		fmt.Printf("Status: %s\n", s.Status)
	}
	if s.Address != "" {
		fmt.Printf("Wallet: %s\n", s.Address)
	}
	if s.ChainID != 0 {
		fmt.Printf("Chain: %d\n", s.ChainID)
	}
	if s.Ownership != nil {
		ownedStr := "no"
		if s.Ownership.Owned {
			ownedStr = "yes"
		}
		fmt.Printf("Access pass: %s (checked %s)\n", ownedStr, s.Ownership.CheckedAt.Format(time.RFC3339))
	}
	if s.Mint != nil {
		fmt.Printf("Mint: %s (poll %d/%d)\n", s.Mint.TransactionHash, s.Mint.PollAttempt, s.Mint.MaxAttempts)
	}
	if s.Profile != nil {
		fmt.Println()
		o.printProfile(*s.Profile)
	}
}

func (o *Output) printMintResult(m MintResult) {
	fmt.Printf("Outcome: %s\n", m.Outcome)
	o.printAccessSnapshot(m.Snapshot)
}

func (o *Output) printProfile(p Profile) {
	fmt.Printf("Profile: %s (%s)\n", p.Username, p.WalletAddress)
	fmt.Printf("Best Score: %d\n", p.BestScore)
	if p.ChainTag != "" {
		fmt.Printf("Chain: %s\n", p.ChainTag)
	}
	if p.Ephemeral {
		fmt.Println("Note: profile is ephemeral, scores will not persist")
	}
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if l.Offline {
		fmt.Println("Leaderboard unavailable (store offline)")
		return
	}
	if len(l.Entries) == 0 {
		fmt.Println("No scores yet")
		return
	}
	for _, e := range l.Entries {
		fmt.Printf("%3d. %-24s %d\n", e.Rank, e.Username, e.BestScore)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	fmt.Printf("Storage: %s\n", h.StorageMode)
	fmt.Printf("Access State: %s\n", h.AccessState)
}
