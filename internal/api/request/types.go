package request

// ChallengeRequest is the request body for issuing a login challenge
type ChallengeRequest struct {
	Address string `json:"address"`
}

// SessionRequest is the request body for creating a session from a
// signed challenge
type SessionRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

// ScoreRequest is the request body for submitting a finished game's score
type ScoreRequest struct {
	Score int `json:"score"`
}

// UsernameRequest is the request body for changing the display name
type UsernameRequest struct {
	Username string `json:"username"`
}
