// Package auth issues sessions backed by wallet-signature proof.
//
// There are no passwords: a client proves control of an address by
// signing a server-issued challenge with the wallet key (EIP-191
// personal_sign), and the recovered signer must match the claimed
// address.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/basedmerge/tokengate/internal/dependencies/clock"
	"github.com/basedmerge/tokengate/internal/model"
)

// Errors
var (
	ErrInvalidSignature = errors.New("signature does not match address")
	ErrInvalidSession   = errors.New("invalid or expired session")
	ErrUnknownChallenge = errors.New("unknown or expired challenge")
)

// Session represents an authenticated wallet session
type Session struct {
	Token     string
	Address   string // lower-cased wallet address
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Challenge is a single-use message a wallet must sign to log in
type Challenge struct {
	Address   string
	Message   string
	ExpiresAt time.Time
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration   time.Duration
	ChallengeDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration:   24 * time.Hour,
		ChallengeDuration: 5 * time.Minute,
	}
}

// Service handles challenge issuance and session management
type Service struct {
	clock clock.Clock

	mu          sync.RWMutex
	sessions    map[string]*Session
	challenges  map[string]*Challenge // keyed by lower-cased address
	boundWallet string                // machine's active wallet, lower-cased

	sessionDuration   time.Duration
	challengeDuration time.Duration
}

// New creates a new auth Service
func New(clk clock.Clock, cfg Config) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	if cfg.ChallengeDuration == 0 {
		cfg.ChallengeDuration = DefaultConfig().ChallengeDuration
	}
	return &Service{
		clock:             clk,
		sessions:          make(map[string]*Session),
		challenges:        make(map[string]*Challenge),
		sessionDuration:   cfg.SessionDuration,
		challengeDuration: cfg.ChallengeDuration,
	}
}

// NewChallenge issues a fresh login challenge for an address. Any prior
// challenge for the same address is replaced.
func (s *Service) NewChallenge(address string) *Challenge {
	key := model.CanonicalAddress(address)
	now := s.clock.Now()
	nonce := generateToken("")

	challenge := &Challenge{
		Address:   key,
		ExpiresAt: now.Add(s.challengeDuration),
		Message: fmt.Sprintf(
			"tokengate wants you to sign in\naddress: %s\nnonce: %s",
			key, nonce,
		),
	}

	s.mu.Lock()
	s.challenges[key] = challenge
	s.mu.Unlock()

	return challenge
}

// Authenticate verifies a signed challenge and creates a session. The
// signature must be a 65-byte personal_sign signature over the exact
// challenge message, hex-encoded.
func (s *Service) Authenticate(address, signature string) (*Session, error) {
	key := model.CanonicalAddress(address)

	s.mu.RLock()
	challenge, ok := s.challenges[key]
	s.mu.RUnlock()

	if !ok || s.clock.Now().After(challenge.ExpiresAt) {
		return nil, ErrUnknownChallenge
	}

	signer, err := RecoverSigner(challenge.Message, signature)
	if err != nil || signer != key {
		return nil, ErrInvalidSignature
	}

	// Challenges are single-use.
	s.mu.Lock()
	delete(s.challenges, key)
	s.mu.Unlock()

	return s.createSession(key), nil
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// BindWallet records the machine's active wallet address. When the
// bound wallet changes (switch or disconnect), every session for the
// previously bound address is invalidated so stale tokens cannot write
// against the new wallet's state.
func (s *Service) BindWallet(address string) {
	key := model.CanonicalAddress(address)

	s.mu.Lock()
	prev := s.boundWallet
	s.boundWallet = key
	s.mu.Unlock()

	if prev != "" && prev != key {
		s.InvalidateAddress(prev)
	}
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// InvalidateAddress removes every session for an address. Called when
// the wallet disconnects or switches accounts.
func (s *Service) InvalidateAddress(address string) {
	key := model.CanonicalAddress(address)
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.sessions {
		if session.Address == key {
			delete(s.sessions, token)
		}
	}
}

// CleanExpired removes expired sessions and challenges (call periodically)
func (s *Service) CleanExpired() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
	for key, challenge := range s.challenges {
		if now.After(challenge.ExpiresAt) {
			delete(s.challenges, key)
		}
	}
}

func (s *Service) createSession(address string) *Session {
	token := generateToken("sess_")
	now := s.clock.Now()

	session := &Session{
		Token:     token,
		Address:   address,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.mu.Unlock()

	return session
}

// generateToken generates a random token with a prefix
func generateToken(prefix string) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}
