package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/basedmerge/tokengate/internal/model"
	"github.com/basedmerge/tokengate/internal/storage"
)

// Storage is the in-memory profile tier. It backs tests and the degraded
// mode entered when the remote store is unreachable at startup; nothing
// here outlives the process.
type Storage struct {
	mu sync.RWMutex

	profiles      map[string]*model.PlayerProfile
	usernameIndex map[string]string // lower-cased username -> address
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		profiles:      make(map[string]*model.PlayerProfile),
		usernameIndex: make(map[string]string),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) GetProfile(_ context.Context, address string) (*model.PlayerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[address]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (s *Storage) CreateProfile(_ context.Context, profile *model.PlayerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[profile.WalletAddress]; exists {
		return model.ErrProfileExists
	}
	nameKey := strings.ToLower(profile.Username)
	if profile.Username != "" {
		if _, taken := s.usernameIndex[nameKey]; taken {
			return model.ErrUsernameTaken
		}
	}

	copied := *profile
	s.profiles[profile.WalletAddress] = &copied
	if profile.Username != "" {
		s.usernameIndex[nameKey] = profile.WalletAddress
	}
	return nil
}

func (s *Storage) UpdateBestScore(_ context.Context, address string, score int, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[address]
	if !ok {
		return model.ErrProfileNotFound
	}
	if score <= profile.BestScore {
		return nil
	}
	profile.BestScore = score
	profile.UpdatedAt = updatedAt
	return nil
}

func (s *Storage) UpdateUsername(_ context.Context, address, username string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[address]
	if !ok {
		return model.ErrProfileNotFound
	}
	if profile.Username == username {
		return nil
	}

	nameKey := strings.ToLower(username)
	if holder, taken := s.usernameIndex[nameKey]; taken && holder != address {
		return model.ErrUsernameTaken
	}

	delete(s.usernameIndex, strings.ToLower(profile.Username))
	s.usernameIndex[nameKey] = address
	profile.Username = username
	profile.UpdatedAt = updatedAt
	return nil
}

func (s *Storage) ListTopProfiles(_ context.Context, n int) ([]*model.PlayerProfile, error) {
	if n <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	profiles := make([]*model.PlayerProfile, 0, len(s.profiles))
	for _, profile := range s.profiles {
		copied := *profile
		profiles = append(profiles, &copied)
	}
	s.mu.RUnlock()

	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].BestScore != profiles[j].BestScore {
			return profiles[i].BestScore > profiles[j].BestScore
		}
		return profiles[i].WalletAddress < profiles[j].WalletAddress
	})

	if len(profiles) > n {
		profiles = profiles[:n]
	}
	return profiles, nil
}

// Ping always succeeds; memory is always reachable.
func (s *Storage) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory tier.
func (s *Storage) Close() error { return nil }
