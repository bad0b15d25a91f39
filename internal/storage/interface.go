package storage

import (
	"context"
	"time"

	"github.com/basedmerge/tokengate/internal/model"
)

// Storage defines the profile store boundary. All keys are lower-cased
// wallet addresses; callers are responsible for canonicalizing before
// calling (model.CanonicalAddress).
type Storage interface {
	// GetProfile returns the profile for an address, or
	// model.ErrProfileNotFound.
	GetProfile(ctx context.Context, address string) (*model.PlayerProfile, error)

	// CreateProfile stores a new profile. Fails with
	// model.ErrProfileExists when the address already has one, or
	// model.ErrUsernameTaken when the username is in use.
	CreateProfile(ctx context.Context, profile *model.PlayerProfile) error

	// UpdateBestScore raises the stored best score. A score less than
	// or equal to the stored value is an idempotent no-op.
	UpdateBestScore(ctx context.Context, address string, score int, updatedAt time.Time) error

	// UpdateUsername changes the profile's username. Fails with
	// model.ErrUsernameTaken when another profile holds the name.
	UpdateUsername(ctx context.Context, address, username string, updatedAt time.Time) error

	// ListTopProfiles returns up to n profiles ordered by best score
	// descending. Each call is a fresh snapshot.
	ListTopProfiles(ctx context.Context, n int) ([]*model.PlayerProfile, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases any underlying connections.
	Close() error
}
