// Package profile manages player profiles keyed by wallet address.
package profile

import (
	"context"
	"errors"
	"log/slog"
	"regexp"

	"github.com/basedmerge/tokengate/internal/dependencies/clock"
	"github.com/basedmerge/tokengate/internal/dependencies/random"
	"github.com/basedmerge/tokengate/internal/model"
	"github.com/basedmerge/tokengate/internal/storage"
)

const (
	// UsernameSuffixLength is the length of generated name suffixes
	UsernameSuffixLength = 6
	// UsernameAlphabet is the characters used in generated names
	UsernameAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"

	// createRetries bounds username-collision retries on first create
	createRetries = 3
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,24}$`)

// ErrInvalidUsername is returned for names outside the allowed pattern.
var ErrInvalidUsername = errors.New("username must be 3-24 word characters")

// Leaderboard is a point-in-time top-N snapshot. Offline marks snapshots
// taken from the degraded tier so the shell can label them instead of
// presenting stale or empty data as live.
type Leaderboard struct {
	Entries []*model.PlayerProfile
	Offline bool
}

// Service owns profile lookup, creation, and score bookkeeping. The
// storage tier behind it is fixed at startup; in degraded mode it is the
// in-memory tier and every profile it creates is ephemeral.
type Service struct {
	storage  storage.Storage
	clock    clock.Clock
	random   random.Random
	mode     model.StorageMode
	chainTag string
	logger   *slog.Logger
}

// New creates a profile Service over the selected storage tier.
func New(store storage.Storage, clk clock.Clock, rnd random.Random, mode model.StorageMode, chainTag string, logger *slog.Logger) *Service {
	return &Service{
		storage:  store,
		clock:    clk,
		random:   rnd,
		mode:     mode,
		chainTag: chainTag,
		logger:   logger,
	}
}

// Mode reports which tier was selected at startup.
func (s *Service) Mode() model.StorageMode {
	return s.mode
}

// Resolve returns the profile for an address, creating one on first
// access. It never blocks proven on-chain access: a store failure yields
// an ephemeral in-memory profile instead of an error.
func (s *Service) Resolve(ctx context.Context, address string) (*model.PlayerProfile, error) {
	key := model.CanonicalAddress(address)

	existing, err := s.storage.GetProfile(ctx, key)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, model.ErrProfileNotFound) {
		s.logger.Warn("profile store unreachable, using ephemeral profile",
			slog.String("address", key),
			slog.String("error", err.Error()),
		)
		return s.ephemeral(key), nil
	}

	for i := 0; i < createRetries; i++ {
		profile := s.newProfile(key)
		err = s.storage.CreateProfile(ctx, profile)
		switch {
		case err == nil:
			s.logger.Info("profile created",
				slog.String("address", key),
				slog.String("username", profile.Username),
			)
			return profile, nil
		case errors.Is(err, model.ErrUsernameTaken):
			continue
		case errors.Is(err, model.ErrProfileExists):
			// Lost a create race; the winner's profile is authoritative.
			existing, getErr := s.storage.GetProfile(ctx, key)
			if getErr != nil {
				return s.ephemeral(key), nil
			}
			return existing, nil
		default:
			s.logger.Warn("profile create failed, using ephemeral profile",
				slog.String("address", key),
				slog.String("error", err.Error()),
			)
			return s.ephemeral(key), nil
		}
	}
	return s.ephemeral(key), nil
}

// SubmitScore records a finished game's score. Only strictly greater
// scores change the stored best; the update is otherwise a no-op.
func (s *Service) SubmitScore(ctx context.Context, address string, score int) (*model.PlayerProfile, error) {
	if score <= 0 {
		return nil, model.ErrInvalidScore
	}

	key := model.CanonicalAddress(address)
	if err := s.storage.UpdateBestScore(ctx, key, score, s.clock.Now()); err != nil {
		return nil, err
	}
	return s.storage.GetProfile(ctx, key)
}

// SetUsername changes a profile's display name. Uniqueness is enforced
// by the persistent tier only.
func (s *Service) SetUsername(ctx context.Context, address, username string) (*model.PlayerProfile, error) {
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}

	key := model.CanonicalAddress(address)
	if err := s.storage.UpdateUsername(ctx, key, username, s.clock.Now()); err != nil {
		return nil, err
	}
	return s.storage.GetProfile(ctx, key)
}

// Leaderboard returns the current top-N snapshot.
func (s *Service) Leaderboard(ctx context.Context, n int) (*Leaderboard, error) {
	entries, err := s.storage.ListTopProfiles(ctx, n)
	if err != nil {
		return nil, err
	}
	return &Leaderboard{
		Entries: entries,
		Offline: s.mode == model.StorageModeDegraded,
	}, nil
}

func (s *Service) newProfile(key string) *model.PlayerProfile {
	now := s.clock.Now()
	return &model.PlayerProfile{
		WalletAddress: key,
		Username:      "player-" + s.random.String(UsernameSuffixLength, UsernameAlphabet),
		BestScore:     0,
		ChainTag:      s.chainTag,
		CreatedAt:     now,
		UpdatedAt:     now,
		IsEphemeral:   s.mode == model.StorageModeDegraded,
	}
}

func (s *Service) ephemeral(key string) *model.PlayerProfile {
	profile := s.newProfile(key)
	profile.IsEphemeral = true
	return profile
}
