package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/basedmerge/tokengate/internal/model"
	"github.com/basedmerge/tokengate/internal/storage"
)

// Storage is the Redis-backed persistent profile tier. Profiles are
// stored as JSON values with a username uniqueness index and a ZSET
// keeping the leaderboard ordering.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance and verifies the connection.
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping verifies the store is reachable
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) GetProfile(ctx context.Context, address string) (*model.PlayerProfile, error) {
	data, err := s.client.Get(ctx, profileKey(address)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrProfileNotFound
		}
		return nil, err
	}

	var profile model.PlayerProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Storage) CreateProfile(ctx context.Context, profile *model.PlayerProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	// Reserve the username first so two first-time players cannot end up
	// sharing a name. The reservation is best-effort race safety, not a
	// transaction.
	if profile.Username != "" {
		ok, err := s.client.SetNX(ctx, usernameIndexKey(profile.Username), profile.WalletAddress, 0).Result()
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrUsernameTaken
		}
	}

	ok, err := s.client.SetNX(ctx, profileKey(profile.WalletAddress), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		if profile.Username != "" {
			s.client.Del(ctx, usernameIndexKey(profile.Username))
		}
		return model.ErrProfileExists
	}

	return s.client.ZAdd(ctx, leaderboardKey(), redis.Z{
		Score:  float64(profile.BestScore),
		Member: profile.WalletAddress,
	}).Err()
}

func (s *Storage) UpdateBestScore(ctx context.Context, address string, score int, updatedAt time.Time) error {
	profile, err := s.GetProfile(ctx, address)
	if err != nil {
		return err
	}

	// Monotonic: never write a lower or equal value.
	if score <= profile.BestScore {
		return nil
	}

	profile.BestScore = score
	profile.UpdatedAt = updatedAt

	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	// ZADD GT keeps the index monotonic even under concurrent writers.
	pipe := s.client.Pipeline()
	pipe.Set(ctx, profileKey(address), data, 0)
	pipe.ZAddGT(ctx, leaderboardKey(), redis.Z{
		Score:  float64(score),
		Member: address,
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) UpdateUsername(ctx context.Context, address, username string, updatedAt time.Time) error {
	profile, err := s.GetProfile(ctx, address)
	if err != nil {
		return err
	}
	if profile.Username == username {
		return nil
	}

	ok, err := s.client.SetNX(ctx, usernameIndexKey(username), address, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		// The name may be held by this same address under different
		// casing; anything else is a conflict.
		holder, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
		if err != nil || holder != address {
			return model.ErrUsernameTaken
		}
	}

	oldUsername := profile.Username
	profile.Username = username
	profile.UpdatedAt = updatedAt

	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, profileKey(address), data, 0)
	if oldUsername != "" {
		pipe.Del(ctx, usernameIndexKey(oldUsername))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListTopProfiles(ctx context.Context, n int) ([]*model.PlayerProfile, error) {
	if n <= 0 {
		return nil, nil
	}

	addresses, err := s.client.ZRevRange(ctx, leaderboardKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(addresses) == 0 {
		return []*model.PlayerProfile{}, nil
	}

	keys := make([]string, len(addresses))
	for i, address := range addresses {
		keys[i] = profileKey(address)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	profiles := make([]*model.PlayerProfile, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			// Index entry without a profile record; skip rather than
			// fail the whole snapshot.
			continue
		}
		var profile model.PlayerProfile
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			return nil, err
		}
		profiles = append(profiles, &profile)
	}
	return profiles, nil
}
