package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/basedmerge/tokengate/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) profile(address, username string, best int) *model.PlayerProfile {
	return &model.PlayerProfile{
		WalletAddress: address,
		Username:      username,
		BestScore:     best,
		ChainTag:      "base",
		CreatedAt:     s.now,
		UpdatedAt:     s.now,
	}
}

func (s *StorageSuite) TestCreateAndGetProfile() {
	s.Require().NoError(s.storage.CreateProfile(s.ctx, s.profile("0xaaa", "alice", 0)))

	got, err := s.storage.GetProfile(s.ctx, "0xaaa")
	s.Require().NoError(err)
	s.Equal("alice", got.Username)
	s.Equal(0, got.BestScore)
}

func (s *StorageSuite) TestGetMissingProfile() {
	_, err := s.storage.GetProfile(s.ctx, "0xmissing")
	s.Require().ErrorIs(err, model.ErrProfileNotFound)
}

func (s *StorageSuite) TestCreateDuplicateAddressFails() {
	s.Require().NoError(s.storage.CreateProfile(s.ctx, s.profile("0xaaa", "alice", 0)))

	err := s.storage.CreateProfile(s.ctx, s.profile("0xaaa", "other", 0))
	s.Require().ErrorIs(err, model.ErrProfileExists)
}

func (s *StorageSuite) TestCreateDuplicateUsernameFails() {
	s.Require().NoError(s.storage.CreateProfile(s.ctx, s.profile("0xaaa", "alice", 0)))

	err := s.storage.CreateProfile(s.ctx, s.profile("0xbbb", "Alice", 0))
	s.Require().ErrorIs(err, model.ErrUsernameTaken)
}

func (s *StorageSuite) TestBestScoreIsMonotonic() {
	s.Require().NoError(s.storage.CreateProfile(s.ctx, s.profile("0xaaa", "alice", 0)))

	s.Require().NoError(s.storage.UpdateBestScore(s.ctx, "0xaaa", 100, s.now))
	s.Require().NoError(s.storage.UpdateBestScore(s.ctx, "0xaaa", 50, s.now))

	got, err := s.storage.GetProfile(s.ctx, "0xaaa")
	s.Require().NoError(err)
	s.Equal(100, got.BestScore)
}

func (s *StorageSuite) TestEqualScoreIsNoOp() {
	s.Require().NoError(s.storage.CreateProfile(s.ctx, s.profile("0xaaa", "alice", 100)))

	later := s.now.Add(time.Hour)
	s.Require().NoError(s.storage.UpdateBestScore(s.ctx, "0xaaa", 100, later))

	got, err := s.storage.GetProfile(s.ctx, "0xaaa")
	s.Require().NoError(err)
	s.Equal(s.now, got.UpdatedAt)
}

func (s *StorageSuite) TestUpdateUsername() {
	s.Require().NoError(s.storage.CreateProfile(s.ctx, s.profile("0xaaa", "alice", 0)))

	s.Require().NoError(s.storage.UpdateUsername(s.ctx, "0xaaa", "queen", s.now))

	got, err := s.storage.GetProfile(s.ctx, "0xaaa")
	s.Require().NoError(err)
	s.Equal("queen", got.Username)

	// Old name is released.
	s.Require().NoError(s.storage.CreateProfile(s.ctx, s.profile("0xbbb", "alice", 0)))
}

func (s *StorageSuite) TestUpdateUsernameConflict() {
	s.Require().NoError(s.storage.CreateProfile(s.ctx, s.profile("0xaaa", "alice", 0)))
	s.Require().NoError(s.storage.CreateProfile(s.ctx, s.profile("0xbbb", "bob", 0)))

	err := s.storage.UpdateUsername(s.ctx, "0xbbb", "alice", s.now)
	s.Require().ErrorIs(err, model.ErrUsernameTaken)
}

func (s *StorageSuite) TestListTopProfilesOrdering() {
	s.Require().NoError(s.storage.CreateProfile(s.ctx, s.profile("0xaaa", "alice", 300)))
	s.Require().NoError(s.storage.CreateProfile(s.ctx, s.profile("0xbbb", "bob", 100)))
	s.Require().NoError(s.storage.CreateProfile(s.ctx, s.profile("0xccc", "carol", 200)))

	top, err := s.storage.ListTopProfiles(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal("alice", top[0].Username)
	s.Equal("carol", top[1].Username)
}

func (s *StorageSuite) TestListTopProfilesIsASnapshot() {
	s.Require().NoError(s.storage.CreateProfile(s.ctx, s.profile("0xaaa", "alice", 100)))

	top, err := s.storage.ListTopProfiles(s.ctx, 10)
	s.Require().NoError(err)

	top[0].BestScore = 999

	got, err := s.storage.GetProfile(s.ctx, "0xaaa")
	s.Require().NoError(err)
	s.Equal(100, got.BestScore)
}
