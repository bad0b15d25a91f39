package access

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/basedmerge/tokengate/internal/chain"
	"github.com/basedmerge/tokengate/internal/chain/chaintest"
	"github.com/basedmerge/tokengate/internal/dependencies/mocks"
	"github.com/basedmerge/tokengate/internal/gate"
	"github.com/basedmerge/tokengate/internal/mint"
	"github.com/basedmerge/tokengate/internal/model"
	"github.com/basedmerge/tokengate/internal/services/profile"
	"github.com/basedmerge/tokengate/internal/storage/memory"
	"github.com/basedmerge/tokengate/internal/testutil"
)

const (
	holderAddress = "0xAaA0000000000000000000000000000000000001"
	minterAddress = "0xBbB0000000000000000000000000000000000002"
)

type MachineSuite struct {
	suite.Suite
	chain    *chaintest.FakeClient
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	minter   *mint.Orchestrator
	profiles *profile.Service
	shell    *recordingShell
	events   *eventRecorder
	machine  *Machine
	ctx      context.Context
}

func TestMachineSuite(t *testing.T) {
	suite.Run(t, new(MachineSuite))
}

func (s *MachineSuite) SetupTest() {
	logger := testutil.NopLogger()

	s.chain = chaintest.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()

	g := gate.New(s.chain, s.clock, logger)
	s.minter = mint.New(s.chain, g, s.clock, mint.Config{
		PollInterval: time.Millisecond,
		MaxAttempts:  5,
	}, logger)
	s.profiles = profile.New(memory.New(), s.clock, s.random, model.StorageModePersistent, "base", logger)

	s.shell = &recordingShell{}
	s.events = &eventRecorder{}
	s.machine = New(s.chain, g, s.minter, s.profiles, s.shell, s.clock, logger)
	s.machine.OnStateChange(s.events.record)
	s.ctx = context.Background()
}

func (s *MachineSuite) TestHolderConnectsAndUnlocks() {
	s.chain.ConnectAccount = &model.WalletAccount{Address: holderAddress, ChainID: 8453}
	s.chain.DefaultOwned = true
	s.random.QueueString("aaa111")

	s.Require().NoError(s.machine.Connect(s.ctx))

	s.Equal(model.StateReady, s.machine.State())
	s.Equal([]int{0}, s.shell.setups())

	profile := s.machine.CurrentProfile()
	s.Require().NotNil(profile)
	s.Equal("0xaaa0000000000000000000000000000000000001", profile.WalletAddress)
	s.Equal("player-aaa111", profile.Username)

	s.Equal([]model.AccessState{
		model.StateConnecting,
		model.StateCheckingAccess,
		model.StateAccessGranted,
		model.StateProfileLoading,
		model.StateReady,
	}, s.events.states())
}

func (s *MachineSuite) TestStartReconnectsSilently() {
	s.chain.InitAccount = &model.WalletAccount{Address: holderAddress, ChainID: 8453}
	s.chain.DefaultOwned = true
	s.random.QueueString("aaa111")

	s.machine.Start(s.ctx)

	s.Equal(model.StateReady, s.machine.State())
	s.Equal(0, s.chain.ConnectCalls)
}

func (s *MachineSuite) TestStartWithoutAuthorizedAccountStaysDisconnected() {
	s.machine.Start(s.ctx)

	s.Equal(model.StateDisconnected, s.machine.State())
	s.Nil(s.machine.Account())
	s.Equal(0, s.chain.ConnectCalls)
	s.Equal(0, s.chain.CheckCount())
}

func (s *MachineSuite) TestConnectRejectionReturnsToDisconnected() {
	s.chain.ConnectErr = chain.ErrUserRejected

	err := s.machine.Connect(s.ctx)
	s.Require().ErrorIs(err, chain.ErrUserRejected)

	s.Equal(model.StateDisconnected, s.machine.State())
	s.Equal("Connection request rejected", s.machine.Snapshot().Status)
}

func (s *MachineSuite) TestWrongNetworkThenRetry() {
	s.chain.ConnectAccount = &model.WalletAccount{Address: holderAddress, ChainID: 1}
	s.chain.NetworkErrs = []error{chain.ErrWrongNetwork}
	s.chain.DefaultOwned = true
	s.random.QueueString("aaa111")

	s.Require().NoError(s.machine.Connect(s.ctx))
	s.Equal(model.StateWrongNetwork, s.machine.State())

	s.Require().NoError(s.machine.Retry(s.ctx))
	s.Equal(model.StateReady, s.machine.State())
}

func (s *MachineSuite) TestNonHolderIsDenied() {
	s.chain.ConnectAccount = &model.WalletAccount{Address: minterAddress, ChainID: 8453}

	s.Require().NoError(s.machine.Connect(s.ctx))

	s.Equal(model.StateAccessDenied, s.machine.State())
	s.Nil(s.machine.CurrentProfile())
	s.Empty(s.shell.setups())
}

func (s *MachineSuite) TestMintConfirmsAndUnlocks() {
	s.chain.ConnectAccount = &model.WalletAccount{Address: minterAddress, ChainID: 8453}
	s.chain.QueueOwned(false) // connect-time check
	s.random.QueueString("bbb222")

	s.Require().NoError(s.machine.Connect(s.ctx))
	s.Require().Equal(model.StateAccessDenied, s.machine.State())

	s.chain.MintErr = nil
	s.chain.MintHash = "0x123"
	s.chain.QueueOwned(false, false, true)

	outcome, err := s.machine.Mint(s.ctx)
	s.Require().NoError(err)
	s.Equal(mint.OutcomeConfirmed, outcome)

	s.Equal(model.StateReady, s.machine.State())
	s.Equal([]int{0}, s.shell.setups())

	states := s.events.states()
	s.Contains(states, model.StateMinting)
	s.Contains(states, model.StateConfirming)
	s.Equal("0x123", s.events.mintHash())
}

func (s *MachineSuite) TestMintRejectionFailsWithoutPolling() {
	s.chain.ConnectAccount = &model.WalletAccount{Address: minterAddress, ChainID: 8453}
	s.Require().NoError(s.machine.Connect(s.ctx))
	checksBefore := s.chain.CheckCount()

	s.chain.MintErr = chain.ErrUserRejected

	_, err := s.machine.Mint(s.ctx)
	s.Require().ErrorIs(err, chain.ErrUserRejected)

	s.Equal(model.StateMintFailed, s.machine.State())
	s.Equal("Mint transaction rejected", s.machine.Snapshot().Status)
	s.Equal(checksBefore, s.chain.CheckCount())
}

func (s *MachineSuite) TestMintTimeoutThenRetryUnlocks() {
	s.chain.ConnectAccount = &model.WalletAccount{Address: minterAddress, ChainID: 8453}
	s.Require().NoError(s.machine.Connect(s.ctx))

	s.chain.MintErr = nil
	s.chain.MintHash = "0x123"

	outcome, err := s.machine.Mint(s.ctx)
	s.Require().NoError(err)
	s.Equal(mint.OutcomeTimedOut, outcome)
	s.Equal(model.StateMintTimedOut, s.machine.State())

	// The transaction lands later; a manual refresh picks it up.
	s.chain.DefaultOwned = true
	s.random.QueueString("bbb222")
	s.Require().NoError(s.machine.Retry(s.ctx))
	s.Equal(model.StateReady, s.machine.State())
}

func (s *MachineSuite) TestMintRequiresDeniedState() {
	_, err := s.machine.Mint(s.ctx)
	s.Require().ErrorIs(err, ErrInvalidTransition)

	s.chain.ConnectAccount = &model.WalletAccount{Address: holderAddress, ChainID: 8453}
	s.chain.DefaultOwned = true
	s.random.QueueString("aaa111")
	s.Require().NoError(s.machine.Connect(s.ctx))

	_, err = s.machine.Mint(s.ctx)
	s.Require().ErrorIs(err, ErrInvalidTransition)
}

func (s *MachineSuite) TestDisconnectCancelsInFlightMint() {
	s.chain.ConnectAccount = &model.WalletAccount{Address: minterAddress, ChainID: 8453}
	s.Require().NoError(s.machine.Connect(s.ctx))

	s.chain.MintErr = nil
	s.chain.MintHash = "0x123"
	slowMinter := mint.New(s.chain, gate.New(s.chain, s.clock, testutil.NopLogger()), s.clock, mint.Config{
		PollInterval: time.Hour,
		MaxAttempts:  5,
	}, testutil.NopLogger())
	s.machine.minter = slowMinter

	errs := make(chan error, 1)
	go func() {
		_, err := s.machine.Mint(s.ctx)
		errs <- err
	}()

	s.Require().Eventually(func() bool {
		return s.machine.State() == model.StateConfirming
	}, time.Second, time.Millisecond)

	s.chain.ChangeAccount("")

	s.Require().ErrorIs(<-errs, context.Canceled)
	// The disconnect owns the state; the dead mint must not overwrite it.
	s.Equal(model.StateDisconnected, s.machine.State())
}

func (s *MachineSuite) TestAccountSwitchRechecksNewAddress() {
	s.chain.ConnectAccount = &model.WalletAccount{Address: holderAddress, ChainID: 8453}
	s.chain.QueueOwned(true)
	s.random.QueueString("aaa111")
	s.Require().NoError(s.machine.Connect(s.ctx))
	s.Require().Equal(model.StateReady, s.machine.State())

	// The new account holds nothing.
	s.chain.ChangeAccount(minterAddress)

	s.Equal(model.StateAccessDenied, s.machine.State())
	s.Nil(s.machine.CurrentProfile())

	account := s.machine.Account()
	s.Require().NotNil(account)
	s.Equal("0xbbb0000000000000000000000000000000000002", account.Address)

	// Only the first unlock reached the shell.
	s.Equal([]int{0}, s.shell.setups())
}

func (s *MachineSuite) TestDisconnectClearsSession() {
	s.chain.ConnectAccount = &model.WalletAccount{Address: holderAddress, ChainID: 8453}
	s.chain.DefaultOwned = true
	s.random.QueueString("aaa111")
	s.Require().NoError(s.machine.Connect(s.ctx))

	s.chain.ChangeAccount("")

	s.Equal(model.StateDisconnected, s.machine.State())
	s.Nil(s.machine.Account())
	s.Nil(s.machine.CurrentProfile())

	_, err := s.machine.StartGame()
	s.Require().ErrorIs(err, model.ErrNotReady)
}

func (s *MachineSuite) TestStartGameRequiresReady() {
	_, err := s.machine.StartGame()
	s.Require().ErrorIs(err, model.ErrNotReady)

	s.chain.ConnectAccount = &model.WalletAccount{Address: holderAddress, ChainID: 8453}
	s.chain.DefaultOwned = true
	s.random.QueueString("aaa111")
	s.Require().NoError(s.machine.Connect(s.ctx))

	unlocked, err := s.machine.StartGame()
	s.Require().NoError(err)
	s.Equal("player-aaa111", unlocked.Username)
}

func (s *MachineSuite) TestRecordScoreUpdatesBest() {
	s.chain.ConnectAccount = &model.WalletAccount{Address: holderAddress, ChainID: 8453}
	s.chain.DefaultOwned = true
	s.random.QueueString("aaa111")
	s.Require().NoError(s.machine.Connect(s.ctx))

	updated, err := s.machine.RecordScore(s.ctx, 512)
	s.Require().NoError(err)
	s.Equal(512, updated.BestScore)
	s.Equal(512, s.machine.CurrentProfile().BestScore)
	s.Equal(512, s.events.lastScore())

	// Lower score leaves the best alone.
	updated, err = s.machine.RecordScore(s.ctx, 128)
	s.Require().NoError(err)
	s.Equal(512, updated.BestScore)
}

func (s *MachineSuite) TestRecordScoreRequiresReady() {
	_, err := s.machine.RecordScore(s.ctx, 100)
	s.Require().ErrorIs(err, model.ErrNotReady)
}

func (s *MachineSuite) TestSnapshotReflectsDeniedSession() {
	s.chain.ConnectAccount = &model.WalletAccount{Address: minterAddress, ChainID: 8453}
	s.Require().NoError(s.machine.Connect(s.ctx))

	snap := s.machine.Snapshot()
	s.Equal(model.StateAccessDenied, snap.State)
	s.Equal("0xbbb0000000000000000000000000000000000002", snap.Address)
	s.Equal(model.ChainID(8453), snap.ChainID)
	s.Require().NotNil(snap.Ownership)
	s.False(snap.Ownership.Owned)
	s.Nil(snap.Profile)
}

// recordingShell captures unlock handoffs.
type recordingShell struct {
	mu    sync.Mutex
	calls []int
}

func (r *recordingShell) Setup(bestScore int) {
	r.mu.Lock()
	r.calls = append(r.calls, bestScore)
	r.mu.Unlock()
}

func (r *recordingShell) setups() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.calls...)
}

// eventRecorder captures published machine events.
type eventRecorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *eventRecorder) record(event model.Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *eventRecorder) states() []model.AccessState {
	r.mu.Lock()
	defer r.mu.Unlock()
	var states []model.AccessState
	for _, e := range r.events {
		if payload, ok := e.Payload.(model.StateChangedPayload); ok {
			states = append(states, payload.State)
		}
	}
	return states
}

func (r *eventRecorder) mintHash() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if payload, ok := e.Payload.(model.MintSubmittedPayload); ok {
			return payload.TransactionHash
		}
	}
	return ""
}

func (r *eventRecorder) lastScore() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	score := -1
	for _, e := range r.events {
		if payload, ok := e.Payload.(model.ScoreUpdatedPayload); ok {
			score = payload.BestScore
		}
	}
	return score
}
