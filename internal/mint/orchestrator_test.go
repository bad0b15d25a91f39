package mint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/basedmerge/tokengate/internal/chain"
	"github.com/basedmerge/tokengate/internal/chain/chaintest"
	"github.com/basedmerge/tokengate/internal/dependencies/mocks"
	"github.com/basedmerge/tokengate/internal/gate"
	"github.com/basedmerge/tokengate/internal/model"
	"github.com/basedmerge/tokengate/internal/testutil"
)

const testAddress = "0xBbB0000000000000000000000000000000000002"

func connectedAccount() *model.WalletAccount {
	return &model.WalletAccount{Address: testAddress, ChainID: 8453}
}

type OrchestratorSuite struct {
	suite.Suite
	chain *chaintest.FakeClient
	clock *mocks.MockClock
	orch  *Orchestrator
	ctx   context.Context
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.chain = chaintest.New()
	s.chain.ConnectAccount = connectedAccount()
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	g := gate.New(s.chain, s.clock, testutil.NopLogger())
	s.orch = New(s.chain, g, s.clock, Config{
		PollInterval: time.Millisecond,
		MaxAttempts:  5,
	}, testutil.NopLogger())
	s.ctx = context.Background()

	_, err := s.chain.Connect(s.ctx)
	s.Require().NoError(err)
}

func (s *OrchestratorSuite) TestNotConnectedFailsBeforeSubmitting() {
	disconnected := chaintest.New()
	g := gate.New(disconnected, s.clock, testutil.NopLogger())
	orch := New(disconnected, g, s.clock, Config{PollInterval: time.Millisecond, MaxAttempts: 3}, testutil.NopLogger())

	_, err := orch.SubmitAndConfirm(s.ctx, testAddress, nil)

	s.Require().ErrorIs(err, chain.ErrNotConnected)
	s.Equal(0, disconnected.MintCalls)
}

func (s *OrchestratorSuite) TestUserRejectionSurfacesWithoutPolling() {
	s.chain.MintErr = chain.ErrUserRejected

	_, err := s.orch.SubmitAndConfirm(s.ctx, testAddress, nil)

	s.Require().ErrorIs(err, chain.ErrUserRejected)
	s.Equal(0, s.chain.CheckCount())
}

func (s *OrchestratorSuite) TestTransactionFailureSurfacesWithoutPolling() {
	s.chain.MintErr = chain.ErrTransactionFailed

	_, err := s.orch.SubmitAndConfirm(s.ctx, testAddress, nil)

	s.Require().ErrorIs(err, chain.ErrTransactionFailed)
	s.Equal(0, s.chain.CheckCount())
}

func (s *OrchestratorSuite) TestConfirmsAfterExactlyKPlusOneChecks() {
	s.chain.MintErr = nil
	s.chain.MintHash = "0x123"
	// false, false, then true: confirmation on the third check.
	s.chain.QueueOwned(false, false, true)

	var submitted string
	outcome, err := s.orch.SubmitAndConfirm(s.ctx, testAddress, func(hash string) {
		submitted = hash
	})

	s.Require().NoError(err)
	s.Equal(OutcomeConfirmed, outcome)
	s.Equal("0x123", submitted)
	s.Equal(3, s.chain.CheckCount())
}

func (s *OrchestratorSuite) TestTimesOutAfterExactlyMaxAttempts() {
	s.chain.MintErr = nil
	s.chain.MintHash = "0x123"
	// Default is not-owned, so every tick misses.

	outcome, err := s.orch.SubmitAndConfirm(s.ctx, testAddress, nil)

	s.Require().NoError(err)
	s.Equal(OutcomeTimedOut, outcome)
	s.Equal(5, s.chain.CheckCount())
}

func (s *OrchestratorSuite) TestNoFurtherChecksAfterTimeout() {
	s.chain.MintErr = nil
	s.chain.MintHash = "0x123"

	_, err := s.orch.SubmitAndConfirm(s.ctx, testAddress, nil)
	s.Require().NoError(err)

	checks := s.chain.CheckCount()
	time.Sleep(10 * time.Millisecond)
	s.Equal(checks, s.chain.CheckCount())
	s.Nil(s.orch.Attempt())
}

func (s *OrchestratorSuite) TestSecondMintCancelsFirst() {
	s.chain.MintErr = nil
	s.chain.MintHash = "0x123"

	slow := New(s.chain, gate.New(s.chain, s.clock, testutil.NopLogger()), s.clock, Config{
		PollInterval: time.Hour, // first cycle would poll forever
		MaxAttempts:  5,
	}, testutil.NopLogger())

	firstDone := make(chan error, 1)
	go func() {
		_, err := slow.SubmitAndConfirm(s.ctx, testAddress, nil)
		firstDone <- err
	}()

	// Wait for the first cycle to be in its poll loop.
	s.Require().Eventually(func() bool {
		return slow.Attempt() != nil
	}, time.Second, time.Millisecond)

	s.chain.QueueOwned(true)
	go func() {
		_, _ = slow.SubmitAndConfirm(s.ctx, testAddress, nil)
	}()

	select {
	case err := <-firstDone:
		s.Require().ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		s.Fail("first cycle was not cancelled")
	}
}

func (s *OrchestratorSuite) TestCancelStopsInFlightPoll() {
	s.chain.MintErr = nil
	s.chain.MintHash = "0x123"

	slow := New(s.chain, gate.New(s.chain, s.clock, testutil.NopLogger()), s.clock, Config{
		PollInterval: time.Hour,
		MaxAttempts:  5,
	}, testutil.NopLogger())

	done := make(chan error, 1)
	go func() {
		_, err := slow.SubmitAndConfirm(s.ctx, testAddress, nil)
		done <- err
	}()

	s.Require().Eventually(func() bool {
		return slow.Attempt() != nil
	}, time.Second, time.Millisecond)

	slow.Cancel()

	select {
	case err := <-done:
		s.Require().ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		s.Fail("poll loop was not cancelled")
	}
	s.Nil(slow.Attempt())
}

func (s *OrchestratorSuite) TestAttemptTracksSubmittedTransaction() {
	s.chain.MintErr = nil
	s.chain.MintHash = "0xfeed"

	slow := New(s.chain, gate.New(s.chain, s.clock, testutil.NopLogger()), s.clock, Config{
		PollInterval: time.Hour,
		MaxAttempts:  7,
	}, testutil.NopLogger())

	go func() {
		_, _ = slow.SubmitAndConfirm(s.ctx, testAddress, nil)
	}()

	s.Require().Eventually(func() bool {
		return slow.Attempt() != nil
	}, time.Second, time.Millisecond)

	attempt := slow.Attempt()
	s.Equal("0xfeed", attempt.TransactionHash)
	s.Equal(7, attempt.MaxAttempts)
	s.Equal(s.clock.CurrentTime, attempt.SubmittedAt)

	slow.Cancel()
}

func (s *OrchestratorSuite) TestContextErrorIsNotAnOutcome() {
	s.chain.MintErr = nil
	s.chain.MintHash = "0x123"

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	outcome, err := s.orch.SubmitAndConfirm(ctx, testAddress, nil)

	s.Require().Error(err)
	s.True(errors.Is(err, context.Canceled))
	s.Equal(Outcome(""), outcome)
}
