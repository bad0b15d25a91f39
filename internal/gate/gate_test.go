package gate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/basedmerge/tokengate/internal/chain"
	"github.com/basedmerge/tokengate/internal/chain/chaintest"
	"github.com/basedmerge/tokengate/internal/dependencies/mocks"
	"github.com/basedmerge/tokengate/internal/testutil"
)

type GateSuite struct {
	suite.Suite
	chain *chaintest.FakeClient
	clock *mocks.MockClock
	gate  *Gate
	ctx   context.Context
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.chain = chaintest.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.gate = New(s.chain, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *GateSuite) TestOwnedAddressHasAccess() {
	s.chain.QueueOwned(true)

	s.True(s.gate.HasAccess(s.ctx, "0xAbC0000000000000000000000000000000000001"))
}

func (s *GateSuite) TestUnownedAddressDenied() {
	s.chain.QueueOwned(false)

	s.False(s.gate.HasAccess(s.ctx, "0xAbC0000000000000000000000000000000000001"))
}

func (s *GateSuite) TestAdapterErrorFailsClosed() {
	s.chain.QueueOwnership(chaintest.OwnershipResult{Owned: true, Err: chain.ErrContractUnavailable})

	s.False(s.gate.HasAccess(s.ctx, "0xAbC0000000000000000000000000000000000001"))
}

func (s *GateSuite) TestMisconfiguredContractFailsClosed() {
	// No scripted results and no default: the fake reports the
	// configured default error for every check.
	s.chain.DefaultOwnErr = chain.ErrContractUnavailable

	s.False(s.gate.HasAccess(s.ctx, "0xAbC0000000000000000000000000000000000001"))
	s.False(s.gate.HasAccess(s.ctx, "0xAbC0000000000000000000000000000000000002"))
}

func (s *GateSuite) TestEmptyAddressDeniedWithoutChainCall() {
	s.False(s.gate.HasAccess(s.ctx, ""))
	s.Equal(0, s.chain.CheckCount())
}

func (s *GateSuite) TestCheckRecordsSubjectAndTimestamp() {
	s.chain.QueueOwned(true)

	status := s.gate.Check(s.ctx, "0xAbC0000000000000000000000000000000000001")

	s.True(status.Owned)
	s.Equal("0xabc0000000000000000000000000000000000001", status.SubjectAddress)
	s.Equal(s.clock.CurrentTime, status.CheckedAt)
}
