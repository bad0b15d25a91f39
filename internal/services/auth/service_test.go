package auth

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/suite"

	"github.com/basedmerge/tokengate/internal/dependencies/mocks"
	"github.com/basedmerge/tokengate/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service

	keyHex  string
	address string
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.clock, DefaultConfig())

	key, err := crypto.GenerateKey()
	s.Require().NoError(err)
	s.keyHex = hexKey(key.D.Bytes())
	s.address = model.CanonicalAddress(crypto.PubkeyToAddress(key.PublicKey).Hex())
}

func hexKey(d []byte) string {
	const digits = "0123456789abcdef"
	// Left-pad to 32 bytes; crypto.HexToECDSA requires the full width.
	out := make([]byte, 0, 64)
	for i := 0; i < 32-len(d); i++ {
		out = append(out, '0', '0')
	}
	for _, b := range d {
		out = append(out, digits[b>>4], digits[b&0x0f])
	}
	return string(out)
}

func (s *ServiceSuite) signChallenge() (message, signature string) {
	challenge := s.service.NewChallenge(s.address)
	sig, err := SignMessage(challenge.Message, s.keyHex)
	s.Require().NoError(err)
	return challenge.Message, sig
}

func (s *ServiceSuite) TestAuthenticateWithValidSignature() {
	_, sig := s.signChallenge()

	session, err := s.service.Authenticate(s.address, sig)
	s.Require().NoError(err)
	s.Equal(s.address, session.Address)
	s.NotEmpty(session.Token)
}

func (s *ServiceSuite) TestAuthenticateNormalizesAddressCase() {
	_, sig := s.signChallenge()

	upper := "0X" + s.address[2:]
	session, err := s.service.Authenticate(upper, sig)
	s.Require().NoError(err)
	s.Equal(s.address, session.Address)
}

func (s *ServiceSuite) TestAuthenticateRejectsWrongSigner() {
	challenge := s.service.NewChallenge(s.address)

	other, err := crypto.GenerateKey()
	s.Require().NoError(err)
	sig, err := SignMessage(challenge.Message, hexKey(other.D.Bytes()))
	s.Require().NoError(err)

	_, err = s.service.Authenticate(s.address, sig)
	s.Require().ErrorIs(err, ErrInvalidSignature)
}

func (s *ServiceSuite) TestAuthenticateRequiresChallenge() {
	_, err := s.service.Authenticate(s.address, "0x00")
	s.Require().ErrorIs(err, ErrUnknownChallenge)
}

func (s *ServiceSuite) TestChallengeExpires() {
	_, sig := s.signChallenge()

	s.clock.Advance(10 * time.Minute)

	_, err := s.service.Authenticate(s.address, sig)
	s.Require().ErrorIs(err, ErrUnknownChallenge)
}

func (s *ServiceSuite) TestChallengeIsSingleUse() {
	_, sig := s.signChallenge()

	_, err := s.service.Authenticate(s.address, sig)
	s.Require().NoError(err)

	_, err = s.service.Authenticate(s.address, sig)
	s.Require().ErrorIs(err, ErrUnknownChallenge)
}

func (s *ServiceSuite) TestValidateSession() {
	_, sig := s.signChallenge()
	session, err := s.service.Authenticate(s.address, sig)
	s.Require().NoError(err)

	got, err := s.service.ValidateSession(session.Token)
	s.Require().NoError(err)
	s.Equal(s.address, got.Address)
}

func (s *ServiceSuite) TestSessionExpires() {
	_, sig := s.signChallenge()
	session, err := s.service.Authenticate(s.address, sig)
	s.Require().NoError(err)

	s.clock.Advance(25 * time.Hour)

	_, err = s.service.ValidateSession(session.Token)
	s.Require().ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestInvalidateAddressDropsSessions() {
	_, sig := s.signChallenge()
	session, err := s.service.Authenticate(s.address, sig)
	s.Require().NoError(err)

	s.service.InvalidateAddress(s.address)

	_, err = s.service.ValidateSession(session.Token)
	s.Require().ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestBindWalletRevokesOldAddressOnSwitch() {
	_, sig := s.signChallenge()
	session, err := s.service.Authenticate(s.address, sig)
	s.Require().NoError(err)

	s.service.BindWallet(s.address)

	// Rebinding the same wallet keeps the session alive
	s.service.BindWallet(s.address)
	_, err = s.service.ValidateSession(session.Token)
	s.Require().NoError(err)

	// Switching to another wallet revokes the old address's sessions
	s.service.BindWallet("0xBbB0000000000000000000000000000000000002")
	_, err = s.service.ValidateSession(session.Token)
	s.Require().ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestBindWalletRevokesOnDisconnect() {
	_, sig := s.signChallenge()
	session, err := s.service.Authenticate(s.address, sig)
	s.Require().NoError(err)

	s.service.BindWallet(s.address)
	s.service.BindWallet("")

	_, err = s.service.ValidateSession(session.Token)
	s.Require().ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestRecoverSignerRejectsGarbage() {
	_, err := RecoverSigner("message", "not-hex")
	s.Require().ErrorIs(err, ErrInvalidSignature)

	_, err = RecoverSigner("message", "0x0102")
	s.Require().ErrorIs(err, ErrInvalidSignature)
}
