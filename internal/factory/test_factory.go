package factory

import (
	"time"

	"github.com/basedmerge/tokengate/internal/chain/chaintest"
	"github.com/basedmerge/tokengate/internal/dependencies/mocks"
	"github.com/basedmerge/tokengate/internal/mint"
	"github.com/basedmerge/tokengate/internal/model"
	"github.com/basedmerge/tokengate/internal/services/auth"
	"github.com/basedmerge/tokengate/internal/storage/memory"
	"github.com/basedmerge/tokengate/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	FakeChain  *chaintest.FakeClient
}

// NewTestApp creates an App configured for testing with mocked
// dependencies and a scriptable chain client. Mint polls run at
// millisecond pace so confirmation cycles finish within a test.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	fakeChain := chaintest.New()

	app := newWithDependencies(deps{
		store:       store,
		mode:        model.StorageModePersistent,
		chainClient: fakeChain,
		clock:       mockClock,
		random:      mockRandom,
		authCfg:     auth.DefaultConfig(),
		mintCfg: mint.Config{
			PollInterval: time.Millisecond,
			MaxAttempts:  5,
		},
		chainTag: "base",
		logger:   testutil.NopLogger(),
	})

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		FakeChain:  fakeChain,
	}
}
