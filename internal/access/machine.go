// Package access owns the wallet-gated access flow: one tagged state per
// session, with transitions driven by wallet events, ownership checks and
// mint outcomes.
package access

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/basedmerge/tokengate/internal/chain"
	"github.com/basedmerge/tokengate/internal/dependencies/clock"
	"github.com/basedmerge/tokengate/internal/gate"
	"github.com/basedmerge/tokengate/internal/mint"
	"github.com/basedmerge/tokengate/internal/model"
	"github.com/basedmerge/tokengate/internal/services/profile"
)

// ErrInvalidTransition is returned when an operation is not valid in the
// machine's current state.
var ErrInvalidTransition = errors.New("operation not valid in current state")

// GameShell receives the unlock handoff once access is proven and the
// profile is resolved. Setup is called exactly once per entry into the
// ready state.
type GameShell interface {
	Setup(bestScore int)
}

// ShellFunc adapts a plain function to the GameShell interface.
type ShellFunc func(bestScore int)

// Setup implements GameShell.
func (f ShellFunc) Setup(bestScore int) { f(bestScore) }

// Snapshot is a point-in-time view of the machine for read endpoints.
type Snapshot struct {
	State     model.AccessState
	Status    string
	Address   string
	ChainID   model.ChainID
	Ownership *model.OwnershipStatus
	Mint      *model.MintAttempt
	Profile   *model.PlayerProfile
}

// Machine is the access state machine. Exactly one state is live at a
// time; every transition is published to registered listeners. In-flight
// work (ownership checks, confirmation polls, profile loads) is tied to a
// session generation, and results from a superseded generation are
// dropped rather than applied.
type Machine struct {
	chain    chain.Client
	gate     *gate.Gate
	minter   *mint.Orchestrator
	profiles *profile.Service
	shell    GameShell
	clock    clock.Clock
	logger   *slog.Logger

	baseCtx context.Context

	mu        sync.Mutex
	gen       uint64
	state     model.AccessState
	status    string
	account   *model.WalletAccount
	ownership *model.OwnershipStatus
	profile   *model.PlayerProfile
	listeners []func(model.Event)
}

// New creates a Machine in the disconnected state.
func New(
	chainClient chain.Client,
	g *gate.Gate,
	minter *mint.Orchestrator,
	profiles *profile.Service,
	shell GameShell,
	clk clock.Clock,
	logger *slog.Logger,
) *Machine {
	m := &Machine{
		chain:    chainClient,
		gate:     g,
		minter:   minter,
		profiles: profiles,
		shell:    shell,
		clock:    clk,
		logger:   logger,
		baseCtx:  context.Background(),
		state:    model.StateDisconnected,
		status:   statusLine(model.StateDisconnected),
	}
	chainClient.OnAccountChange(m.onAccountChange)
	return m
}

// OnStateChange registers a listener for machine events. Listeners are
// invoked synchronously, outside the machine lock, in registration order.
func (m *Machine) OnStateChange(fn func(model.Event)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Start attempts a silent wallet reconnection. It never prompts: with no
// authorized account the machine simply stays disconnected.
func (m *Machine) Start(ctx context.Context) {
	m.mu.Lock()
	m.baseCtx = ctx
	gen := m.gen
	m.mu.Unlock()

	account, err := m.chain.Init(ctx)
	if err != nil {
		m.logger.Warn("wallet init failed", slog.String("error", err.Error()))
		return
	}
	if account == nil {
		return
	}

	if !m.adopt(gen, account) {
		return
	}
	m.evaluate(ctx, gen, account)
}

// Connect performs an explicit, user-initiated wallet connection and runs
// the full access check. It supersedes any in-flight work.
func (m *Machine) Connect(ctx context.Context) error {
	gen := m.supersede()
	m.setState(gen, model.StateConnecting, "")

	account, err := m.chain.Connect(ctx)
	if err != nil {
		m.setState(gen, model.StateDisconnected, connectFailure(err))
		return err
	}

	if !m.adopt(gen, account) {
		return nil
	}
	m.emit(model.EventWalletChanged, account.Address, nil)
	m.evaluate(ctx, gen, account)
	return nil
}

// Retry re-runs network validation and the ownership check for the
// connected account. Useful after a declined network switch, or after a
// mint timed out and the transaction may have landed since.
func (m *Machine) Retry(ctx context.Context) error {
	m.mu.Lock()
	account := m.account
	m.mu.Unlock()
	if account == nil {
		return chain.ErrNotConnected
	}

	gen := m.supersede()
	m.evaluate(ctx, gen, account)
	return nil
}

// Mint submits a mint for the connected account and blocks until the
// confirmation poll reaches a terminal outcome. Valid only when access
// was denied or a previous mint failed or timed out.
func (m *Machine) Mint(ctx context.Context) (mint.Outcome, error) {
	m.mu.Lock()
	switch m.state {
	case model.StateAccessDenied, model.StateMintFailed, model.StateMintTimedOut:
	default:
		m.mu.Unlock()
		return "", ErrInvalidTransition
	}
	gen := m.gen
	account := m.account
	m.mu.Unlock()

	if account == nil {
		return "", chain.ErrNotConnected
	}

	m.setState(gen, model.StateMinting, "")

	outcome, err := m.minter.SubmitAndConfirm(ctx, account.Address, func(txHash string) {
		m.setState(gen, model.StateConfirming, "")
		m.emitIf(gen, model.EventMintSubmitted, account.Address, model.MintSubmittedPayload{
			TransactionHash: txHash,
		})
	})

	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// Superseded or abandoned; whoever superseded owns the state now.
		return "", err
	case err != nil:
		m.setState(gen, model.StateMintFailed, mintFailure(err))
		return "", err
	case outcome == mint.OutcomeTimedOut:
		m.emitIf(gen, model.EventMintTimedOut, account.Address, nil)
		m.setState(gen, model.StateMintTimedOut, "")
		return outcome, nil
	default:
		m.emitIf(gen, model.EventMintConfirmed, account.Address, nil)
		m.setState(gen, model.StateAccessGranted, "")
		m.loadProfile(ctx, gen, account.Address)
		return outcome, nil
	}
}

// StartGame hands the game shell its unlock. It is a no-op unless the
// machine is ready.
func (m *Machine) StartGame() (*model.PlayerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != model.StateReady || m.profile == nil {
		return nil, model.ErrNotReady
	}
	copied := *m.profile
	return &copied, nil
}

// RecordScore submits a finished game's score for the connected account
// and refreshes the cached profile. Requires the ready state.
func (m *Machine) RecordScore(ctx context.Context, score int) (*model.PlayerProfile, error) {
	m.mu.Lock()
	if m.state != model.StateReady || m.account == nil {
		m.mu.Unlock()
		return nil, model.ErrNotReady
	}
	gen := m.gen
	address := m.account.Address
	m.mu.Unlock()

	updated, err := m.profiles.SubmitScore(ctx, address, score)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.gen == gen {
		m.profile = updated
	}
	m.mu.Unlock()

	m.emitIf(gen, model.EventScoreUpdated, address, model.ScoreUpdatedPayload{
		BestScore: updated.BestScore,
	})
	return updated, nil
}

// State returns the current access state.
func (m *Machine) State() model.AccessState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Account returns the connected account, or nil.
func (m *Machine) Account() *model.WalletAccount {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.account == nil {
		return nil
	}
	copied := *m.account
	return &copied
}

// CurrentProfile returns the resolved profile, or nil before ready.
func (m *Machine) CurrentProfile() *model.PlayerProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return nil
	}
	copied := *m.profile
	return &copied
}

// Snapshot returns a point-in-time view of the machine.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	snap := Snapshot{
		State:  m.state,
		Status: m.status,
	}
	if m.account != nil {
		snap.Address = m.account.Address
		snap.ChainID = m.account.ChainID
	}
	if m.ownership != nil {
		copied := *m.ownership
		snap.Ownership = &copied
	}
	if m.profile != nil {
		copied := *m.profile
		snap.Profile = &copied
	}
	m.mu.Unlock()

	snap.Mint = m.minter.Attempt()
	return snap
}

// evaluate runs network validation, the ownership check, and on grant the
// profile load. Each step is dropped if the generation was superseded.
func (m *Machine) evaluate(ctx context.Context, gen uint64, account *model.WalletAccount) {
	if !m.setState(gen, model.StateCheckingAccess, "") {
		return
	}

	if err := m.chain.EnsureNetwork(ctx); err != nil {
		m.logger.Info("network validation failed",
			slog.String("address", account.Address),
			slog.String("error", err.Error()),
		)
		m.setState(gen, model.StateWrongNetwork, "")
		return
	}

	status := m.gate.Check(ctx, account.Address)

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	m.ownership = &status
	m.mu.Unlock()

	if !status.Owned {
		m.setState(gen, model.StateAccessDenied, "")
		return
	}

	m.setState(gen, model.StateAccessGranted, "")
	m.loadProfile(ctx, gen, account.Address)
}

// loadProfile resolves the profile and enters the ready state, handing
// the shell its unlock.
func (m *Machine) loadProfile(ctx context.Context, gen uint64, address string) {
	if !m.setState(gen, model.StateProfileLoading, "") {
		return
	}

	resolved, err := m.profiles.Resolve(ctx, address)
	if err != nil {
		// Only context failure reaches here; the store never blocks access.
		m.logger.Warn("profile load abandoned",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		return
	}

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	m.profile = resolved
	m.mu.Unlock()

	if !m.setState(gen, model.StateReady, "") {
		return
	}

	m.shell.Setup(resolved.BestScore)
	m.emitIf(gen, model.EventGameUnlocked, address, model.GameUnlockedPayload{
		Username:  resolved.Username,
		BestScore: resolved.BestScore,
		Ephemeral: resolved.IsEphemeral,
	})
}

// onAccountChange reacts to wallet-side account switches and disconnects.
// Either way the current session is superseded and any in-flight mint is
// cancelled.
func (m *Machine) onAccountChange(address string) {
	m.minter.Cancel()

	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.ownership = nil
	m.profile = nil

	if address == "" {
		m.account = nil
		m.mu.Unlock()
		m.emit(model.EventWalletChanged, "", nil)
		m.setState(gen, model.StateDisconnected, "")
		return
	}

	key := model.CanonicalAddress(address)
	var chainID model.ChainID
	if m.account != nil {
		chainID = m.account.ChainID
	}
	account := &model.WalletAccount{Address: key, ChainID: chainID}
	m.account = account
	ctx := m.baseCtx
	m.mu.Unlock()

	m.emit(model.EventWalletChanged, key, nil)
	m.evaluate(ctx, gen, account)
}

// supersede invalidates in-flight work and returns the new generation.
func (m *Machine) supersede() uint64 {
	m.minter.Cancel()
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.mu.Unlock()
	return gen
}

// adopt installs the account if the generation is still live.
func (m *Machine) adopt(gen uint64, account *model.WalletAccount) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return false
	}
	copied := *account
	copied.Address = model.CanonicalAddress(copied.Address)
	m.account = &copied
	return true
}

// setState applies a transition if the generation is still live and
// publishes it. An empty status picks the default line for the state.
func (m *Machine) setState(gen uint64, state model.AccessState, status string) bool {
	if status == "" {
		status = statusLine(state)
	}

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return false
	}
	m.state = state
	m.status = status
	var address string
	if m.account != nil {
		address = m.account.Address
	}
	m.mu.Unlock()

	m.logger.Info("access state changed",
		slog.String("state", string(state)),
		slog.String("address", address),
	)
	m.emit(model.EventStateChanged, address, model.StateChangedPayload{
		State:  state,
		Status: status,
	})
	return true
}

func (m *Machine) emitIf(gen uint64, eventType model.EventType, address string, payload any) {
	m.mu.Lock()
	live := m.gen == gen
	m.mu.Unlock()
	if live {
		m.emit(eventType, address, payload)
	}
}

func (m *Machine) emit(eventType model.EventType, address string, payload any) {
	event := model.Event{
		Type:      eventType,
		Timestamp: m.clock.Now(),
		Address:   address,
		Payload:   payload,
	}

	m.mu.Lock()
	listeners := make([]func(model.Event), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}

func statusLine(state model.AccessState) string {
	switch state {
	case model.StateDisconnected:
		return "Connect your wallet to play"
	case model.StateConnecting:
		return "Connecting wallet"
	case model.StateCheckingAccess:
		return "Checking access pass"
	case model.StateWrongNetwork:
		return "Switch to the configured network to continue"
	case model.StateAccessDenied:
		return "An access pass is required to play"
	case model.StateAccessGranted:
		return "Access pass verified"
	case model.StateMinting:
		return "Submitting mint transaction"
	case model.StateConfirming:
		return "Waiting for on-chain confirmation"
	case model.StateMintFailed:
		return "Mint failed"
	case model.StateMintTimedOut:
		return "Confirmation still pending, refresh to re-check"
	case model.StateProfileLoading:
		return "Loading profile"
	case model.StateReady:
		return "Ready to play"
	}
	return string(state)
}

func connectFailure(err error) string {
	switch {
	case errors.Is(err, chain.ErrUserRejected):
		return "Connection request rejected"
	case errors.Is(err, chain.ErrProviderAbsent):
		return "No wallet provider found"
	}
	return "Wallet connection failed"
}

func mintFailure(err error) string {
	switch {
	case errors.Is(err, chain.ErrUserRejected):
		return "Mint transaction rejected"
	case errors.Is(err, chain.ErrNotConnected):
		return "Wallet not connected"
	}
	return "Mint transaction failed"
}
