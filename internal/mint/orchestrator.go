// Package mint submits mint transactions and awaits on-chain confirmation.
package mint

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/basedmerge/tokengate/internal/chain"
	"github.com/basedmerge/tokengate/internal/dependencies/clock"
	"github.com/basedmerge/tokengate/internal/gate"
	"github.com/basedmerge/tokengate/internal/model"
)

// Outcome is the terminal result of a submit-and-confirm cycle.
type Outcome string

const (
	// OutcomeConfirmed means an ownership check observed the token.
	OutcomeConfirmed Outcome = "confirmed"
	// OutcomeTimedOut means the attempt budget was exhausted. The
	// transaction may still confirm later; callers offer a manual
	// refresh rather than treating this as failure.
	OutcomeTimedOut Outcome = "timed_out"
)

// Config bounds the confirmation poll. Confirmation latency depends on
// block finality and indexer lag, so the loop is capped rather than
// open-ended.
type Config struct {
	PollInterval time.Duration
	MaxAttempts  int
}

// DefaultConfig returns the reference poll bounds (2s x 20 ~= 40s).
func DefaultConfig() Config {
	return Config{
		PollInterval: 2 * time.Second,
		MaxAttempts:  20,
	}
}

// Orchestrator runs at most one mint/confirmation cycle at a time.
// Starting a new cycle cancels any in-flight one; cancellation is also
// triggered by address change, disconnect, or session reset through the
// caller's context.
type Orchestrator struct {
	chain  chain.Client
	gate   *gate.Gate
	clock  clock.Clock
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	attempt *model.MintAttempt
}

// New creates an Orchestrator. Zero config fields fall back to defaults.
func New(chainClient chain.Client, g *gate.Gate, clk clock.Clock, cfg Config, logger *slog.Logger) *Orchestrator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	return &Orchestrator{
		chain:  chainClient,
		gate:   g,
		clock:  clk,
		cfg:    cfg,
		logger: logger,
	}
}

// SubmitAndConfirm submits a mint for the address and polls the ownership
// gate until confirmation or the attempt budget runs out. onSubmit, if
// non-nil, is invoked once the transaction hash is known, before the
// first poll tick. Submission failures (ErrUserRejected,
// ErrTransactionFailed) surface immediately and never consume poll
// budget.
func (o *Orchestrator) SubmitAndConfirm(ctx context.Context, address string, onSubmit func(txHash string)) (Outcome, error) {
	if !o.chain.IsConnected() {
		return "", chain.ErrNotConnected
	}

	ctx, gen, finish := o.begin(ctx)
	defer finish()

	hash, err := o.chain.Mint(ctx, address)
	if err != nil {
		return "", err
	}

	attempt := &model.MintAttempt{
		TransactionHash: hash,
		SubmittedAt:     o.clock.Now(),
		MaxAttempts:     o.cfg.MaxAttempts,
		Interval:        o.cfg.PollInterval,
	}
	o.setAttempt(gen, attempt)

	o.logger.Info("mint submitted",
		slog.String("address", model.CanonicalAddress(address)),
		slog.String("tx", hash),
	)

	if onSubmit != nil {
		onSubmit(hash)
	}

	for attempt.PollAttempt < attempt.MaxAttempts {
		timer := time.NewTimer(o.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}

		o.mu.Lock()
		attempt.PollAttempt++
		o.mu.Unlock()
		if o.gate.HasAccess(ctx, address) {
			o.logger.Info("mint confirmed",
				slog.String("tx", hash),
				slog.Int("attempts", attempt.PollAttempt),
			)
			return OutcomeConfirmed, nil
		}
	}

	o.logger.Warn("mint confirmation timed out",
		slog.String("tx", hash),
		slog.Int("attempts", attempt.PollAttempt),
	)
	return OutcomeTimedOut, nil
}

// Cancel stops any in-flight confirmation poll.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	cancel := o.cancel
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Attempt returns a copy of the live mint attempt, or nil.
func (o *Orchestrator) Attempt() *model.MintAttempt {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.attempt == nil {
		return nil
	}
	copied := *o.attempt
	return &copied
}

// begin cancels any prior cycle and installs this one as the live cycle,
// identified by a generation number. The returned finish func clears
// state only while this cycle is still the live one.
func (o *Orchestrator) begin(ctx context.Context) (context.Context, uint64, func()) {
	ctx, cancel := context.WithCancel(ctx)

	o.mu.Lock()
	prior := o.cancel
	o.gen++
	gen := o.gen
	o.cancel = cancel
	o.attempt = nil
	o.mu.Unlock()

	if prior != nil {
		prior()
	}

	finish := func() {
		o.mu.Lock()
		if o.gen == gen {
			o.cancel = nil
			o.attempt = nil
		}
		o.mu.Unlock()
		cancel()
	}
	return ctx, gen, finish
}

func (o *Orchestrator) setAttempt(gen uint64, attempt *model.MintAttempt) {
	o.mu.Lock()
	if o.gen == gen {
		o.attempt = attempt
	}
	o.mu.Unlock()
}
