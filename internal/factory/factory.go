// Package factory wires the application graph.
package factory

import (
	"context"
	"io"
	"log/slog"

	"github.com/basedmerge/tokengate/internal/access"
	"github.com/basedmerge/tokengate/internal/chain"
	"github.com/basedmerge/tokengate/internal/chain/ethereum"
	"github.com/basedmerge/tokengate/internal/config"
	"github.com/basedmerge/tokengate/internal/dependencies/clock"
	"github.com/basedmerge/tokengate/internal/dependencies/random"
	"github.com/basedmerge/tokengate/internal/gate"
	"github.com/basedmerge/tokengate/internal/mint"
	"github.com/basedmerge/tokengate/internal/model"
	"github.com/basedmerge/tokengate/internal/services/auth"
	"github.com/basedmerge/tokengate/internal/services/profile"
	"github.com/basedmerge/tokengate/internal/sse"
	"github.com/basedmerge/tokengate/internal/storage"
	"github.com/basedmerge/tokengate/internal/storage/memory"
	redisstorage "github.com/basedmerge/tokengate/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	// Storage tier, selected once at startup
	Storage     storage.Storage
	StorageMode model.StorageMode

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Chain adapter and the services built over it
	Chain          chain.Client
	Gate           *gate.Gate
	Minter         *mint.Orchestrator
	AuthService    *auth.Service
	ProfileService *profile.Service
	Machine        *access.Machine
	Hub            *sse.Hub
	Stream         *sse.Stream

	closers []io.Closer
}

// New creates a new application with all dependencies wired. The profile
// tier and the chain adapter are both selected here, once: an unreachable
// Redis degrades to the in-memory tier, a missing chain configuration
// leaves the gate permanently closed. Neither is an error.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, mode := selectStorage(cfg, logger)

	chainClient, chainCloser, err := buildChain(cfg, logger)
	if err != nil {
		return nil, err
	}

	app := newWithDependencies(deps{
		store:       store,
		mode:        mode,
		chainClient: chainClient,
		clock:       clock.New(),
		random:      random.New(),
		authCfg: auth.Config{
			SessionDuration:   cfg.SessionDuration,
			ChallengeDuration: cfg.ChallengeDuration,
		},
		mintCfg: mint.Config{
			PollInterval: cfg.MintPollInterval,
			MaxAttempts:  cfg.MintMaxAttempts,
		},
		chainTag: cfg.ChainTag,
		logger:   logger,
	})
	if chainCloser != nil {
		app.closers = append(app.closers, chainCloser)
	}
	return app, nil
}

// Close releases the hub and every held connection.
func (a *App) Close() {
	a.Hub.Close()
	for _, c := range a.closers {
		_ = c.Close()
	}
	_ = a.Storage.Close()
}

// selectStorage picks the profile tier. The choice is permanent for the
// process lifetime; a Redis outage after startup does not re-run it.
func selectStorage(cfg config.Config, logger *slog.Logger) (storage.Storage, model.StorageMode) {
	if cfg.RedisURL == "" {
		logger.Warn("no profile store configured, running degraded with ephemeral profiles")
		return memory.New(), model.StorageModeDegraded
	}

	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = cfg.RedisURL
	store, err := redisstorage.New(redisCfg)
	if err != nil {
		logger.Warn("profile store unreachable, running degraded with ephemeral profiles",
			slog.String("error", err.Error()))
		return memory.New(), model.StorageModeDegraded
	}

	logger.Info("profile store connected")
	return store, model.StorageModePersistent
}

// buildChain constructs the chain adapter. Without an RPC endpoint the
// null client is used and every ownership check fails closed.
func buildChain(cfg config.Config, logger *slog.Logger) (chain.Client, io.Closer, error) {
	if cfg.ChainRPCURL == "" {
		logger.Warn("no chain configured, access gate is closed")
		return chain.Unconfigured{}, nil, nil
	}

	var provider chain.Provider
	var providerCloser io.Closer
	if cfg.AgentPrivateKey != "" {
		wallet, err := ethereum.NewKeyWallet(cfg.AgentPrivateKey, model.ChainID(cfg.ChainID), cfg.ChainRPCURL)
		if err != nil {
			return nil, nil, err
		}
		provider = wallet
		providerCloser = closerFunc(func() error { wallet.Close(); return nil })
	}

	client, err := ethereum.New(ethereum.Config{
		RPCURL:          cfg.ChainRPCURL,
		ChainID:         model.ChainID(cfg.ChainID),
		ChainName:       cfg.ChainName,
		Symbol:          cfg.ChainSymbol,
		ContractAddress: cfg.ContractAddress,
	}, provider, logger)
	if err != nil {
		if providerCloser != nil {
			_ = providerCloser.Close()
		}
		return nil, nil, err
	}

	return client, closerFunc(func() error {
		client.Close()
		if providerCloser != nil {
			_ = providerCloser.Close()
		}
		return nil
	}), nil
}

type deps struct {
	store       storage.Storage
	mode        model.StorageMode
	chainClient chain.Client
	clock       clock.Clock
	random      random.Random
	authCfg     auth.Config
	mintCfg     mint.Config
	chainTag    string
	logger      *slog.Logger
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(d deps) *App {
	if d.chainTag == "" {
		d.chainTag = "base"
	}

	ownershipGate := gate.New(d.chainClient, d.clock, d.logger)
	minter := mint.New(d.chainClient, ownershipGate, d.clock, d.mintCfg, d.logger)
	authService := auth.New(d.clock, d.authCfg)
	profileService := profile.New(d.store, d.clock, d.random, d.mode, d.chainTag, d.logger)

	hub := sse.NewHub(d.logger)
	go hub.Run()
	stream := sse.NewStream(hub, d.logger)

	shell := access.ShellFunc(func(bestScore int) {
		d.logger.Info("game shell initialized", slog.Int("best_score", bestScore))
	})
	machine := access.New(d.chainClient, ownershipGate, minter, profileService, shell, d.clock, d.logger)
	machine.OnStateChange(stream.Publish)
	// Wallet switches and disconnects revoke sessions for the old address.
	machine.OnStateChange(func(event model.Event) {
		if event.Type == model.EventWalletChanged {
			authService.BindWallet(event.Address)
		}
	})

	return &App{
		Storage:        d.store,
		StorageMode:    d.mode,
		Clock:          d.clock,
		Random:         d.random,
		Chain:          d.chainClient,
		Gate:           ownershipGate,
		Minter:         minter,
		AuthService:    authService,
		ProfileService: profileService,
		Machine:        machine,
		Hub:            hub,
		Stream:         stream,
	}
}

// Start runs the silent wallet reconnection. Call once after wiring.
func (a *App) Start(ctx context.Context) {
	a.Machine.Start(ctx)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
