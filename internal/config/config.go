// Package config loads process configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration. Every field has an
// environment binding; an empty optional group disables the feature it
// configures (no Redis URL means the degraded profile tier, no chain RPC
// means the gate stays closed).
type Config struct {
	Host     string `env:"TOKENGATE_HOST"`
	Port     int    `env:"TOKENGATE_PORT" envDefault:"8080"`
	LogLevel string `env:"TOKENGATE_LOG_LEVEL" envDefault:"info"`

	// Profile store
	RedisURL string `env:"TOKENGATE_REDIS_URL"`

	// Chain adapter
	ChainRPCURL     string `env:"TOKENGATE_CHAIN_RPC_URL"`
	ChainID         uint64 `env:"TOKENGATE_CHAIN_ID" envDefault:"8453"`
	ChainName       string `env:"TOKENGATE_CHAIN_NAME" envDefault:"Base"`
	ChainSymbol     string `env:"TOKENGATE_CHAIN_SYMBOL" envDefault:"ETH"`
	ChainTag        string `env:"TOKENGATE_CHAIN_TAG" envDefault:"base"`
	ContractAddress string `env:"TOKENGATE_CONTRACT_ADDRESS"`

	// AgentPrivateKey enables the headless key wallet. Without it the
	// server has no signing capability and wallet operations fail with
	// a provider-absent error.
	AgentPrivateKey string `env:"TOKENGATE_AGENT_PRIVATE_KEY,unset"`

	// Mint confirmation poll bounds
	MintPollInterval time.Duration `env:"TOKENGATE_MINT_POLL_INTERVAL" envDefault:"2s"`
	MintMaxAttempts  int           `env:"TOKENGATE_MINT_MAX_ATTEMPTS" envDefault:"20"`

	// Session lifetimes
	SessionDuration   time.Duration `env:"TOKENGATE_SESSION_DURATION" envDefault:"24h"`
	ChallengeDuration time.Duration `env:"TOKENGATE_CHALLENGE_DURATION" envDefault:"5m"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
