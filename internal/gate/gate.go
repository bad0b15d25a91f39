// Package gate implements the fail-closed ownership policy.
package gate

import (
	"context"
	"log/slog"

	"github.com/basedmerge/tokengate/internal/chain"
	"github.com/basedmerge/tokengate/internal/dependencies/clock"
	"github.com/basedmerge/tokengate/internal/model"
)

// Gate decides whether an address holds the gating token. Any adapter
// error resolves to "not owned": absence of proof is never treated as
// proof of absence of a problem.
type Gate struct {
	chain  chain.Client
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a Gate over the given chain client.
func New(chainClient chain.Client, clk clock.Clock, logger *slog.Logger) *Gate {
	return &Gate{
		chain:  chainClient,
		clock:  clk,
		logger: logger,
	}
}

// HasAccess reports whether the address owns at least one unit of the
// gating token. It never returns an error: failures are logged and
// resolve to false.
func (g *Gate) HasAccess(ctx context.Context, address string) bool {
	return g.Check(ctx, address).Owned
}

// Check runs an ownership check and returns the full status record.
func (g *Gate) Check(ctx context.Context, address string) model.OwnershipStatus {
	status := model.OwnershipStatus{
		SubjectAddress: model.CanonicalAddress(address),
		CheckedAt:      g.clock.Now(),
	}

	if address == "" {
		return status
	}

	owned, err := g.chain.CheckOwnership(ctx, address)
	if err != nil {
		// Fail closed: an unreachable or misconfigured contract means
		// no access, not an error surfaced to the caller.
		g.logger.Warn("ownership check failed, denying access",
			slog.String("address", status.SubjectAddress),
			slog.String("error", err.Error()),
		)
		return status
	}

	status.Owned = owned
	return status
}
