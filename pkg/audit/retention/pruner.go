// Package retention prunes aged audit records on a schedule.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/saturn/pkg/audit"
)

// Policy declares how long audit records are kept.
type Policy struct {
	// MaxAge is the maximum record age; older records are pruned.
	// Default: 90 days
	MaxAge time.Duration `yaml:"max_age"`
}

// DefaultPolicy returns the default retention policy.
func DefaultPolicy() Policy {
	return Policy{MaxAge: 90 * 24 * time.Hour}
}

// Pruner removes audit records older than the policy's maximum age.
type Pruner struct {
	storage audit.Storage
	policy  Policy
	logger  *slog.Logger
}

// NewPruner creates a pruner over the given storage.
func NewPruner(storage audit.Storage, policy Policy) *Pruner {
	if policy.MaxAge <= 0 {
		policy.MaxAge = DefaultPolicy().MaxAge
	}
	return &Pruner{
		storage: storage,
		policy:  policy,
		logger:  slog.Default().With("component", "audit.retention"),
	}
}

// PruneOnce runs a single pruning pass and returns how many records were
// removed.
func (p *Pruner) PruneOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-p.policy.MaxAge)

	removed, err := p.storage.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit records: %w", err)
	}

	if removed > 0 {
		p.logger.Info("audit records pruned",
			"removed", removed,
			"cutoff", cutoff.Format(time.RFC3339),
		)
	}
	return removed, nil
}
