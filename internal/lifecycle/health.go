package lifecycle

import (
	"context"
	"log/slog"
)

// HealthChecker exposes liveness and readiness probes.
type HealthChecker interface {
	Liveness(ctx context.Context) error
	Readiness(ctx context.Context) error
}

// Probes implements HealthChecker. Liveness reports process health;
// readiness delegates to the supplied dependency check.
type Probes struct {
	log   *slog.Logger
	ready func(ctx context.Context) error
}

// NewProbes creates a Probes instance. The ready func may be nil, in which
// case readiness always succeeds.
func NewProbes(log *slog.Logger, ready func(ctx context.Context) error) *Probes {
	if log == nil {
		log = slog.Default()
	}
	return &Probes{log: log, ready: ready}
}

// Liveness reports success while the process is responsive.
func (p *Probes) Liveness(ctx context.Context) error {
	p.log.Debug("liveness probe called")
	return nil
}

// Readiness verifies downstream dependencies are reachable.
func (p *Probes) Readiness(ctx context.Context) error {
	p.log.Debug("readiness probe called")
	if p.ready == nil {
		return nil
	}
	return p.ready(ctx)
}
