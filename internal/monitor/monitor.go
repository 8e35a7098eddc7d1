// Package monitor provides background health monitoring for every project
// that holds a slot.
package monitor

import (
	"context"
	"time"

	"github.com/firefly-engineering/vivarium/internal/audit"
	"github.com/firefly-engineering/vivarium/internal/config"
	"github.com/firefly-engineering/vivarium/internal/health"
	"github.com/firefly-engineering/vivarium/internal/logging"
	"github.com/firefly-engineering/vivarium/internal/registry"
)

// CheckResult holds the result of a single project health check.
type CheckResult struct {
	Project string
	Index   int
	Status  health.Status
	Results []health.Result

	// Restarted is set when auto-restart brought the services up again
	Restarted bool
}

// RestartFunc starts the services of the project at projectRoot.
type RestartFunc func(ctx context.Context, projectRoot string) error

// Monitor periodically checks the health of all projects.
type Monitor struct {
	interval    time.Duration
	registry    *registry.Registry
	checker     *health.Checker
	autoRestart RestartFunc
	auditLog    *audit.Logger
	onResult    func(CheckResult)

	last map[string]health.Status
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithAutoRestart restarts stopped or unhealthy projects with fn.
func WithAutoRestart(fn RestartFunc) Option {
	return func(m *Monitor) {
		m.autoRestart = fn
	}
}

// WithAuditLogger records status changes as health events.
func WithAuditLogger(logger *audit.Logger) Option {
	return func(m *Monitor) {
		m.auditLog = logger
	}
}

// WithResultHandler is called with every check result.
func WithResultHandler(fn func(CheckResult)) Option {
	return func(m *Monitor) {
		m.onResult = fn
	}
}

// New creates a new Monitor.
func New(interval time.Duration, reg *registry.Registry, checker *health.Checker, opts ...Option) *Monitor {
	m := &Monitor{
		interval: interval,
		registry: reg,
		checker:  checker,
		last:     make(map[string]health.Status),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run starts the monitoring loop. It blocks until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	logging.Debug("starting health monitor", "interval", m.interval, "autoRestart", m.autoRestart != nil)

	// Run an immediate check, then loop on interval.
	m.CheckAll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Debug("health monitor stopping")
			return ctx.Err()
		case <-ticker.C:
			m.CheckAll(ctx)
		}
	}
}

// CheckAll performs health checks on every project in the registry.
// Projects whose config can no longer be loaded are skipped.
func (m *Monitor) CheckAll(ctx context.Context) []CheckResult {
	claims, err := m.registry.List()
	if err != nil {
		logging.Warn("monitor failed to list projects", "error", err)
		return nil
	}

	var results []CheckResult
	for _, claim := range claims {
		if ctx.Err() != nil {
			break
		}

		project, err := config.ReadProject(claim.ProjectRoot)
		if err != nil {
			logging.Debug("monitor skipping project", "project", claim.ProjectName, "error", err)
			continue
		}

		checks := m.checker.CheckProject(ctx, project.Services, claim.Ports)
		result := CheckResult{
			Project: claim.ProjectName,
			Index:   claim.Index,
			Status:  health.Summarize(checks),
			Results: checks,
		}
		m.recordChange(result)

		if m.autoRestart != nil && result.Status != health.StatusHealthy {
			if claim.Legacy() {
				logging.Debug("not restarting legacy claim", "project", claim.ProjectName)
			} else {
				result.Restarted = m.restart(ctx, claim)
			}
		}

		results = append(results, result)
		if m.onResult != nil {
			m.onResult(result)
		}
	}

	return results
}

// recordChange logs a health event when a project's status changed.
func (m *Monitor) recordChange(r CheckResult) {
	prev, seen := m.last[r.Project]
	m.last[r.Project] = r.Status
	if m.auditLog == nil || (seen && prev == r.Status) {
		return
	}
	_ = m.auditLog.Log(audit.Event{Type: audit.EventHealth, Project: r.Project, Details: string(r.Status)})
}

func (m *Monitor) restart(ctx context.Context, claim *registry.Claim) bool {
	logging.UserInfo("Auto-restarting %s (index %d)", claim.ProjectName, claim.Index)
	if err := m.autoRestart(ctx, claim.ProjectRoot); err != nil {
		logging.Warn("auto-restart failed", "project", claim.ProjectName, "error", err)
		if m.auditLog != nil {
			_ = m.auditLog.LogEvent(audit.EventError, claim.ProjectName, "auto-restart failed: "+err.Error())
		}
		return false
	}
	if m.auditLog != nil {
		_ = m.auditLog.LogEvent(audit.EventStart, claim.ProjectName, "auto-restart")
	}
	return true
}
