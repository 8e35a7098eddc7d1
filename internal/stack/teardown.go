package stack

import (
	"context"
	"os"
	"path/filepath"

	"github.com/firefly-engineering/vivarium/internal/audit"
	"github.com/firefly-engineering/vivarium/internal/config"
	"github.com/firefly-engineering/vivarium/internal/env"
	"github.com/firefly-engineering/vivarium/internal/errors"
	"github.com/firefly-engineering/vivarium/internal/logging"
	"github.com/firefly-engineering/vivarium/internal/registry"
	"github.com/firefly-engineering/vivarium/internal/runtime"
)

// Teardown stops the project's services, deletes their volumes and releases
// the slot. Every step is best-effort so that a half set-up project can
// always be cleaned; only a failure to release the claim is returned.
func (m *Manager) Teardown(ctx context.Context, projectRoot string, opts TeardownOptions) (*registry.Claim, error) {
	root, name, err := projectIdentity(projectRoot)
	if err != nil {
		return nil, err
	}
	logging.UserInfo("Tearing down %s", name)

	if t, ok, err := m.target(name, root); err == nil && ok {
		logging.UserInfo("Stopping services")
		downOpts := runtime.DownOptions{RemoveOrphans: true, RemoveVolumes: !opts.KeepVolumes}
		if err := m.Compose.Down(ctx, t, downOpts); err != nil {
			logging.Debug("compose down failed", "project", name, "error", err)
			logging.UserWarning("Failed to stop some services (they may already be stopped)")
		}
	} else {
		logging.Debug("no compose files to stop", "project", name, "error", err)
	}

	claim, err := m.Allocator.Release(name)
	if err != nil {
		return nil, err
	}
	if claim != nil {
		m.record(audit.Event{Type: audit.EventTeardown, Project: name, Index: &claim.Index})
		logging.UserStep("Released index %d", claim.Index)
	} else {
		logging.UserDim("No claim held for %s", name)
	}

	legacy := filepath.Join(root, LegacyDir)
	if _, err := os.Stat(legacy); err == nil {
		if err := os.RemoveAll(legacy); err != nil {
			logging.UserWarning("Failed to remove %s: %v", LegacyDir, err)
		} else {
			logging.UserStep("Removed %s/", LegacyDir)
		}
	}

	project, err := config.LoadProject(root)
	switch {
	case err == nil:
		if _, err := env.RemovePackageEnvFiles(root, project); err != nil {
			logging.UserWarning("Failed to remove package env files: %v", err)
		}
	case errors.Is(err, config.ErrNoProjectConfig):
		logging.UserWarning("No project config found; package env files left in place")
	default:
		logging.UserWarning("Could not load project config: %v", err)
	}

	logging.Blank()
	logging.UserSuccess("%s teardown complete", name)
	return claim, nil
}
