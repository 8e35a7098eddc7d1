package stack

import (
	"context"
	"fmt"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/vivarium/internal/allocator"
	"github.com/firefly-engineering/vivarium/internal/audit"
	"github.com/firefly-engineering/vivarium/internal/compose"
	"github.com/firefly-engineering/vivarium/internal/config"
	"github.com/firefly-engineering/vivarium/internal/env"
	"github.com/firefly-engineering/vivarium/internal/errors"
	"github.com/firefly-engineering/vivarium/internal/launch"
	"github.com/firefly-engineering/vivarium/internal/logging"
	"github.com/firefly-engineering/vivarium/internal/port"
	"github.com/firefly-engineering/vivarium/internal/registry"
	"github.com/firefly-engineering/vivarium/internal/runtime"
	"github.com/firefly-engineering/vivarium/internal/system"
)

// Setup claims a slot for the project and brings its stack up.
// Re-running Setup for a project that already holds a claim reuses the slot.
func (m *Manager) Setup(ctx context.Context, opts SetupOptions) (_ *SetupResult, err error) {
	if err := m.checkPrerequisites(); err != nil {
		return nil, err
	}

	root, name, err := projectIdentity(opts.ProjectRoot)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			m.recordError(name, "setup", err)
		}
	}()
	project, err := config.LoadProject(root)
	if err != nil {
		return nil, err
	}
	composeName := config.ComposeName(name)

	logging.UserInfo("Setting up %s", name)
	logging.Debug("starting setup", "project", name, "root", root)

	index, err := m.Allocator.Allocate(ctx, allocator.Project{Name: name, ComposeName: composeName, Root: root})
	if err != nil {
		return nil, err
	}
	ports := port.Compute(index)

	if err := m.writeArtifacts(name, composeName, project, ports); err != nil {
		return nil, err
	}
	t, _, err := m.target(name, root)
	if err != nil {
		return nil, err
	}

	logging.UserInfo("Starting services")
	if !opts.SkipPull {
		if err := m.Compose.Pull(ctx, t); err != nil {
			return nil, err
		}
	}
	if err := m.Compose.Up(ctx, t); err != nil {
		return nil, err
	}
	logging.UserSuccess("Services running")

	if s3 := project.Services.S3; s3 != nil && len(s3.Buckets) > 0 {
		logging.UserInfo("Creating S3 buckets")
		m.createBuckets(ctx, s3, ports)
	}

	logging.UserInfo("Generating package .env files")
	envFiles, err := env.WritePackageEnvFiles(root, project, ports)
	if err != nil {
		return nil, errors.Wrap(errors.ExitGeneralError, "failed to write package env files", err)
	}

	claim := &registry.Claim{
		Index:       index,
		ProjectName: name,
		ComposeName: composeName,
		ProjectRoot: root,
		Ports:       ports,
	}
	if err := m.Registry.Write(claim); err != nil {
		return nil, errors.RegistryError("write", err)
	}
	logging.UserStep("Wrote %s", registry.StateFile)

	if !opts.SkipPostSetup {
		if err := m.runPostSetup(ctx, root, project); err != nil {
			return nil, err
		}
	}

	updated, err := launch.Update(root, project, ports)
	if err != nil {
		logging.Debug("launch.json update failed", "error", err)
		logging.UserWarning("Could not update .claude/launch.json")
	} else if updated {
		logging.UserStep("Updated .claude/launch.json")
	}

	m.record(audit.Event{Type: audit.EventSetup, Project: name, Index: &claim.Index})
	printSummary(claim, project)

	return &SetupResult{
		Claim:         claim,
		Project:       project,
		EnvFiles:      envFiles,
		LaunchUpdated: updated,
	}, nil
}

func (m *Manager) checkPrerequisites() error {
	tool := "docker"
	if m.Compose != nil {
		tool = m.Compose.Name()
	}
	return runtime.CheckPrerequisites(m.Exec, tool)
}

// writeArtifacts renders compose.yaml and its .env into the registry.
func (m *Manager) writeArtifacts(name, composeName string, project *config.Project, ports port.Map) error {
	composeData, err := compose.Render(project.Services, composeName)
	if err != nil {
		return err
	}
	if _, err := m.Registry.WriteArtifact(name, registry.ComposeFile, composeData); err != nil {
		return errors.RegistryError("write compose file", err)
	}
	logging.UserStep("Generated %s", registry.ComposeFile)

	envData, err := env.RenderCompose(project, ports, composeName)
	if err != nil {
		return err
	}
	if _, err := m.Registry.WriteArtifact(name, registry.EnvFile, envData); err != nil {
		return errors.RegistryError("write env file", err)
	}
	logging.UserStep("Generated %s", registry.EnvFile)
	return nil
}

// createBuckets creates each bucket with the aws CLI. Failures are reported
// and skipped; the usual cause is a bucket that already exists.
func (m *Manager) createBuckets(ctx context.Context, s3 *config.S3Config, ports port.Map) {
	if _, err := m.Exec.LookPath("aws"); err != nil {
		logging.UserWarning("aws CLI not found; create buckets manually: %v", s3.Buckets)
		return
	}

	endpoint := fmt.Sprintf("http://localhost:%d", ports.S3)
	opts := system.RunOptions{Env: []string{
		"AWS_ACCESS_KEY_ID=" + s3.AccessKey,
		"AWS_SECRET_ACCESS_KEY=" + s3.SecretKey,
		"AWS_DEFAULT_REGION=" + env.DefaultS3Region,
	}}

	for _, bucket := range s3.Buckets {
		out, err := m.Exec.ExecuteWith(ctx, opts, "aws", "--endpoint-url", endpoint, "s3", "mb", "s3://"+bucket)
		if err != nil {
			logging.Debug("bucket creation failed", "bucket", bucket, "error", err, "output", string(out))
			logging.UserDim("Bucket already exists: %s", bucket)
			continue
		}
		logging.UserStep("Created bucket: %s", bucket)
	}
}

// postSetupShell interprets each postSetup line.
const postSetupShell = "sh"

// runPostSetup runs each package's postSetup commands through the shell in the
// package directory, stopping at the first failure.
func (m *Manager) runPostSetup(ctx context.Context, root string, project *config.Project) error {
	for _, name := range project.PackageNames() {
		pkg := project.Packages[name]
		if len(pkg.PostSetup) == 0 {
			continue
		}

		dir, err := securejoin.SecureJoin(root, pkg.Dir(name))
		if err != nil {
			return errors.ConfigError(fmt.Sprintf("invalid directory for package %s", name), err)
		}

		logging.UserInfo("Running postSetup for %s", name)
		for _, line := range pkg.PostSetup {
			argv, err := shellquote.Split(line)
			if err != nil {
				return errors.ConfigError(fmt.Sprintf("packages.%s.postSetup: cannot parse %q", name, line), err)
			}
			if len(argv) == 0 {
				continue
			}

			logging.UserStep("%s", line)
			if err := m.Exec.ExecuteInteractive(ctx, system.RunOptions{Dir: dir}, postSetupShell, "-c", line); err != nil {
				return errors.Wrap(errors.ExitGeneralError, fmt.Sprintf("postSetup command for %s failed: %s", name, line), err)
			}
		}
	}
	return nil
}

func printSummary(claim *registry.Claim, project *config.Project) {
	ports := claim.Ports
	services := project.Services

	logging.Blank()
	logging.UserSuccess("%s setup complete (index %d)", claim.ProjectName, claim.Index)
	logging.Blank()
	logging.UserInfo("Port summary:")
	if services.Postgres != nil {
		logging.UserStep("PostgreSQL:   localhost:%d", ports.Postgres)
	}
	if services.Redis {
		logging.UserStep("Redis:        localhost:%d", ports.Redis)
	}
	if services.S3 != nil {
		logging.UserStep("S3 (API):     localhost:%d", ports.S3)
		logging.UserStep("S3 (console): localhost:%d", ports.S3Console)
	}
	if project.HasPackage(env.FrontendPackage) {
		logging.UserStep("Frontend:     localhost:%d", ports.Frontend)
	}
	if project.HasPackage(env.BackendPackage) {
		logging.UserStep("Backend:      localhost:%d", ports.Backend)
	}
	logging.Blank()
	logging.UserDim("Start your dev servers; they will pick up the generated .env files.")
}
