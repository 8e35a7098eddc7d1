package allocator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/firefly-engineering/vivarium/internal/errors"
	"github.com/firefly-engineering/vivarium/internal/logging"
	"github.com/firefly-engineering/vivarium/internal/port"
	"github.com/firefly-engineering/vivarium/internal/registry"
)

// Project identifies the project asking for a slot.
type Project struct {
	Name        string
	ComposeName string
	Root        string
}

// Allocator hands out slot indices backed by a registry.
type Allocator struct {
	Registry *registry.Registry
	Prober   port.Prober
	Policy   port.Policy
	Strategy ClaimStrategy
}

// New returns an allocator using slot markers under the registry root.
func New(reg *registry.Registry, prober port.Prober, policy port.Policy) *Allocator {
	return &Allocator{
		Registry: reg,
		Prober:   prober,
		Policy:   policy,
		Strategy: NewSlotMarkers(reg),
	}
}

// Allocate returns the slot index for project, claiming one if needed.
func (a *Allocator) Allocate(ctx context.Context, project Project) (int, error) {
	if err := registry.ValidateProjectName(project.Name); err != nil {
		return 0, errors.ValidationError(err.Error())
	}

	existing, err := a.Registry.Read(project.Name)
	if err != nil {
		return 0, errors.RegistryError("read", err)
	}
	if existing != nil {
		if err := checkSameProject(existing, project); err != nil {
			return 0, err
		}
		logging.UserDim("Reusing existing claim: index %d", existing.Index)
		return existing.Index, nil
	}

	claims, err := a.Registry.List()
	if err != nil {
		return 0, errors.RegistryError("list", err)
	}

	taken := make(map[int]bool)
	var others []*registry.Claim
	for _, c := range claims {
		if c.ProjectName == project.Name {
			continue
		}
		taken[c.Index] = true
		others = append(others, c)
	}

	for i := 0; i < port.MaxSlots; i++ {
		if taken[i] {
			continue
		}

		ports := port.Compute(i)

		if owner := collidingClaim(ports, others); owner != nil {
			logging.UserDim("Index %d has port collisions with %s, skipping", i, owner.ProjectName)
			continue
		}

		if a.Prober != nil {
			availability := a.Prober.Probe(ctx, ports.Postgres)
			if a.policy().Blocks(availability) {
				logging.UserDim("Index %d has no claim but postgres port %d is %s, skipping", i, ports.Postgres, availability)
				continue
			}
		}

		outcome, err := a.strategy().TryClaim(i, project.Name)
		if err != nil {
			return 0, errors.RegistryError("claim slot", err)
		}
		if outcome == Conflict {
			logging.UserDim("Index %d was claimed concurrently, skipping", i)
			continue
		}

		claim := &registry.Claim{
			Index:       i,
			ProjectName: project.Name,
			ComposeName: project.ComposeName,
			ProjectRoot: project.Root,
			Ports:       ports,
		}
		if err := a.Registry.Write(claim); err != nil {
			if relErr := a.strategy().Release(i, project.Name); relErr != nil {
				logging.Debug("failed to release slot marker", "index", i, "error", relErr)
			}
			return 0, errors.RegistryError("write", err)
		}

		logging.UserStep("Claimed index %d", i)
		return i, nil
	}

	return 0, errors.SlotsExhausted(project.Name, 0, port.MaxSlots-1)
}

// checkSameProject refuses to reuse a claim held by a different project whose
// name normalizes to the same key. A claim whose root no longer exists is
// taken to belong to a moved project and is reused.
func checkSameProject(existing *registry.Claim, project Project) error {
	if project.Root == "" || existing.ProjectRoot == "" {
		return nil
	}
	if filepath.Clean(existing.ProjectRoot) == filepath.Clean(project.Root) {
		return nil
	}
	if info, err := os.Stat(existing.ProjectRoot); err == nil && info.IsDir() {
		return errors.ConfigError(fmt.Sprintf(
			"project name %s is already claimed by %s; rename one of the projects or run `vivarium teardown` there first",
			project.Name, existing.ProjectRoot), nil)
	}
	logging.UserWarning("Claim for %s pointed at %s, which no longer exists; moving it to %s",
		project.Name, existing.ProjectRoot, project.Root)
	return nil
}

// Release removes the project's claim and its slot marker. It returns the
// released claim, or nil if the project held none.
func (a *Allocator) Release(name string) (*registry.Claim, error) {
	claim, err := a.Registry.Read(name)
	if err != nil {
		return nil, errors.RegistryError("read", err)
	}

	if err := a.Registry.Remove(name); err != nil {
		return nil, errors.RegistryError("remove", err)
	}

	if claim != nil {
		if err := a.strategy().Release(claim.Index, name); err != nil {
			return claim, errors.RegistryError("release slot", err)
		}
	}
	return claim, nil
}

// Lookup returns the project's claim or a ProjectNotFound error.
func (a *Allocator) Lookup(name string) (*registry.Claim, error) {
	claim, err := a.Registry.Read(name)
	if err != nil {
		return nil, errors.RegistryError("read", err)
	}
	if claim == nil {
		return nil, errors.ProjectNotFound(name)
	}
	return claim, nil
}

func (a *Allocator) policy() port.Policy {
	if a.Policy == "" {
		return port.FailOpen
	}
	return a.Policy
}

func (a *Allocator) strategy() ClaimStrategy {
	if a.Strategy == nil {
		return Unguarded{}
	}
	return a.Strategy
}

// collidingClaim returns the first claim sharing a port with ports.
func collidingClaim(ports port.Map, claims []*registry.Claim) *registry.Claim {
	for _, c := range claims {
		if ports.Overlaps(c.Ports) {
			return c
		}
	}
	return nil
}
