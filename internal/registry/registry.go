package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/moby/sys/atomicwriter"

	"github.com/firefly-engineering/vivarium/internal/logging"
	"github.com/firefly-engineering/vivarium/internal/port"
)

const (
	// StateFile is the record file inside each project directory.
	StateFile = "state.json"
	// ComposeFile is the rendered compose file stored next to the record.
	ComposeFile = "compose.yaml"
	// EnvFile holds compose interpolation variables.
	EnvFile = ".env"
)

// projectNameRegex matches registry keys. A leading letter or digit keeps
// project directories apart from internal entries such as ".slots".
var projectNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,62}$`)

// ValidateProjectName checks that name can be used as a registry key.
func ValidateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if !projectNameRegex.MatchString(name) {
		return fmt.Errorf("invalid project name %q: must start with a lowercase letter or digit, contain only lowercase letters, digits, dots, underscores, or hyphens, and be at most 63 characters", name)
	}
	return nil
}

// Legacy reports whether the claim was written under a name that is not a
// normalized registry key, such as a raw package name like "MyApp".
func (c *Claim) Legacy() bool {
	return ValidateProjectName(c.ProjectName) != nil
}

// Claim is the persisted record of a project's slot.
type Claim struct {
	Index       int      `json:"index"`
	ProjectName string   `json:"projectName"`
	ComposeName string   `json:"composeName"`
	ProjectRoot string   `json:"projectRoot"`
	Ports       port.Map `json:"ports"`
}

// Validate checks that the claim is well formed.
func (c *Claim) Validate() error {
	if err := ValidateProjectName(c.ProjectName); err != nil {
		return err
	}
	if !port.ValidIndex(c.Index) {
		return fmt.Errorf("index must be between 0 and %d (got %d)", port.MaxSlots-1, c.Index)
	}
	return nil
}

// Registry is a handle on the registry root directory.
type Registry struct {
	root string
}

// New returns a registry rooted at root. The directory is created lazily.
func New(root string) *Registry {
	return &Registry{root: root}
}

// DefaultRoot returns ~/.local/share/vivarium.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "vivarium"), nil
}

// Root returns the registry root directory.
func (r *Registry) Root() string {
	return r.root
}

// ProjectDir returns the directory holding a project's record and artifacts.
func (r *Registry) ProjectDir(name string) (string, error) {
	if err := ValidateProjectName(name); err != nil {
		return "", err
	}
	return securejoin.SecureJoin(r.root, name)
}

// ArtifactPath returns the path of a file stored in the project's directory.
func (r *Registry) ArtifactPath(name, file string) (string, error) {
	dir, err := r.ProjectDir(name)
	if err != nil {
		return "", err
	}
	return securejoin.SecureJoin(dir, file)
}

// Read returns the claim for name, or nil if there is none. Unreadable or
// corrupt records are reported as absent.
func (r *Registry) Read(name string) (*Claim, error) {
	statePath, err := r.ArtifactPath(name, StateFile)
	if err != nil {
		return nil, err
	}

	claim, err := readClaim(statePath, true)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Debug("ignoring unreadable claim", "project", name, "path", statePath, "error", err)
		}
		return nil, nil
	}
	return claim, nil
}

// Exists reports whether a readable claim exists for name.
func (r *Registry) Exists(name string) bool {
	claim, err := r.Read(name)
	return err == nil && claim != nil
}

// Write persists claim, replacing any existing record for the project.
func (r *Registry) Write(claim *Claim) error {
	if err := claim.Validate(); err != nil {
		return fmt.Errorf("invalid claim: %w", err)
	}

	dir, err := r.ProjectDir(claim.ProjectName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	data, err := json.MarshalIndent(claim, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal claim: %w", err)
	}

	if err := atomicwriter.WriteFile(filepath.Join(dir, StateFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write claim: %w", err)
	}

	logging.Debug("wrote claim", "project", claim.ProjectName, "index", claim.Index)
	return nil
}

// WriteArtifact atomically writes a generated file into the project's directory.
func (r *Registry) WriteArtifact(name, file string, data []byte) (string, error) {
	dir, err := r.ProjectDir(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}
	path, err := securejoin.SecureJoin(dir, file)
	if err != nil {
		return "", err
	}
	if err := atomicwriter.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", file, err)
	}
	return path, nil
}

// Remove deletes the project's directory. Removing a missing project is a no-op.
func (r *Registry) Remove(name string) error {
	dir, err := r.ProjectDir(name)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove project directory: %w", err)
	}
	logging.Debug("removed project", "project", name)
	return nil
}

// List returns every readable claim, ordered by index. Entries that are not
// project directories and records that fail to parse are skipped. Records
// under non-normalized directory names are included so their slots and ports
// stay taken; a record without a project name takes the directory's name.
func (r *Registry) List() ([]*Claim, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read registry directory: %w", err)
	}

	var claims []*Claim
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		statePath := filepath.Join(r.root, entry.Name(), StateFile)
		claim, err := readClaim(statePath, false)
		if err != nil {
			if !os.IsNotExist(err) {
				logging.Debug("skipping corrupt claim", "path", statePath, "error", err)
			}
			continue
		}
		if claim.ProjectName == "" {
			claim.ProjectName = entry.Name()
		}
		if claim.Legacy() {
			logging.Debug("found legacy claim", "project", claim.ProjectName, "index", claim.Index)
		}
		claims = append(claims, claim)
	}

	sort.SliceStable(claims, func(i, j int) bool {
		if claims[i].Index != claims[j].Index {
			return claims[i].Index < claims[j].Index
		}
		return claims[i].ProjectName < claims[j].ProjectName
	})
	return claims, nil
}

// readClaim parses a record. Strict mode also requires a normalized project
// name; lenient mode only checks the index.
func readClaim(path string, strict bool) (*Claim, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var claim Claim
	if err := json.Unmarshal(data, &claim); err != nil {
		return nil, fmt.Errorf("failed to parse claim: %w", err)
	}
	if strict {
		if err := claim.Validate(); err != nil {
			return nil, fmt.Errorf("invalid claim: %w", err)
		}
	} else if !port.ValidIndex(claim.Index) {
		return nil, fmt.Errorf("invalid claim: index %d out of range", claim.Index)
	}
	return &claim, nil
}
