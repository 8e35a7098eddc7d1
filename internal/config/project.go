package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/firefly-engineering/vivarium/internal/errors"
	"github.com/firefly-engineering/vivarium/internal/logging"
	"github.com/firefly-engineering/vivarium/internal/registry"
)

// Project config file names, in lookup order.
const (
	TomlFile        = "vivarium.toml"
	JSONFile        = "vivarium.json"
	PackageJSONFile = "package.json"
)

// Frontend frameworks that decide the public env var prefix.
const (
	FrameworkNextJS = "nextjs"
	FrameworkVite   = "vite"
)

// ErrNoProjectConfig is returned when none of the config sources exist.
var ErrNoProjectConfig = stderrors.New("no vivarium config found; create vivarium.toml or vivarium.json, or add \"vivarium\" to package.json")

type PostgresConfig struct {
	User     string `json:"user" toml:"user"`
	Password string `json:"password" toml:"password"`
	Database string `json:"database" toml:"database"`
}

type S3Config struct {
	AccessKey string   `json:"accessKey" toml:"accessKey"`
	SecretKey string   `json:"secretKey" toml:"secretKey"`
	Buckets   []string `json:"buckets" toml:"buckets"`
}

// Services lists the backing services a project runs. A nil pointer or false
// means the service is not wanted.
type Services struct {
	Postgres *PostgresConfig `json:"postgres,omitempty" toml:"postgres"`
	Redis    bool            `json:"redis,omitempty" toml:"redis"`
	S3       *S3Config       `json:"s3,omitempty" toml:"s3"`
}

// Package describes one workspace package that consumes the services.
type Package struct {
	EnvFile   string            `json:"envFile,omitempty" toml:"envFile"`
	Env       map[string]string `json:"env,omitempty" toml:"env"`
	PostSetup []string          `json:"postSetup,omitempty" toml:"postSetup"`
	Framework string            `json:"framework,omitempty" toml:"framework"`
	Directory string            `json:"directory,omitempty" toml:"directory"`
}

// Project is a loaded project config.
type Project struct {
	Services *Services         `json:"services" toml:"services"`
	Packages map[string]Package `json:"packages" toml:"packages"`

	// Source is the file the config was read from.
	Source string `json:"-" toml:"-"`
}

// Validate checks required fields and allowed values.
func (p *Project) Validate() error {
	if p.Services == nil {
		return fmt.Errorf("config must have a \"services\" object")
	}
	if p.Packages == nil {
		return fmt.Errorf("config must have a \"packages\" object")
	}

	if pg := p.Services.Postgres; pg != nil {
		if pg.User == "" || pg.Password == "" || pg.Database == "" {
			return fmt.Errorf("services.postgres: user, password and database are required")
		}
	}
	if s3 := p.Services.S3; s3 != nil {
		if s3.AccessKey == "" || s3.SecretKey == "" {
			return fmt.Errorf("services.s3: accessKey and secretKey are required")
		}
	}

	for _, name := range p.PackageNames() {
		pkg := p.Packages[name]
		switch pkg.Framework {
		case "", FrameworkNextJS, FrameworkVite:
		default:
			return fmt.Errorf("packages.%s: invalid framework %q (must be %s or %s)", name, pkg.Framework, FrameworkNextJS, FrameworkVite)
		}
		if filepath.IsAbs(pkg.EnvFile) {
			return fmt.Errorf("packages.%s: envFile must be relative to the project root", name)
		}
	}
	return nil
}

// PackageNames returns the package names in sorted order.
func (p *Project) PackageNames() []string {
	names := make([]string, 0, len(p.Packages))
	for name := range p.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasPackage reports whether a package with the given name is configured.
func (p *Project) HasPackage(name string) bool {
	_, ok := p.Packages[name]
	return ok
}

// Dir returns the package's working directory relative to the project root.
func (pkg Package) Dir(name string) string {
	if pkg.Directory != "" {
		return pkg.Directory
	}
	return name
}

// FrameworkOrDefault returns the frontend framework, defaulting to nextjs.
func (pkg Package) FrameworkOrDefault() string {
	if pkg.Framework == "" {
		return FrameworkNextJS
	}
	return pkg.Framework
}

// LoadProject loads the project config from projectRoot and tells the user
// which source it came from. It returns an error wrapping ErrNoProjectConfig
// when no source exists.
func LoadProject(projectRoot string) (*Project, error) {
	project, err := ReadProject(projectRoot)
	if err != nil {
		return nil, err
	}
	logging.UserDim("Loading config from %s", describeSource(project.Source))
	return project, nil
}

// ReadProject is LoadProject without user output, for background checks.
func ReadProject(projectRoot string) (*Project, error) {
	project, err := findProject(projectRoot)
	if err != nil {
		return nil, err
	}
	if err := project.Validate(); err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("invalid config in %s", filepath.Base(project.Source)), err)
	}
	return project, nil
}

func findProject(projectRoot string) (*Project, error) {
	tomlPath := filepath.Join(projectRoot, TomlFile)
	if data, err := os.ReadFile(tomlPath); err == nil {
		var project Project
		if err := toml.Unmarshal(data, &project); err != nil {
			return nil, errors.ConfigError("failed to parse "+TomlFile, err)
		}
		project.Source = tomlPath
		return &project, nil
	}

	jsonPath := filepath.Join(projectRoot, JSONFile)
	if data, err := os.ReadFile(jsonPath); err == nil {
		var project Project
		if err := json.Unmarshal(data, &project); err != nil {
			return nil, errors.ConfigError("failed to parse "+JSONFile, err)
		}
		project.Source = jsonPath
		return &project, nil
	}

	pkg, err := readPackageJSON(projectRoot)
	if err != nil {
		return nil, err
	}
	if pkg != nil && pkg.Vivarium != nil {
		pkg.Vivarium.Source = filepath.Join(projectRoot, PackageJSONFile)
		return pkg.Vivarium, nil
	}

	return nil, errors.Wrap(errors.ExitConfigError, "project config missing", ErrNoProjectConfig)
}

func describeSource(path string) string {
	if filepath.Base(path) == PackageJSONFile {
		return `package.json "vivarium" key`
	}
	return filepath.Base(path)
}

type packageJSON struct {
	Name     string   `json:"name"`
	Vivarium *Project `json:"vivarium"`
}

// readPackageJSON returns nil when package.json does not exist.
func readPackageJSON(projectRoot string) (*packageJSON, error) {
	data, err := os.ReadFile(filepath.Join(projectRoot, PackageJSONFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.ConfigError("failed to read "+PackageJSONFile, err)
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, errors.ConfigError("failed to parse "+PackageJSONFile, err)
	}
	return &pkg, nil
}

// LoadProjectName returns the registry identity for the project at
// projectRoot: package.json's name, or the directory name, normalized.
func LoadProjectName(projectRoot string) (string, error) {
	raw := ""
	pkg, err := readPackageJSON(projectRoot)
	if err != nil {
		return "", err
	}
	if pkg != nil {
		raw = pkg.Name
	}
	if raw == "" {
		abs, err := filepath.Abs(projectRoot)
		if err != nil {
			return "", errors.ConfigError("failed to resolve project root", err)
		}
		raw = filepath.Base(abs)
	}

	name := NormalizeProjectName(raw)
	if err := registry.ValidateProjectName(name); err != nil {
		return "", errors.ConfigError(fmt.Sprintf("cannot derive a project name from %q", raw), err)
	}
	if name != raw {
		logging.Debug("normalized project name", "raw", raw, "name", name)
	}
	return name, nil
}

// NormalizeProjectName maps a package or directory name onto the registry's
// name alphabet. "@acme/Shop" becomes "acme-shop".
func NormalizeProjectName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "@")

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}

	out := strings.TrimLeft(b.String(), "._-")
	if len(out) > 63 {
		out = out[:63]
	}
	return strings.TrimRight(out, "-")
}

// ComposeName returns the compose project name for a project.
func ComposeName(projectName string) string {
	return projectName + "-local"
}
