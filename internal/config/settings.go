package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/firefly-engineering/vivarium/internal/errors"
	"github.com/firefly-engineering/vivarium/internal/port"
	"github.com/firefly-engineering/vivarium/internal/registry"
)

// EnvPrefix is the prefix for environment overrides (VIVARIUM_REGISTRY_DIR, ...).
const EnvPrefix = "VIVARIUM"

// Settings are the tool-level options.
type Settings struct {
	RegistryDir      string        `mapstructure:"registry_dir"`
	ClaimStrategy    string        `mapstructure:"claim_strategy"`
	ProbePolicy      string        `mapstructure:"probe_policy"`
	DockerCommand    string        `mapstructure:"docker_command"`
	StaleMarkerAfter time.Duration `mapstructure:"stale_marker_after"`

	// ConfigFile is the settings file that was read, if any.
	ConfigFile string `mapstructure:"-"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	root, err := registry.DefaultRoot()
	if err != nil {
		root = filepath.Join(os.TempDir(), "vivarium")
	}
	return Settings{
		RegistryDir:      root,
		ClaimStrategy:    "markers",
		ProbePolicy:      string(port.FailOpen),
		DockerCommand:    "docker",
		StaleMarkerAfter: time.Minute,
	}
}

// LoadSettings layers defaults, the settings file, VIVARIUM_* variables and
// flags. An explicit configFile must exist; the default one is optional.
// flags may be nil; a "registry-dir" flag is bound when present.
func LoadSettings(configFile string, flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("registry_dir", defaults.RegistryDir)
	v.SetDefault("claim_strategy", defaults.ClaimStrategy)
	v.SetDefault("probe_policy", defaults.ProbePolicy)
	v.SetDefault("docker_command", defaults.DockerCommand)
	v.SetDefault("stale_marker_after", defaults.StaleMarkerAfter)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if flags != nil {
		if f := flags.Lookup("registry-dir"); f != nil {
			_ = v.BindPFlag("registry_dir", f)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.ConfigError(fmt.Sprintf("failed to read settings file %s", configFile), err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "vivarium"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.ConfigError("failed to read settings file", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.ConfigError("failed to decode settings", err)
	}
	s.ConfigFile = v.ConfigFileUsed()
	s.RegistryDir = expandHome(s.RegistryDir)

	if err := s.Validate(); err != nil {
		return nil, errors.ConfigError("invalid settings", err)
	}
	return &s, nil
}

// Validate checks that the settings hold known values.
func (s *Settings) Validate() error {
	if s.RegistryDir == "" {
		return fmt.Errorf("registry_dir is required")
	}
	if _, err := port.ParsePolicy(s.ProbePolicy); err != nil {
		return err
	}
	switch s.ClaimStrategy {
	case "", "markers", "none":
	default:
		return fmt.Errorf("invalid claim_strategy %q (must be markers or none)", s.ClaimStrategy)
	}
	if s.StaleMarkerAfter < 0 {
		return fmt.Errorf("stale_marker_after cannot be negative")
	}
	return nil
}

// Policy returns the parsed probe policy.
func (s *Settings) Policy() port.Policy {
	p, err := port.ParsePolicy(s.ProbePolicy)
	if err != nil {
		return port.FailOpen
	}
	return p
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
