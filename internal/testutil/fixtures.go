package testutil

import (
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/firefly-engineering/vivarium/internal/config"
	"github.com/firefly-engineering/vivarium/internal/registry"
)

//go:embed fixtures/*
var fixturesFS embed.FS

// LoadFixture loads a fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// WriteFixture copies a fixture into dir under dest and returns its path.
func WriteFixture(t *testing.T, dir, fixture, dest string) string {
	t.Helper()
	data, err := LoadFixture(fixture)
	if err != nil {
		t.Fatalf("load fixture %s: %v", fixture, err)
	}
	path := filepath.Join(dir, dest)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ValidProject returns the project config embedded in the package.json fixture.
func ValidProject() (*config.Project, error) {
	data, err := LoadFixture("package.json")
	if err != nil {
		return nil, err
	}
	var pkg struct {
		Vivarium *config.Project `json:"vivarium"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	return pkg.Vivarium, nil
}

// InvalidProject returns a project config that fails validation.
func InvalidProject() (*config.Project, error) {
	data, err := LoadFixture("invalid_vivarium.json")
	if err != nil {
		return nil, err
	}
	var p config.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ValidClaim returns the state.json fixture.
func ValidClaim() (*registry.Claim, error) {
	data, err := LoadFixture(registry.StateFile)
	if err != nil {
		return nil, err
	}
	var claim registry.Claim
	if err := json.Unmarshal(data, &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}
