// Package launch keeps an editor's .claude/launch.json in step with the
// ports of a project's slot.
package launch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/moby/sys/atomicwriter"

	"github.com/firefly-engineering/vivarium/internal/config"
	"github.com/firefly-engineering/vivarium/internal/port"
)

// Path returns the launch.json location for a project root.
func Path(projectRoot string) string {
	return filepath.Join(projectRoot, ".claude", "launch.json")
}

// Update rewrites the "frontend" and "api" configurations in launch.json with
// the given ports. It reports whether the file was changed; a missing file or
// one without a configurations array is left alone.
func Update(projectRoot string, project *config.Project, ports port.Map) (bool, error) {
	path := Path(projectRoot)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read launch.json: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("failed to parse launch.json: %w", err)
	}
	configs, ok := doc["configurations"].([]any)
	if !ok {
		return false, nil
	}

	frontend, hasFrontend := project.Packages[FrontendName]
	_, hasBackend := project.Packages[BackendName]

	for _, raw := range configs {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		switch entry["name"] {
		case FrontendName:
			if !hasFrontend {
				continue
			}
			prefix := "NEXT_PUBLIC_"
			if frontend.FrameworkOrDefault() == config.FrameworkVite {
				prefix = "VITE_"
			}
			entry["port"] = ports.Frontend
			env := envOf(entry)
			if hasBackend {
				env[prefix+"API_URL"] = loopback(ports.Backend)
			}
			env[prefix+"FRONTEND_URL"] = loopback(ports.Frontend)
			env[prefix+"ASSET_SRC"] = loopback(ports.S3)
		case APIName:
			if !hasBackend {
				continue
			}
			entry["port"] = ports.Backend
			env := envOf(entry)
			if hasFrontend {
				env["FRONTEND_URL"] = loopback(ports.Frontend)
			}
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return false, fmt.Errorf("failed to encode launch.json: %w", err)
	}
	if err := atomicwriter.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return false, fmt.Errorf("failed to write launch.json: %w", err)
	}
	return true, nil
}

// Configuration names matched in launch.json, and the packages they follow.
const (
	FrontendName = "frontend"
	BackendName  = "backend"
	APIName      = "api"
)

func envOf(entry map[string]any) map[string]any {
	env, ok := entry["env"].(map[string]any)
	if !ok {
		env = make(map[string]any)
		entry["env"] = env
	}
	return env
}

func loopback(p int) string {
	return fmt.Sprintf("http://127.0.0.1:%d", p)
}
