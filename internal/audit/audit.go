// Package audit records project lifecycle events.
// Events are stored as JSON Lines (JSONL) files, one per project, outside the
// project's registry directory so they survive teardown.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/firefly-engineering/vivarium/internal/registry"
)

// Dir is the directory under the registry root holding the event logs.
const Dir = ".history"

// EventType classifies a lifecycle event.
type EventType string

const (
	EventSetup    EventType = "setup"
	EventStart    EventType = "start"
	EventStop     EventType = "stop"
	EventTeardown EventType = "teardown"
	EventHealth   EventType = "health"
	EventError    EventType = "error"
)

// Event represents a single audit log entry.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Project   string    `json:"project"`
	Index     *int      `json:"index,omitempty"`
	Details   string    `json:"details,omitempty"`
}

// Logger writes and reads audit events for projects.
// Events are stored in {registryRoot}/.history/{project}.jsonl.
type Logger struct {
	root string
}

// NewLogger creates a new audit logger rooted at the registry root.
func NewLogger(registryRoot string) *Logger {
	return &Logger{root: registryRoot}
}

func (l *Logger) eventPath(project string) (string, error) {
	if err := registry.ValidateProjectName(project); err != nil {
		return "", err
	}
	return filepath.Join(l.root, Dir, project+".jsonl"), nil
}

// Log appends an event to the project's audit log.
func (l *Logger) Log(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	path, err := l.eventPath(event.Project)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// LogEvent is a convenience method that creates and logs an event.
func (l *Logger) LogEvent(eventType EventType, project, details string) error {
	return l.Log(Event{
		Type:    eventType,
		Project: project,
		Details: details,
	})
}

// LogSlot logs an event that concerns a slot index.
func (l *Logger) LogSlot(eventType EventType, project string, index int) error {
	return l.Log(Event{
		Type:    eventType,
		Project: project,
		Index:   &index,
	})
}

// Events reads all events for a project in chronological order.
func (l *Logger) Events(project string) ([]Event, error) {
	path, err := l.eventPath(project)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // Skip malformed lines
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("error reading audit log: %w", err)
	}

	return events, nil
}

// Remove deletes the audit log for a project.
func (l *Logger) Remove(project string) error {
	path, err := l.eventPath(project)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
