package allocator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/firefly-engineering/vivarium/internal/logging"
	"github.com/firefly-engineering/vivarium/internal/registry"
)

// Outcome is the result of trying to claim a slot.
type Outcome int

const (
	// Claimed means the caller now owns the slot.
	Claimed Outcome = iota
	// Conflict means another project owns the slot.
	Conflict
)

// ClaimStrategy guards the window between scanning the registry and writing
// the winning claim.
type ClaimStrategy interface {
	// TryClaim reserves index for project.
	TryClaim(index int, project string) (Outcome, error)

	// Release gives up project's reservation of index.
	Release(index int, project string) error
}

// Unguarded never reports a conflict. Two concurrent allocations may pick
// the same index.
type Unguarded struct{}

// TryClaim always succeeds.
func (Unguarded) TryClaim(int, string) (Outcome, error) { return Claimed, nil }

// Release does nothing.
func (Unguarded) Release(int, string) error { return nil }

// DefaultStaleAfter is how old an orphaned slot marker must be before it is reclaimed.
const DefaultStaleAfter = time.Minute

// MarkersDir is the directory under the registry root holding slot markers.
const MarkersDir = ".slots"

const takeoverSuffix = ".takeover"

// SlotMarkers reserves slots by exclusively creating one marker file per index.
type SlotMarkers struct {
	Registry *registry.Registry
	Dir      string

	// StaleAfter is the minimum age of a marker whose owner holds no claim
	// for that index before another project may take it over.
	StaleAfter time.Duration

	now func() time.Time
}

// NewSlotMarkers returns a strategy storing markers under the registry root.
func NewSlotMarkers(reg *registry.Registry) *SlotMarkers {
	return &SlotMarkers{
		Registry:   reg,
		Dir:        filepath.Join(reg.Root(), MarkersDir),
		StaleAfter: DefaultStaleAfter,
		now:        time.Now,
	}
}

func (s *SlotMarkers) markerPath(index int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%d.claim", index))
}

// TryClaim creates the marker for index, or accepts an existing marker owned by project.
func (s *SlotMarkers) TryClaim(index int, project string) (Outcome, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return Conflict, fmt.Errorf("failed to create slot marker directory: %w", err)
	}

	path := s.markerPath(index)
	created, err := createExclusive(path, project)
	if err != nil {
		return Conflict, err
	}
	if created {
		return Claimed, nil
	}

	owner, modTime, err := readMarker(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Released between our create and read; try once more.
			return s.retry(path, project)
		}
		return Conflict, err
	}
	if owner == project {
		return Claimed, nil
	}

	if !s.isStale(index, owner, modTime) {
		logging.Debug("slot marker held", "index", index, "owner", owner)
		return Conflict, nil
	}

	logging.Debug("reclaiming stale slot marker", "index", index, "owner", owner)
	return s.takeOver(path, project, owner, modTime)
}

// takeOver replaces the stale marker observed as (owner, modTime). A takeover
// lock serializes competing setups, and the marker is re-read under the lock
// so one that was already replaced is left alone.
func (s *SlotMarkers) takeOver(path, project, owner string, modTime time.Time) (Outcome, error) {
	lock := path + takeoverSuffix
	locked, err := createExclusive(lock, project)
	if err != nil {
		return Conflict, err
	}
	if !locked {
		s.clearStaleLock(lock)
		return Conflict, nil
	}
	defer func() {
		if err := os.Remove(lock); err != nil && !os.IsNotExist(err) {
			logging.Debug("failed to remove takeover lock", "path", lock, "error", err)
		}
	}()

	current, currentMod, err := readMarker(path)
	switch {
	case os.IsNotExist(err):
		// Released meanwhile.
	case err != nil:
		return Conflict, err
	case current != owner || !currentMod.Equal(modTime):
		logging.Debug("slot marker changed during takeover", "owner", current)
		return Conflict, nil
	default:
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return Conflict, fmt.Errorf("failed to remove stale slot marker: %w", err)
		}
	}
	return s.retry(path, project)
}

// clearStaleLock removes a takeover lock left behind by a crashed setup.
func (s *SlotMarkers) clearStaleLock(lock string) {
	info, err := os.Stat(lock)
	if err != nil || s.clock().Sub(info.ModTime()) < s.StaleAfter {
		return
	}
	logging.Debug("removing stale takeover lock", "path", lock)
	_ = os.Remove(lock)
}

func (s *SlotMarkers) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *SlotMarkers) retry(path, project string) (Outcome, error) {
	created, err := createExclusive(path, project)
	if err != nil {
		return Conflict, err
	}
	if created {
		return Claimed, nil
	}
	return Conflict, nil
}

// Release removes the marker for index if project owns it.
func (s *SlotMarkers) Release(index int, project string) error {
	path := s.markerPath(index)
	owner, _, err := readMarker(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if owner != "" && owner != project {
		logging.Debug("slot marker owned by another project, leaving it", "index", index, "owner", owner)
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove slot marker: %w", err)
	}
	return nil
}

// isStale reports whether a marker can be taken over: its owner holds no
// claim for index and the marker is older than StaleAfter.
func (s *SlotMarkers) isStale(index int, owner string, modTime time.Time) bool {
	if s.clock().Sub(modTime) < s.StaleAfter {
		return false
	}
	if owner == "" || registry.ValidateProjectName(owner) != nil {
		return true
	}
	claim, err := s.Registry.Read(owner)
	if err != nil || claim == nil {
		return true
	}
	return claim.Index != index
}

// createExclusive creates path holding owner. It returns false if path already exists.
func createExclusive(path, owner string) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create slot marker: %w", err)
	}
	_, writeErr := f.WriteString(owner + "\n")
	closeErr := f.Close()
	if writeErr != nil {
		return true, fmt.Errorf("failed to write slot marker: %w", writeErr)
	}
	if closeErr != nil {
		return true, fmt.Errorf("failed to write slot marker: %w", closeErr)
	}
	return true, nil
}

func readMarker(path string) (string, time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", time.Time{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", time.Time{}, err
	}
	return strings.TrimSpace(string(data)), info.ModTime(), nil
}

// ParseStrategy returns the strategy named by s: "markers" (the default) or "none".
func ParseStrategy(s string, reg *registry.Registry, staleAfter time.Duration) (ClaimStrategy, error) {
	switch s {
	case "", "markers":
		m := NewSlotMarkers(reg)
		if staleAfter > 0 {
			m.StaleAfter = staleAfter
		}
		return m, nil
	case "none":
		return Unguarded{}, nil
	default:
		return nil, fmt.Errorf("invalid claim strategy %q (must be markers or none)", s)
	}
}
