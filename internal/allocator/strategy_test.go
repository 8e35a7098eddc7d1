package allocator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/firefly-engineering/vivarium/internal/port"
	"github.com/firefly-engineering/vivarium/internal/registry"
)

func TestUnguarded(t *testing.T) {
	var s Unguarded
	if outcome, err := s.TryClaim(0, "a"); err != nil || outcome != Claimed {
		t.Errorf("TryClaim = %v, %v", outcome, err)
	}
	if err := s.Release(0, "a"); err != nil {
		t.Errorf("Release = %v", err)
	}
}

func TestSlotMarkers_ClaimAndConflict(t *testing.T) {
	reg := registry.New(t.TempDir())
	s := NewSlotMarkers(reg)

	if outcome, err := s.TryClaim(3, "shop"); err != nil || outcome != Claimed {
		t.Fatalf("first TryClaim = %v, %v", outcome, err)
	}

	data, err := os.ReadFile(filepath.Join(reg.Root(), MarkersDir, "3.claim"))
	if err != nil {
		t.Fatalf("marker not written: %v", err)
	}
	if string(data) != "shop\n" {
		t.Errorf("marker content = %q, want %q", data, "shop\n")
	}

	// Same owner again is fine.
	if outcome, err := s.TryClaim(3, "shop"); err != nil || outcome != Claimed {
		t.Errorf("same-owner TryClaim = %v, %v", outcome, err)
	}

	// Another project conflicts while the marker is fresh.
	if outcome, err := s.TryClaim(3, "blog"); err != nil || outcome != Conflict {
		t.Errorf("other-owner TryClaim = %v, %v; want Conflict", outcome, err)
	}
}

func TestSlotMarkers_ReclaimsStaleMarker(t *testing.T) {
	reg := registry.New(t.TempDir())
	s := NewSlotMarkers(reg)

	if _, err := s.TryClaim(3, "ghost"); err != nil {
		t.Fatal(err)
	}

	s.now = func() time.Time { return time.Now().Add(2 * DefaultStaleAfter) }

	if outcome, err := s.TryClaim(3, "blog"); err != nil || outcome != Claimed {
		t.Errorf("TryClaim over stale marker = %v, %v; want Claimed", outcome, err)
	}
}

func TestSlotMarkers_TakeoverOfReplacedMarker(t *testing.T) {
	reg := registry.New(t.TempDir())
	s := NewSlotMarkers(reg)

	if _, err := s.TryClaim(3, "ghost"); err != nil {
		t.Fatal(err)
	}
	path := s.markerPath(3)
	owner, staleMod, err := readMarker(path)
	if err != nil {
		t.Fatal(err)
	}

	s.now = func() time.Time { return time.Now().Add(2 * DefaultStaleAfter) }

	// Two setups saw the same stale marker; the first one replaces it.
	if outcome, err := s.takeOver(path, "shop", owner, staleMod); err != nil || outcome != Claimed {
		t.Fatalf("first takeover = %v, %v; want Claimed", outcome, err)
	}
	// Make the replacement distinguishable from the stale marker by mtime too.
	fresh := staleMod.Add(time.Second)
	if err := os.Chtimes(path, fresh, fresh); err != nil {
		t.Fatal(err)
	}

	// The second one acts on its outdated observation and must not steal it.
	if outcome, err := s.takeOver(path, "blog", owner, staleMod); err != nil || outcome != Conflict {
		t.Errorf("second takeover = %v, %v; want Conflict", outcome, err)
	}
	if got, _, _ := readMarker(path); got != "shop" {
		t.Errorf("marker owner = %q, want shop", got)
	}
	if _, err := os.Stat(path + takeoverSuffix); !os.IsNotExist(err) {
		t.Error("takeover lock should be removed")
	}
}

func TestSlotMarkers_TakeoverLockHeld(t *testing.T) {
	reg := registry.New(t.TempDir())
	s := NewSlotMarkers(reg)

	if _, err := s.TryClaim(3, "ghost"); err != nil {
		t.Fatal(err)
	}
	shifted := time.Now().Add(2 * DefaultStaleAfter)
	s.now = func() time.Time { return shifted }

	lock := s.markerPath(3) + takeoverSuffix
	if err := os.WriteFile(lock, []byte("shop\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(lock, shifted, shifted); err != nil {
		t.Fatal(err)
	}

	if outcome, err := s.TryClaim(3, "blog"); err != nil || outcome != Conflict {
		t.Errorf("TryClaim while another takeover runs = %v, %v; want Conflict", outcome, err)
	}
	if got, _, _ := readMarker(s.markerPath(3)); got != "ghost" {
		t.Errorf("marker owner = %q, want ghost untouched", got)
	}

	// A lock left by a crashed setup is cleared, and the next attempt wins.
	old := shifted.Add(-2 * DefaultStaleAfter)
	if err := os.Chtimes(lock, old, old); err != nil {
		t.Fatal(err)
	}
	if outcome, _ := s.TryClaim(3, "blog"); outcome != Conflict {
		t.Errorf("TryClaim clearing a stale lock = %v, want Conflict", outcome)
	}
	if outcome, err := s.TryClaim(3, "blog"); err != nil || outcome != Claimed {
		t.Errorf("TryClaim after stale lock cleared = %v, %v; want Claimed", outcome, err)
	}
}

func TestSlotMarkers_KeepsMarkerOfLiveClaim(t *testing.T) {
	reg := registry.New(t.TempDir())
	s := NewSlotMarkers(reg)

	if _, err := s.TryClaim(3, "shop"); err != nil {
		t.Fatal(err)
	}
	claim := &registry.Claim{Index: 3, ProjectName: "shop", Ports: port.Compute(3)}
	if err := reg.Write(claim); err != nil {
		t.Fatal(err)
	}

	s.now = func() time.Time { return time.Now().Add(2 * DefaultStaleAfter) }

	if outcome, err := s.TryClaim(3, "blog"); err != nil || outcome != Conflict {
		t.Errorf("TryClaim over live marker = %v, %v; want Conflict", outcome, err)
	}
}

func TestSlotMarkers_Release(t *testing.T) {
	reg := registry.New(t.TempDir())
	s := NewSlotMarkers(reg)
	path := filepath.Join(reg.Root(), MarkersDir, "4.claim")

	if _, err := s.TryClaim(4, "shop"); err != nil {
		t.Fatal(err)
	}

	// Another project cannot release it.
	if err := s.Release(4, "blog"); err != nil {
		t.Fatalf("Release by other = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("marker should survive release by another project: %v", err)
	}

	if err := s.Release(4, "shop"); err != nil {
		t.Fatalf("Release = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("marker should be gone, stat err = %v", err)
	}

	// Releasing a missing marker is a no-op.
	if err := s.Release(4, "shop"); err != nil {
		t.Errorf("Release of missing marker = %v", err)
	}
}

func TestParseStrategy(t *testing.T) {
	reg := registry.New(t.TempDir())

	s, err := ParseStrategy("", reg, 0)
	if err != nil {
		t.Fatal(err)
	}
	if m, ok := s.(*SlotMarkers); !ok || m.StaleAfter != DefaultStaleAfter {
		t.Errorf("default strategy = %#v", s)
	}

	s, err = ParseStrategy("markers", reg, 5*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if m := s.(*SlotMarkers); m.StaleAfter != 5*time.Minute {
		t.Errorf("StaleAfter = %v, want 5m", m.StaleAfter)
	}

	s, err = ParseStrategy("none", reg, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(Unguarded); !ok {
		t.Errorf("none strategy = %#v", s)
	}

	if _, err := ParseStrategy("flock", reg, 0); err == nil {
		t.Error("unknown strategy should fail")
	}
}
