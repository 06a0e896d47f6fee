package storage

import (
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Storage {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPreferencesRoundTrip(t *testing.T) {
	store := openTestStore(t)

	loaded, err := store.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if loaded.HashMB != 64 || loaded.Threads != 1 {
		t.Errorf("fresh store did not return defaults: %+v", loaded)
	}

	prefs := &Preferences{
		HashMB:         256,
		Threads:        4,
		MultiPV:        3,
		Ponder:         true,
		MoveOverheadMs: 50,
	}
	if err := store.SavePreferences(prefs); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}

	loaded, err = store.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if loaded.HashMB != 256 || loaded.Threads != 4 || loaded.MultiPV != 3 ||
		!loaded.Ponder || loaded.MoveOverheadMs != 50 {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.LastUsed.IsZero() {
		t.Error("LastUsed not stamped on save")
	}
}

func TestSearchStats(t *testing.T) {
	store := openTestStore(t)

	if err := store.RecordSearch(10000, 12, 2*time.Second); err != nil {
		t.Fatalf("RecordSearch: %v", err)
	}
	if err := store.RecordSearch(5000, 8, time.Second); err != nil {
		t.Fatalf("RecordSearch: %v", err)
	}

	stats, err := store.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if stats.SearchesRun != 2 {
		t.Errorf("SearchesRun = %d, want 2", stats.SearchesRun)
	}
	if stats.TotalNodes != 15000 {
		t.Errorf("TotalNodes = %d, want 15000", stats.TotalNodes)
	}
	if stats.DeepestDepth != 12 {
		t.Errorf("DeepestDepth = %d, want 12", stats.DeepestDepth)
	}
	if nps := stats.NodesPerSecond(); nps != 5000 {
		t.Errorf("NodesPerSecond = %.0f, want 5000", nps)
	}
}

func TestNodesPerSecondEmpty(t *testing.T) {
	if got := NewSearchStats().NodesPerSecond(); got != 0 {
		t.Errorf("empty stats nps = %.2f, want 0", got)
	}
}
