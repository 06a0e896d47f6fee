package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hynli/riverfish/internal/board"
	"github.com/hynli/riverfish/internal/search"
)

func TestSnapshotRoundTrip(t *testing.T) {
	tt := search.NewTranspositionTable(1)
	hashes := []uint64{0xAAAA, 0xBBBB, 0xCCCC}
	move := board.NewMove(board.NewSquare(7, 2), board.NewSquare(4, 2))
	for i, h := range hashes {
		tt.Store(h, i+2, 15, search.TTExact, move)
	}

	path := SnapshotPath(t.TempDir())
	if err := SaveSnapshot(path, tt); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	restored := search.NewTranspositionTable(1)
	if err := LoadSnapshot(path, restored); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	for _, h := range hashes {
		entry, ok := restored.Probe(h)
		if !ok {
			t.Errorf("entry %#x missing after restore", h)
			continue
		}
		if entry.BestMove != move || entry.Score != 15 {
			t.Errorf("entry %#x = %+v", h, entry)
		}
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	tt := search.NewTranspositionTable(1)
	if err := LoadSnapshot(filepath.Join(t.TempDir(), "absent.zst"), tt); err != nil {
		t.Errorf("missing snapshot should not be an error, got %v", err)
	}
}

func TestLoadSnapshotCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.zst")
	if err := os.WriteFile(path, []byte("this is not a snapshot"), 0644); err != nil {
		t.Fatal(err)
	}

	tt := search.NewTranspositionTable(1)
	if err := LoadSnapshot(path, tt); err == nil {
		t.Error("corrupt snapshot loaded without error")
	}
}
