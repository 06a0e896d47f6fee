package storage

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/hynli/riverfish/internal/search"
)

// snapshotMagic guards against loading a file produced by an incompatible
// entry layout.
const snapshotMagic = "RFTT1"

type snapshotHeader struct {
	Magic   string
	Entries int
}

// SaveSnapshot writes the populated transposition table entries to path,
// gob-encoded and zstd-compressed. An existing file is replaced atomically.
func SaveSnapshot(path string, tt *search.TranspositionTable) error {
	entries := tt.SnapshotEntries()

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return err
	}

	enc := gob.NewEncoder(zw)
	err = enc.Encode(snapshotHeader{Magic: snapshotMagic, Entries: len(entries)})
	if err == nil {
		err = enc.Encode(entries)
	}
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadSnapshot reads a snapshot written by SaveSnapshot and restores its
// entries into the table. Missing files are not an error; the table is left
// untouched.
func LoadSnapshot(path string, tt *search.TranspositionTable) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer zr.Close()

	dec := gob.NewDecoder(zr)
	var hdr snapshotHeader
	if err := dec.Decode(&hdr); err != nil {
		return fmt.Errorf("corrupt hash snapshot %s: %w", path, err)
	}
	if hdr.Magic != snapshotMagic {
		return fmt.Errorf("unrecognized hash snapshot format in %s", path)
	}

	var entries []search.TTEntry
	if err := dec.Decode(&entries); err != nil {
		return fmt.Errorf("corrupt hash snapshot %s: %w", path, err)
	}

	tt.RestoreEntries(entries)
	return nil
}
