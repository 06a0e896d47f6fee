package search

import (
	"sync"
	"sync/atomic"

	"github.com/hynli/riverfish/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // exact score
	TTLowerBound               // failed high (beta cutoff)
	TTUpperBound               // failed low
)

// Number of shards for TT locking (power of 2 for fast modulo)
const ttShardCount = 256
const ttShardMask = ttShardCount - 1

// TTEntry represents an entry in the transposition table.
type TTEntry struct {
	Key      uint64     // full 64-bit Zobrist hash for verification
	BestMove board.Move // best move found
	Score    int16      // score (bounded by flag)
	Depth    int8       // search depth
	Flag     TTFlag     // type of bound
	Age      uint8      // generation for replacement
}

// TranspositionTable is a hash table for storing search results.
// Uses sharded locking for thread-safety under Lazy SMP.
type TranspositionTable struct {
	mu      sync.RWMutex // guards the entries slice pointer during Resize
	entries []TTEntry
	shards  [ttShardCount]sync.RWMutex
	mask    uint64
	age     atomic.Uint32
}

// NewTranspositionTable creates a transposition table with the given size in MB.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	tt := &TranspositionTable{}
	tt.allocate(sizeMB)
	return tt
}

func (tt *TranspositionTable) allocate(sizeMB int) {
	if sizeMB < 1 {
		sizeMB = 1
	}
	entrySize := uint64(16)
	numEntries := roundDownToPowerOf2((uint64(sizeMB) * 1024 * 1024) / entrySize)
	tt.entries = make([]TTEntry, numEntries)
	tt.mask = numEntries - 1
	tt.age.Store(0)
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Resize replaces the table with a fresh one of the given size. Must only be
// called while no search is running; the option registry enforces that.
func (tt *TranspositionTable) Resize(sizeMB int) {
	tt.mu.Lock()
	tt.allocate(sizeMB)
	tt.mu.Unlock()
}

// Probe looks up a position in the transposition table.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	tt.mu.RLock()
	idx := hash & tt.mask
	shard := int(idx & ttShardMask)

	tt.shards[shard].RLock()
	entry := tt.entries[idx]
	tt.shards[shard].RUnlock()
	tt.mu.RUnlock()

	if entry.Key == hash && entry.Depth > 0 {
		return entry, true
	}

	return TTEntry{}, false
}

// Store saves a position in the transposition table. Entries from an older
// search, or shallower entries from the current one, are replaced.
func (tt *TranspositionTable) Store(hash uint64, depth int, score int, flag TTFlag, bestMove board.Move) {
	tt.mu.RLock()
	idx := hash & tt.mask
	shard := int(idx & ttShardMask)

	tt.shards[shard].Lock()
	entry := &tt.entries[idx]
	currentAge := uint8(tt.age.Load())
	if entry.Age != currentAge || depth >= int(entry.Depth) {
		entry.Key = hash
		entry.BestMove = bestMove
		entry.Score = int16(score)
		entry.Depth = int8(depth)
		entry.Flag = flag
		entry.Age = currentAge
	}
	tt.shards[shard].Unlock()
	tt.mu.RUnlock()
}

// NewSearch increments the age counter for a new search.
func (tt *TranspositionTable) NewSearch() {
	tt.age.Add(1)
}

// Clear clears the transposition table.
func (tt *TranspositionTable) Clear() {
	tt.mu.Lock()
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	tt.age.Store(0)
	tt.mu.Unlock()
}

// HashFull returns the permille (parts per thousand) of the table in use by
// the current search generation, sampled over the first thousand entries.
func (tt *TranspositionTable) HashFull() int {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	sampleSize := 1000
	if uint64(sampleSize) > uint64(len(tt.entries)) {
		sampleSize = len(tt.entries)
	}
	if sampleSize == 0 {
		return 0
	}

	used := 0
	currentAge := uint8(tt.age.Load())
	for i := 0; i < sampleSize; i++ {
		if tt.entries[i].Depth > 0 && tt.entries[i].Age == currentAge {
			used++
		}
	}

	return (used * 1000) / sampleSize
}

// Size returns the number of entries in the table.
func (tt *TranspositionTable) Size() uint64 {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	return uint64(len(tt.entries))
}

// SnapshotEntries copies out the populated entries, for persistence.
func (tt *TranspositionTable) SnapshotEntries() []TTEntry {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	out := make([]TTEntry, 0, len(tt.entries)/8)
	for i := range tt.entries {
		if tt.entries[i].Depth > 0 {
			out = append(out, tt.entries[i])
		}
	}
	return out
}

// RestoreEntries loads previously snapshotted entries back into the table.
// Entries are re-homed by their key, so the table size may differ from the
// one the snapshot was taken at.
func (tt *TranspositionTable) RestoreEntries(entries []TTEntry) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	currentAge := uint8(tt.age.Load())
	for _, e := range entries {
		idx := e.Key & tt.mask
		slot := &tt.entries[idx]
		if slot.Depth == 0 || e.Depth >= slot.Depth {
			*slot = e
			slot.Age = currentAge
		}
	}
}

// Mate scoring helpers. Mate scores are stored relative to the node, so they
// are shifted by ply on the way in and out of the table.

// AdjustScoreFromTT converts a stored score to a search score at the given ply.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT converts a search score at the given ply to a storable score.
func AdjustScoreToTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
