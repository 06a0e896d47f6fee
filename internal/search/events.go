// Package search implements the search kernel: a transposition table,
// iterative-deepening alpha-beta with quiescence, Lazy SMP helper workers,
// time management and perft. The kernel reports progress exclusively through
// the emit callback passed to Search; it never blocks on the consumer beyond
// the callback itself.
package search

import (
	"time"

	"github.com/hynli/riverfish/internal/board"
)

// Event is the tagged union of progress events the kernel emits during a
// search. For one Search call the kernel emits events in production order and
// finishes with exactly one BestMoveEvent.
type Event interface {
	event()
}

// IterationEvent reports a completed root iteration.
type IterationEvent struct {
	Depth int
	Nodes uint64
}

// ShortUpdate reports a new score for one ranked line without the payload of
// a full update.
type ShortUpdate struct {
	Depth      int
	SelDepth   int
	MultiPV    int // 1-based rank of the reported line
	Score      int // centipawns from the side to move's view
	UpperBound bool
	LowerBound bool
}

// FullUpdate extends ShortUpdate with node counts, elapsed time, the
// principal variation and hash usage.
type FullUpdate struct {
	ShortUpdate
	Nodes    uint64
	Elapsed  time.Duration
	PV       []board.Move
	HashFull int // permille
}

// BestMoveEvent terminates a search. BestMove is NoMove when the position has
// no legal moves or the search ran in perft mode.
type BestMoveEvent struct {
	BestMove   board.Move
	PonderMove board.Move
}

func (IterationEvent) event() {}
func (ShortUpdate) event()    {}
func (FullUpdate) event()     {}
func (BestMoveEvent) event()  {}
