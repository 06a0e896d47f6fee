package search

import (
	"time"

	"github.com/hynli/riverfish/internal/board"
)

// Limits specifies the constraints on one search invocation. Zero values mean
// "unbounded"; exactly one termination mode is primary per invocation
// (depth, nodes, move time, game clock, infinite, mate or perft).
type Limits struct {
	Depth      int           // maximum depth (0 = no limit)
	Nodes      uint64        // maximum nodes (0 = no limit)
	MoveTime   time.Duration // fixed time for this move (0 = no limit)
	Infinite   bool          // search until stopped
	Ponder     bool          // ponder mode: no limit applies until PonderHit
	Mate       int           // stop once a mate in at most this many moves is found
	PerftDepth int           // run perft instead of a search

	Time      [2]time.Duration // remaining clock per color
	Inc       [2]time.Duration // increment per move per color
	MovesToGo int              // moves until the next time control

	MultiPV      int           // number of ranked lines to report (default 1)
	MoveOverhead time.Duration // latency reserve subtracted from time budgets
	SearchMoves  []board.Move  // restrict the root to these moves if non-empty
}

// UsesClock reports whether the limits derive a budget from the game clock.
func (l Limits) UsesClock() bool {
	return l.MoveTime > 0 || l.Time[0] > 0 || l.Time[1] > 0
}
