package search

import (
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hynli/riverfish/internal/board"
)

// Kernel owns the shared search resources: the transposition table, the
// helper worker budget and the cooperative stop signal. One Kernel serves one
// engine instance; Search runs at most once at a time (the controller above
// enforces that).
type Kernel struct {
	tt      *TranspositionTable
	threads atomic.Int32

	stop      atomic.Bool
	pondering atomic.Bool
	running   atomic.Bool
	nodes     atomic.Uint64

	// Abort state, rebuilt per search. The time manager sits behind an
	// atomic pointer: the search goroutine installs it while the owner
	// goroutine reads it through PonderHit and Elapsed.
	tm        atomic.Pointer[timeManager]
	nodeLimit uint64
}

// NewKernel creates a kernel with the given hash size in MB and worker count.
func NewKernel(hashMB, threads int) *Kernel {
	k := &Kernel{tt: NewTranspositionTable(hashMB)}
	if threads < 1 {
		threads = 1
	}
	k.threads.Store(int32(threads))
	return k
}

// Stop requests a cooperative stop of the running search. Safe to call at any
// time, from any goroutine; a no-op when nothing is running.
func (k *Kernel) Stop() {
	k.stop.Store(true)
}

// PonderHit converts a ponder search into a normal one: the clock starts now
// and the configured limits begin to apply.
func (k *Kernel) PonderHit() {
	if k.pondering.CompareAndSwap(true, false) {
		if tm := k.tm.Load(); tm != nil {
			k.tm.Store(tm.restarted())
		}
	}
}

// IsRunning reports whether a search is in flight.
func (k *Kernel) IsRunning() bool {
	return k.running.Load()
}

// Nodes returns the node count of the current (or last) search.
func (k *Kernel) Nodes() uint64 {
	return k.nodes.Load()
}

// ResizeTT replaces the transposition table. Only valid while idle.
func (k *Kernel) ResizeTT(mb int) {
	k.tt.Resize(mb)
}

// ResizeThreads sets the worker count used by the next search.
func (k *Kernel) ResizeThreads(n int) {
	if n < 1 {
		n = 1
	}
	k.threads.Store(int32(n))
}

// ClearHash clears the transposition table. Only valid while idle.
func (k *Kernel) ClearHash() {
	k.tt.Clear()
}

// HashFull returns the permille of the transposition table in use.
func (k *Kernel) HashFull() int {
	return k.tt.HashFull()
}

// TT exposes the transposition table for snapshot persistence.
func (k *Kernel) TT() *TranspositionTable {
	return k.tt
}

// shouldAbort is polled by the searchers at node-count boundaries.
func (k *Kernel) shouldAbort() bool {
	if k.stop.Load() {
		return true
	}
	if k.pondering.Load() {
		return false // no limit applies until ponderhit
	}
	if k.nodeLimit > 0 && k.nodes.Load() >= k.nodeLimit {
		return true
	}
	if tm := k.tm.Load(); tm != nil {
		return tm.hardStop()
	}
	return false
}

// Search runs a full search (or perft, when limits.PerftDepth is set) on the
// given position. It blocks until the search terminates and always emits
// exactly one BestMoveEvent as its final event. The position is copied; the
// caller's copy is never touched.
func (k *Kernel) Search(pos *board.Position, limits Limits, emit func(Event)) {
	k.running.Store(true)
	defer k.running.Store(false)

	k.stop.Store(false)
	k.pondering.Store(limits.Ponder)
	k.nodes.Store(0)
	k.nodeLimit = limits.Nodes
	k.tm.Store(newTimeManager(limits, int(pos.SideToMove)))

	if limits.PerftDepth > 0 {
		k.runPerft(pos, limits.PerftDepth, emit)
		emit(BestMoveEvent{BestMove: board.NoMove, PonderMove: board.NoMove})
		return
	}

	root := pos.Copy()
	rootMoves := rootMoveList(root, limits.SearchMoves)
	if rootMoves.Len() == 0 {
		emit(BestMoveEvent{BestMove: board.NoMove, PonderMove: board.NoMove})
		return
	}

	k.tt.NewSearch()

	maxDepth := MaxPly - 1
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	multiPV := limits.MultiPV
	if multiPV < 1 {
		multiPV = 1
	}
	if multiPV > rootMoves.Len() {
		multiPV = rootMoves.Len()
	}

	best := rootMoves.Get(0)
	ponder := board.NoMove
	main := newSearcher(k, root)

	for depth := 1; depth <= maxDepth; depth++ {
		helperStop := k.startHelpers(root, depth)

		completed := k.searchIteration(main, root, rootMoves, depth, multiPV, &best, &ponder, emit)

		helperStop()

		if !completed || k.stop.Load() {
			break
		}

		emit(IterationEvent{Depth: depth, Nodes: k.nodes.Load()})

		if k.nodeLimit > 0 && k.nodes.Load() >= k.nodeLimit {
			break
		}
		if m := mateIn(main.lastRootScore); limits.Mate > 0 && m > 0 && m <= limits.Mate {
			break
		}
		if !k.pondering.Load() && !limits.Infinite && k.tm.Load().softStop() {
			break
		}
	}

	emit(BestMoveEvent{BestMove: best, PonderMove: ponder})
}

// searchIteration runs one depth iteration, including MultiPV re-searches,
// and emits the per-line updates. Returns false if the iteration aborted.
func (k *Kernel) searchIteration(main *searcher, root *board.Position, rootMoves *board.MoveList, depth, multiPV int, best, ponder *board.Move, emit func(Event)) bool {
	var excluded []board.Move

	for pvIdx := 1; pvIdx <= multiPV; pvIdx++ {
		move, score, completed := main.searchRoot(depth, rootMoves, excluded)
		if !completed {
			return false
		}
		if move == board.NoMove {
			break
		}

		if pvIdx == 1 {
			*best = move
			*ponder = board.NoMove
			if pv := main.pv(); len(pv) > 1 {
				*ponder = pv[1]
			}
		}
		excluded = append(excluded, move)

		short := ShortUpdate{
			Depth:    depth,
			SelDepth: main.selDepth,
			MultiPV:  pvIdx,
			Score:    score,
		}
		emit(short)
		emit(FullUpdate{
			ShortUpdate: short,
			Nodes:       k.nodes.Load(),
			Elapsed:     k.tm.Load().elapsed(),
			PV:          main.pv(),
			HashFull:    k.tt.HashFull(),
		})
	}

	return true
}

// startHelpers launches the Lazy SMP helper workers for one iteration. They
// search the same root at the same depth with private ordering state, feeding
// the shared transposition table. The returned function stops and joins them.
func (k *Kernel) startHelpers(root *board.Position, depth int) func() {
	n := int(k.threads.Load()) - 1
	if n <= 0 || depth < 3 {
		return func() {}
	}

	var halt atomic.Bool
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			h := newSearcher(k, root)
			moves := h.pos.GenerateLegalMoves()
			for !halt.Load() && !k.shouldAbort() {
				h.aborted = false
				h.searchRoot(depth, moves, nil)
				if h.aborted {
					break
				}
			}
			return nil
		})
	}

	return func() {
		halt.Store(true)
		_ = g.Wait()
	}
}

// runPerft walks perft depths 1..maxDepth, reporting each total.
func (k *Kernel) runPerft(pos *board.Position, maxDepth int, emit func(Event)) {
	root := pos.Copy()
	for depth := 1; depth <= maxDepth; depth++ {
		if k.stop.Load() {
			return
		}
		nodes := Perft(root, depth)
		k.nodes.Store(nodes)
		emit(IterationEvent{Depth: depth, Nodes: nodes})
	}
}

func rootMoveList(pos *board.Position, restrict []board.Move) *board.MoveList {
	legal := pos.GenerateLegalMoves()
	if len(restrict) == 0 {
		return legal
	}
	filtered := &board.MoveList{}
	for i := 0; i < legal.Len(); i++ {
		if containsMove(restrict, legal.Get(i)) {
			filtered.Add(legal.Get(i))
		}
	}
	return filtered
}

// mateIn converts a mate score to full moves until mate, or 0 for non-mate
// scores.
func mateIn(score int) int {
	if score > MateScore-MaxPly {
		return (MateScore - score + 1) / 2
	}
	return 0
}

// Elapsed returns how long the current search has been running.
func (k *Kernel) Elapsed() time.Duration {
	if tm := k.tm.Load(); tm != nil {
		return tm.elapsed()
	}
	return 0
}
