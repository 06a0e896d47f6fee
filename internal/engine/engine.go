package engine

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/hynli/riverfish/internal/board"
	"github.com/hynli/riverfish/internal/search"
)

const (
	defaultHashMB = 64
	maxHashMB     = 4096
	maxMultiPV    = 32
	maxOverheadMs = 5000
)

// Engine is the facade the binaries and the library consumer talk to. It owns
// a position, an option registry, a search kernel and the lifecycle machinery
// around it. All methods are safe for concurrent use; mutating calls require
// the engine to be idle and fail fast otherwise.
type Engine struct {
	kernel     *search.Kernel
	bridge     *Bridge
	controller *controller
	options    *Options

	mu  sync.Mutex
	pos *board.Position

	bestMu     sync.Mutex
	lastBest   board.Move
	lastPonder board.Move

	closeOnce sync.Once
}

// New creates an engine at the start position with default options.
func New() *Engine {
	e := &Engine{
		kernel: search.NewKernel(defaultHashMB, 1),
		bridge: &Bridge{},
	}
	e.controller = newController(e.kernel, e.bridge)
	e.options = newOptions(func() bool { return e.controller.State() != Idle })
	e.declareOptions()

	e.bridge.internalBest = func(ev search.BestMoveEvent) {
		e.bestMu.Lock()
		e.lastBest = ev.BestMove
		e.lastPonder = ev.PonderMove
		e.bestMu.Unlock()
	}

	pos, _ := board.ParseFEN(board.StartFEN)
	e.pos = pos
	return e
}

func (e *Engine) declareOptions() {
	e.options.declare(&Option{
		Name: "Hash", Type: SpinOption, Default: "64", Min: 1, Max: maxHashMB,
		searchLocked: true,
		onChange: func(o *Option) error {
			e.kernel.ResizeTT(o.IntValue())
			return nil
		},
	})
	e.options.declare(&Option{
		Name: "Threads", Type: SpinOption, Default: "1", Min: 1, Max: runtime.NumCPU(),
		searchLocked: true,
		onChange: func(o *Option) error {
			e.kernel.ResizeThreads(o.IntValue())
			return nil
		},
	})
	e.options.declare(&Option{
		Name: "MultiPV", Type: SpinOption, Default: "1", Min: 1, Max: maxMultiPV,
	})
	e.options.declare(&Option{
		Name: "Ponder", Type: CheckOption, Default: "false",
	})
	e.options.declare(&Option{
		Name: "Move Overhead", Type: SpinOption, Default: "10", Min: 0, Max: maxOverheadMs,
	})
}

// Options exposes the option registry.
func (e *Engine) Options() *Options {
	return e.options
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.controller.State()
}

// SetPosition replaces the engine position with the one described by fen,
// then plays the given moves on it in order. The update is all-or-nothing: on
// any error the previous position is kept. Requires the engine to be idle.
func (e *Engine) SetPosition(fen string, moves ...string) error {
	if e.controller.State() != Idle {
		return fmt.Errorf("%w: cannot set position", ErrSearchAlreadyRunning)
	}

	pos, err := board.ParseFEN(fen)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}

	for _, text := range moves {
		if err := applyMoveText(pos, text); err != nil {
			return err
		}
	}

	e.mu.Lock()
	e.pos = pos
	e.mu.Unlock()
	return nil
}

// ApplyMove plays one move, given in file-rank-file-rank text, on the current
// position. Requires the engine to be idle.
func (e *Engine) ApplyMove(text string) error {
	if e.controller.State() != Idle {
		return fmt.Errorf("%w: cannot apply move", ErrSearchAlreadyRunning)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	pos := e.pos.Copy()
	if err := applyMoveText(pos, text); err != nil {
		return err
	}
	e.pos = pos
	return nil
}

func applyMoveText(pos *board.Position, text string) error {
	m, err := board.ParseMove(text)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMoveText, text)
	}
	if !pos.IsLegal(m) {
		return fmt.Errorf("%w: %q in %s", ErrIllegalMove, text, pos.ToFEN())
	}
	pos.MakeMove(m)
	return nil
}

// Fen returns the current position in FEN text.
func (e *Engine) Fen() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos.ToFEN()
}

// Visualize returns an ASCII diagram of the current position.
func (e *Engine) Visualize() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos.String()
}

// Position returns a copy of the current position.
func (e *Engine) Position() *board.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos.Copy()
}

// Go starts a search with the given limits on a snapshot of the current
// position and returns immediately. Progress arrives through the registered
// handlers; the search always ends with exactly one best-move event. Fails
// with ErrSearchAlreadyRunning when a search is in flight.
//
// A zero MultiPV or MoveOverhead in limits means "use the configured option
// value"; callers that need a true zero overhead set the Move Overhead
// option to 0 instead.
func (e *Engine) Go(limits search.Limits) error {
	if limits.MultiPV == 0 {
		limits.MultiPV = e.options.GetInt("MultiPV")
	}
	if limits.MoveOverhead == 0 {
		limits.MoveOverhead = time.Duration(e.options.GetInt("Move Overhead")) * time.Millisecond
	}

	e.mu.Lock()
	pos := e.pos.Copy()
	e.mu.Unlock()

	return e.controller.start(pos, limits)
}

// GoDepth searches to a fixed depth.
func (e *Engine) GoDepth(depth int) error {
	return e.Go(search.Limits{Depth: depth})
}

// GoTime searches for a fixed wall-clock duration.
func (e *Engine) GoTime(d time.Duration) error {
	return e.Go(search.Limits{MoveTime: d})
}

// GoNodes searches until the node budget is spent.
func (e *Engine) GoNodes(nodes uint64) error {
	return e.Go(search.Limits{Nodes: nodes})
}

// GoInfinite searches until Stop is called.
func (e *Engine) GoInfinite() error {
	return e.Go(search.Limits{Infinite: true})
}

// Stop requests a cooperative stop of the running search. Non-blocking and
// idempotent; a no-op when idle. The best-move event still arrives through
// the bridge after the kernel winds down.
func (e *Engine) Stop() {
	e.controller.requestStop()
}

// WaitForSearchFinished blocks until the current search has terminated and
// every pending event, the best-move event included, has been delivered.
// Returns immediately when idle.
func (e *Engine) WaitForSearchFinished() {
	e.controller.wait()
}

// PonderHit converts a running ponder search into a normal one.
func (e *Engine) PonderHit() {
	e.kernel.PonderHit()
}

// BestMove returns the best move reported by the most recent search, or
// NoMove if no search has completed yet.
func (e *Engine) BestMove() board.Move {
	e.bestMu.Lock()
	defer e.bestMu.Unlock()
	return e.lastBest
}

// PonderMove returns the expected reply reported by the most recent search.
func (e *Engine) PonderMove() board.Move {
	e.bestMu.Lock()
	defer e.bestMu.Unlock()
	return e.lastPonder
}

// Perft counts leaf nodes of the legal move tree from the current position.
// Runs synchronously; requires the engine to be idle.
func (e *Engine) Perft(depth int) (uint64, error) {
	if e.controller.State() != Idle {
		return 0, fmt.Errorf("%w: cannot run perft", ErrSearchAlreadyRunning)
	}
	e.mu.Lock()
	pos := e.pos.Copy()
	e.mu.Unlock()
	return search.Perft(pos, depth), nil
}

// PerftDivide returns the per-root-move perft counts from the current
// position. Requires the engine to be idle.
func (e *Engine) PerftDivide(depth int) (map[string]uint64, error) {
	if e.controller.State() != Idle {
		return nil, fmt.Errorf("%w: cannot run perft", ErrSearchAlreadyRunning)
	}
	e.mu.Lock()
	pos := e.pos.Copy()
	e.mu.Unlock()
	return search.PerftDivide(pos, depth), nil
}

// ClearHash empties the transposition table. Requires the engine to be idle.
func (e *Engine) ClearHash() error {
	if e.controller.State() != Idle {
		return fmt.Errorf("%w: cannot clear hash", ErrSearchAlreadyRunning)
	}
	e.kernel.ClearHash()
	return nil
}

// HashFull returns the permille of the transposition table in use.
func (e *Engine) HashFull() int {
	return e.kernel.HashFull()
}

// Nodes returns the node count of the current (or last) search.
func (e *Engine) Nodes() uint64 {
	return e.kernel.Nodes()
}

// Kernel exposes the search kernel for persistence helpers.
func (e *Engine) Kernel() *search.Kernel {
	return e.kernel
}

// OnIteration registers the handler called at the end of each completed
// depth iteration.
func (e *Engine) OnIteration(h func(search.IterationEvent)) {
	e.bridge.OnIteration(h)
}

// OnShortUpdate registers the handler for compact per-line progress updates.
func (e *Engine) OnShortUpdate(h func(search.ShortUpdate)) {
	e.bridge.OnShortUpdate(h)
}

// OnFullUpdate registers the handler for detailed per-line progress updates.
func (e *Engine) OnFullUpdate(h func(search.FullUpdate)) {
	e.bridge.OnFullUpdate(h)
}

// OnBestMove registers the handler for the final best-move report.
func (e *Engine) OnBestMove(h func(search.BestMoveEvent)) {
	e.bridge.OnBestMove(h)
}

// Close stops any running search, waits for its events to drain and disables
// all handlers. After Close no handler fires again. Idempotent.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.controller.requestStop()
		e.controller.wait()
		e.bridge.disableAll()
	})
}
