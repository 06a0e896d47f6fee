package search

import (
	"testing"
	"time"

	"github.com/hynli/riverfish/internal/board"
)

func startPosition(t *testing.T) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(board.StartFEN)
	if err != nil {
		t.Fatal(err)
	}
	return pos
}

// TestKernelDepthLimited runs a shallow search and checks the event stream:
// progress updates, one iteration report per depth, and the best-move event
// last.
func TestKernelDepthLimited(t *testing.T) {
	k := NewKernel(16, 1)
	pos := startPosition(t)

	var events []Event
	k.Search(pos, Limits{Depth: 3}, func(ev Event) {
		events = append(events, ev)
	})

	if len(events) == 0 {
		t.Fatal("no events emitted")
	}

	best, ok := events[len(events)-1].(BestMoveEvent)
	if !ok {
		t.Fatalf("last event is %T, want BestMoveEvent", events[len(events)-1])
	}
	if best.BestMove == board.NoMove {
		t.Error("no best move from the start position")
	}
	if !pos.IsLegal(best.BestMove) {
		t.Errorf("best move %s is not legal", best.BestMove)
	}

	var iterations, fulls, bests int
	lastDepth := 0
	for _, ev := range events {
		switch e := ev.(type) {
		case IterationEvent:
			if e.Depth <= lastDepth {
				t.Errorf("iteration depth %d did not increase past %d", e.Depth, lastDepth)
			}
			lastDepth = e.Depth
			iterations++
		case FullUpdate:
			fulls++
			if len(e.PV) == 0 {
				t.Error("full update without a principal variation")
			}
		case BestMoveEvent:
			bests++
		}
	}

	if iterations != 3 {
		t.Errorf("iteration events = %d, want 3", iterations)
	}
	if fulls < 3 {
		t.Errorf("full updates = %d, want at least one per depth", fulls)
	}
	if bests != 1 {
		t.Errorf("best move events = %d, want exactly 1", bests)
	}
	if k.Nodes() == 0 {
		t.Error("node counter not advanced")
	}
}

// TestKernelNoLegalMoves checks that a dead position still yields exactly one
// best-move event carrying the null move.
func TestKernelNoLegalMoves(t *testing.T) {
	// Black king cornered in the palace by red rooks on the adjacent files.
	pos, err := board.ParseFEN("3k5/9/4R4/9/9/9/9/9/9/3RK4 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	k := NewKernel(1, 1)
	var events []Event
	k.Search(pos, Limits{Depth: 2}, func(ev Event) {
		events = append(events, ev)
	})

	if len(events) != 1 {
		t.Fatalf("events = %d, want only the best-move event", len(events))
	}
	best := events[0].(BestMoveEvent)
	if best.BestMove != board.NoMove {
		t.Errorf("best move = %s, want 0000", best.BestMove)
	}
}

// TestKernelStopInfinite starts an unbounded search and stops it: the search
// must terminate promptly and still deliver its best-move event.
func TestKernelStopInfinite(t *testing.T) {
	k := NewKernel(16, 1)
	pos := startPosition(t)

	done := make(chan BestMoveEvent, 1)
	go func() {
		var last BestMoveEvent
		k.Search(pos, Limits{Infinite: true}, func(ev Event) {
			if b, ok := ev.(BestMoveEvent); ok {
				last = b
			}
		})
		done <- last
	}()

	time.Sleep(50 * time.Millisecond)
	k.Stop()

	select {
	case best := <-done:
		if best.BestMove == board.NoMove {
			t.Error("stopped infinite search returned no move")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("search did not stop")
	}
}

// TestKernelPonderHit starts a move-time search in ponder mode: no limit may
// apply until PonderHit, after which the clock starts and the search
// terminates on its own. The clock is polled from this goroutine throughout,
// the way the engine owner reads it mid-search.
func TestKernelPonderHit(t *testing.T) {
	k := NewKernel(16, 1)
	pos := startPosition(t)

	done := make(chan struct{})
	go func() {
		k.Search(pos, Limits{MoveTime: 20 * time.Millisecond, Ponder: true}, func(Event) {})
		close(done)
	}()

	// Well past the move time.
	deadline := time.Now().Add(150 * time.Millisecond)
	for time.Now().Before(deadline) {
		k.Elapsed()
		select {
		case <-done:
			t.Fatal("ponder search terminated before ponderhit")
		default:
		}
		time.Sleep(5 * time.Millisecond)
	}

	k.PonderHit()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		k.Stop()
		t.Fatal("search did not terminate after ponderhit")
	}
}

func TestKernelNodeLimit(t *testing.T) {
	k := NewKernel(16, 1)
	pos := startPosition(t)

	k.Search(pos, Limits{Nodes: 2000}, func(Event) {})

	// The limit is polled at checkpoint boundaries, so allow one batch of
	// overshoot.
	if k.Nodes() > 2000+2048 {
		t.Errorf("nodes = %d, want close to the 2000 limit", k.Nodes())
	}
}

func TestKernelPerftMode(t *testing.T) {
	k := NewKernel(1, 1)
	pos := startPosition(t)

	var events []Event
	k.Search(pos, Limits{PerftDepth: 2}, func(ev Event) {
		events = append(events, ev)
	})

	if len(events) != 3 {
		t.Fatalf("events = %d, want two iteration reports and a best move", len(events))
	}
	if it := events[0].(IterationEvent); it.Nodes != 44 {
		t.Errorf("perft(1) = %d, want 44", it.Nodes)
	}
	if it := events[1].(IterationEvent); it.Nodes != 1920 {
		t.Errorf("perft(2) = %d, want 1920", it.Nodes)
	}
	if best := events[2].(BestMoveEvent); best.BestMove != board.NoMove {
		t.Errorf("perft best move = %s, want 0000", best.BestMove)
	}
}

func TestPerftDivideTotals(t *testing.T) {
	pos := startPosition(t)
	divide := PerftDivide(pos, 2)

	if len(divide) != 44 {
		t.Errorf("root moves = %d, want 44", len(divide))
	}
	var total uint64
	for _, n := range divide {
		total += n
	}
	if total != 1920 {
		t.Errorf("sum of divide = %d, want 1920", total)
	}
}

// TestPerftDepthFloor checks that depths below one terminate: the plain count
// reports the position itself, divide clamps to one ply.
func TestPerftDepthFloor(t *testing.T) {
	pos := startPosition(t)

	if n := Perft(pos, 0); n != 1 {
		t.Errorf("perft(0) = %d, want 1", n)
	}
	if n := Perft(pos, -1); n != 1 {
		t.Errorf("perft(-1) = %d, want 1", n)
	}

	divide := PerftDivide(pos, 0)
	if len(divide) != 44 {
		t.Fatalf("divide(0) roots = %d, want 44", len(divide))
	}
	for move, n := range divide {
		if n != 1 {
			t.Errorf("divide(0)[%s] = %d, want 1", move, n)
		}
	}
}
