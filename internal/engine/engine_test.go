package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hynli/riverfish/internal/board"
	"github.com/hynli/riverfish/internal/search"
)

func TestNewEngineDefaults(t *testing.T) {
	e := New()
	defer e.Close()

	if e.State() != Idle {
		t.Errorf("initial state = %v, want Idle", e.State())
	}
	if e.Fen() != board.StartFEN {
		t.Errorf("initial position = %q, want start position", e.Fen())
	}
	if e.BestMove() != board.NoMove {
		t.Error("best move set before any search")
	}
	if got := e.Options().GetInt("Hash"); got != 64 {
		t.Errorf("default Hash = %d, want 64", got)
	}
}

func TestSetPosition(t *testing.T) {
	e := New()
	defer e.Close()

	if err := e.SetPosition(board.StartFEN, "h2e2", "h9g7"); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	fen := e.Fen()

	t.Run("invalid fen keeps position", func(t *testing.T) {
		err := e.SetPosition("not a fen")
		if !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("err = %v, want ErrInvalidPosition", err)
		}
		if e.Fen() != fen {
			t.Error("position changed on rejected setup")
		}
	})

	t.Run("bad move text keeps position", func(t *testing.T) {
		err := e.SetPosition(board.StartFEN, "h2e2", "zz99")
		if !errors.Is(err, ErrInvalidMoveText) {
			t.Errorf("err = %v, want ErrInvalidMoveText", err)
		}
		if e.Fen() != fen {
			t.Error("position changed on rejected setup")
		}
	})

	t.Run("illegal move keeps position", func(t *testing.T) {
		err := e.SetPosition(board.StartFEN, "e0e5")
		if !errors.Is(err, ErrIllegalMove) {
			t.Errorf("err = %v, want ErrIllegalMove", err)
		}
		if e.Fen() != fen {
			t.Error("position changed on rejected setup")
		}
	})
}

func TestApplyMove(t *testing.T) {
	e := New()
	defer e.Close()

	if err := e.ApplyMove("h2e2"); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	fen := e.Fen()

	if err := e.ApplyMove("h2e2"); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("replaying the same red move: err = %v, want ErrIllegalMove", err)
	}
	if e.Fen() != fen {
		t.Error("position changed on rejected move")
	}
}

func TestOptionValidation(t *testing.T) {
	e := New()
	defer e.Close()
	opts := e.Options()

	if err := opts.Set("NoSuchOption", "1"); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("unknown option: err = %v", err)
	}
	if err := opts.Set("Hash", "0"); !errors.Is(err, ErrInvalidOptionValue) {
		t.Errorf("below minimum: err = %v", err)
	}
	if err := opts.Set("Hash", "99999"); !errors.Is(err, ErrInvalidOptionValue) {
		t.Errorf("above maximum: err = %v", err)
	}
	if err := opts.Set("Hash", "banana"); !errors.Is(err, ErrInvalidOptionValue) {
		t.Errorf("not a number: err = %v", err)
	}
	if err := opts.Set("Ponder", "maybe"); !errors.Is(err, ErrInvalidOptionValue) {
		t.Errorf("not a boolean: err = %v", err)
	}

	// A valid write completes with its side effect applied.
	if err := opts.Set("Hash", "16"); err != nil {
		t.Fatalf("Set Hash 16: %v", err)
	}
	if got := opts.GetInt("Hash"); got != 16 {
		t.Errorf("Hash = %d after set, want 16", got)
	}
	if e.Kernel().TT().Size() == 0 {
		t.Error("hash resize hook did not run")
	}
}

func TestSearchLifecycle(t *testing.T) {
	e := New()
	defer e.Close()

	if err := e.GoInfinite(); err != nil {
		t.Fatalf("GoInfinite: %v", err)
	}
	if e.State() != Searching {
		t.Errorf("state = %v, want Searching", e.State())
	}

	// A second search and the guarded operations fail while running.
	if err := e.GoDepth(1); !errors.Is(err, ErrSearchAlreadyRunning) {
		t.Errorf("second Go: err = %v", err)
	}
	if err := e.SetPosition(board.StartFEN); !errors.Is(err, ErrSearchAlreadyRunning) {
		t.Errorf("SetPosition while searching: err = %v", err)
	}
	if err := e.ClearHash(); !errors.Is(err, ErrSearchAlreadyRunning) {
		t.Errorf("ClearHash while searching: err = %v", err)
	}
	if err := e.Options().Set("Hash", "32"); !errors.Is(err, ErrOptionLocked) {
		t.Errorf("Hash while searching: err = %v", err)
	}
	if err := e.Options().Set("Threads", "2"); !errors.Is(err, ErrOptionLocked) {
		t.Errorf("Threads while searching: err = %v", err)
	}
	// MultiPV is not search-locked.
	if err := e.Options().Set("MultiPV", "2"); err != nil {
		t.Errorf("MultiPV while searching: %v", err)
	}

	e.Stop()
	e.WaitForSearchFinished()

	if e.State() != Idle {
		t.Errorf("state after stop+wait = %v, want Idle", e.State())
	}
	if e.BestMove() == board.NoMove {
		t.Error("no best move recorded after the search")
	}

	// Stop when idle is a no-op.
	e.Stop()
	e.WaitForSearchFinished()
}

// TestPonderLifecycle drives the ponder flow through the facade: no limit
// applies while pondering, PonderHit starts the clock, and exactly one
// best-move event closes the search.
func TestPonderLifecycle(t *testing.T) {
	e := New()
	defer e.Close()

	var mu sync.Mutex
	bests := 0
	e.OnBestMove(func(search.BestMoveEvent) {
		mu.Lock()
		bests++
		mu.Unlock()
	})
	e.OnIteration(func(search.IterationEvent) {
		// The stats tracker in the UCI binary reads the clock from this
		// handler mid-search; keep doing the same here.
		e.Kernel().Elapsed()
	})

	if err := e.Go(search.Limits{MoveTime: 20 * time.Millisecond, Ponder: true}); err != nil {
		t.Fatal(err)
	}

	// Well past the move time; the budget must not apply yet.
	time.Sleep(120 * time.Millisecond)
	if e.State() == Idle {
		t.Fatal("ponder search terminated before ponderhit")
	}

	e.PonderHit()
	e.WaitForSearchFinished()

	if e.State() != Idle {
		t.Errorf("state after ponderhit+wait = %v, want Idle", e.State())
	}
	if e.BestMove() == board.NoMove {
		t.Error("no best move recorded after the ponder search")
	}

	mu.Lock()
	defer mu.Unlock()
	if bests != 1 {
		t.Errorf("best move events = %d, want exactly 1", bests)
	}
}

// TestStopDoesNotLeakIntoNextSearch interleaves stop requests with fresh
// searches: a stop aimed at a finished search must never cancel the one
// started after it.
func TestStopDoesNotLeakIntoNextSearch(t *testing.T) {
	e := New()
	defer e.Close()

	var mu sync.Mutex
	iterations := 0
	e.OnIteration(func(search.IterationEvent) {
		mu.Lock()
		iterations++
		mu.Unlock()
	})

	for round := 0; round < 10; round++ {
		if err := e.GoInfinite(); err != nil {
			t.Fatal(err)
		}
		e.Stop()
		e.WaitForSearchFinished()

		mu.Lock()
		iterations = 0
		mu.Unlock()

		if err := e.GoDepth(3); err != nil {
			t.Fatal(err)
		}
		e.WaitForSearchFinished()

		mu.Lock()
		n := iterations
		mu.Unlock()
		if n != 3 {
			t.Fatalf("round %d: depth iterations = %d, want 3", round, n)
		}
	}
}

// TestEventOrdering runs a depth-limited search and verifies the handler
// ordering guarantees: FIFO delivery, no concurrent handlers, best move last.
func TestEventOrdering(t *testing.T) {
	e := New()
	defer e.Close()

	var mu sync.Mutex
	var kinds []string
	record := func(kind string) {
		mu.Lock()
		kinds = append(kinds, kind)
		mu.Unlock()
	}

	e.OnIteration(func(search.IterationEvent) { record("iteration") })
	e.OnShortUpdate(func(search.ShortUpdate) { record("short") })
	e.OnFullUpdate(func(up search.FullUpdate) {
		if len(up.PV) == 0 {
			t.Error("full update without a PV")
		}
		record("full")
	})
	e.OnBestMove(func(ev search.BestMoveEvent) { record("best") })

	if err := e.GoDepth(2); err != nil {
		t.Fatal(err)
	}
	e.WaitForSearchFinished()

	mu.Lock()
	defer mu.Unlock()

	if len(kinds) == 0 {
		t.Fatal("no handler calls")
	}
	if kinds[len(kinds)-1] != "best" {
		t.Errorf("last handler call = %q, want best", kinds[len(kinds)-1])
	}
	bests := 0
	for _, k := range kinds {
		if k == "best" {
			bests++
		}
	}
	if bests != 1 {
		t.Errorf("best move handler ran %d times, want 1", bests)
	}

	// Every short update is followed by its full update before anything else.
	for i, k := range kinds {
		if k == "short" {
			if i+1 >= len(kinds) || kinds[i+1] != "full" {
				t.Error("short update not immediately followed by its full update")
				break
			}
		}
	}
}

func TestHandlerLastRegistrationWins(t *testing.T) {
	e := New()
	defer e.Close()

	var mu sync.Mutex
	first, second := 0, 0

	e.OnBestMove(func(search.BestMoveEvent) { mu.Lock(); first++; mu.Unlock() })
	e.OnBestMove(func(search.BestMoveEvent) { mu.Lock(); second++; mu.Unlock() })

	if err := e.GoDepth(1); err != nil {
		t.Fatal(err)
	}
	e.WaitForSearchFinished()

	mu.Lock()
	defer mu.Unlock()
	if first != 0 {
		t.Error("replaced handler still ran")
	}
	if second != 1 {
		t.Errorf("current handler ran %d times, want 1", second)
	}
}

func TestNilHandlerDisables(t *testing.T) {
	e := New()
	defer e.Close()

	called := false
	e.OnBestMove(func(search.BestMoveEvent) { called = true })
	e.OnBestMove(nil)

	if err := e.GoDepth(1); err != nil {
		t.Fatal(err)
	}
	e.WaitForSearchFinished()

	if called {
		t.Error("disabled handler ran")
	}
	// The facade accessor still observes the result.
	if e.BestMove() == board.NoMove {
		t.Error("BestMove not recorded with the handler disabled")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	e := New()

	if err := e.GoInfinite(); err != nil {
		t.Fatal(err)
	}
	e.Close()
	e.Close()

	if e.State() != Idle {
		t.Errorf("state after Close = %v, want Idle", e.State())
	}
}

func TestPerftThroughFacade(t *testing.T) {
	e := New()
	defer e.Close()

	nodes, err := e.Perft(2)
	if err != nil {
		t.Fatal(err)
	}
	if nodes != 1920 {
		t.Errorf("perft(2) = %d, want 1920", nodes)
	}

	divide, err := e.PerftDivide(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(divide) != 44 {
		t.Errorf("perft divide roots = %d, want 44", len(divide))
	}

	t.Run("zero depth", func(t *testing.T) {
		nodes, err := e.Perft(0)
		if err != nil {
			t.Fatal(err)
		}
		if nodes != 1 {
			t.Errorf("perft(0) = %d, want 1", nodes)
		}

		divide, err := e.PerftDivide(0)
		if err != nil {
			t.Fatal(err)
		}
		if len(divide) != 44 {
			t.Errorf("divide(0) roots = %d, want 44", len(divide))
		}
		for move, n := range divide {
			if n != 1 {
				t.Errorf("divide(0)[%s] = %d, want 1", move, n)
			}
		}
	})
}

func TestGoAppliesOptionDefaults(t *testing.T) {
	e := New()
	defer e.Close()

	if err := e.Options().Set("MultiPV", "3"); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	maxPV := 0
	e.OnShortUpdate(func(up search.ShortUpdate) {
		mu.Lock()
		if up.MultiPV > maxPV {
			maxPV = up.MultiPV
		}
		mu.Unlock()
	})

	if err := e.GoDepth(2); err != nil {
		t.Fatal(err)
	}
	e.WaitForSearchFinished()

	mu.Lock()
	defer mu.Unlock()
	if maxPV != 3 {
		t.Errorf("ranked lines reported = %d, want 3", maxPV)
	}
}

func TestStopDeliversBestMovePromptly(t *testing.T) {
	e := New()
	defer e.Close()

	got := make(chan board.Move, 1)
	e.OnBestMove(func(ev search.BestMoveEvent) { got <- ev.BestMove })

	if err := e.GoInfinite(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	e.Stop()

	select {
	case m := <-got:
		if m == board.NoMove {
			t.Error("stopped search reported no move")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("best move never delivered after stop")
	}
	e.WaitForSearchFinished()
}
