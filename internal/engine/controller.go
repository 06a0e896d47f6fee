package engine

import (
	"sync"
	"sync/atomic"

	"github.com/hynli/riverfish/internal/board"
	"github.com/hynli/riverfish/internal/search"
)

// State is the engine lifecycle state.
type State int32

const (
	// Idle means no search is in flight. The initial state, re-entered after
	// every search.
	Idle State = iota
	// Searching means a search goroutine is running.
	Searching
	// StoppingRequested means Stop was called and the kernel is winding down.
	StoppingRequested
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case StoppingRequested:
		return "stopping"
	default:
		return "unknown"
	}
}

// eventBuffer is the capacity of the per-search event channel. The kernel
// produces a handful of events per iteration, so this absorbs bursts without
// the producer ever waiting on a healthy consumer.
const eventBuffer = 256

// controller owns the search lifecycle: at most one outstanding search,
// cooperative stop, and the wait primitive. State transitions are serialized
// through the mutex; reads go through the atomic.
type controller struct {
	kernel *search.Kernel
	bridge *Bridge

	state atomic.Int32

	mu   sync.Mutex
	done chan struct{} // closed once the current search is fully drained
}

func newController(kernel *search.Kernel, bridge *Bridge) *controller {
	return &controller{kernel: kernel, bridge: bridge}
}

// State returns the current lifecycle state.
func (c *controller) State() State {
	return State(c.state.Load())
}

// start launches a search on a private copy of pos. It returns immediately;
// progress arrives through the bridge. Fails when a search is already in
// flight.
func (c *controller) start(pos *board.Position, limits search.Limits) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if State(c.state.Load()) != Idle {
		return ErrSearchAlreadyRunning
	}

	events := make(chan search.Event, eventBuffer)
	done := make(chan struct{})
	c.done = done
	c.state.Store(int32(Searching))

	// Producer: the kernel runs here and emits into the channel. Closing the
	// channel marks the end of the event stream for this invocation.
	go func() {
		c.kernel.Search(pos, limits, func(ev search.Event) {
			events <- ev
		})
		close(events)
	}()

	// Dispatcher: drains in FIFO order, then completes the transition to
	// Idle. The state flips only after the final BestMoveEvent has been
	// delivered, so a caller woken by Wait observes the event ordering the
	// bridge guarantees.
	go func() {
		c.bridge.drain(events)
		c.state.Store(int32(Idle))
		close(done)
	}()

	return nil
}

// requestStop signals the kernel to stop. Idempotent: calling it while
// already stopping or idle has no effect. Serialized with start through the
// mutex so a stale stop signal can never reach a search launched afterwards.
func (c *controller) requestStop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.CompareAndSwap(int32(Searching), int32(StoppingRequested)) {
		c.kernel.Stop()
	}
}

// wait blocks until the current search (if any) has terminated and all its
// events have been delivered. A no-op when idle.
func (c *controller) wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}
