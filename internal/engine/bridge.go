package engine

import (
	"sync"

	"github.com/hynli/riverfish/internal/search"
)

// Bridge delivers kernel events to the caller's handlers. One handler slot
// per event kind; the last registration wins and a nil handler disables
// delivery. Events are dispatched by a single goroutine per search in the
// order the kernel produced them, so handlers never run concurrently and the
// best-move event is always last.
type Bridge struct {
	mu          sync.RWMutex
	onIteration func(search.IterationEvent)
	onShort     func(search.ShortUpdate)
	onFull      func(search.FullUpdate)
	onBest      func(search.BestMoveEvent)

	// internalBest runs before the caller's best-move handler; the facade
	// uses it to record the last best move.
	internalBest func(search.BestMoveEvent)
}

// OnIteration registers the iteration handler.
func (b *Bridge) OnIteration(h func(search.IterationEvent)) {
	b.mu.Lock()
	b.onIteration = h
	b.mu.Unlock()
}

// OnShortUpdate registers the short update handler.
func (b *Bridge) OnShortUpdate(h func(search.ShortUpdate)) {
	b.mu.Lock()
	b.onShort = h
	b.mu.Unlock()
}

// OnFullUpdate registers the full update handler.
func (b *Bridge) OnFullUpdate(h func(search.FullUpdate)) {
	b.mu.Lock()
	b.onFull = h
	b.mu.Unlock()
}

// OnBestMove registers the best move handler.
func (b *Bridge) OnBestMove(h func(search.BestMoveEvent)) {
	b.mu.Lock()
	b.onBest = h
	b.mu.Unlock()
}

// disableAll drops every handler. Called during teardown, after the producer
// is confirmed stopped, so no handler can fire afterwards.
func (b *Bridge) disableAll() {
	b.mu.Lock()
	b.onIteration = nil
	b.onShort = nil
	b.onFull = nil
	b.onBest = nil
	b.internalBest = nil
	b.mu.Unlock()
}

// drain dispatches events until the channel closes. Runs on the dispatcher
// goroutine owned by the controller.
func (b *Bridge) drain(events <-chan search.Event) {
	for ev := range events {
		b.dispatch(ev)
	}
}

func (b *Bridge) dispatch(ev search.Event) {
	// Snapshot the handlers so a handler may re-register without deadlock.
	b.mu.RLock()
	onIteration := b.onIteration
	onShort := b.onShort
	onFull := b.onFull
	onBest := b.onBest
	internalBest := b.internalBest
	b.mu.RUnlock()

	switch e := ev.(type) {
	case search.IterationEvent:
		if onIteration != nil {
			onIteration(e)
		}
	case search.ShortUpdate:
		if onShort != nil {
			onShort(e)
		}
	case search.FullUpdate:
		if onFull != nil {
			onFull(e)
		}
	case search.BestMoveEvent:
		if internalBest != nil {
			internalBest(e)
		}
		if onBest != nil {
			onBest(e)
		}
	}
}
