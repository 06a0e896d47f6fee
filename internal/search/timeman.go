package search

import "time"

// timeManager allocates thinking time for one search. Adapted from the usual
// optimum/maximum split: the optimum is consulted between iterations, the
// maximum inside the search loop.
type timeManager struct {
	optimum   time.Duration
	maximum   time.Duration
	start     time.Time
	unlimited bool
}

// newTimeManager derives the time budget from the limits for the given side.
func newTimeManager(limits Limits, us int) *timeManager {
	tm := &timeManager{start: time.Now()}

	if limits.MoveTime > 0 {
		budget := limits.MoveTime - limits.MoveOverhead
		if budget < 5*time.Millisecond {
			budget = 5 * time.Millisecond
		}
		tm.optimum = budget
		tm.maximum = budget
		return tm
	}

	if limits.Infinite || limits.Time[us] == 0 {
		tm.unlimited = true
		return tm
	}

	timeLeft := limits.Time[us] - limits.MoveOverhead
	if timeLeft < 0 {
		timeLeft = 0
	}
	inc := limits.Inc[us]

	mtg := limits.MovesToGo
	if mtg == 0 {
		mtg = 30
	}

	baseTime := timeLeft / time.Duration(mtg)
	baseTime += inc * 9 / 10
	tm.optimum = baseTime

	// Maximum: 5x optimum, capped at 80% of the remaining clock.
	tm.maximum = tm.optimum * 5
	if ceiling := timeLeft * 8 / 10; tm.maximum > ceiling {
		tm.maximum = ceiling
	}

	if tm.optimum < 10*time.Millisecond {
		tm.optimum = 10 * time.Millisecond
	}
	if tm.maximum < 20*time.Millisecond {
		tm.maximum = 20 * time.Millisecond
	}

	return tm
}

// restarted returns a copy with the clock reset to now, used when a ponder
// search converts to a normal one on ponderhit. The original is never
// mutated; readers on other goroutines keep a consistent view.
func (tm *timeManager) restarted() *timeManager {
	fresh := *tm
	fresh.start = time.Now()
	return &fresh
}

func (tm *timeManager) elapsed() time.Duration {
	return time.Since(tm.start)
}

// hardStop reports whether the search must stop now.
func (tm *timeManager) hardStop() bool {
	return !tm.unlimited && tm.elapsed() >= tm.maximum
}

// softStop reports whether a new iteration should not be started.
func (tm *timeManager) softStop() bool {
	return !tm.unlimited && tm.elapsed() >= tm.optimum
}
