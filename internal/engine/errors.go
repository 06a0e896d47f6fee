// Package engine implements the control plane around the search kernel: the
// engine facade, its position and option state, the search lifecycle state
// machine and the callback bridge that delivers progress events to the owner.
package engine

import "errors"

// Sentinel errors returned by the facade. Callers match them with errors.Is;
// wrapped messages carry the offending input. Every error is synchronous: a
// rejected call leaves position, options and engine state untouched.
var (
	// ErrInvalidPosition reports a malformed board setup string.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrIllegalMove reports a syntactically valid move that is not legal in
	// the position it was applied to.
	ErrIllegalMove = errors.New("illegal move")

	// ErrInvalidMoveText reports move text that does not match the
	// file-rank-file-rank notation.
	ErrInvalidMoveText = errors.New("invalid move text")

	// ErrUnknownOption reports an option name that was never declared.
	ErrUnknownOption = errors.New("unknown option")

	// ErrInvalidOptionValue reports an option value that fails to parse for
	// the declared type or falls outside the declared bounds.
	ErrInvalidOptionValue = errors.New("invalid option value")

	// ErrOptionLocked reports a write to a search-immutable option while a
	// search is running.
	ErrOptionLocked = errors.New("option locked while searching")

	// ErrSearchAlreadyRunning reports a call that requires the engine to be
	// idle while a search is in flight.
	ErrSearchAlreadyRunning = errors.New("search already running")
)
