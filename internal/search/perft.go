package search

import "github.com/hynli/riverfish/internal/board"

// Perft counts the leaf nodes of the legal move tree to the given depth.
// Used to validate move generation and as the PerftDepth limit mode.
// Depths below one count the position itself.
func Perft(pos *board.Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		nodes += Perft(pos, depth-1)
		pos.UnmakeMove(move, undo)
	}

	return nodes
}

// PerftDivide returns the perft count per root move, keyed by move text.
// Depths below one are clamped to one, giving each root move a count of 1.
func PerftDivide(pos *board.Position, depth int) map[string]uint64 {
	if depth < 1 {
		depth = 1
	}
	out := make(map[string]uint64)
	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		out[move.String()] = Perft(pos, depth-1)
		pos.UnmakeMove(move, undo)
	}
	return out
}
