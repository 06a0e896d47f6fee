package search

import "github.com/hynli/riverfish/internal/board"

// Search score bounds.
const (
	MaxPly    = 64
	MateScore = 30000
	Infinity  = 32000
)

// Positional bonuses. Deliberately small: the kernel's job here is to be a
// well-behaved event producer, not a strong player.
const (
	tempoBonus        = 10
	crossedRiverBonus = 40 // pawns gain sideways mobility past the river
	centralFileBonus  = 8  // rooks, cannons and knights on files d-f
	advancedBonus     = 3  // per rank toward the enemy side, heavy pieces
)

// Evaluate returns a static evaluation in centipawns from the point of view
// of the side to move.
func Evaluate(pos *board.Position) int {
	score := 0

	for sq := board.Square(0); sq < board.SquareCount; sq++ {
		piece := pos.Board[sq]
		if piece == board.NoPiece {
			continue
		}

		v := piece.Value()
		pt := piece.Type()
		c := piece.Color()

		switch pt {
		case board.Pawn:
			if sq.CrossedRiver(c) {
				v += crossedRiverBonus
			}
		case board.Rook, board.Cannon, board.Knight:
			f := sq.File()
			if f >= 3 && f <= 5 {
				v += centralFileBonus
			}
			if c == board.Red {
				v += advancedBonus * sq.Rank()
			} else {
				v += advancedBonus * (board.RankCount - 1 - sq.Rank())
			}
		}

		if c == pos.SideToMove {
			score += v
		} else {
			score -= v
		}
	}

	return score + tempoBonus
}
