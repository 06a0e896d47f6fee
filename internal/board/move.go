package board

import "fmt"

// Move encodes a xiangqi move in 14 bits:
// bits 0-6:  from square (0-89)
// bits 7-13: to square (0-89)
// Xiangqi has no promotions, castling or en passant, so the two squares
// describe the move completely.
type Move uint16

const (
	// NoMove represents the absence of a move.
	NoMove Move = 0

	// NullMove is the pass move used by null-move pruning. Both packed
	// squares are NoSquare, which keeps it outside the encodable range of
	// real moves.
	NullMove Move = Move(NoSquare) | Move(NoSquare)<<7
)

// NewMove creates a move from origin and destination squares.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<7
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x7F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 7) & 0x7F)
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture(pos *Position) bool {
	return !pos.IsEmpty(m.To())
}

// String returns the coordinate notation of the move (e.g. "h2e2").
// NoMove renders as "0000", matching the protocol's empty best move.
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	if m == NullMove {
		return "null"
	}
	return m.From().String() + m.To().String()
}

// ParseMove parses coordinate notation into a Move. It only checks the
// notation pattern; legality in a position is a separate concern handled by
// move generation.
func ParseMove(s string) (Move, error) {
	if len(s) != 4 {
		return NoMove, fmt.Errorf("invalid move text: %q", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("invalid move text: %q", s)
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("invalid move text: %q", s)
	}

	return NewMove(from, to), nil
}

// MoveList is a fixed-size list of moves to avoid allocations.
// 128 covers the densest legal xiangqi positions with room to spare.
type MoveList struct {
	moves [128]Move
	count int
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
