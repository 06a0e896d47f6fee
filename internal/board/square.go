// Package board implements the xiangqi board: squares, pieces, moves,
// position state and move generation on the 9x10 grid.
package board

import "fmt"

// Square represents a square on the xiangqi board (0-89).
// Squares are numbered rank by rank from Red's side: A0=0, I0=8, A9=81, I9=89.
type Square uint8

const (
	// NoSquare is the sentinel for "no square".
	NoSquare Square = 90

	// FileCount and RankCount describe the 9x10 board.
	FileCount = 9
	RankCount = 10

	// SquareCount is the number of playable squares.
	SquareCount = FileCount * RankCount
)

// File returns the file (column) of the square (0-8, where 0=a, 8=i).
func (sq Square) File() int {
	return int(sq) % FileCount
}

// Rank returns the rank (row) of the square (0-9, where 0 is Red's back rank).
func (sq Square) Rank() int {
	return int(sq) / FileCount
}

// IsValid returns true if the square is a valid board square (0-89).
func (sq Square) IsValid() bool {
	return sq < SquareCount
}

// String returns the coordinate notation for the square (e.g. "e4").
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '0'+sq.Rank())
}

// NewSquare creates a square from file and rank (0-indexed).
func NewSquare(file, rank int) Square {
	return Square(rank*FileCount + file)
}

// ParseSquare parses coordinate notation (e.g. "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}

	file := int(s[0] - 'a')
	rank := int(s[1] - '0')

	if file < 0 || file >= FileCount || rank < 0 || rank >= RankCount {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}

	return NewSquare(file, rank), nil
}

// InPalace returns true if the square lies inside the palace of the given
// color (files d-f, ranks 0-2 for Red, ranks 7-9 for Black).
func (sq Square) InPalace(c Color) bool {
	f := sq.File()
	if f < 3 || f > 5 {
		return false
	}
	r := sq.Rank()
	if c == Red {
		return r <= 2
	}
	return r >= 7
}

// OwnSide returns true if the square is on the given color's side of the
// river (ranks 0-4 for Red, 5-9 for Black).
func (sq Square) OwnSide(c Color) bool {
	if c == Red {
		return sq.Rank() <= 4
	}
	return sq.Rank() >= 5
}

// CrossedRiver returns true if a piece of the given color on this square has
// crossed the river.
func (sq Square) CrossedRiver(c Color) bool {
	return !sq.OwnSide(c)
}
