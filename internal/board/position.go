package board

import "strings"

// Position represents a complete xiangqi position.
type Position struct {
	// Board is the mailbox: one Piece (or NoPiece) per square.
	Board [SquareCount]Piece

	// Game state
	SideToMove     Color
	HalfMoveClock  int // plies since the last capture
	FullMoveNumber int // full move counter, starts at 1

	// Zobrist hash for the transposition table
	Hash uint64

	// King positions (cached for check detection)
	KingSquare [2]Square
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, _ := ParseFEN(StartFEN)
	return pos
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	return p.Board[sq]
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.Board[sq] == NoPiece
}

// setPiece places a piece on a square and updates the hash.
func (p *Position) setPiece(piece Piece, sq Square) {
	if piece == NoPiece {
		return
	}
	p.Board[sq] = piece
	p.Hash ^= zobristPiece[piece.Color()][piece.Type()][sq]
	if piece.Type() == King {
		p.KingSquare[piece.Color()] = sq
	}
}

// removePiece removes the piece from a square and updates the hash.
func (p *Position) removePiece(sq Square) Piece {
	piece := p.Board[sq]
	if piece == NoPiece {
		return NoPiece
	}
	p.Board[sq] = NoPiece
	p.Hash ^= zobristPiece[piece.Color()][piece.Type()][sq]
	return piece
}

// Undo stores the information needed to take back a move.
type Undo struct {
	Captured      Piece
	HalfMoveClock int
	Hash          uint64
}

// MakeMove applies a move to the position and returns the undo record.
// The move is assumed to be pseudo-legal; legality (own king left in check,
// generals facing) is the caller's concern.
func (p *Position) MakeMove(m Move) Undo {
	undo := Undo{
		HalfMoveClock: p.HalfMoveClock,
		Hash:          p.Hash,
	}

	from, to := m.From(), m.To()
	undo.Captured = p.removePiece(to)
	piece := p.removePiece(from)
	p.setPiece(piece, to)

	if undo.Captured != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	if p.SideToMove == Black {
		p.FullMoveNumber++
	}
	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= zobristSide

	return undo
}

// UnmakeMove takes back a move using its undo record.
func (p *Position) UnmakeMove(m Move, undo Undo) {
	p.SideToMove = p.SideToMove.Other()
	if p.SideToMove == Black {
		p.FullMoveNumber--
	}

	from, to := m.From(), m.To()
	piece := p.Board[to]
	p.Board[to] = undo.Captured
	p.Board[from] = piece
	if piece.Type() == King {
		p.KingSquare[piece.Color()] = from
	}

	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
}

// MakeNullMove passes the turn (used by null-move pruning).
func (p *Position) MakeNullMove() Undo {
	undo := Undo{
		Captured:      NoPiece,
		HalfMoveClock: p.HalfMoveClock,
		Hash:          p.Hash,
	}
	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= zobristSide
	p.HalfMoveClock++
	return undo
}

// UnmakeNullMove takes back a null move.
func (p *Position) UnmakeNullMove(undo Undo) {
	p.SideToMove = p.SideToMove.Other()
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
}

// InCheck returns true if the side to move is in check. The generals facing
// each other on an open file also counts: the side to move could capture the
// enemy king, so the previous move was illegal in that case.
func (p *Position) InCheck() bool {
	return p.KingAttacked(p.SideToMove)
}

// KingAttacked returns true if the given side's king is attacked, including
// by the flying-general rule.
func (p *Position) KingAttacked(c Color) bool {
	king := p.KingSquare[c]
	if !king.IsValid() {
		return false
	}
	if p.kingsFacing() {
		return true
	}
	return p.squareAttacked(king, c.Other())
}

// kingsFacing reports whether the two kings stand on the same file with no
// piece between them.
func (p *Position) kingsFacing() bool {
	rk := p.KingSquare[Red]
	bk := p.KingSquare[Black]
	if !rk.IsValid() || !bk.IsValid() || rk.File() != bk.File() {
		return false
	}
	for sq := rk + FileCount; sq < bk; sq += FileCount {
		if p.Board[sq] != NoPiece {
			return false
		}
	}
	return true
}

// squareAttacked reports whether sq is attacked by any piece of color `by`.
// Only piece types that can ever reach an enemy palace are considered (pawns,
// knights, cannons, rooks); advisors and elephants never leave their own
// territory, and the facing-kings case is handled by kingsFacing.
func (p *Position) squareAttacked(sq Square, by Color) bool {
	f, r := sq.File(), sq.Rank()

	// Pawn attacks: a pawn of `by` one step behind sq (in its moving
	// direction), or beside sq once it has crossed the river.
	var ahead int
	if by == Red {
		ahead = -FileCount // red pawns move up, so an attacker sits below
	} else {
		ahead = FileCount
	}
	if back := int(sq) + ahead; back >= 0 && back < SquareCount {
		if p.Board[back] == NewPiece(Pawn, by) {
			return true
		}
	}
	for _, df := range [2]int{-1, 1} {
		nf := f + df
		if nf < 0 || nf >= FileCount {
			continue
		}
		side := NewSquare(nf, r)
		if p.Board[side] == NewPiece(Pawn, by) && side.CrossedRiver(by) {
			return true
		}
	}

	// Knight attacks, honoring the blocking leg next to the attacker.
	for _, kd := range knightDeltas {
		of, or := f-kd.df, r-kd.dr
		if of < 0 || of >= FileCount || or < 0 || or >= RankCount {
			continue
		}
		origin := NewSquare(of, or)
		if p.Board[origin] != NewPiece(Knight, by) {
			continue
		}
		leg := NewSquare(of+kd.lf, or+kd.lr)
		if p.Board[leg] == NoPiece {
			return true
		}
	}

	// Rook and cannon attacks along the four orthogonal rays.
	for _, d := range [4]struct{ df, dr int }{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		screens := 0
		nf, nr := f+d.df, r+d.dr
		for nf >= 0 && nf < FileCount && nr >= 0 && nr < RankCount {
			piece := p.Board[NewSquare(nf, nr)]
			if piece != NoPiece {
				if screens == 0 {
					if piece == NewPiece(Rook, by) {
						return true
					}
					screens = 1
				} else {
					if piece == NewPiece(Cannon, by) {
						return true
					}
					break
				}
			}
			nf += d.df
			nr += d.dr
		}
	}

	return false
}

// String renders the board as an ASCII diagram, Black's side on top.
func (p *Position) String() string {
	var sb strings.Builder
	for rank := RankCount - 1; rank >= 0; rank-- {
		sb.WriteByte('0' + byte(rank))
		sb.WriteByte(' ')
		for file := 0; file < FileCount; file++ {
			piece := p.Board[NewSquare(file, rank)]
			if piece == NoPiece {
				sb.WriteString(" .")
			} else {
				sb.WriteByte(' ')
				sb.WriteString(piece.String())
			}
		}
		sb.WriteByte('\n')
		if rank == 5 {
			sb.WriteString("   ~ ~ ~ ~ ~ ~ ~ ~ ~\n")
		}
	}
	sb.WriteString("   a b c d e f g h i\n")
	sb.WriteString(p.SideToMove.String())
	sb.WriteString(" to move\n")
	return sb.String()
}
