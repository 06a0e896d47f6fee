package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the xiangqi starting position.
const StartFEN = "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w - - 0 1"

// ParseFEN parses a xiangqi FEN string and returns a Position.
// The dialect follows the engine protocol: ten ranks from Black's back rank
// down to Red's, "w" (Red) or "b" to move, then the conventional filler
// fields, half-move clock and full-move number.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid FEN: need at least 2 fields, got %d", len(parts))
	}

	pos := &Position{FullMoveNumber: 1}
	pos.KingSquare[Red] = NoSquare
	pos.KingSquare[Black] = NoSquare
	for sq := range pos.Board {
		pos.Board[sq] = NoPiece
	}

	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w", "r":
		pos.SideToMove = Red
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("invalid side to move: %q", parts[1])
	}

	// Fields 2 and 3 are fillers kept for FEN compatibility; ignore them.

	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil || hmc < 0 {
			return nil, fmt.Errorf("invalid half-move clock: %q", parts[4])
		}
		pos.HalfMoveClock = hmc
	}

	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return nil, fmt.Errorf("invalid full-move number: %q", parts[5])
		}
		pos.FullMoveNumber = fmn
	}

	if !pos.KingSquare[Red].IsValid() || !pos.KingSquare[Black].IsValid() {
		return nil, fmt.Errorf("invalid FEN: both kings must be present")
	}

	pos.Hash = pos.ComputeHash()
	return pos, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != RankCount {
		return fmt.Errorf("invalid piece placement: need %d ranks, got %d", RankCount, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := RankCount - 1 - i // FEN starts from rank 9
		file := 0

		for _, c := range rankStr {
			if file >= FileCount && (c < '1' || c > '9') {
				return fmt.Errorf("too many squares in rank %d", rank)
			}

			if c >= '1' && c <= '9' {
				file += int(c - '0')
				if file > FileCount {
					return fmt.Errorf("too many squares in rank %d", rank)
				}
			} else {
				if file >= FileCount {
					return fmt.Errorf("too many squares in rank %d", rank)
				}
				piece := PieceFromChar(byte(c))
				if piece == NoPiece {
					return fmt.Errorf("invalid piece character: %q", c)
				}
				sq := NewSquare(file, rank)
				if piece.Type() == King {
					if pos.KingSquare[piece.Color()].IsValid() {
						return fmt.Errorf("duplicate %s king", piece.Color())
					}
					if !sq.InPalace(piece.Color()) {
						return fmt.Errorf("%s king outside palace at %s", piece.Color(), sq)
					}
				}
				pos.Board[sq] = piece
				if piece.Type() == King {
					pos.KingSquare[piece.Color()] = sq
				}
				file++
			}
		}

		if file != FileCount {
			return fmt.Errorf("invalid number of squares in rank %d: got %d", rank, file)
		}
	}

	return nil
}

// ToFEN returns the FEN representation of the position.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	for rank := RankCount - 1; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < FileCount; file++ {
			piece := p.Board[NewSquare(file, rank)]
			if piece == NoPiece {
				empty++
			} else {
				if empty > 0 {
					sb.WriteString(strconv.Itoa(empty))
					empty = 0
				}
				sb.WriteString(piece.String())
			}
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == Red {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteString(" - - ")
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}
