package board

// Color represents the color of a piece or player. Red moves first and sits
// on ranks 0-4; FEN uses "w" for Red to stay compatible with UCI tooling.
type Color uint8

const (
	Red Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType represents the type of a xiangqi piece.
type PieceType uint8

const (
	Pawn PieceType = iota
	Advisor
	Elephant
	Knight
	Cannon
	Rook
	King
	NoPieceType PieceType = 7
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Advisor:
		return "Advisor"
	case Elephant:
		return "Elephant"
	case Knight:
		return "Knight"
	case Cannon:
		return "Cannon"
	case Rook:
		return "Rook"
	case King:
		return "King"
	default:
		return "None"
	}
}

// PieceValue returns the material value of each piece type in centipawns.
// The king value is only used as a guard in evaluation.
var PieceValue = [8]int{70, 150, 150, 300, 300, 600, 10000, 0}

// Piece combines PieceType and Color into a single value.
// Encoded as pieceType + color*7.
type Piece uint8

const (
	RedPawn       Piece = Piece(Pawn) + Piece(Red)*7
	RedAdvisor    Piece = Piece(Advisor) + Piece(Red)*7
	RedElephant   Piece = Piece(Elephant) + Piece(Red)*7
	RedKnight     Piece = Piece(Knight) + Piece(Red)*7
	RedCannon     Piece = Piece(Cannon) + Piece(Red)*7
	RedRook       Piece = Piece(Rook) + Piece(Red)*7
	RedKing       Piece = Piece(King) + Piece(Red)*7
	BlackPawn     Piece = Piece(Pawn) + Piece(Black)*7
	BlackAdvisor  Piece = Piece(Advisor) + Piece(Black)*7
	BlackElephant Piece = Piece(Elephant) + Piece(Black)*7
	BlackKnight   Piece = Piece(Knight) + Piece(Black)*7
	BlackCannon   Piece = Piece(Cannon) + Piece(Black)*7
	BlackRook     Piece = Piece(Rook) + Piece(Black)*7
	BlackKing     Piece = Piece(King) + Piece(Black)*7
	NoPiece       Piece = 14
)

// NewPiece creates a Piece from PieceType and Color.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(pt) + Piece(c)*7
}

// Type returns the PieceType of the piece.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 7)
}

// Color returns the Color of the piece.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 7)
}

// String returns the FEN character for the piece.
// Uppercase for Red, lowercase for Black.
func (p Piece) String() string {
	if p >= NoPiece {
		return " "
	}
	chars := "PABNCRKpabncrk"
	return string(chars[p])
}

// PieceFromChar converts a FEN character to a Piece.
func PieceFromChar(c byte) Piece {
	switch c {
	case 'P':
		return RedPawn
	case 'A':
		return RedAdvisor
	case 'B', 'E':
		return RedElephant
	case 'N', 'H':
		return RedKnight
	case 'C':
		return RedCannon
	case 'R':
		return RedRook
	case 'K':
		return RedKing
	case 'p':
		return BlackPawn
	case 'a':
		return BlackAdvisor
	case 'b', 'e':
		return BlackElephant
	case 'n', 'h':
		return BlackKnight
	case 'c':
		return BlackCannon
	case 'r':
		return BlackRook
	case 'k':
		return BlackKing
	default:
		return NoPiece
	}
}

// Value returns the material value of the piece in centipawns.
func (p Piece) Value() int {
	return PieceValue[p.Type()]
}
