package board

// Zobrist hashing tables, filled deterministically at init time so hashes are
// stable across runs (required for persisted hash snapshots).

var (
	zobristPiece [2][7][SquareCount]uint64
	zobristSide  uint64
)

// splitmix64 is a small deterministic PRNG used only to fill the tables.
type splitmix64 uint64

func (s *splitmix64) next() uint64 {
	*s += 0x9E3779B97F4A7C15
	z := uint64(*s)
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func init() {
	rng := splitmix64(0x1234567890ABCDEF)
	for c := 0; c < 2; c++ {
		for pt := 0; pt < 7; pt++ {
			for sq := 0; sq < SquareCount; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	zobristSide = rng.next()
}

// ComputeHash computes the Zobrist hash for the position from scratch.
func (p *Position) ComputeHash() uint64 {
	var hash uint64

	for sq := Square(0); sq < SquareCount; sq++ {
		piece := p.Board[sq]
		if piece != NoPiece {
			hash ^= zobristPiece[piece.Color()][piece.Type()][sq]
		}
	}

	if p.SideToMove == Black {
		hash ^= zobristSide
	}

	return hash
}
