package board

// Move generation for all seven piece types. Pseudo-legal moves respect piece
// movement rules (palace, river, screens, legs); legal moves additionally
// leave the mover's king safe and the generals not facing.

// knightDeltas enumerates the eight knight destinations together with the
// blocking "leg" square relative to the origin.
var knightDeltas = [8]struct{ df, dr, lf, lr int }{
	{1, 2, 0, 1}, {-1, 2, 0, 1},
	{1, -2, 0, -1}, {-1, -2, 0, -1},
	{2, 1, 1, 0}, {2, -1, 1, 0},
	{-2, 1, -1, 0}, {-2, -1, -1, 0},
}

var elephantDeltas = [4]struct{ df, dr int }{{2, 2}, {-2, 2}, {2, -2}, {-2, -2}}
var advisorDeltas = [4]struct{ df, dr int }{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
var orthoDeltas = [4]struct{ df, dr int }{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// GeneratePseudoLegal fills ml with all pseudo-legal moves for the side to
// move. capturesOnly restricts output to captures (used by quiescence).
func (p *Position) GeneratePseudoLegal(ml *MoveList, capturesOnly bool) {
	us := p.SideToMove
	for sq := Square(0); sq < SquareCount; sq++ {
		piece := p.Board[sq]
		if piece == NoPiece || piece.Color() != us {
			continue
		}
		switch piece.Type() {
		case Pawn:
			p.genPawn(ml, sq, us, capturesOnly)
		case Advisor:
			p.genStepper(ml, sq, us, advisorDeltas[:], capturesOnly, func(to Square) bool {
				return to.InPalace(us)
			})
		case Elephant:
			p.genElephant(ml, sq, us, capturesOnly)
		case Knight:
			p.genKnight(ml, sq, us, capturesOnly)
		case Cannon:
			p.genCannon(ml, sq, us, capturesOnly)
		case Rook:
			p.genRook(ml, sq, us, capturesOnly)
		case King:
			p.genStepper(ml, sq, us, orthoDeltas[:], capturesOnly, func(to Square) bool {
				return to.InPalace(us)
			})
		}
	}
}

func (p *Position) addMove(ml *MoveList, from, to Square, us Color, capturesOnly bool) {
	target := p.Board[to]
	if target != NoPiece && target.Color() == us {
		return
	}
	if capturesOnly && target == NoPiece {
		return
	}
	ml.Add(NewMove(from, to))
}

func (p *Position) genPawn(ml *MoveList, sq Square, us Color, capturesOnly bool) {
	f, r := sq.File(), sq.Rank()

	forward := 1
	if us == Black {
		forward = -1
	}
	if nr := r + forward; nr >= 0 && nr < RankCount {
		p.addMove(ml, sq, NewSquare(f, nr), us, capturesOnly)
	}

	// Sideways steps only after crossing the river.
	if sq.CrossedRiver(us) {
		for _, df := range [2]int{-1, 1} {
			if nf := f + df; nf >= 0 && nf < FileCount {
				p.addMove(ml, sq, NewSquare(nf, r), us, capturesOnly)
			}
		}
	}
}

func (p *Position) genStepper(ml *MoveList, sq Square, us Color, deltas []struct{ df, dr int }, capturesOnly bool, allowed func(Square) bool) {
	f, r := sq.File(), sq.Rank()
	for _, d := range deltas {
		nf, nr := f+d.df, r+d.dr
		if nf < 0 || nf >= FileCount || nr < 0 || nr >= RankCount {
			continue
		}
		to := NewSquare(nf, nr)
		if !allowed(to) {
			continue
		}
		p.addMove(ml, sq, to, us, capturesOnly)
	}
}

func (p *Position) genElephant(ml *MoveList, sq Square, us Color, capturesOnly bool) {
	f, r := sq.File(), sq.Rank()
	for _, d := range elephantDeltas {
		nf, nr := f+d.df, r+d.dr
		if nf < 0 || nf >= FileCount || nr < 0 || nr >= RankCount {
			continue
		}
		to := NewSquare(nf, nr)
		if !to.OwnSide(us) {
			continue // elephants never cross the river
		}
		eye := NewSquare(f+d.df/2, r+d.dr/2)
		if p.Board[eye] != NoPiece {
			continue // blocked elephant eye
		}
		p.addMove(ml, sq, to, us, capturesOnly)
	}
}

func (p *Position) genKnight(ml *MoveList, sq Square, us Color, capturesOnly bool) {
	f, r := sq.File(), sq.Rank()
	for _, kd := range knightDeltas {
		nf, nr := f+kd.df, r+kd.dr
		if nf < 0 || nf >= FileCount || nr < 0 || nr >= RankCount {
			continue
		}
		leg := NewSquare(f+kd.lf, r+kd.lr)
		if p.Board[leg] != NoPiece {
			continue // hobbled knight
		}
		p.addMove(ml, sq, NewSquare(nf, nr), us, capturesOnly)
	}
}

func (p *Position) genRook(ml *MoveList, sq Square, us Color, capturesOnly bool) {
	f, r := sq.File(), sq.Rank()
	for _, d := range orthoDeltas {
		nf, nr := f+d.df, r+d.dr
		for nf >= 0 && nf < FileCount && nr >= 0 && nr < RankCount {
			to := NewSquare(nf, nr)
			target := p.Board[to]
			if target == NoPiece {
				if !capturesOnly {
					ml.Add(NewMove(sq, to))
				}
			} else {
				if target.Color() != us {
					ml.Add(NewMove(sq, to))
				}
				break
			}
			nf += d.df
			nr += d.dr
		}
	}
}

func (p *Position) genCannon(ml *MoveList, sq Square, us Color, capturesOnly bool) {
	f, r := sq.File(), sq.Rank()
	for _, d := range orthoDeltas {
		nf, nr := f+d.df, r+d.dr
		jumped := false
		for nf >= 0 && nf < FileCount && nr >= 0 && nr < RankCount {
			to := NewSquare(nf, nr)
			target := p.Board[to]
			if !jumped {
				if target == NoPiece {
					if !capturesOnly {
						ml.Add(NewMove(sq, to))
					}
				} else {
					jumped = true // found the screen, look for a capture beyond it
				}
			} else if target != NoPiece {
				if target.Color() != us {
					ml.Add(NewMove(sq, to))
				}
				break
			}
			nf += d.df
			nr += d.dr
		}
	}
}

// GenerateLegalMoves returns all legal moves for the side to move.
func (p *Position) GenerateLegalMoves() *MoveList {
	var pseudo MoveList
	p.GeneratePseudoLegal(&pseudo, false)
	return p.filterLegal(&pseudo)
}

// GenerateLegalCaptures returns all legal capturing moves for the side to move.
func (p *Position) GenerateLegalCaptures() *MoveList {
	var pseudo MoveList
	p.GeneratePseudoLegal(&pseudo, true)
	return p.filterLegal(&pseudo)
}

func (p *Position) filterLegal(pseudo *MoveList) *MoveList {
	legal := &MoveList{}
	us := p.SideToMove
	for i := 0; i < pseudo.Len(); i++ {
		m := pseudo.Get(i)
		undo := p.MakeMove(m)
		if !p.KingAttacked(us) {
			legal.Add(m)
		}
		p.UnmakeMove(m, undo)
	}
	return legal
}

// IsLegal reports whether the move is legal in this position.
func (p *Position) IsLegal(m Move) bool {
	return p.GenerateLegalMoves().Contains(m)
}
