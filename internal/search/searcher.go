package search

import (
	"github.com/hynli/riverfish/internal/board"
)

// searcher holds the per-worker search state. Workers share the transposition
// table and the kernel's stop signal; everything else is private.
type searcher struct {
	k   *Kernel
	pos *board.Position

	ord           orderer
	selDepth      int
	lastRootScore int

	pvMoves [MaxPly][MaxPly]board.Move
	pvLen   [MaxPly]int

	nodesSinceCheck int
	aborted         bool
}

func newSearcher(k *Kernel, pos *board.Position) *searcher {
	return &searcher{k: k, pos: pos.Copy()}
}

// pv returns the principal variation from the last completed search.
func (s *searcher) pv() []board.Move {
	out := make([]board.Move, s.pvLen[0])
	copy(out, s.pvMoves[0][:s.pvLen[0]])
	return out
}

// countNode bumps the shared node counter and periodically re-checks the
// abort conditions. Returns true if the search must unwind.
func (s *searcher) countNode() bool {
	s.k.nodes.Add(1)
	s.nodesSinceCheck++
	if s.nodesSinceCheck >= 1024 {
		s.nodesSinceCheck = 0
		if s.k.shouldAbort() {
			s.aborted = true
		}
	}
	return s.aborted
}

// searchRoot runs one alpha-beta iteration at the given depth, skipping the
// excluded root moves (used for MultiPV re-searches). Returns the best move,
// its score and whether the iteration completed without aborting.
func (s *searcher) searchRoot(depth int, rootMoves *board.MoveList, excluded []board.Move) (board.Move, int, bool) {
	s.selDepth = 0
	s.pvLen[0] = 0

	alpha, beta := -Infinity, Infinity
	bestMove := board.NoMove
	bestScore := -Infinity

	scores := s.ord.scoreMoves(s.pos, rootMoves, 0, s.ttMove())

	for i := 0; i < rootMoves.Len(); i++ {
		pickMove(rootMoves, scores, i)
		move := rootMoves.Get(i)
		if containsMove(excluded, move) {
			continue
		}

		undo := s.pos.MakeMove(move)
		score := -s.negamax(depth-1, 1, -beta, -alpha)
		s.pos.UnmakeMove(move, undo)

		if s.aborted {
			return bestMove, bestScore, false
		}

		if score > bestScore {
			bestScore = score
			bestMove = move
			if score > alpha {
				alpha = score
				s.pvMoves[0][0] = move
				copy(s.pvMoves[0][1:], s.pvMoves[1][1:s.pvLen[1]])
				s.pvLen[0] = s.pvLen[1]
				if s.pvLen[0] == 0 {
					s.pvLen[0] = 1
				}
			}
		}
	}

	if bestMove != board.NoMove {
		s.k.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(bestScore, 0), TTExact, bestMove)
	}
	s.lastRootScore = bestScore

	return bestMove, bestScore, true
}

func (s *searcher) ttMove() board.Move {
	if entry, ok := s.k.tt.Probe(s.pos.Hash); ok {
		return entry.BestMove
	}
	return board.NoMove
}

func (s *searcher) negamax(depth, ply, alpha, beta int) int {
	if ply >= MaxPly-1 {
		return Evaluate(s.pos)
	}
	if s.countNode() {
		return 0
	}
	if ply > s.selDepth {
		s.selDepth = ply
	}
	s.pvLen[ply] = ply

	// Long sequences without a capture end in a draw.
	if s.pos.HalfMoveClock >= 120 {
		return 0
	}

	// Transposition table probe.
	ttMove := board.NoMove
	if entry, ok := s.k.tt.Probe(s.pos.Hash); ok {
		ttMove = entry.BestMove
		if int(entry.Depth) >= depth && ply > 0 {
			score := AdjustScoreFromTT(int(entry.Score), ply)
			switch entry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score > alpha {
					alpha = score
				}
			case TTUpperBound:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
	}

	if depth <= 0 {
		return s.quiescence(ply, alpha, beta)
	}

	inCheck := s.pos.InCheck()

	// Null-move pruning. Skipped in check and at shallow depth.
	if !inCheck && depth >= 3 && beta < MateScore-MaxPly {
		undo := s.pos.MakeNullMove()
		r := 2 + depth/4
		score := -s.negamax(depth-1-r, ply+1, -beta, -beta+1)
		s.pos.UnmakeNullMove(undo)
		if s.aborted {
			return 0
		}
		if score >= beta {
			return beta
		}
	}

	moves := s.pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		// Checkmate and stalemate are both losses in xiangqi.
		return -MateScore + ply
	}

	scores := s.ord.scoreMoves(s.pos, moves, ply, ttMove)

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := TTUpperBound

	newDepth := depth - 1
	if inCheck {
		newDepth = depth // check extension
	}

	for i := 0; i < moves.Len(); i++ {
		pickMove(moves, scores, i)
		move := moves.Get(i)
		isCapture := move.IsCapture(s.pos)

		undo := s.pos.MakeMove(move)
		score := -s.negamax(newDepth, ply+1, -beta, -alpha)
		s.pos.UnmakeMove(move, undo)

		if s.aborted {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move
			if score > alpha {
				alpha = score
				flag = TTExact
				s.pvMoves[ply][ply] = move
				copy(s.pvMoves[ply][ply+1:], s.pvMoves[ply+1][ply+1:s.pvLen[ply+1]])
				s.pvLen[ply] = s.pvLen[ply+1]
				if s.pvLen[ply] <= ply {
					s.pvLen[ply] = ply + 1
				}
			}
		}

		if score >= beta {
			s.k.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(score, ply), TTLowerBound, move)
			if !isCapture {
				s.ord.noteQuietCutoff(move, ply, depth)
			}
			return score
		}
	}

	s.k.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove)
	return bestScore
}

// quiescence searches captures only, to settle tactical noise at the horizon.
func (s *searcher) quiescence(ply, alpha, beta int) int {
	if ply >= MaxPly-1 {
		return Evaluate(s.pos)
	}
	if s.countNode() {
		return 0
	}
	if ply > s.selDepth {
		s.selDepth = ply
	}
	s.pvLen[ply] = ply

	standPat := Evaluate(s.pos)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	moves := s.pos.GenerateLegalCaptures()
	scores := s.ord.scoreMoves(s.pos, moves, ply, board.NoMove)

	for i := 0; i < moves.Len(); i++ {
		pickMove(moves, scores, i)
		move := moves.Get(i)

		undo := s.pos.MakeMove(move)
		score := -s.quiescence(ply+1, -beta, -alpha)
		s.pos.UnmakeMove(move, undo)

		if s.aborted {
			return 0
		}

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}

func containsMove(moves []board.Move, m board.Move) bool {
	for _, x := range moves {
		if x == m {
			return true
		}
	}
	return false
}
