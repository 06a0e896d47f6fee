package search

import "github.com/hynli/riverfish/internal/board"

// Move ordering: transposition move first, then captures by MVV-LVA, then
// killers, then history. Each searcher owns its ordering state; under Lazy
// SMP the divergence between workers is deliberate.

const (
	scoreTTMove  = 1 << 20
	scoreCapture = 1 << 16
	scoreKiller  = 1 << 12
)

type orderer struct {
	killers [MaxPly][2]board.Move
	history [board.SquareCount][board.SquareCount]int
}

// scoreMoves assigns a sort score to every move in ml.
func (o *orderer) scoreMoves(pos *board.Position, ml *board.MoveList, ply int, ttMove board.Move) []int {
	scores := make([]int, ml.Len())
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		switch {
		case m == ttMove:
			scores[i] = scoreTTMove
		case m.IsCapture(pos):
			victim := pos.PieceAt(m.To()).Value()
			attacker := pos.PieceAt(m.From()).Value()
			scores[i] = scoreCapture + victim*16 - attacker/16
		case ply < MaxPly && (m == o.killers[ply][0] || m == o.killers[ply][1]):
			scores[i] = scoreKiller
		default:
			scores[i] = o.history[m.From()][m.To()]
		}
	}
	return scores
}

// pickMove performs one step of selection sort: moves the best-scored move in
// ml[i:] to index i.
func pickMove(ml *board.MoveList, scores []int, i int) {
	best := i
	for j := i + 1; j < ml.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != i {
		ml.Swap(i, best)
		scores[i], scores[best] = scores[best], scores[i]
	}
}

// noteQuietCutoff records a quiet move that caused a beta cutoff.
func (o *orderer) noteQuietCutoff(m board.Move, ply, depth int) {
	if ply < MaxPly && o.killers[ply][0] != m {
		o.killers[ply][1] = o.killers[ply][0]
		o.killers[ply][0] = m
	}
	o.history[m.From()][m.To()] += depth * depth
}
