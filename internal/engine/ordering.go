package engine

import (
	"github.com/hailam/sonic/internal/board"
)

// Move ordering priorities, highest searched first.
const (
	TTMoveScore    = 1_000_000
	PromotionScore = 500_000
	CaptureScore   = 100_000
	QuietScore     = 0
)

// MVV-LVA: victim value * 10 minus attacker value, so any capture of a
// bigger piece outranks every capture of a smaller one.
var mvvLva = [6][6]int{
	//       P   N   B   R   Q   K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {35, 34, 34, 33, 32, 31},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {55, 54, 54, 53, 52, 51},
	/* Q */ {95, 94, 94, 93, 92, 91},
	/* K */ {0, 0, 0, 0, 0, 0},
}

// ScoreMove ranks m: the table move first, then queen and knight
// promotions, then captures by MVV-LVA, then everything else.
func ScoreMove(pos *board.Position, m, ttMove board.Move) int {
	if m == ttMove && m != board.NoMove {
		return TTMoveScore
	}

	score := QuietScore
	switch m.Promotion() {
	case board.Queen:
		score += PromotionScore + 1
	case board.Knight:
		score += PromotionScore
	}

	if pos.IsCapture(m) {
		attacker := pos.PieceAt(m.From()).Type()
		victim := board.Pawn // en passant
		if pc := pos.PieceAt(m.To()); pc != board.NoPiece {
			victim = pc.Type()
		}
		score += CaptureScore + mvvLva[victim][attacker]
	}
	return score
}

// OrderMoves sorts ml by ScoreMove, highest first. The sort is stable, so
// equal moves keep their generation order and searches are reproducible.
func OrderMoves(pos *board.Position, ml *board.MoveList, ttMove board.Move) {
	var scores [board.MaxMoves]int
	n := ml.Len()
	for i := 0; i < n; i++ {
		scores[i] = ScoreMove(pos, ml.Get(i), ttMove)
	}

	// Insertion sort: lists are short and mostly grouped already.
	for i := 1; i < n; i++ {
		m, s := ml.Get(i), scores[i]
		j := i - 1
		for ; j >= 0 && scores[j] < s; j-- {
			ml.Set(j+1, ml.Get(j))
			scores[j+1] = scores[j]
		}
		ml.Set(j+1, m)
		scores[j+1] = s
	}
}
