package engine

import (
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/hailam/sonic/internal/board"
)

// PVTable stores the principal variation per ply: moves[ply] holds the
// best line found so far from that ply down.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// update makes m followed by the child's line the line at ply.
func (pv *PVTable) update(ply int, m board.Move) {
	pv.moves[ply][0] = m
	n := pv.length[ply+1]
	copy(pv.moves[ply][1:], pv.moves[ply+1][:n])
	pv.length[ply] = n + 1
}

// line returns a copy of the root line.
func (pv *PVTable) line() []board.Move {
	return append([]board.Move(nil), pv.moves[0][:pv.length[0]]...)
}

// searcher runs one search over a private copy of the position.
type searcher struct {
	pos    *board.Position
	tt     *TranspositionTable
	eval   Evaluator
	params Params
	tm     *TimeManager

	stop     *atomic.Bool
	maxNodes uint64
	aborted  bool

	// pruning disables every heuristic that can change the minimax value
	// of the root when false.
	pruning bool

	nodes    uint64
	seldepth int
	pv       PVTable

	// Best root move of the iteration in progress, used only when no
	// iteration completes.
	rootBest board.Move
}

// checkStop polls the stop flag, the node budget and the clock. Once it
// fires, every caller up the stack unwinds with scoreNone.
func (s *searcher) checkStop() bool {
	if s.aborted {
		return true
	}
	if s.stop.Load() || (s.maxNodes > 0 && s.nodes >= s.maxNodes) || s.tm.ShouldStop() {
		s.aborted = true
	}
	return s.aborted
}

// evaluate keeps static scores clear of the mate range.
func (s *searcher) evaluate() int {
	return lo.Clamp(s.eval.Evaluate(s.pos), -ScoreMate+MaxPly+1, ScoreMate-MaxPly-1)
}

// negamax searches the position to depth plies and returns a fail-hard
// score in [alpha, beta], or scoreNone once the search is aborted.
func (s *searcher) negamax(alpha, beta, depth, ply int, doNull bool) int {
	s.nodes++
	s.seldepth = max(s.seldepth, ply)
	s.pv.length[ply] = 0

	pos := s.pos
	p := &s.params
	root := ply == 0

	if !root && pos.IsDraw() {
		return ScoreDraw
	}
	if s.checkStop() {
		return scoreNone
	}
	if ply >= MaxPly-1 {
		return s.evaluate()
	}

	// Mate distance pruning: no line from here can beat a mate already
	// found closer to the root.
	if !root {
		alpha = max(alpha, MatedIn(ply))
		beta = min(beta, MateIn(ply+1))
		if alpha >= beta {
			return alpha
		}
	}

	pvNode := beta-alpha > 1
	ttScore, ttMove, ttHit := s.tt.Probe(pos.Hash, ply, depth, alpha, beta)
	if ttHit && !root && !pvNode && s.pruning {
		return ttScore
	}

	inCheck := pos.InCheck()
	if inCheck {
		depth++
	}
	if depth <= 0 {
		return s.quiescence(alpha, beta, ply)
	}

	eval := 0
	if !inCheck {
		if ttHit && s.pruning {
			eval = ttScore
		} else {
			eval = s.evaluate()
		}

		// Reverse futility pruning.
		if s.pruning && !root && !pvNode && depth <= 3 && eval-(p.RFPBase+p.RFPMultiplier*depth*depth) >= beta {
			return (eval + beta) / 2
		}

		// Null move pruning.
		if s.pruning && doNull && !root && depth >= 3 && pos.HasNonPawnMaterial(pos.SideToMove) {
			undo := pos.MakeNullMove()
			score := -s.negamax(-beta, -beta+1, depth-1-p.NullMoveReduction, ply+1, false)
			pos.UnmakeNullMove(undo)
			if s.aborted {
				return scoreNone
			}
			if score >= beta {
				return beta
			}
		}
	}

	var ml board.MoveList
	pos.Generate(board.All, &ml)
	OrderMoves(pos, &ml, ttMove)

	bestMove := board.NoMove
	bound := BoundUpper
	movesSearched := 0

	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		quiet := pos.IsQuiet(m)

		undo, legal := pos.MakeMove(m)
		if !legal {
			pos.UnmakeMove(undo)
			continue
		}
		movesSearched++

		// Futility pruning: a quiet move cannot lift a hopeless eval to alpha.
		if s.pruning && !root && !inCheck && depth <= 2 && quiet && !pos.InCheck() &&
			eval+p.FPBase+p.FPMultiplier*depth < alpha {
			pos.UnmakeMove(undo)
			continue
		}

		// Late moves are probed at reduced depth first; only a probe that
		// beats alpha earns the full-depth search.
		score := ScoreInfinite
		if s.pruning && movesSearched >= p.LMRMoveThreshold && depth >= 3 && !inCheck {
			score = -s.negamax(-alpha-1, -alpha, depth-1-p.LMRReduction, ply+1, true)
		}
		if !s.aborted && score > alpha {
			score = -s.negamax(-alpha-1, -alpha, depth-1, ply+1, true)
			if !s.aborted && score > alpha && score < beta {
				score = -s.negamax(-beta, -alpha, depth-1, ply+1, true)
			}
		}

		pos.UnmakeMove(undo)
		if s.aborted {
			return scoreNone
		}

		if score > alpha {
			bestMove = m
			if root {
				s.rootBest = m
			}
			if score >= beta {
				s.tt.Store(pos.Hash, ply, depth, beta, m, BoundLower)
				return beta
			}
			alpha = score
			bound = BoundExact
			s.pv.update(ply, m)
		}
	}

	if movesSearched == 0 {
		if inCheck {
			return MatedIn(ply)
		}
		return ScoreDraw
	}

	s.tt.Store(pos.Hash, ply, depth, alpha, bestMove, bound)
	return alpha
}

// quiescence resolves captures (or, in check, every evasion) until the
// position is quiet, using the static eval as a stand-pat bound.
func (s *searcher) quiescence(alpha, beta, ply int) int {
	s.nodes++
	s.seldepth = max(s.seldepth, ply)
	s.pv.length[ply] = 0

	pos := s.pos

	if pos.IsDraw() {
		return ScoreDraw
	}
	if s.checkStop() {
		return scoreNone
	}

	ttScore, ttMove, ttHit := s.tt.Probe(pos.Hash, ply, 0, alpha, beta)
	if ttHit && s.pruning {
		return ttScore
	}

	inCheck := pos.InCheck()
	if ply >= MaxPly-1 {
		if inCheck {
			return ScoreDraw
		}
		return s.evaluate()
	}

	bound := BoundUpper
	gen := board.All
	if !inCheck {
		eval := s.evaluate()
		if eval >= beta {
			return eval
		}
		if eval > alpha {
			alpha = eval
			bound = BoundExact
		}
		// Delta pruning: even winning a queen would not reach alpha.
		if s.pruning && eval+s.params.DeltaMargin < alpha {
			return alpha
		}
		gen = board.Captures
	}

	var ml board.MoveList
	pos.Generate(gen, &ml)
	OrderMoves(pos, &ml, ttMove)

	bestMove := board.NoMove
	legalMoves := 0

	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		undo, legal := pos.MakeMove(m)
		if !legal {
			pos.UnmakeMove(undo)
			continue
		}
		legalMoves++

		score := -s.quiescence(-beta, -alpha, ply+1)
		pos.UnmakeMove(undo)
		if s.aborted {
			return scoreNone
		}

		if score > alpha {
			bestMove = m
			if score >= beta {
				s.tt.Store(pos.Hash, ply, 0, beta, m, BoundLower)
				return beta
			}
			alpha = score
			bound = BoundExact
			s.pv.update(ply, m)
		}
	}

	if inCheck && legalMoves == 0 {
		return MatedIn(ply)
	}

	s.tt.Store(pos.Hash, ply, 0, alpha, bestMove, bound)
	return alpha
}
