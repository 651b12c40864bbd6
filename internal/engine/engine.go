package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/samber/lo"

	"github.com/hailam/sonic/internal/board"
)

// SearchInfo is reported after every completed iteration.
type SearchInfo struct {
	Depth    int
	SelDepth int
	Score    int
	Nodes    uint64
	NPS      uint64
	HashFull int // permille
	Time     time.Duration
	PV       []board.Move
}

// Result is the outcome of a search. BestMove is board.NoMove only when the
// root position has no legal move.
type Result struct {
	BestMove board.Move
	Score    int
	Depth    int
	PV       []board.Move
	Nodes    uint64
	FromBook bool
}

// BookProber suggests a move for a position, if it knows one.
type BookProber interface {
	Probe(pos *board.Position) (board.Move, bool)
}

// Engine owns the transposition table and runs one search at a time.
type Engine struct {
	tt      *TranspositionTable
	eval    Evaluator
	book    BookProber
	params  Params
	pruning bool

	stop atomic.Bool

	// OnInfo, if set, receives progress after each completed depth. It is
	// called from the searching goroutine.
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine with a hashMB-megabyte table and the
// classical evaluator.
func NewEngine(hashMB int) *Engine {
	return &Engine{
		tt:      NewTranspositionTable(hashMB),
		eval:    Classical{Pawns: NewPawnTable(256)},
		params:  DefaultParams(),
		pruning: true,
	}
}

// SetEvaluator replaces the static evaluation.
func (e *Engine) SetEvaluator(ev Evaluator) {
	e.eval = ev
}

// SetBook installs an opening book; nil disables it.
func (e *Engine) SetBook(b BookProber) {
	e.book = b
}

// SetParams replaces the search tunables.
func (e *Engine) SetParams(p Params) {
	e.params = p
}

// Params returns the current search tunables.
func (e *Engine) Params() Params {
	return e.params
}

// SetPruning toggles the selective heuristics. With pruning off the search
// returns the plain minimax value of each depth.
func (e *Engine) SetPruning(on bool) {
	e.pruning = on
}

// ResizeHash reallocates and clears the transposition table.
func (e *Engine) ResizeHash(mb int) {
	e.tt.Resize(mb)
}

// HashFull returns table occupancy in permille.
func (e *Engine) HashFull() int {
	return e.tt.HashFull()
}

// Clear empties the transposition table and the pawn cache.
func (e *Engine) Clear() {
	e.tt.Clear()
	if c, ok := e.eval.(Classical); ok && c.Pawns != nil {
		c.Pawns.Clear()
	}
}

// Stop asks a running search to return its last completed iteration.
func (e *Engine) Stop() {
	e.stop.Store(true)
}

// Search finds a move for pos within limits. Cancelling ctx has the same
// effect as Stop. pos is not modified.
func (e *Engine) Search(ctx context.Context, pos *board.Position, limits Limits) Result {
	e.stop.Store(ctx.Err() != nil)
	release := context.AfterFunc(ctx, e.Stop)
	defer release()

	if e.book != nil {
		if m, ok := e.book.Probe(pos); ok && pos.IsLegal(m) {
			return Result{BestMove: m, PV: []board.Move{m}, FromBook: true}
		}
	}

	s := &searcher{
		pos:      pos.Copy(),
		tt:       e.tt,
		eval:     e.eval,
		params:   e.params,
		tm:       NewTimeManager(),
		stop:     &e.stop,
		maxNodes: limits.Nodes,
		pruning:  e.pruning,
	}
	s.tm.Init(limits, pos.SideToMove)

	maxDepth := MaxPly - 1
	if limits.Depth > 0 {
		maxDepth = min(limits.Depth, maxDepth)
	}

	var res Result
	alpha, beta := -ScoreInfinite, ScoreInfinite
	for depth := 1; depth <= maxDepth; {
		s.seldepth = 0
		score := s.negamax(alpha, beta, depth, 0, true)
		if s.aborted {
			break
		}

		// Outside the aspiration window: same depth, full window.
		if score <= alpha || score >= beta {
			alpha, beta = -ScoreInfinite, ScoreInfinite
			continue
		}

		res = Result{Score: score, Depth: depth, PV: s.pv.line(), Nodes: s.nodes}
		if len(res.PV) > 0 {
			res.BestMove = res.PV[0]
		}
		e.report(s, res)

		// Checkmate or stalemate on the board.
		if len(res.PV) == 0 {
			break
		}
		// A mate inside the horizon cannot improve with more depth.
		if IsMateScore(score) && ScoreMate-abs(score) <= depth && !limits.Infinite {
			break
		}
		// Another iteration would most likely not finish in time.
		if budget := s.tm.Budget(); budget > 0 && s.tm.Elapsed() > budget/2 {
			break
		}

		w := s.params.AspirationWindow
		alpha = lo.Clamp(score-w, -ScoreInfinite, ScoreInfinite)
		beta = lo.Clamp(score+w, -ScoreInfinite, ScoreInfinite)
		depth++
	}

	res.Nodes = s.nodes
	if res.BestMove == board.NoMove {
		res.BestMove = fallbackMove(pos, s.rootBest)
		if res.BestMove != board.NoMove && len(res.PV) == 0 {
			res.PV = []board.Move{res.BestMove}
		}
	}
	return res
}

// fallbackMove picks a move when the budget ran out before depth 1 finished.
func fallbackMove(pos *board.Position, rootBest board.Move) board.Move {
	if rootBest != board.NoMove {
		return rootBest
	}
	legal := pos.LegalMoves()
	if len(legal) == 0 {
		return board.NoMove
	}
	return legal[0]
}

func (e *Engine) report(s *searcher, res Result) {
	if e.OnInfo == nil {
		return
	}
	elapsed := s.tm.Elapsed()
	var nps uint64
	if elapsed > 0 {
		nps = uint64(float64(s.nodes) / elapsed.Seconds())
	}
	e.OnInfo(SearchInfo{
		Depth:    res.Depth,
		SelDepth: s.seldepth,
		Score:    res.Score,
		Nodes:    s.nodes,
		NPS:      nps,
		HashFull: e.tt.HashFull(),
		Time:     elapsed,
		PV:       res.PV,
	})
}
