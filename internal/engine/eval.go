// Package engine implements the game-tree search: iterative deepening,
// alpha-beta with quiescence, the transposition table and move ordering.
package engine

import (
	"github.com/hailam/sonic/internal/board"
)

// Evaluator scores a position statically, in centipawns from the side to
// move's point of view. Implementations must be pure and must never return
// a value outside (-ScoreMate+MaxPly, ScoreMate-MaxPly).
type Evaluator interface {
	Evaluate(pos *board.Position) int
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(pos *board.Position) int

// Evaluate calls f(pos).
func (f EvaluatorFunc) Evaluate(pos *board.Position) int {
	return f(pos)
}

// Piece values used by the evaluators.
const (
	PawnValue   = 100
	KnightValue = 300
	BishopValue = 300
	RookValue   = 500
	QueenValue  = 900
)

var materialValues = [6]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, 0}

// Material counts piece values only.
type Material struct{}

// Evaluate returns the material balance for the side to move.
func (Material) Evaluate(pos *board.Position) int {
	score := 0
	for pt := board.Pawn; pt < board.King; pt++ {
		score += pos.Pieces[board.White][pt].PopCount() * materialValues[pt]
		score -= pos.Pieces[board.Black][pt].PopCount() * materialValues[pt]
	}
	if pos.SideToMove == board.Black {
		return -score
	}
	return score
}

// Classical adds piece-square tables, mobility, passed pawns and the bishop
// pair to material, tapered between middlegame and endgame by the remaining
// non-pawn material. Pawns, if set, caches the pawn structure terms; it is
// not safe for concurrent searches.
type Classical struct {
	Pawns *PawnTable
}

const (
	bishopPairMg = 25
	bishopPairEg = 50
	tempoBonus   = 10
	maxPhase     = 24
)

var phaseWeight = [6]int{0, 1, 1, 2, 4, 0}

var (
	mobilityMg = [6]int{0, 4, 5, 2, 1, 0}
	mobilityEg = [6]int{0, 3, 4, 4, 2, 0}
)

// Indexed by relative rank.
var (
	passedPawnMg = [8]int{0, 5, 10, 15, 30, 50, 80, 0}
	passedPawnEg = [8]int{0, 10, 20, 40, 70, 120, 200, 0}
)

// Tables are laid out as seen from white with a8 first; pstIndex maps a
// square of either color onto them.
var pstMg = [6][64]int{
	{ // pawn
		0, 0, 0, 0, 0, 0, 0, 0,
		50, 50, 50, 50, 50, 50, 50, 50,
		10, 10, 20, 30, 30, 20, 10, 10,
		5, 5, 10, 25, 25, 10, 5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, -5, -10, 0, 0, -10, -5, 5,
		5, 10, 10, -20, -20, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	{ // knight
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	},
	{ // bishop
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	},
	{ // rook
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, 10, 10, 10, 10, 5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		0, 0, 0, 5, 5, 0, 0, 0,
	},
	{ // queen
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-5, 0, 5, 5, 5, 5, 0, -5,
		0, 0, 5, 5, 5, 5, 0, -5,
		-10, 5, 5, 5, 5, 5, 0, -10,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	},
	{ // king
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		20, 20, 0, 0, 0, 0, 20, 20,
		20, 30, 10, 0, 0, 10, 30, 20,
	},
}

// Only the king changes its preferences in the endgame.
var kingEg = [64]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

// passedMask[c][sq] covers the squares in front of a c pawn on sq, on its
// own and adjacent files, that an enemy pawn would have to occupy to stop it.
var passedMask [2][64]board.Bitboard

func init() {
	for sq := board.A1; sq <= board.H8; sq++ {
		files := board.FileMask[sq.File()]
		if sq.File() > 0 {
			files |= board.FileMask[sq.File()-1]
		}
		if sq.File() < 7 {
			files |= board.FileMask[sq.File()+1]
		}
		for r := 0; r < 8; r++ {
			switch {
			case r > sq.Rank():
				passedMask[board.White][sq] |= files & board.RankMask[r]
			case r < sq.Rank():
				passedMask[board.Black][sq] |= files & board.RankMask[r]
			}
		}
	}
}

func pstIndex(sq board.Square, c board.Color) board.Square {
	if c == board.White {
		return sq.Mirror()
	}
	return sq
}

// Evaluate returns the tapered score for the side to move.
func (ev Classical) Evaluate(pos *board.Position) int {
	var mg, eg [2]int
	phase := 0
	occupied := pos.AllOccupied

	for c := board.White; c <= board.Black; c++ {
		them := c.Other()
		enemyPawns := pos.Pieces[them][board.Pawn]
		unsafe := pos.Occupied[c]
		for pawns := enemyPawns; pawns != 0; {
			unsafe |= board.PawnAttacks(pawns.PopLSB(), them)
		}

		for pt := board.Pawn; pt <= board.King; pt++ {
			for bb := pos.Pieces[c][pt]; bb != 0; {
				sq := bb.PopLSB()
				idx := pstIndex(sq, c)

				mg[c] += materialValues[pt] + pstMg[pt][idx]
				if pt == board.King {
					eg[c] += kingEg[idx]
				} else {
					eg[c] += materialValues[pt] + pstMg[pt][idx]
				}
				phase += phaseWeight[pt]

				var attacks board.Bitboard
				switch pt {
				case board.Knight:
					attacks = board.KnightAttacks(sq)
				case board.Bishop:
					attacks = board.BishopAttacks(sq, occupied)
				case board.Rook:
					attacks = board.RookAttacks(sq, occupied)
				case board.Queen:
					attacks = board.QueenAttacks(sq, occupied)
				default:
					continue
				}
				n := (attacks &^ unsafe).PopCount()
				mg[c] += mobilityMg[pt] * n
				eg[c] += mobilityEg[pt] * n
			}
		}

		if pos.Pieces[c][board.Bishop].PopCount() >= 2 {
			mg[c] += bishopPairMg
			eg[c] += bishopPairEg
		}
	}

	pmg, peg := ev.pawnStructure(pos)
	mg[board.White] += pmg
	eg[board.White] += peg

	phase = min(phase, maxPhase)
	us, them := pos.SideToMove, pos.SideToMove.Other()
	mgScore := mg[us] - mg[them]
	egScore := eg[us] - eg[them]
	return (mgScore*phase+egScore*(maxPhase-phase))/maxPhase + tempoBonus
}

// pawnStructure returns the passed pawn bonuses, white minus black.
func (ev Classical) pawnStructure(pos *board.Position) (mg, eg int) {
	white, black := pos.Pieces[board.White][board.Pawn], pos.Pieces[board.Black][board.Pawn]
	if ev.Pawns != nil {
		if mg, eg, ok := ev.Pawns.Probe(white, black); ok {
			return mg, eg
		}
	}

	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		enemy := pos.Pieces[c.Other()][board.Pawn]
		for bb := pos.Pieces[c][board.Pawn]; bb != 0; {
			sq := bb.PopLSB()
			if passedMask[c][sq]&enemy == 0 {
				rr := sq.RelativeRank(c)
				mg += sign * passedPawnMg[rr]
				eg += sign * passedPawnEg[rr]
			}
		}
	}

	if ev.Pawns != nil {
		ev.Pawns.Store(white, black, mg, eg)
	}
	return mg, eg
}
