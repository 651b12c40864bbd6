package engine

import "strconv"

// Search score bounds. Mate scores encode the distance to mate in plies
// from the root: ScoreMate-ply for the side delivering it.
const (
	ScoreDraw     = 0
	ScoreMate     = 32000
	ScoreInfinite = 32001

	// scoreNone is returned by an aborted search; it is never stored or reported.
	scoreNone = 32002

	// MaxPly bounds the search depth and the ply index of every per-ply buffer.
	MaxPly = 128
)

// MateIn is the score of delivering mate ply plies from the root.
func MateIn(ply int) int {
	return ScoreMate - ply
}

// MatedIn is the score of being mated ply plies from the root.
func MatedIn(ply int) int {
	return -ScoreMate + ply
}

// IsMateScore reports whether score encodes a forced mate.
func IsMateScore(score int) bool {
	return ScoreMate-abs(score) <= MaxPly
}

// MateMoves converts a mate score to full moves, negative when the side to
// move is the one being mated.
func MateMoves(score int) int {
	if score > 0 {
		return (ScoreMate - score + 1) / 2
	}
	return (-score - ScoreMate) / 2
}

// ScoreString formats a score the way UCI "info score" expects it.
func ScoreString(score int) string {
	if IsMateScore(score) {
		return "mate " + strconv.Itoa(MateMoves(score))
	}
	return "cp " + strconv.Itoa(score)
}

// scoreToTT converts a root-relative mate score to a node-relative one.
func scoreToTT(score, ply int) int {
	if !IsMateScore(score) {
		return score
	}
	if score > 0 {
		return score + ply
	}
	return score - ply
}

// scoreFromTT undoes scoreToTT at the probing ply.
func scoreFromTT(score, ply int) int {
	if !IsMateScore(score) {
		return score
	}
	if score > 0 {
		return score - ply
	}
	return score + ply
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
