package engine

import (
	"unsafe"

	"github.com/samber/lo"

	"github.com/hailam/sonic/internal/board"
)

// Bound tells how a stored score relates to the true value.
type Bound uint8

const (
	BoundNone  Bound = iota
	BoundExact       // score is exact
	BoundLower       // failed high: true score >= score
	BoundUpper       // failed low: true score <= score
)

// Hash table size limits in megabytes.
const (
	MinHashMB     = 1
	MaxHashMB     = 1024
	DefaultHashMB = 16
)

// TTEntry is one slot of the table. Fields are small and fixed-size so a
// racing reader can at worst see a stale entry, which the key check rejects
// or the search tolerates.
type TTEntry struct {
	Key   uint64
	Move  board.Move
	Score int16
	Depth int8
	Bound Bound
}

var ttEntrySize = uint64(unsafe.Sizeof(TTEntry{}))

// TranspositionTable caches search results by position hash.
type TranspositionTable struct {
	entries []TTEntry
	mask    uint64
	used    uint64
}

// NewTranspositionTable creates a table of about sizeMB megabytes.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	tt := &TranspositionTable{}
	tt.Resize(sizeMB)
	return tt
}

// Resize reallocates the table to the largest power-of-two entry count that
// fits in sizeMB megabytes, clamped to the supported range. The table is
// cleared.
func (tt *TranspositionTable) Resize(sizeMB int) {
	sizeMB = lo.Clamp(sizeMB, MinHashMB, MaxHashMB)
	budget := uint64(sizeMB) << 20

	size := uint64(1)
	for size*2*ttEntrySize <= budget {
		size *= 2
	}

	tt.entries = make([]TTEntry, size)
	tt.mask = size - 1
	tt.used = 0
}

// Clear empties every slot.
func (tt *TranspositionTable) Clear() {
	clear(tt.entries)
	tt.used = 0
}

// Size returns the number of slots.
func (tt *TranspositionTable) Size() uint64 {
	return uint64(len(tt.entries))
}

// Probe looks up key. The stored move is returned on any key match. The
// score is usable (ok) only if the entry is at least depth deep and its
// bound decides the (alpha, beta) window: an exact score always, a lower
// bound at or above beta (returned as beta) and an upper bound at or below
// alpha (returned as alpha).
func (tt *TranspositionTable) Probe(key uint64, ply, depth, alpha, beta int) (score int, move board.Move, ok bool) {
	e := tt.entries[key&tt.mask]
	if e.Key != key {
		return 0, board.NoMove, false
	}
	if int(e.Depth) < depth {
		return 0, e.Move, false
	}

	score = scoreFromTT(int(e.Score), ply)
	switch e.Bound {
	case BoundExact:
		return score, e.Move, true
	case BoundUpper:
		if score <= alpha {
			return alpha, e.Move, true
		}
	case BoundLower:
		if score >= beta {
			return beta, e.Move, true
		}
	}
	return 0, e.Move, false
}

// Store records a search result. An existing entry for another position,
// a shallower one (within a two-ply margin) or any exact result replaces
// the slot; otherwise the deeper entry is kept.
func (tt *TranspositionTable) Store(key uint64, ply, depth, score int, move board.Move, bound Bound) {
	e := &tt.entries[key&tt.mask]
	if e.Key == key && int(e.Depth) >= depth+2 && bound != BoundExact {
		return
	}
	if e.Key == 0 {
		tt.used++
	}
	if move == board.NoMove && e.Key == key {
		move = e.Move
	}
	*e = TTEntry{
		Key:   key,
		Move:  move,
		Score: int16(scoreToTT(score, ply)),
		Depth: int8(lo.Clamp(depth, 0, MaxPly-1)),
		Bound: bound,
	}
}

// HashFull returns the occupied share of the table in permille.
func (tt *TranspositionTable) HashFull() int {
	return int(tt.used * 1000 / uint64(len(tt.entries)))
}
