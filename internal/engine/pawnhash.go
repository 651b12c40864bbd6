package engine

import (
	"github.com/hailam/sonic/internal/board"
)

// PawnEntry caches the pawn structure score of one pawn configuration.
// Both pawn sets are stored, so a hit is always exact.
type PawnEntry struct {
	Pawns   [2]board.Bitboard
	MgScore int16 // white minus black, middlegame
	EgScore int16 // white minus black, endgame
	valid   bool
}

// PawnTable is a hash table for caching pawn structure evaluations.
type PawnTable struct {
	entries []PawnEntry
	mask    uint64
}

// NewPawnTable creates a pawn table of about sizeKB kilobytes.
func NewPawnTable(sizeKB int) *PawnTable {
	numEntries := sizeKB * 1024 / 24

	// Round down to power of 2
	size := 1
	for size*2 <= numEntries {
		size *= 2
	}

	return &PawnTable{
		entries: make([]PawnEntry, size),
		mask:    uint64(size - 1),
	}
}

func pawnIndex(white, black board.Bitboard) uint64 {
	h := uint64(white)*0x9E3779B97F4A7C15 ^ uint64(black)*0xC2B2AE3D27D4EB4F
	return h ^ h>>29
}

// Probe looks up the score of a pawn configuration.
func (pt *PawnTable) Probe(white, black board.Bitboard) (mg, eg int, found bool) {
	e := &pt.entries[pawnIndex(white, black)&pt.mask]
	if e.valid && e.Pawns[board.White] == white && e.Pawns[board.Black] == black {
		return int(e.MgScore), int(e.EgScore), true
	}
	return 0, 0, false
}

// Store saves the score of a pawn configuration.
func (pt *PawnTable) Store(white, black board.Bitboard, mg, eg int) {
	pt.entries[pawnIndex(white, black)&pt.mask] = PawnEntry{
		Pawns:   [2]board.Bitboard{white, black},
		MgScore: int16(mg),
		EgScore: int16(eg),
		valid:   true,
	}
}

// Clear clears the pawn hash table.
func (pt *PawnTable) Clear() {
	clear(pt.entries)
}
