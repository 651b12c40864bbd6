package board

// Plain magic bitboards: every square of a slider kind shares one fixed
// shift, so each square owns a table of 1<<(64-shift) attack sets.
const (
	rookShift   = 52
	bishopShift = 55

	rookTableSize   = 1 << (64 - rookShift)
	bishopTableSize = 1 << (64 - bishopShift)
)

// Magic holds the hashing data for one square and slider kind.
type Magic struct {
	Mask  Bitboard // ray squares that can hold a blocker, edges excluded
	Magic uint64
	Shift uint8
}

// Index maps an occupancy to a slot of the square's attack table.
func (m *Magic) Index(occupied Bitboard) uint64 {
	return (uint64(occupied&m.Mask) * m.Magic) >> m.Shift
}

var (
	rookMagics   [64]Magic
	bishopMagics [64]Magic

	rookTable   [64][rookTableSize]Bitboard
	bishopTable [64][bishopTableSize]Bitboard
)

var rookMagicNumbers = [64]uint64{
	0x0080001020400080, 0x0040001000200040, 0x0080081000200080, 0x0080040800100080,
	0x0080020400080080, 0x0080010200040080, 0x0080008001000200, 0x0080002040800100,
	0x0000800020400080, 0x0000400020005000, 0x0000801000200080, 0x0000800800100080,
	0x0000800400080080, 0x0000800200040080, 0x0000800100020080, 0x0000800040800100,
	0x0000208000400080, 0x0000404000201000, 0x0000808010002000, 0x0000808008001000,
	0x0000808004000800, 0x0000808002000400, 0x0000010100020004, 0x0000020000408104,
	0x0000208080004000, 0x0000200040005000, 0x0000100080200080, 0x0000080080100080,
	0x0000040080080080, 0x0000020080040080, 0x0000010080800200, 0x0000800080004100,
	0x0000204000800080, 0x0000200040401000, 0x0000100080802000, 0x0000080080801000,
	0x0000040080800800, 0x0000020080800400, 0x0000020001010004, 0x0000800040800100,
	0x0000204000808000, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000010002008080, 0x0000004081020004,
	0x0000204000800080, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000800100020080, 0x0000800041000080,
	0x00FFFCDDFCED714A, 0x007FFCDDFCED714A, 0x003FFFCDFFD88096, 0x0000040810002101,
	0x0001000204080011, 0x0001000204000801, 0x0001000082000401, 0x0001FFFAABFAD1A2,
}

var bishopMagicNumbers = [64]uint64{
	0x0002020202020200, 0x0002020202020000, 0x0004010202000000, 0x0004040080000000,
	0x0001104000000000, 0x0000821040000000, 0x0000410410400000, 0x0000104104104000,
	0x0000040404040400, 0x0000020202020200, 0x0000040102020000, 0x0000040400800000,
	0x0000011040000000, 0x0000008210400000, 0x0000004104104000, 0x0000002082082000,
	0x0004000808080800, 0x0002000404040400, 0x0001000202020200, 0x0000800802004000,
	0x0000800400A00000, 0x0000200100884000, 0x0000400082082000, 0x0000200041041000,
	0x0002080010101000, 0x0001040008080800, 0x0000208004010400, 0x0000404004010200,
	0x0000840000802000, 0x0000404002011000, 0x0000808001041000, 0x0000404000820800,
	0x0001041000202000, 0x0000820800101000, 0x0000104400080800, 0x0000020080080080,
	0x0000404040040100, 0x0000808100020100, 0x0001010100020800, 0x0000808080010400,
	0x0000820820004000, 0x0000410410002000, 0x0000082088001000, 0x0000002011000800,
	0x0000080100400400, 0x0001010101000200, 0x0002020202000400, 0x0001010101000200,
	0x0000410410400000, 0x0000208208200000, 0x0000002084100000, 0x0000000020880000,
	0x0000001002020000, 0x0000040408020000, 0x0004040404040000, 0x0002020202020000,
	0x0000104104104000, 0x0000002082082000, 0x0000000020841000, 0x0000000000208800,
	0x0000000010020200, 0x0000000404080200, 0x0000040404040400, 0x0002020202020200,
}

type rayDir struct{ df, dr int }

var (
	rookDirs   = [4]rayDir{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirs = [4]rayDir{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
)

func initMagics() {
	for sq := A1; sq <= H8; sq++ {
		rookMagics[sq] = Magic{Mask: rookMask(sq), Magic: rookMagicNumbers[sq], Shift: rookShift}
		fillMagicTable(sq, &rookMagics[sq], rookTable[sq][:], rookDirs)

		bishopMagics[sq] = Magic{Mask: bishopMask(sq), Magic: bishopMagicNumbers[sq], Shift: bishopShift}
		fillMagicTable(sq, &bishopMagics[sq], bishopTable[sq][:], bishopDirs)
	}
}

// fillMagicTable walks every subset of the mask with the carry-rippler
// trick and stores the ray-cast attack set at its magic index.
func fillMagicTable(sq Square, m *Magic, table []Bitboard, dirs [4]rayDir) {
	sub := m.Mask
	for {
		table[m.Index(sub)] = slidingAttacks(sq, sub, dirs)
		if sub == 0 {
			break
		}
		sub = (sub - 1) & m.Mask
	}
}

// slidingAttacks casts each ray until it leaves the board or hits a
// blocker; the blocker square itself is included.
func slidingAttacks(sq Square, occupied Bitboard, dirs [4]rayDir) Bitboard {
	var attacks Bitboard
	for _, d := range dirs {
		f, r := sq.File()+d.df, sq.Rank()+d.dr
		for f >= 0 && f <= 7 && r >= 0 && r <= 7 {
			s := NewSquare(f, r)
			attacks |= SquareBB(s)
			if occupied.IsSet(s) {
				break
			}
			f += d.df
			r += d.dr
		}
	}
	return attacks
}

// rookMask excludes the far end of each ray: a piece there can't block anything.
func rookMask(sq Square) Bitboard {
	file, rank := sq.File(), sq.Rank()
	var mask Bitboard
	for f := 1; f < 7; f++ {
		if f != file {
			mask |= SquareBB(NewSquare(f, rank))
		}
	}
	for r := 1; r < 7; r++ {
		if r != rank {
			mask |= SquareBB(NewSquare(file, r))
		}
	}
	return mask
}

func bishopMask(sq Square) Bitboard {
	return slidingAttacks(sq, Empty, bishopDirs) &^ edges
}

// RookAttacks returns rook attacks from sq through the given occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return rookTable[sq][rookMagics[sq].Index(occupied)]
}

// BishopAttacks returns bishop attacks from sq through the given occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return bishopTable[sq][bishopMagics[sq].Index(occupied)]
}

// QueenAttacks is the union of rook and bishop attacks.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return RookAttacks(sq, occupied) | BishopAttacks(sq, occupied)
}
