package board

import "fmt"

// Move encodes a chess move in 16 bits:
// bits 0-5:   from square
// bits 6-11:  to square
// bits 12-14: promotion (0=none, 1=queen, 2=rook, 3=bishop, 4=knight)
//
// Castling is encoded as the king's two-square move and en passant as the
// pawn's diagonal move; the position disambiguates both.
type Move uint16

// NoMove is the null move, printed as "0000".
const NoMove Move = 0

const promoShift = 12

var (
	promoCodes  = [NoPieceType + 1]Move{Queen: 1, Rook: 2, Bishop: 3, Knight: 4}
	promoPieces = [8]PieceType{NoPieceType, Queen, Rook, Bishop, Knight, NoPieceType, NoPieceType, NoPieceType}
)

// NewMove creates a move without promotion.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewPromotion creates a pawn move that promotes to promo.
func NewPromotion(from, to Square, promo PieceType) Move {
	return NewMove(from, to) | promoCodes[promo]<<promoShift
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Promotion returns the promotion piece type, NoPieceType if none.
func (m Move) Promotion() PieceType {
	return promoPieces[(m>>promoShift)&7]
}

// IsPromotion reports whether m promotes a pawn.
func (m Move) IsPromotion() bool {
	return m.Promotion() != NoPieceType
}

// String returns the UCI long algebraic form, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if promo := m.Promotion(); promo != NoPieceType {
		s += string(promo.Char())
	}
	return s
}

// ParseMove parses UCI long algebraic notation. It does not check legality.
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("invalid move %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}
	if len(s) == 4 {
		return NewMove(from, to), nil
	}

	var promo PieceType
	switch s[4] {
	case 'q':
		promo = Queen
	case 'r':
		promo = Rook
	case 'b':
		promo = Bishop
	case 'n':
		promo = Knight
	default:
		return NoMove, fmt.Errorf("invalid promotion piece %q in %q", s[4], s)
	}
	return NewPromotion(from, to, promo), nil
}

// MaxMoves bounds the number of pseudo-legal moves in any position.
const MaxMoves = 256

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [MaxMoves]Move
	count int
}

// Add appends a move.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set overwrites the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Contains reports whether m is in the list.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
