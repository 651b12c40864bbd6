package board

import (
	"fmt"
	"strings"
)

// CastlingRights packs the four castling permissions.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// CanCastle reports whether c keeps the right to castle on the given wing.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	right := WhiteQueenSideCastle
	if kingSide {
		right = WhiteKingSideCastle
	}
	return cr&(right<<(2*c)) != 0
}

// castling describes one castling move and the static squares it depends on.
type castling struct {
	right    CastlingRights
	king     Square
	kingTo   Square
	rookFrom Square
	rookTo   Square
	empty    Bitboard // must be unoccupied, king square excluded
	safe     Bitboard // king path, must not be attacked
}

var castlings = [4]castling{
	{WhiteKingSideCastle, E1, G1, H1, F1, SquareBB(F1) | SquareBB(G1), SquareBB(E1) | SquareBB(F1) | SquareBB(G1)},
	{WhiteQueenSideCastle, E1, C1, A1, D1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), SquareBB(C1) | SquareBB(D1) | SquareBB(E1)},
	{BlackKingSideCastle, E8, G8, H8, F8, SquareBB(F8) | SquareBB(G8), SquareBB(E8) | SquareBB(F8) | SquareBB(G8)},
	{BlackQueenSideCastle, E8, C8, A8, D8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), SquareBB(C8) | SquareBB(D8) | SquareBB(E8)},
}

// castlingLoss[sq] holds the rights lost when a move touches sq.
var castlingLoss = func() (t [64]CastlingRights) {
	t[E1] = WhiteKingSideCastle | WhiteQueenSideCastle
	t[H1] = WhiteKingSideCastle
	t[A1] = WhiteQueenSideCastle
	t[E8] = BlackKingSideCastle | BlackQueenSideCastle
	t[H8] = BlackKingSideCastle
	t[A8] = BlackQueenSideCastle
	return t
}()

// Position is the full game state. The mailbox and the bitboards always
// agree, and Hash always equals ComputeHash().
type Position struct {
	Pieces      [2][6]Bitboard // [Color][PieceType]
	Occupied    [2]Bitboard
	AllOccupied Bitboard
	board       [64]Piece

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // target square, NoSquare if none
	HalfMoveClock  int    // plies since the last capture or pawn move
	GamePly        int    // plies since the start of the game

	Hash uint64

	// Hashes of the positions preceding the current one, oldest first.
	history []uint64
}

// UndoRecord is the snapshot taken by MakeMove (or MakeNullMove) that lets
// the matching unmake restore the position exactly.
type UndoRecord struct {
	Move           Move
	Captured       Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Hash           uint64
	HistoryLen     int
}

// NewPosition returns the starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

func emptyPosition() *Position {
	p := &Position{EnPassant: NoSquare}
	for sq := range p.board {
		p.board[sq] = NoPiece
	}
	return p
}

// Copy returns a deep copy, history included.
func (p *Position) Copy() *Position {
	np := *p
	np.history = append(make([]uint64, 0, len(p.history)+MaxGamePly), p.history...)
	return &np
}

// MaxGamePly is the history capacity reserved for a search below a copied position.
const MaxGamePly = 256

// PieceAt returns the piece on sq, NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	return p.board[sq]
}

// IsEmpty reports whether sq holds no piece.
func (p *Position) IsEmpty(sq Square) bool {
	return p.board[sq] == NoPiece
}

// King returns the square of c's king.
func (p *Position) King(c Color) Square {
	return p.Pieces[c][King].LSB()
}

// FullMoveNumber derives the FEN move counter from the game ply.
func (p *Position) FullMoveNumber() int {
	return p.GamePly/2 + 1
}

// HistoryLen returns the number of hashes kept for repetition detection.
func (p *Position) HistoryLen() int {
	return len(p.history)
}

func (p *Position) addPiece(pc Piece, sq Square) {
	bb := SquareBB(sq)
	c, pt := pc.Color(), pc.Type()
	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	p.board[sq] = pc
}

func (p *Position) removePiece(sq Square) {
	pc := p.board[sq]
	bb := SquareBB(sq)
	c, pt := pc.Color(), pc.Type()
	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	p.board[sq] = NoPiece
}

func (p *Position) movePiece(from, to Square) {
	pc := p.board[from]
	moveBB := SquareBB(from) | SquareBB(to)
	c, pt := pc.Color(), pc.Type()
	p.Pieces[c][pt] ^= moveBB
	p.Occupied[c] ^= moveBB
	p.AllOccupied ^= moveBB
	p.board[from] = NoPiece
	p.board[to] = pc
}

// MakeMove applies a pseudo-legal move. The returned bool is false when the
// move leaves the mover's king attacked; the caller must still UnmakeMove it.
func (p *Position) MakeMove(m Move) (UndoRecord, bool) {
	us := p.SideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	pc := p.board[from]

	undo := UndoRecord{
		Move:           m,
		Captured:       p.board[to],
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
		HistoryLen:     len(p.history),
	}
	p.history = append(p.history, p.Hash)

	// Take out the state keys; they are XOR'd back in once the move is done.
	p.Hash ^= zobristCastling[p.CastlingRights] ^ p.epKey() ^ zobristSideToMove
	p.HalfMoveClock++
	p.GamePly++

	if undo.Captured != NoPiece {
		p.Hash ^= zobristPiece[undo.Captured][to]
		p.removePiece(to)
		p.HalfMoveClock = 0
	}

	p.Hash ^= zobristPiece[pc][from] ^ zobristPiece[pc][to]
	p.movePiece(from, to)

	epTarget := p.EnPassant
	p.EnPassant = NoSquare

	switch pc.Type() {
	case Pawn:
		p.HalfMoveClock = 0
		if to == epTarget {
			capSq := to - 8
			if us == Black {
				capSq = to + 8
			}
			undo.Captured = p.board[capSq]
			p.Hash ^= zobristPiece[undo.Captured][capSq]
			p.removePiece(capSq)
		} else if to == from+16 || from == to+16 {
			p.EnPassant = (from + to) / 2
		}
		if promo := m.Promotion(); promo != NoPieceType {
			np := NewPiece(promo, us)
			p.Hash ^= zobristPiece[pc][to] ^ zobristPiece[np][to]
			p.removePiece(to)
			p.addPiece(np, to)
		}
	case King:
		if to == from+2 || to+2 == from {
			cs := castlingFor(from, to)
			rook := p.board[cs.rookFrom]
			p.Hash ^= zobristPiece[rook][cs.rookFrom] ^ zobristPiece[rook][cs.rookTo]
			p.movePiece(cs.rookFrom, cs.rookTo)
		}
	}

	p.CastlingRights &^= castlingLoss[from] | castlingLoss[to]
	p.SideToMove = them
	p.Hash ^= zobristCastling[p.CastlingRights] ^ p.epKey()

	return undo, !p.IsSquareAttacked(p.King(us), them)
}

// UnmakeMove reverses the MakeMove that produced undo. Calls must nest
// last-in-first-out with MakeMove.
func (p *Position) UnmakeMove(undo UndoRecord) {
	p.SideToMove = p.SideToMove.Other()
	us := p.SideToMove
	from, to := undo.Move.From(), undo.Move.To()

	if undo.Move.Promotion() != NoPieceType {
		p.removePiece(to)
		p.addPiece(NewPiece(Pawn, us), to)
	}
	p.movePiece(to, from)
	pc := p.board[from]

	if pc.Type() == King && (to == from+2 || to+2 == from) {
		cs := castlingFor(from, to)
		p.movePiece(cs.rookTo, cs.rookFrom)
	}

	if undo.Captured != NoPiece {
		capSq := to
		if pc.Type() == Pawn && to == undo.EnPassant {
			capSq = to - 8
			if us == Black {
				capSq = to + 8
			}
		}
		p.addPiece(undo.Captured, capSq)
	}

	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.history = p.history[:undo.HistoryLen]
	p.GamePly--
}

func castlingFor(from, to Square) *castling {
	for i := range castlings {
		if castlings[i].king == from && castlings[i].kingTo == to {
			return &castlings[i]
		}
	}
	panic(fmt.Sprintf("board: %s%s is not a castling move", from, to))
}

// MakeNullMove passes the turn. It must be undone with UnmakeNullMove.
func (p *Position) MakeNullMove() UndoRecord {
	undo := UndoRecord{
		Move:           NoMove,
		Captured:       NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
		HistoryLen:     len(p.history),
	}
	p.history = append(p.history, p.Hash)

	p.Hash ^= p.epKey() ^ zobristSideToMove
	p.EnPassant = NoSquare
	p.SideToMove = p.SideToMove.Other()
	p.HalfMoveClock++
	p.GamePly++
	return undo
}

// UnmakeNullMove reverses MakeNullMove.
func (p *Position) UnmakeNullMove(undo UndoRecord) {
	p.SideToMove = p.SideToMove.Other()
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.history = p.history[:undo.HistoryLen]
	p.GamePly--
}

// IsRepetition reports whether the current position already occurred since
// the last irreversible move. Only positions with the same side to move are
// compared.
func (p *Position) IsRepetition() bool {
	n := len(p.history)
	limit := min(n, p.HalfMoveClock)
	for i := 2; i <= limit; i += 2 {
		if p.history[n-i] == p.Hash {
			return true
		}
	}
	return false
}

// IsDraw reports a fifty-move or repetition draw.
func (p *Position) IsDraw() bool {
	return p.HalfMoveClock >= 100 || p.IsRepetition()
}

// HasNonPawnMaterial reports whether c owns a knight, bishop, rook or queen.
func (p *Position) HasNonPawnMaterial(c Color) bool {
	return p.Occupied[c]&^(p.Pieces[c][Pawn]|p.Pieces[c][King]) != 0
}

// IsCapture reports whether m takes a piece, en passant included.
func (p *Position) IsCapture(m Move) bool {
	if p.board[m.To()] != NoPiece {
		return true
	}
	return m.To() == p.EnPassant && p.board[m.From()].Type() == Pawn
}

// IsQuiet reports whether m neither captures nor promotes.
func (p *Position) IsQuiet(m Move) bool {
	return !p.IsCapture(m) && m.Promotion() == NoPieceType
}

// Equal compares every field that defines the position, history included.
func (p *Position) Equal(o *Position) bool {
	if p.Pieces != o.Pieces || p.Occupied != o.Occupied || p.AllOccupied != o.AllOccupied || p.board != o.board {
		return false
	}
	if p.SideToMove != o.SideToMove || p.CastlingRights != o.CastlingRights || p.EnPassant != o.EnPassant {
		return false
	}
	if p.HalfMoveClock != o.HalfMoveClock || p.GamePly != o.GamePly || p.Hash != o.Hash {
		return false
	}
	if len(p.history) != len(o.history) {
		return false
	}
	for i := range p.history {
		if p.history[i] != o.history[i] {
			return false
		}
	}
	return true
}

// String draws the board followed by the FEN and hash.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n +---+---+---+---+---+---+---+---+\n")
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			pc := p.board[NewSquare(file, rank)]
			sb.WriteString(" | ")
			sb.WriteString(pc.String())
		}
		fmt.Fprintf(&sb, " | %d\n +---+---+---+---+---+---+---+---+\n", rank+1)
	}
	sb.WriteString("   a   b   c   d   e   f   g   h\n\n")
	fmt.Fprintf(&sb, "Fen: %s\n", p.ToFEN())
	fmt.Fprintf(&sb, "Key: %016X\n", p.Hash)
	return sb.String()
}
