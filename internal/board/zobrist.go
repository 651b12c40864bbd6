package board

// Zobrist keys, drawn from a fixed-seed PRNG so hashes are stable across runs.
var (
	zobristPiece      [12][64]uint64 // [Piece][Square]
	zobristEnPassant  [8]uint64      // one per file
	zobristCastling   [16]uint64     // one per castling-rights combination
	zobristSideToMove uint64         // XOR'd in when black is to move
)

type prng struct {
	state uint64
}

// xorshift64*
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := &prng{state: 0x98F107A2BEEF1234}

	for pc := WhitePawn; pc < NoPiece; pc++ {
		for sq := A1; sq <= H8; sq++ {
			zobristPiece[pc][sq] = rng.next()
		}
	}
	for file := range zobristEnPassant {
		zobristEnPassant[file] = rng.next()
	}
	for cr := range zobristCastling {
		zobristCastling[cr] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// epKey returns the en-passant contribution to the hash: only a target that
// a pawn of the side to move could actually capture onto is hashed.
func (p *Position) epKey() uint64 {
	if p.hasEnPassantCapture() {
		return zobristEnPassant[p.EnPassant.File()]
	}
	return 0
}

func (p *Position) hasEnPassantCapture() bool {
	if p.EnPassant == NoSquare {
		return false
	}
	us := p.SideToMove
	return pawnAttacks[us.Other()][p.EnPassant]&p.Pieces[us][Pawn] != 0
}

// ComputeHash recomputes the position hash from scratch.
func (p *Position) ComputeHash() uint64 {
	var hash uint64
	for sq := A1; sq <= H8; sq++ {
		if pc := p.board[sq]; pc != NoPiece {
			hash ^= zobristPiece[pc][sq]
		}
	}
	if p.SideToMove == Black {
		hash ^= zobristSideToMove
	}
	hash ^= zobristCastling[p.CastlingRights]
	hash ^= p.epKey()
	return hash
}
