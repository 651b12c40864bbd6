package board

// GenType selects which pseudo-legal moves Generate produces.
type GenType uint8

const (
	// Captures are moves landing on an enemy piece, en passant and
	// capturing promotions included.
	Captures GenType = iota
	// Quiets are all other moves: pushes, quiet promotions and castling.
	Quiets
	// All is Captures followed by Quiets.
	All
)

// Generate appends the pseudo-legal moves of the requested kind to ml.
// Moves may leave the mover's king attacked; MakeMove reports that.
func (p *Position) Generate(gt GenType, ml *MoveList) {
	us := p.SideToMove
	them := us.Other()

	var targets Bitboard
	switch gt {
	case Captures:
		targets = p.Occupied[them]
	case Quiets:
		targets = ^p.AllOccupied
	default:
		targets = ^p.Occupied[us]
	}

	p.generatePawnMoves(gt, ml)

	for pt := Knight; pt <= King; pt++ {
		pieces := p.Pieces[us][pt]
		for pieces != 0 {
			from := pieces.PopLSB()
			attacks := p.pieceAttacks(pt, from) & targets
			for attacks != 0 {
				ml.Add(NewMove(from, attacks.PopLSB()))
			}
		}
	}

	if gt != Captures {
		p.generateCastlingMoves(ml)
	}
}

func (p *Position) pieceAttacks(pt PieceType, sq Square) Bitboard {
	switch pt {
	case Knight:
		return KnightAttacks(sq)
	case Bishop:
		return BishopAttacks(sq, p.AllOccupied)
	case Rook:
		return RookAttacks(sq, p.AllOccupied)
	case Queen:
		return QueenAttacks(sq, p.AllOccupied)
	case King:
		return KingAttacks(sq)
	}
	return Empty
}

func (p *Position) generatePawnMoves(gt GenType, ml *MoveList) {
	us := p.SideToMove
	pawns := p.Pieces[us][Pawn]
	empty := ^p.AllOccupied
	enemies := p.Occupied[p.SideToMove.Other()]

	var push1, push2, attackW, attackE Bitboard
	var promotionRank Bitboard
	var up int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackW = pawns.NorthWest()
		attackE = pawns.NorthEast()
		promotionRank = Rank8
		up = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackW = pawns.SouthWest()
		attackE = pawns.SouthEast()
		promotionRank = Rank1
		up = -8
	}

	if gt != Captures {
		addPawnMoves(ml, push1&^promotionRank, up)
		addPawnMoves(ml, push2, 2*up)
		addPromotions(ml, push1&promotionRank, up)
	}

	if gt == Quiets {
		return
	}

	// West captures come from the square one file east, and vice versa.
	addPawnMoves(ml, attackW&enemies&^promotionRank, up-1)
	addPawnMoves(ml, attackE&enemies&^promotionRank, up+1)
	addPromotions(ml, attackW&enemies&promotionRank, up-1)
	addPromotions(ml, attackE&enemies&promotionRank, up+1)

	if p.EnPassant != NoSquare {
		attackers := pawnAttacks[us.Other()][p.EnPassant] & pawns
		for attackers != 0 {
			ml.Add(NewMove(attackers.PopLSB(), p.EnPassant))
		}
	}
}

// addPawnMoves adds one move per target, the origin being delta squares back.
func addPawnMoves(ml *MoveList, targets Bitboard, delta int) {
	for targets != 0 {
		to := targets.PopLSB()
		ml.Add(NewMove(Square(int(to)-delta), to))
	}
}

// addPromotions adds the four promotions per target, queen first.
func addPromotions(ml *MoveList, targets Bitboard, delta int) {
	for targets != 0 {
		to := targets.PopLSB()
		from := Square(int(to) - delta)
		ml.Add(NewPromotion(from, to, Queen))
		ml.Add(NewPromotion(from, to, Rook))
		ml.Add(NewPromotion(from, to, Bishop))
		ml.Add(NewPromotion(from, to, Knight))
	}
}

// generateCastlingMoves adds castling when the right is held, the squares
// between king and rook are empty and no square on the king's path is
// attacked. The king's own square is part of that path.
func (p *Position) generateCastlingMoves(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	for i := 2 * int(us); i < 2*int(us)+2; i++ {
		cs := &castlings[i]
		if p.CastlingRights&cs.right == 0 || p.AllOccupied&cs.empty != 0 {
			continue
		}
		if p.board[cs.king] != NewPiece(King, us) || p.board[cs.rookFrom] != NewPiece(Rook, us) {
			continue
		}
		safe := true
		for path := cs.safe; path != 0; {
			if p.IsSquareAttacked(path.PopLSB(), them) {
				safe = false
				break
			}
		}
		if safe {
			ml.Add(NewMove(cs.king, cs.kingTo))
		}
	}
}

// LegalMoves returns every legal move in generation order.
func (p *Position) LegalMoves() []Move {
	var ml MoveList
	p.Generate(All, &ml)
	legal := make([]Move, 0, ml.Len())
	for _, m := range ml.Slice() {
		undo, ok := p.MakeMove(m)
		p.UnmakeMove(undo)
		if ok {
			legal = append(legal, m)
		}
	}
	return legal
}

// IsLegal reports whether m is a legal move in the position.
func (p *Position) IsLegal(m Move) bool {
	var ml MoveList
	p.Generate(All, &ml)
	if !ml.Contains(m) {
		return false
	}
	undo, ok := p.MakeMove(m)
	p.UnmakeMove(undo)
	return ok
}

// IsCheckmate reports whether the side to move is mated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && len(p.LegalMoves()) == 0
}

// IsStalemate reports whether the side to move has no legal move but is not in check.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && len(p.LegalMoves()) == 0
}
