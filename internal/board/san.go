package board

import (
	"strings"
)

// ToSAN converts a legal move to Standard Algebraic Notation.
func (m Move) ToSAN(pos *Position) string {
	if m == NoMove {
		return "-"
	}

	from, to := m.From(), m.To()
	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return m.String() // Fallback to UCI
	}
	pt := piece.Type()

	var sb strings.Builder
	switch {
	case pt == King && to == from+2:
		sb.WriteString("O-O")
	case pt == King && from == to+2:
		sb.WriteString("O-O-O")
	default:
		if pt != Pawn {
			sb.WriteByte("PNBRQK"[pt])
			sb.WriteString(disambiguation(pos, m, pt))
		}
		if pos.IsCapture(m) {
			if pt == Pawn {
				sb.WriteByte('a' + byte(from.File()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(to.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte("PNBRQK"[m.Promotion()])
		}
	}

	undo, _ := pos.MakeMove(m)
	switch {
	case pos.IsCheckmate():
		sb.WriteByte('#')
	case pos.InCheck():
		sb.WriteByte('+')
	}
	pos.UnmakeMove(undo)

	return sb.String()
}

// disambiguation returns the origin file, rank or square needed to tell m
// apart from other legal moves of the same piece type to the same square.
func disambiguation(pos *Position, m Move, pt PieceType) string {
	from, to := m.From(), m.To()

	var others []Square
	for _, lm := range pos.LegalMoves() {
		if lm.To() == to && lm.From() != from && pos.PieceAt(lm.From()).Type() == pt {
			others = append(others, lm.From())
		}
	}
	if len(others) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, sq := range others {
		sameFile = sameFile || sq.File() == from.File()
		sameRank = sameRank || sq.Rank() == from.Rank()
	}
	switch {
	case !sameFile:
		return string(rune('a' + from.File()))
	case !sameRank:
		return string(rune('1' + from.Rank()))
	}
	return from.String()
}

// MovesToSAN converts a line of moves played from pos to SAN. pos is not
// modified.
func MovesToSAN(pos *Position, moves []Move) []string {
	result := make([]string, 0, len(moves))
	p := pos.Copy()
	for _, m := range moves {
		if !p.IsLegal(m) {
			break
		}
		result = append(result, m.ToSAN(p))
		p.MakeMove(m)
	}
	return result
}
