package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a six-field FEN string.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) != 6 {
		return nil, fmt.Errorf("invalid FEN %q: need 6 fields, got %d", fen, len(parts))
	}

	pos := emptyPosition()

	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("invalid side to move %q", parts[1])
	}

	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant square: %w", err)
		}
		if sq.RelativeRank(pos.SideToMove) != 5 {
			return nil, fmt.Errorf("en passant square %s does not match side to move", sq)
		}
		// The pawn that just double-stepped stands behind the target, and
		// both the target and the pawn's origin are empty.
		them := pos.SideToMove.Other()
		pawnSq, originSq := sq-8, sq+8
		if them == White {
			pawnSq, originSq = sq+8, sq-8
		}
		if pos.board[pawnSq] != NewPiece(Pawn, them) || !pos.IsEmpty(sq) || !pos.IsEmpty(originSq) {
			return nil, fmt.Errorf("en passant square %s has no double-stepped pawn", sq)
		}
		pos.EnPassant = sq
	}

	hmc, err := strconv.Atoi(parts[4])
	if err != nil || hmc < 0 {
		return nil, fmt.Errorf("invalid half-move clock %q", parts[4])
	}
	pos.HalfMoveClock = hmc

	fmn, err := strconv.Atoi(parts[5])
	if err != nil || fmn < 0 {
		return nil, fmt.Errorf("invalid full-move number %q", parts[5])
	}
	pos.GamePly = 2*max(fmn-1, 0) + int(pos.SideToMove)

	if pos.Pieces[White][King].PopCount() != 1 || pos.Pieces[Black][King].PopCount() != 1 {
		return nil, fmt.Errorf("invalid FEN %q: each side needs exactly one king", fen)
	}

	pos.Hash = pos.ComputeHash()
	pos.history = make([]uint64, 0, MaxGamePly)
	return pos, nil
}

func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("invalid piece placement: need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("too many squares in rank %d", rank+1)
			}
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			piece := PieceFromChar(byte(c))
			if piece == NoPiece {
				return fmt.Errorf("invalid piece character %q", c)
			}
			pos.addPiece(piece, NewSquare(file, rank))
			file++
		}

		if file != 8 {
			return fmt.Errorf("invalid number of squares in rank %d: got %d", rank+1, file)
		}
	}
	return nil
}

func parseCastlingRights(pos *Position, castling string) error {
	if castling == "-" {
		pos.CastlingRights = NoCastling
		return nil
	}
	for _, c := range castling {
		i := strings.IndexRune("KQkq", c)
		if i < 0 {
			return fmt.Errorf("invalid castling character %q", c)
		}
		pos.CastlingRights |= 1 << i
	}
	return nil
}

// ToFEN returns the FEN representation of the position.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.board[NewSquare(file, rank)]
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	sb.WriteString(p.CastlingRights.String())
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber()))

	return sb.String()
}

// ParsePosition parses fen and plays moves, given in long algebraic
// notation, from it. It fails on the first move that is malformed or
// illegal.
func ParsePosition(fen string, moves ...string) (*Position, error) {
	pos, err := ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	for i, s := range moves {
		m, err := ParseMove(s)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		if !pos.IsLegal(m) {
			return nil, fmt.Errorf("move %d: %s is illegal in %s", i+1, s, pos.ToFEN())
		}
		pos.MakeMove(m)
	}
	return pos, nil
}
