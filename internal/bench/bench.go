// Package bench runs the fixed search benchmark and the perft suite.
package bench

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hailam/sonic/internal/board"
	"github.com/hailam/sonic/internal/engine"
)

// DefaultDepth is the search depth of a bench run.
const DefaultDepth = 7

// Positions are the bench positions: a FEN, optionally followed by
// "moves" and a move list.
var Positions = []string{
	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 10",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 11",
	"4rrk1/pp1n3p/3q2pQ/2p1pb2/2PP4/2P3N1/P2B2PP/4RRK1 b - - 7 19",
	"rq3rk1/ppp2ppp/1bnpb3/3N2B1/3NP3/7P/PPPQ1PP1/2KR3R w - - 7 14 moves d4e6",
	"r1bq1r1k/1pp1n1pp/1p1p4/4p2Q/4Pp2/1BNP4/PPP2PPP/3R1RK1 w - - 2 14 moves g2g4",
	"r3r1k1/2p2ppp/p1p1bn2/8/1q2P3/2NPQN2/PPP3PP/R4RK1 b - - 2 15",
	"r1bbk1nr/pp3p1p/2n5/1N4p1/2Np1B2/8/PPP2PPP/2KR1B1R w kq - 0 13",
	"r1bq1rk1/ppp1nppp/4n3/3p3Q/3P4/1BP1B3/PP1N2PP/R4RK1 w - - 1 16",
	"4r1k1/r1q2ppp/ppp2n2/4P3/5Rb1/1N1BQ3/PPP3PP/R5K1 w - - 1 17",
}

// ParseBenchPosition sets up one entry of Positions.
func ParseBenchPosition(s string) (*board.Position, error) {
	fen, moves, _ := strings.Cut(s, " moves ")
	return board.ParsePosition(fen, strings.Fields(moves)...)
}

// Summary totals a bench run.
type Summary struct {
	Nodes   uint64
	Elapsed time.Duration
}

// NPS returns nodes per second.
func (s Summary) NPS() uint64 {
	return s.Nodes * 1000 / uint64(s.Elapsed.Milliseconds()+1)
}

// Run searches every bench position to depth with eng, writing the search
// output and a summary to w. The engine's table is cleared first so runs
// are reproducible.
func Run(ctx context.Context, w io.Writer, eng *engine.Engine, depth int) (Summary, error) {
	var sum Summary
	if depth <= 0 {
		depth = DefaultDepth
	}

	onInfo := eng.OnInfo
	defer func() { eng.OnInfo = onInfo }()
	eng.OnInfo = func(info engine.SearchInfo) {
		fmt.Fprintln(w, FormatInfo(info))
	}
	eng.Clear()

	start := time.Now()
	for i, s := range Positions {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		pos, err := ParseBenchPosition(s)
		if err != nil {
			return sum, fmt.Errorf("bench position %d: %w", i+1, err)
		}
		fmt.Fprintf(w, "Position [%d/%d] (%s)\n", i+1, len(Positions), pos.ToFEN())
		res := eng.Search(ctx, pos, engine.Limits{Depth: depth})
		fmt.Fprintf(w, "bestmove %s\n\n", res.BestMove)
		sum.Nodes += res.Nodes
	}
	sum.Elapsed = time.Since(start)

	fmt.Fprintln(w, strings.Repeat("=", 20))
	fmt.Fprintf(w, "Total time (ms) : %d\n", sum.Elapsed.Milliseconds())
	fmt.Fprintf(w, "Nodes searched  : %d\n", sum.Nodes)
	fmt.Fprintf(w, "Nodes/second    : %d\n", sum.NPS())
	return sum, nil
}

// FormatInfo renders a search report as a UCI info line.
func FormatInfo(info engine.SearchInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d seldepth %d score %s nodes %d nps %d hashfull %d time %d",
		info.Depth, info.SelDepth, engine.ScoreString(info.Score), info.Nodes, info.NPS,
		info.HashFull, info.Time.Milliseconds())
	if len(info.PV) > 0 {
		sb.WriteString(" pv")
		for _, m := range info.PV {
			sb.WriteByte(' ')
			sb.WriteString(m.String())
		}
	}
	return sb.String()
}
