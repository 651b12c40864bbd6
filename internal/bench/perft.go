package bench

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hailam/sonic/internal/board"
)

// PerftCase is a position with its known leaf count at Depth.
type PerftCase struct {
	FEN   string
	Depth int
	Nodes uint64
}

// PerftSuite is the move generator regression set.
var PerftSuite = []PerftCase{
	{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", 6, 119060324},
	{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 5, 193690690},
	{"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 7, 178633661},
	{"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 6, 706045033},
	{"r2q1rk1/pP1p2pp/Q4n2/bbp1p3/Np6/1B3NBn/pPPP1PPP/R3K2R b KQ - 0 1", 6, 706045033},
	{"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", 5, 89941194},
	{"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10", 5, 164075551},
}

// PerftError reports a leaf count that differs from the expected one.
type PerftError struct {
	Case PerftCase
	Got  uint64
}

func (e *PerftError) Error() string {
	return fmt.Sprintf("perft %q depth %d: got %d nodes, want %d", e.Case.FEN, e.Case.Depth, e.Got, e.Case.Nodes)
}

// RunPerft runs every case, root moves in parallel, writing one line per
// case to w. It stops at the first mismatch.
func RunPerft(ctx context.Context, w io.Writer, cases []PerftCase) error {
	for i, tc := range cases {
		pos, err := board.ParseFEN(tc.FEN)
		if err != nil {
			return err
		}

		start := time.Now()
		results, err := board.Divide(ctx, pos, tc.Depth)
		if err != nil {
			return err
		}
		nodes := board.Total(results)
		ms := time.Since(start).Milliseconds()

		fmt.Fprintf(w, "Position [%d/%d]: depth %-2d time %-5d nodes %-12d nps %-9d fen %s\n",
			i+1, len(cases), tc.Depth, ms, nodes, nodes*1000/uint64(ms+1), tc.FEN)
		if nodes != tc.Nodes {
			return &PerftError{Case: tc, Got: nodes}
		}
	}
	return nil
}
