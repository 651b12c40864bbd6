package bench

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hailam/sonic/internal/engine"
)

func TestBenchPositionsParse(t *testing.T) {
	for i, s := range Positions {
		pos, err := ParseBenchPosition(s)
		if err != nil {
			t.Errorf("position %d: %v", i+1, err)
			continue
		}
		if len(pos.LegalMoves()) == 0 {
			t.Errorf("position %d has no legal moves", i+1)
		}
	}

	pos, err := ParseBenchPosition(Positions[4])
	if err != nil {
		t.Fatal(err)
	}
	if pos.HistoryLen() != 1 {
		t.Errorf("move list not applied: history %d", pos.HistoryLen())
	}
}

func TestRun(t *testing.T) {
	eng := engine.NewEngine(4)
	called := false
	eng.OnInfo = func(engine.SearchInfo) { called = true }

	var buf bytes.Buffer
	sum, err := Run(context.Background(), &buf, eng, 2)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Nodes == 0 {
		t.Error("no nodes searched")
	}
	out := buf.String()
	for _, want := range []string{"Position [1/10]", "Position [10/10]", "info depth 2", "Nodes searched"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if got := strings.Count(out, "bestmove "); got != len(Positions) {
		t.Errorf("%d bestmove lines, want %d", got, len(Positions))
	}

	eng.OnInfo(engine.SearchInfo{})
	if !called {
		t.Error("Run did not restore the caller's OnInfo")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if _, err := Run(ctx, &buf, engine.NewEngine(1), 2); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunPerft(t *testing.T) {
	cases := []PerftCase{
		{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", 3, 8902},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2, 2039},
		{"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 3, 2812},
	}
	var buf bytes.Buffer
	if err := RunPerft(context.Background(), &buf, cases); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "\n"); got != len(cases) {
		t.Errorf("%d output lines, want %d", got, len(cases))
	}

	bad := []PerftCase{{cases[0].FEN, 2, 401}}
	err := RunPerft(context.Background(), &buf, bad)
	var perr *PerftError
	if !errors.As(err, &perr) || perr.Got != 400 {
		t.Errorf("err = %v, want a PerftError with 400 nodes", err)
	}
}

func TestFormatInfo(t *testing.T) {
	info := engine.SearchInfo{Depth: 3, SelDepth: 5, Score: engine.MateIn(3), Nodes: 1000, HashFull: 2}
	got := FormatInfo(info)
	want := "info depth 3 seldepth 5 score mate 2 nodes 1000 nps 0 hashfull 2 time 0"
	if got != want {
		t.Errorf("FormatInfo = %q, want %q", got, want)
	}
}
