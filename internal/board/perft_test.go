package board

import (
	"context"
	"errors"
	"testing"
	"time"
)

func mustParseFEN(t *testing.T, fen string) *Position {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func TestPerft(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		depth int
		want  uint64
	}{
		{"start d1", StartFEN, 1, 20},
		{"start d2", StartFEN, 2, 400},
		{"start d3", StartFEN, 3, 8902},
		{"start d4", StartFEN, 4, 197281},
		{"kiwipete d1", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 1, 48},
		{"kiwipete d2", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2, 2039},
		{"kiwipete d3", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 3, 97862},
		{"position3 d4", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 4, 43238},
		{"position4 d3", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 3, 9467},
		{"position4 mirrored d3", "r2q1rk1/pP1p2pp/Q4n2/bbp1p3/Np6/1B3NBn/pPPP1PPP/R3K2R b KQ - 0 1", 3, 9467},
		{"position5 d3", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", 3, 62379},
		{"position6 d3", "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10", 3, 89890},
		// The en passant capture would expose the black king to the rook on h4.
		{"en passant pin d1", "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1", 1, 6},
		{"en passant pin d2", "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1", 2, 94},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParseFEN(t, tc.fen)
			if got := Perft(pos, tc.depth); got != tc.want {
				t.Errorf("Perft(%d) = %d, want %d", tc.depth, got, tc.want)
			}
		})
	}
}

func TestDivideMatchesPerft(t *testing.T) {
	pos := NewPosition()
	before := pos.Copy()

	results, err := Divide(context.Background(), pos, 3)
	if err != nil {
		t.Fatalf("Divide: %v", err)
	}
	if len(results) != 20 {
		t.Errorf("Divide returned %d root moves, want 20", len(results))
	}
	if got := Total(results); got != 8902 {
		t.Errorf("Total = %d, want 8902", got)
	}
	if !pos.Equal(before) {
		t.Error("Divide modified the position")
	}
}

func TestDivideCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Divide(ctx, NewPosition(), 4); err == nil {
		t.Error("expected an error from a cancelled Divide")
	}
}

func TestDivideCancelledMidway(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	// Depth 8 would take far longer than the test timeout.
	if _, err := Divide(ctx, NewPosition(), 8); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("cancelled Divide returned after %v", elapsed)
	}
}

func TestPerftDeep(t *testing.T) {
	if testing.Short() {
		t.Skip("deep perft in short mode")
	}
	tests := []struct {
		name  string
		fen   string
		depth int
		want  uint64
	}{
		{"start d5", StartFEN, 5, 4865609},
		{"start d6", StartFEN, 6, 119060324},
		{"kiwipete d4", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 4, 4085603},
		{"position3 d6", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 6, 11030083},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			results, err := Divide(t.Context(), mustParseFEN(t, tc.fen), tc.depth)
			if err != nil {
				t.Fatal(err)
			}
			if got := Total(results); got != tc.want {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.want)
			}
		})
	}
}
