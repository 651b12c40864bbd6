package engine

import (
	"testing"

	"github.com/hailam/sonic/internal/board"
)

func TestTranspositionTableResize(t *testing.T) {
	tests := []struct {
		mb   int
		want uint64
	}{
		{1, 1 << 20 / ttEntrySize},
		{3, 2 << 20 / ttEntrySize},
		{0, 1 << 20 / ttEntrySize},
		{-5, 1 << 20 / ttEntrySize},
	}
	for _, tc := range tests {
		tt := NewTranspositionTable(tc.mb)
		if got := tt.Size(); got != tc.want {
			t.Errorf("NewTranspositionTable(%d).Size() = %d, want %d", tc.mb, got, tc.want)
		}
		if size := tt.Size(); size&(size-1) != 0 {
			t.Errorf("size %d is not a power of two", size)
		}
	}
}

func TestTranspositionTableBounds(t *testing.T) {
	const key = 0xDEADBEEF12345678
	move := board.NewMove(board.E2, board.E4)

	tests := []struct {
		name        string
		bound       Bound
		stored      int
		alpha, beta int
		wantOK      bool
		wantScore   int
	}{
		{"exact inside window", BoundExact, 40, -100, 100, true, 40},
		{"exact outside window", BoundExact, 400, -100, 100, true, 400},
		{"lower bound below beta", BoundLower, 40, -100, 100, false, 0},
		{"lower bound at beta", BoundLower, 100, -100, 100, true, 100},
		{"lower bound above beta", BoundLower, 250, -100, 100, true, 100},
		{"upper bound above alpha", BoundUpper, 40, -100, 100, false, 0},
		{"upper bound below alpha", BoundUpper, -250, -100, 100, true, -100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tt := NewTranspositionTable(1)
			tt.Store(key, 0, 5, tc.stored, move, tc.bound)

			score, m, ok := tt.Probe(key, 0, 5, tc.alpha, tc.beta)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && score != tc.wantScore {
				t.Errorf("score = %d, want %d", score, tc.wantScore)
			}
			if m != move {
				t.Errorf("move = %s, want %s", m, move)
			}
		})
	}
}

func TestTranspositionTableDepth(t *testing.T) {
	const key = 42
	move := board.NewMove(board.G1, board.F3)
	tt := NewTranspositionTable(1)
	tt.Store(key, 0, 4, 10, move, BoundExact)

	if _, m, ok := tt.Probe(key, 0, 6, -100, 100); ok || m != move {
		t.Errorf("shallow entry: ok = %v, move = %s; want unusable score and the stored move", ok, m)
	}
	if score, _, ok := tt.Probe(key, 0, 3, -100, 100); !ok || score != 10 {
		t.Errorf("deep entry: ok = %v, score = %d", ok, score)
	}
	if _, m, ok := tt.Probe(key+1<<40, 0, 0, -100, 100); ok || m != board.NoMove {
		t.Error("probe of an unknown key hit")
	}
}

func TestTranspositionTableMateScores(t *testing.T) {
	const key = 7
	tt := NewTranspositionTable(1)

	// Mate found 5 plies from the root, stored at ply 3.
	tt.Store(key, 3, 2, MateIn(5), board.NoMove, BoundExact)
	score, _, ok := tt.Probe(key, 1, 2, -ScoreInfinite, ScoreInfinite)
	if !ok || score != MateIn(3) {
		t.Errorf("probe at ply 1 = %d (ok %v), want %d", score, ok, MateIn(3))
	}

	tt.Store(key, 4, 2, MatedIn(6), board.NoMove, BoundExact)
	score, _, _ = tt.Probe(key, 2, 2, -ScoreInfinite, ScoreInfinite)
	if score != MatedIn(4) {
		t.Errorf("probe at ply 2 = %d, want %d", score, MatedIn(4))
	}
}

func TestTranspositionTableReplacement(t *testing.T) {
	const key = 99
	deep := board.NewMove(board.D2, board.D4)
	shallow := board.NewMove(board.E2, board.E4)

	tt := NewTranspositionTable(1)
	tt.Store(key, 0, 8, 30, deep, BoundLower)

	tt.Store(key, 0, 3, 50, shallow, BoundUpper)
	if _, m, _ := tt.Probe(key, 0, 0, -100, 100); m != deep {
		t.Errorf("shallow bound replaced a deep entry")
	}

	tt.Store(key, 0, 7, 50, shallow, BoundUpper)
	if _, m, _ := tt.Probe(key, 0, 0, -100, 100); m != shallow {
		t.Errorf("entry within the depth margin was kept")
	}

	tt.Store(key, 0, 1, 60, deep, BoundExact)
	if score, m, _ := tt.Probe(key, 0, 0, -100, 100); m != deep || score != 60 {
		t.Errorf("exact result did not replace the entry")
	}

	// Another position in the same slot always wins, even when shallower.
	other := key + tt.Size()
	tt.Store(key, 0, 20, 60, deep, BoundExact)
	tt.Store(other, 0, 1, -5, shallow, BoundUpper)
	if _, m, _ := tt.Probe(other, 0, 0, -100, 100); m != shallow {
		t.Errorf("colliding key did not replace the slot")
	}
	if _, m, _ := tt.Probe(key, 0, 0, -100, 100); m != board.NoMove {
		t.Errorf("replaced key still found, move %s", m)
	}
	if got := tt.HashFull(); got != 0 {
		t.Errorf("HashFull = %d for one occupied slot", got)
	}
}

func TestTranspositionTableHashFull(t *testing.T) {
	tt := NewTranspositionTable(1)
	if tt.HashFull() != 0 {
		t.Fatalf("empty table reports %d", tt.HashFull())
	}
	n := tt.Size() / 2
	for i := uint64(1); i <= n; i++ {
		tt.Store(i, 0, 1, 0, board.NoMove, BoundExact)
	}
	if got := tt.HashFull(); got != 500 {
		t.Errorf("HashFull = %d, want 500", got)
	}
	tt.Clear()
	if tt.HashFull() != 0 {
		t.Errorf("HashFull after Clear = %d", tt.HashFull())
	}
}
