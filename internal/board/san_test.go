package board

import (
	"slices"
	"testing"
)

func TestToSAN(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		move string
		want string
	}{
		{"pawn push", StartFEN, "e2e4", "e4"},
		{"knight", StartFEN, "g1f3", "Nf3"},
		{"pawn capture", "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1", "e4d5", "exd5"},
		{"en passant", "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1", "e5d6", "exd6"},
		{"short castle", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", "O-O"},
		{"long castle", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8c8", "O-O-O"},
		{"promotion", "8/P6k/8/8/8/8/8/K7 w - - 0 1", "a7a8q", "a8=Q"},
		{"underpromotion", "8/P7/8/8/8/8/2k5/K7 w - - 0 1", "a7a8n", "a8=N"},
		{"file disambiguation", "4k3/8/8/8/8/8/4K3/R6R w - - 0 1", "a1d1", "Rad1"},
		{"rank disambiguation", "4k3/R7/8/8/8/8/8/R3K3 w - - 0 1", "a1a4", "R1a4"},
		{"check", "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", "a1a8", "Ra8+"},
		{"mate", "r5k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1", "d1d8", "Rd8+"},
		{"back rank mate", "6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1", "d1d8", "Rd8#"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParseFEN(t, tc.fen)
			m, err := ParseMove(tc.move)
			if err != nil {
				t.Fatal(err)
			}
			if got := m.ToSAN(pos); got != tc.want {
				t.Errorf("ToSAN(%s) = %q, want %q", tc.move, got, tc.want)
			}
			if got := pos.ToFEN(); got != mustParseFEN(t, tc.fen).ToFEN() {
				t.Errorf("ToSAN modified the position: %s", got)
			}
		})
	}
}

func TestMovesToSAN(t *testing.T) {
	pos := NewPosition()
	var line []Move
	for _, s := range []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "a7a6", "e1g1", "e1g1"} {
		m, err := ParseMove(s)
		if err != nil {
			t.Fatal(err)
		}
		line = append(line, m)
	}

	got := MovesToSAN(pos, line)
	want := []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6", "O-O"}
	if !slices.Equal(got, want) {
		t.Errorf("MovesToSAN = %v, want %v (stopping at the illegal repeat)", got, want)
	}
	if pos.ToFEN() != StartFEN {
		t.Error("MovesToSAN modified the position")
	}
}
