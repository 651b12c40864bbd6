package engine

import (
	"testing"
	"time"

	"github.com/hailam/sonic/internal/board"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	want := Params{
		DeltaMargin:       850,
		RFPBase:           250,
		RFPMultiplier:     50,
		FPBase:            175,
		FPMultiplier:      100,
		NullMoveReduction: 2,
		LMRMoveThreshold:  5,
		LMRReduction:      1,
		AspirationWindow:  20,
	}
	if p != want {
		t.Errorf("DefaultParams() = %+v, want %+v", p, want)
	}
	for _, s := range ParamSpecs {
		if s.Default < s.Min || s.Default > s.Max {
			t.Errorf("%s default %d outside [%d, %d]", s.Name, s.Default, s.Min, s.Max)
		}
	}
}

func TestParamsSet(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		want    int
		wantErr bool
	}{
		{"DeltaMargin", 500, 500, false},
		{"deltamargin", 600, 600, false},
		{"DeltaMargin", 5, 100, false},
		{"LMRReduction", 9, 3, false},
		{"AspirationWindow", 0, 5, false},
		{"Contempt", 10, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			got, err := p.Set(tc.name, tc.value)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Set error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				if p != DefaultParams() {
					t.Error("failed Set changed the params")
				}
				return
			}
			if got != tc.want {
				t.Errorf("Set returned %d, want %d", got, tc.want)
			}
			if v, _ := p.Get(tc.name); v != tc.want {
				t.Errorf("Get = %d, want %d", v, tc.want)
			}
		})
	}
}

func TestParamsValues(t *testing.T) {
	p := DefaultParams()
	vals := p.Values()
	if len(vals) != len(ParamSpecs) {
		t.Fatalf("%d values for %d specs", len(vals), len(ParamSpecs))
	}
	if vals["NullMoveReduction"] != 2 {
		t.Errorf("NullMoveReduction = %d", vals["NullMoveReduction"])
	}
}

func TestTimeManagerBudget(t *testing.T) {
	tests := []struct {
		name   string
		limits Limits
		us     board.Color
		want   time.Duration
	}{
		{"unlimited", Limits{}, board.White, 0},
		{"infinite", Limits{Infinite: true, Time: [2]time.Duration{time.Minute, time.Minute}}, board.White, 0},
		{"depth only", Limits{Depth: 5}, board.White, 0},
		{"movetime", Limits{MoveTime: 300 * time.Millisecond, Time: [2]time.Duration{time.Minute, time.Minute}}, board.White, 300 * time.Millisecond},
		{"sudden death", Limits{Time: [2]time.Duration{150 * time.Second, time.Second}}, board.White, 10 * time.Second},
		{"black clock", Limits{Time: [2]time.Duration{150 * time.Second, 30 * time.Second}}, board.Black, 2 * time.Second},
		{"increment", Limits{Time: [2]time.Duration{15 * time.Second, 0}, Inc: [2]time.Duration{2 * time.Second, 0}}, board.White, 2 * time.Second},
		{"moves to go", Limits{Time: [2]time.Duration{10 * time.Second, 0}, MovesToGo: 5}, board.White, 2 * time.Second},
		{"moves to go capped", Limits{Time: [2]time.Duration{30 * time.Second, 0}, MovesToGo: 40}, board.White, 2 * time.Second},
		{"last move", Limits{Time: [2]time.Duration{time.Second, 0}, MovesToGo: 1}, board.White, 900 * time.Millisecond},
		{"increment beyond clock", Limits{Time: [2]time.Duration{time.Second, 0}, Inc: [2]time.Duration{4 * time.Second, 0}}, board.White, 900 * time.Millisecond},
		{"tiny clock", Limits{Time: [2]time.Duration{time.Microsecond, 0}}, board.White, time.Millisecond},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tm := NewTimeManager()
			tm.Init(tc.limits, tc.us)
			if got := tm.Budget(); got != tc.want {
				t.Errorf("Budget() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTimeManagerShouldStop(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(Limits{}, board.White)
	if tm.ShouldStop() {
		t.Error("unlimited search wants to stop")
	}

	tm.Init(Limits{MoveTime: time.Millisecond}, board.White)
	time.Sleep(5 * time.Millisecond)
	if !tm.ShouldStop() {
		t.Error("budget exceeded but ShouldStop is false")
	}
}
