package engine

import (
	"time"

	"github.com/hailam/sonic/internal/board"
)

// Limits bounds one search. Zero values mean "no limit" for each field.
type Limits struct {
	Time      [2]time.Duration // remaining clock per color
	Inc       [2]time.Duration // increment per move per color
	MovesToGo int              // moves to the next time control, 0 for sudden death
	MoveTime  time.Duration    // exact time for this move, overrides the clock
	Depth     int              // maximum iteration depth
	Nodes     uint64           // node budget
	Infinite  bool             // search until stopped
}

// Fraction of the remaining clock spent on one move when no moves-to-go
// count is given.
const defaultMovesToGo = 15

// TimeManager turns Limits into a deadline for one search.
type TimeManager struct {
	startTime time.Time
	budget    time.Duration // 0 means unlimited
}

// NewTimeManager creates a time manager; call Init before each search.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init starts the clock and computes the budget for the side to move:
// movetime if given, otherwise remaining/movestogo plus half the increment.
func (tm *TimeManager) Init(limits Limits, us board.Color) {
	tm.startTime = time.Now()
	tm.budget = 0

	switch {
	case limits.Infinite:
	case limits.MoveTime > 0:
		tm.budget = limits.MoveTime
	case limits.Time[us] > 0:
		mtg := defaultMovesToGo
		if limits.MovesToGo > 0 {
			mtg = min(limits.MovesToGo, defaultMovesToGo)
		}
		tm.budget = limits.Time[us]/time.Duration(mtg) + limits.Inc[us]/2
		// Never plan past the clock itself.
		if tm.budget >= limits.Time[us] {
			tm.budget = limits.Time[us] * 9 / 10
		}
		tm.budget = max(tm.budget, time.Millisecond)
	}
}

// Elapsed returns the time since Init.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Budget returns the allotted time, 0 if unlimited.
func (tm *TimeManager) Budget() time.Duration {
	return tm.budget
}

// ShouldStop reports whether the budget is used up.
func (tm *TimeManager) ShouldStop() bool {
	return tm.budget > 0 && tm.Elapsed() >= tm.budget
}
