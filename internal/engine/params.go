package engine

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Params holds the search margins and reductions. Values outside a
// parameter's declared range are clamped when set by name.
type Params struct {
	DeltaMargin       int // quiescence delta pruning margin
	RFPBase           int // reverse futility margin base
	RFPMultiplier     int // reverse futility margin per depth squared
	FPBase            int // futility margin base
	FPMultiplier      int // futility margin per depth
	NullMoveReduction int // plies removed on top of the null move itself
	LMRMoveThreshold  int // moves searched before reductions start
	LMRReduction      int // plies removed from a reduced probe
	AspirationWindow  int // half-width of the window around the last score
}

// ParamSpec describes one tunable.
type ParamSpec struct {
	Name     string
	Default  int
	Min, Max int
	field    func(*Params) *int
}

// ParamSpecs lists every tunable with its bounds, in the order they are
// advertised as options.
var ParamSpecs = []ParamSpec{
	{"DeltaMargin", 850, 100, 3000, func(p *Params) *int { return &p.DeltaMargin }},
	{"RFPBase", 250, 50, 900, func(p *Params) *int { return &p.RFPBase }},
	{"RFPMultiplier", 50, 0, 300, func(p *Params) *int { return &p.RFPMultiplier }},
	{"FPBase", 175, 50, 900, func(p *Params) *int { return &p.FPBase }},
	{"FPMultiplier", 100, 0, 500, func(p *Params) *int { return &p.FPMultiplier }},
	{"NullMoveReduction", 2, 1, 4, func(p *Params) *int { return &p.NullMoveReduction }},
	{"LMRMoveThreshold", 5, 1, 32, func(p *Params) *int { return &p.LMRMoveThreshold }},
	{"LMRReduction", 1, 1, 3, func(p *Params) *int { return &p.LMRReduction }},
	{"AspirationWindow", 20, 5, 500, func(p *Params) *int { return &p.AspirationWindow }},
}

// DefaultParams returns every tunable at its default.
func DefaultParams() Params {
	var p Params
	for _, s := range ParamSpecs {
		*s.field(&p) = s.Default
	}
	return p
}

// LookupParam finds a spec by case-insensitive name.
func LookupParam(name string) (ParamSpec, bool) {
	return lo.Find(ParamSpecs, func(s ParamSpec) bool {
		return strings.EqualFold(s.Name, name)
	})
}

// Set assigns the named tunable, clamped to its range, and returns the
// value actually stored.
func (p *Params) Set(name string, value int) (int, error) {
	spec, ok := LookupParam(name)
	if !ok {
		return 0, fmt.Errorf("unknown parameter %q", name)
	}
	v := lo.Clamp(value, spec.Min, spec.Max)
	*spec.field(p) = v
	return v, nil
}

// Get returns the named tunable.
func (p *Params) Get(name string) (int, bool) {
	spec, ok := LookupParam(name)
	if !ok {
		return 0, false
	}
	return *spec.field(p), true
}

// Values returns every tunable by name.
func (p *Params) Values() map[string]int {
	return lo.SliceToMap(ParamSpecs, func(s ParamSpec) (string, int) {
		return s.Name, *s.field(p)
	})
}
