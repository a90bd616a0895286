package catalog

import (
	"math"

	"gotimbre/domain/candidate"
	"gotimbre/ports"
)

func clampUnit(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// LinearAxis interpolates lo..hi linearly
type LinearAxis struct {
	name   candidate.AxisName
	lo, hi float64
}

// Linear creates a linear axis
func Linear(name candidate.AxisName, lo, hi float64) LinearAxis {
	return LinearAxis{name: name, lo: lo, hi: hi}
}

func (a LinearAxis) Name() candidate.AxisName   { return a.name }
func (a LinearAxis) Curve() ports.Curve         { return ports.CurveLinear }
func (a LinearAxis) Bounds() (float64, float64) { return a.lo, a.hi }

// Sample maps t to lo + t*(hi-lo)
func (a LinearAxis) Sample(t float64) float64 {
	return a.lo + clampUnit(t)*(a.hi-a.lo)
}

// ExpAxis interpolates lo..hi geometrically; both bounds must be positive
type ExpAxis struct {
	name   candidate.AxisName
	lo, hi float64
}

// Exp creates an exponential axis
func Exp(name candidate.AxisName, lo, hi float64) ExpAxis {
	return ExpAxis{name: name, lo: lo, hi: hi}
}

func (a ExpAxis) Name() candidate.AxisName   { return a.name }
func (a ExpAxis) Curve() ports.Curve         { return ports.CurveExponential }
func (a ExpAxis) Bounds() (float64, float64) { return a.lo, a.hi }

// Sample maps t to lo * (hi/lo)^t
func (a ExpAxis) Sample(t float64) float64 {
	return a.lo * math.Pow(a.hi/a.lo, clampUnit(t))
}
