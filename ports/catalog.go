package ports

import (
	"gotimbre/domain/candidate"
	"gotimbre/domain/core"
)

// Curve names an axis sampling curve
type Curve string

const (
	CurveLinear      Curve = "linear"
	CurveExponential Curve = "exp"
)

// Axis maps a unit coordinate onto a parameter value
type Axis interface {
	Name() candidate.AxisName
	// Sample maps t in [0,1] to a parameter value
	Sample(t float64) float64
	Curve() Curve
	Bounds() (lo, hi float64)
}

// Method is one registered synthesis method
type Method struct {
	ID              core.MethodID
	Category        core.Category
	Axes            []Axis
	TemplateVersion int
	Tags            map[string]string
}

// MethodCatalog is the registry of synthesis methods. It is constructed and
// injected; there is no process-wide registry.
type MethodCatalog interface {
	// Categories returns every category in a stable iteration order
	Categories() []core.Category
	// MethodsFor returns the method ids registered under a category
	MethodsFor(category core.Category) []core.MethodID
	// Method looks up a method by id
	Method(id core.MethodID) (Method, error)
}
