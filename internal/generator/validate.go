package generator

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gotimbre/domain/candidate"
	"gotimbre/domain/core"
	apperrors "gotimbre/internal/errors"
	"gotimbre/ports"
)

// ValidateCatalog is the compliance gate that must pass before any sampling.
// It checks every registered method and returns the active categories (those
// with a positive prior weight and at least one method) in catalog order.
func ValidateCatalog(catalog ports.MethodCatalog, priors map[core.Category]float64) ([]core.Category, error) {
	if catalog == nil {
		return nil, apperrors.ConfigInvalid("method catalog is required")
	}

	var problems []error
	var active []core.Category
	for _, cat := range catalog.Categories() {
		ids := catalog.MethodsFor(cat)
		for _, id := range ids {
			m, err := catalog.Method(id)
			if err != nil {
				problems = append(problems, core.NewComplianceError(id, err.Error()))
				continue
			}
			problems = append(problems, checkMethod(cat, m)...)
		}
		if len(ids) > 0 && priorWeight(priors, cat) > 0 {
			active = append(active, cat)
		}
	}

	if len(problems) > 0 {
		return nil, apperrors.CatalogNonCompliant(errors.Join(problems...))
	}
	if len(active) == 0 {
		return nil, apperrors.WithCode(apperrors.CodeConfigInvalid, "generation refused", core.ErrNoActiveCategories)
	}
	return active, nil
}

// priorWeight returns the configured prior; categories without an entry
// default to 1.
func priorWeight(priors map[core.Category]float64, cat core.Category) float64 {
	if w, ok := priors[cat]; ok {
		return w
	}
	return 1.0
}

func checkMethod(cat core.Category, m ports.Method) []error {
	var problems []error
	fail := func(format string, args ...interface{}) {
		problems = append(problems, core.NewComplianceError(m.ID, fmt.Sprintf(format, args...)))
	}

	if m.ID == "" {
		fail("empty method id")
	}
	if m.Category != cat {
		fail("listed under %q but declares category %q", cat, m.Category)
	}
	if m.TemplateVersion < 1 {
		fail("template version %d < 1", m.TemplateVersion)
	}
	if len(m.Axes) == 0 {
		fail("no parameter axes")
	}

	seen := make(map[candidate.AxisName]bool, len(m.Axes))
	for i, axis := range m.Axes {
		if axis == nil {
			fail("axis %d is nil", i)
			continue
		}
		name := axis.Name()
		if name == "" {
			fail("axis %d has no name", i)
		}
		if seen[name] {
			fail("duplicate axis %q", name)
		}
		seen[name] = true

		lo, hi := axis.Bounds()
		if !finite(lo) || !finite(hi) || lo >= hi {
			fail("axis %q has invalid bounds [%v, %v]", name, lo, hi)
		}
		if axis.Curve() == ports.CurveExponential && (lo <= 0 || hi <= 0) {
			fail("exponential axis %q needs positive bounds", name)
		}
		if !finite(axis.Sample(0)) || !finite(axis.Sample(1)) {
			fail("axis %q samples a non-finite value", name)
		}
	}
	return problems
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CatalogHash fingerprints everything in the catalog that affects sampling:
// categories, method order, template versions, axis names, curves and bounds.
func CatalogHash(catalog ports.MethodCatalog) core.Hash {
	var b strings.Builder
	for _, cat := range catalog.Categories() {
		fmt.Fprintf(&b, "[%s]", cat)
		for _, id := range catalog.MethodsFor(cat) {
			m, err := catalog.Method(id)
			if err != nil {
				fmt.Fprintf(&b, "%s:missing;", id)
				continue
			}
			fmt.Fprintf(&b, "%s@%d", m.ID, m.TemplateVersion)
			for _, axis := range m.Axes {
				lo, hi := axis.Bounds()
				fmt.Fprintf(&b, "|%s:%s:%g:%g", axis.Name(), axis.Curve(), lo, hi)
			}
			b.WriteString(";")
		}
	}
	return core.NewHash([]byte(b.String()))
}
