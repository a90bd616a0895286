package candidate

// Outcome distinguishes "not yet evaluated" from an evaluated value, so a
// candidate that was never scored cannot be confused with one scored as zero.
type Outcome[T any] struct {
	value     T
	evaluated bool
}

// Evaluated wraps a computed value
func Evaluated[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, evaluated: true}
}

// Unevaluated returns the empty outcome
func Unevaluated[T any]() Outcome[T] {
	return Outcome[T]{}
}

// Get returns the value and whether it was evaluated
func (o Outcome[T]) Get() (T, bool) {
	return o.value, o.evaluated
}

// IsEvaluated reports whether a value is present
func (o Outcome[T]) IsEvaluated() bool {
	return o.evaluated
}

// OrElse returns the value, or def when unevaluated
func (o Outcome[T]) OrElse(def T) T {
	if o.evaluated {
		return o.value
	}
	return def
}
