package domain

// Outcome is the result of an operation that needs a signed-in user.
// A NoIdentity outcome still carries a usable fallback value (zero count,
// empty cart...) so callers that do not care can read Value directly,
// while callers that do can tell "no user" apart from "nothing there".
type Outcome[T any] struct {
	value      T
	identified bool
}

func Ok[T any](value T) Outcome[T] {
	return Outcome[T]{value: value, identified: true}
}

func NoIdentity[T any](fallback T) Outcome[T] {
	return Outcome[T]{value: fallback}
}

func (o Outcome[T]) Value() T {
	return o.value
}

func (o Outcome[T]) Identified() bool {
	return o.identified
}

// Get follows the comma-ok idiom: ok is false for NoIdentity.
func (o Outcome[T]) Get() (T, bool) {
	return o.value, o.identified
}
