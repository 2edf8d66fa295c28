package lfmap

import "reflect"

// defaultValueEqual falls back to reflect.DeepEqual when the caller
// hasn't supplied WithValueEqual. V is only constrained `any`, so there
// is no `==` available generically; nothing in the dependency stack
// offers a generic deep-equality helper, so this is the one place the
// standard library's own facility is the right tool, not a library
// substitute (see DESIGN.md).
func defaultValueEqual[V any]() func(V, V) bool {
	return func(a, b V) bool {
		return reflect.DeepEqual(a, b)
	}
}
