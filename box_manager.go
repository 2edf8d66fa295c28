package lfmap

import "github.com/grafana/lfmap/internal/word"

// BoxManager is the manager paired with a BoxCodec default: it adds
// no reference-counting semantics of its own (a boxed value's Word is
// released by internal/table directly against the codec once a slot's
// prior value is overwritten or deleted), but gives callers a real
// KeyManager/ValueManager implementation to pass around without
// reaching into internal/word themselves.
type BoxManager[T any] struct {
	codec *word.BoxCodec[T]
}

// NewBoxManager constructs a manager bound to codec.
func NewBoxManager[T any](codec *word.BoxCodec[T]) *BoxManager[T] {
	return &BoxManager[T]{codec: codec}
}

func (m *BoxManager[T]) CloneAndRef(v T) T { return v }
func (m *BoxManager[T]) ReadAndRef(v T) T  { return v }
func (m *BoxManager[T]) Unref(T, int)      {}
func (m *BoxManager[T]) RegisterThread()   {}
func (m *BoxManager[T]) ForgetThread()     {}
