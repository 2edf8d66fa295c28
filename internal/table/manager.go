package table

// KeyManager lets a caller hook external reference counting into key
// storage. The default is a no-op, treating keys as plain (POD)
// values.
type KeyManager[K any] interface {
	CloneAndRef(k K) K
	Unref(k K, count int)
	RegisterThread()
	ForgetThread()
}

// ValueManager is KeyManager's counterpart for values. ReadAndRef
// backs the IF_MATCHES comparison path: called on the slot's current
// (decoded) value, it must atomically observe that value and take a
// reference in one step so a concurrent Put/Delete/reclaim cannot free
// it out from under the comparison; the caller releases that
// temporary reference with Unref once the comparison is done.
type ValueManager[V any] interface {
	CloneAndRef(v V) V
	ReadAndRef(v V) V
	Unref(v V, count int)
	RegisterThread()
	ForgetThread()
}

// PODManager is the default manager for plain-old-data keys/values: no
// reference counting is needed because Go's garbage collector already
// owns the lifetime of K/V.
type PODManager[T any] struct{}

func (PODManager[T]) CloneAndRef(v T) T     { return v }
func (PODManager[T]) ReadAndRef(v T) T      { return v }
func (PODManager[T]) Unref(T, int)          {}
func (PODManager[T]) RegisterThread()       {}
func (PODManager[T]) ForgetThread()         {}
