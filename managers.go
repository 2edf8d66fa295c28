package lfmap

import "github.com/grafana/lfmap/internal/table"

// KeyManager lets a caller hook external reference counting into key
// storage. The default, PODManager, treats keys as plain data with no
// lifetime of their own beyond Go's garbage collector.
type KeyManager[K any] = table.KeyManager[K]

// ValueManager is KeyManager's counterpart for stored values.
// ReadAndRef backs PutIfMatch/DeleteIfMatch's comparison path: called
// on the map's currently-stored value, it must atomically observe
// that value and take a reference in one step so a concurrent writer
// cannot invalidate it out from under the comparison.
type ValueManager[V any] = table.ValueManager[V]

// PODManager is the default manager for plain-old-data keys and
// values: Go's garbage collector already owns their lifetime, so every
// method is either identity or a no-op.
type PODManager[T any] = table.PODManager[T]
