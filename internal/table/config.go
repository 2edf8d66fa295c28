package table

import "github.com/grafana/lfmap/internal/word"

// Config is shared, read-only configuration threaded through every
// generation of one map: the hash/equality functions, the codecs
// selected for K and V, the target density, and the external
// key/value managers.
type Config[K comparable, V any] struct {
	Hash       func(K) uint64
	KeyEqual   func(K, K) bool
	ValueEqual func(V, V) bool

	KeyCodec   word.Codec[K]
	ValueCodec word.Codec[V]

	Density float64

	KeyManager   KeyManager[K]
	ValueManager ValueManager[V]
}
