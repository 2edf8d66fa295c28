package lfmap

import (
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/grafana/lfmap/internal/table"
	"github.com/grafana/lfmap/internal/word"
)

// DefaultDensity is the target load factor used to size a
// generation's successor, mirroring friggdb/pool's defaultConfig
// pattern of naming every tunable's default as a package constant.
const DefaultDensity = 0.5

// DefaultInitialSize is the target alive-key count the first
// generation is sized for when no WithInitialSize option is given,
// fed through the same SuccessorSize rounding every later generation
// in the chain uses.
const DefaultInitialSize = 16

type mapOptions[K comparable, V any] struct {
	density     float64
	initialSize uint64

	hash       func(K) uint64
	keyEqual   func(K, K) bool
	valueEqual func(V, V) bool

	keyCodec   word.Codec[K]
	valueCodec word.Codec[V]

	keyManager   KeyManager[K]
	valueManager ValueManager[V]

	logger log.Logger
	reg    prometheus.Registerer
	name   string
}

// Option configures a Map at construction time, following the same
// functional-options-over-a-config-struct convention used throughout
// this codebase (e.g. PoolConfig).
type Option[K comparable, V any] func(*mapOptions[K, V])

// WithDensity overrides DefaultDensity.
func WithDensity[K comparable, V any](d float64) Option[K, V] {
	return func(o *mapOptions[K, V]) { o.density = d }
}

// WithInitialSize overrides DefaultInitialSize. size is a target
// alive-key count, not a raw slot count: New rounds it up to a slot
// count via the same SuccessorSize computation used to size every
// later generation, so callers don't need to pre-compute a power of
// two themselves.
func WithInitialSize[K comparable, V any](size uint64) Option[K, V] {
	return func(o *mapOptions[K, V]) { o.initialSize = size }
}

// WithHasher supplies the key-hash function. It is required for every
// K: New does not fall back to DefaultHasher or IntHasher, and panics
// when no hasher is configured.
func WithHasher[K comparable, V any](h func(K) uint64) Option[K, V] {
	return func(o *mapOptions[K, V]) { o.hash = h }
}

// WithKeyEqual overrides the default == comparison for K (useful when
// K is a struct containing fields that should be excluded from
// equality).
func WithKeyEqual[K comparable, V any](eq func(K, K) bool) Option[K, V] {
	return func(o *mapOptions[K, V]) { o.keyEqual = eq }
}

// WithValueEqual overrides the default equality used by PutIfMatch and
// DeleteIfMatch. When it is not given, values are compared with
// reflect.DeepEqual.
func WithValueEqual[K comparable, V any](eq func(V, V) bool) Option[K, V] {
	return func(o *mapOptions[K, V]) { o.valueEqual = eq }
}

// WithIntegerKeys selects the direct integer encoding for K instead of
// the default boxed-pointer encoding, avoiding a heap allocation per
// key.
func WithIntegerKeys[K word.Integer, V any]() Option[K, V] {
	return func(o *mapOptions[K, V]) { o.keyCodec = word.NewIntCodec[K]() }
}

// WithIntegerValues is WithIntegerKeys' counterpart for V.
func WithIntegerValues[K comparable, V word.Integer]() Option[K, V] {
	return func(o *mapOptions[K, V]) { o.valueCodec = word.NewIntCodec[V]() }
}

// WithKeyManager installs a KeyManager other than the default
// PODManager.
func WithKeyManager[K comparable, V any](m KeyManager[K]) Option[K, V] {
	return func(o *mapOptions[K, V]) { o.keyManager = m }
}

// WithValueManager installs a ValueManager other than the default
// PODManager/BoxManager.
func WithValueManager[K comparable, V any](m ValueManager[V]) Option[K, V] {
	return func(o *mapOptions[K, V]) { o.valueManager = m }
}

// WithLogger installs a go-kit logger; migration and retirement events
// are logged at level.Debug. The default is a no-op logger.
func WithLogger[K comparable, V any](l log.Logger) Option[K, V] {
	return func(o *mapOptions[K, V]) { o.logger = l }
}

// WithMetrics registers this map's Prometheus collectors against reg,
// labeled with name (used as the `map` label value so multiple
// lfmap.Map instances in one process stay distinguishable).
func WithMetrics[K comparable, V any](reg prometheus.Registerer, name string) Option[K, V] {
	return func(o *mapOptions[K, V]) {
		o.reg = reg
		o.name = name
	}
}

func defaultOptions[K comparable, V any]() *mapOptions[K, V] {
	return &mapOptions[K, V]{
		density:     DefaultDensity,
		initialSize: DefaultInitialSize,
		logger:      log.NewNopLogger(),
	}
}

// buildConfig resolves a mapOptions into the internal/table.Config the
// generation chain is built from, applying every documented default.
func (o *mapOptions[K, V]) buildConfig() *table.Config[K, V] {
	if o.keyCodec == nil {
		o.keyCodec = word.NewBoxCodec[K]()
	}
	if o.valueCodec == nil {
		vc := word.NewBoxCodec[V]()
		o.valueCodec = vc
		if o.valueManager == nil {
			o.valueManager = NewBoxManager(vc)
		}
	}
	if o.keyEqual == nil {
		o.keyEqual = func(a, b K) bool { return a == b }
	}
	if o.valueManager == nil {
		o.valueManager = PODManager[V]{}
	}
	if o.keyManager == nil {
		o.keyManager = PODManager[K]{}
	}
	if o.valueEqual == nil {
		o.valueEqual = defaultValueEqual[V]()
	}
	if o.hash == nil {
		panic("lfmap: no hash function configured; pass lfmap.WithHasher")
	}

	return &table.Config[K, V]{
		Hash:         o.hash,
		KeyEqual:     o.keyEqual,
		ValueEqual:   o.valueEqual,
		KeyCodec:     o.keyCodec,
		ValueCodec:   o.valueCodec,
		Density:      o.density,
		KeyManager:   o.keyManager,
		ValueManager: o.valueManager,
	}
}
