package table

// Condition selects which prior-state predicate a Put must satisfy
// before it is allowed to take effect.
type Condition uint8

const (
	// Always is the unconditional put.
	Always Condition = iota
	// IfAbsent succeeds only when the prior pure value is NONE or BABY.
	IfAbsent
	// IfExists succeeds only when the prior pure value is a real value.
	IfExists
	// IfMatch succeeds only when the prior pure value equals Expected.
	IfMatch
)

// Result is the outcome of a lookup-driven operation against one
// generation.
type Result uint8

const (
	// OK: the operation took effect in this generation.
	OK Result = iota
	// Rejected: the condition's predicate was not satisfied.
	Rejected
	// Full: this generation cannot answer; the caller must consult the
	// next generation in the chain.
	Full
)
