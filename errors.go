package lfmap

import "github.com/pkg/errors"

// ErrAllocationFailed wraps a failed generation allocation: when a
// successor generation cannot be allocated, ensureSuccessorSafe turns
// the allocation panic into this error, which triggerMigration logs;
// it is not returned to the caller of the public operation.
var ErrAllocationFailed = errors.New("lfmap: generation allocation failed")

// wrapAllocFailure adds call-site context to ErrAllocationFailed.
func wrapAllocFailure(gen uint64, size uint64) error {
	return errors.Wrapf(ErrAllocationFailed, "generation %d, size %d", gen, size)
}
