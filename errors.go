package squeeze

import (
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrAllocation is returned when a parse would need more working memory
	// than Options.MemoryLimit allows, or when the runtime rejects the size
	// of a slice the parser asks for. Running out of memory for real is a
	// fatal runtime error and cannot be returned.
	ErrAllocation = errors.New("squeeze: allocation failed")

	// ErrInvariant is returned when an internal consistency check fails.
	// It indicates a bug, not bad input.
	ErrInvariant = errors.New("squeeze: internal invariant violated")
)

// recoverAllocation turns a runtime panic about an impossible slice size
// (from make or append) into ErrAllocation, stored in *err. Other panics
// are passed on. It must be called directly by defer.
func recoverAllocation(err *error, what string) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(runtime.Error); ok && isAllocationPanic(e.Error()) {
		*err = errors.Wrapf(ErrAllocation, "%s: %v", what, e)
		return
	}
	panic(r)
}

func isAllocationPanic(msg string) bool {
	return strings.Contains(msg, "makeslice") || strings.Contains(msg, "growslice")
}
