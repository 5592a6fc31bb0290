package squeeze

import (
	"testing"

	"github.com/pkg/errors"
	"gotest.tools/v3/assert"
)

var allocated []byte

func allocate(n int) (err error) {
	defer recoverAllocation(&err, "test allocation")
	allocated = make([]byte, n)
	return nil
}

func TestRecoverAllocation(t *testing.T) {
	assert.NilError(t, allocate(10))

	err := allocate(-1)
	assert.Assert(t, errors.Is(err, ErrAllocation))
	assert.ErrorContains(t, err, "test allocation")
}

func TestRecoverAllocationPassesOtherPanics(t *testing.T) {
	defer func() {
		r := recover()
		assert.Assert(t, r != nil)
	}()
	func() (err error) {
		defer recoverAllocation(&err, "index")
		var s []int
		i := 3
		_ = s[i]
		return nil
	}()
	t.Fatal("index panic was swallowed")
}

func TestIsAllocationPanic(t *testing.T) {
	assert.Assert(t, isAllocationPanic("runtime error: makeslice: len out of range"))
	assert.Assert(t, isAllocationPanic("runtime error: growslice: len out of range"))
	assert.Assert(t, !isAllocationPanic("runtime error: index out of range [3] with length 0"))
}
