package squeeze

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gotest.tools/v3/assert"
)

func TestOptionsLog(t *testing.T) {
	l, ok := Options{}.Log().(*logrus.Logger)
	assert.Assert(t, ok)
	assert.Equal(t, l.Out, io.Writer(io.Discard))
	assert.Equal(t, l.GetLevel(), logrus.PanicLevel)

	custom, hook := test.NewNullLogger()
	o := DefaultOptions()
	o.Logger = custom
	o.Log().Warn("hello")
	assert.Equal(t, len(hook.AllEntries()), 1)
	assert.Equal(t, hook.LastEntry().Message, "hello")
}
