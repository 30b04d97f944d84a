package runtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyMemoizesOnlyOnSuccess(t *testing.T) {
	calls := 0
	boom := errors.New("boom")

	l := NewLazy(func() (any, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return "ok", nil
	})

	_, err := l.Value()
	require.ErrorIs(t, err, boom)

	v, err := l.Value()
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)

	// A further call must not re-invoke factory: the success is memoized.
	v, err = l.Value()
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestResolvedIsAlreadyDone(t *testing.T) {
	l := Resolved(42)
	v, err := l.Value()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
