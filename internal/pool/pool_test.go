package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPoolGetPut tests that items cycle through the pool
func TestPoolGetPut(t *testing.T) {
	p := New(func() []byte { return make([]byte, 8) })

	buf := p.Get()
	require.Len(t, buf, 8)

	// Returning and re-getting should yield a usable buffer again
	p.Put(buf)
	again := p.Get()
	require.Len(t, again, 8)
}

// TestPoolFactory tests that the factory runs when the pool is empty
func TestPoolFactory(t *testing.T) {
	calls := 0
	p := New(func() int {
		calls++
		return 42
	})

	v := p.Get()
	require.Equal(t, 42, v)
	require.Equal(t, 1, calls)
}
