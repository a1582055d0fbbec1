package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferPool(t *testing.T) {
	pool := NewBufferPool(64, 1024)

	buf := pool.Get(10)
	require.Empty(t, buf)
	require.GreaterOrEqual(t, cap(buf), 64)

	buf = append(buf, "bop delete btree:a 1\r\n"...)
	pool.Put(buf)

	reused := pool.Get(10)
	require.Empty(t, reused)

	large := pool.Get(4096)
	require.GreaterOrEqual(t, cap(large), 4096)
	pool.Put(large) // dropped

	pool.Put(nil)
}
