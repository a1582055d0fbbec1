package internal

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJumpHash(t *testing.T) {
	require.Equal(t, 0, JumpHash(42, 0))
	require.Equal(t, 0, JumpHash(42, -3))
	require.Equal(t, 0, JumpHash(42, 1))

	for key := range uint64(1000) {
		b := JumpHash(key, 7)
		require.True(t, b >= 0 && b < 7)
	}
}

func TestKeyIndex(t *testing.T) {
	require.Equal(t, KeyIndex("btree:a", 5), KeyIndex("btree:a", 5))

	// Keys only move to the new bucket when growing
	for i := range 500 {
		key := fmt.Sprintf("set:%d", i)
		before, after := KeyIndex(key, 4), KeyIndex(key, 5)
		if before != after {
			require.Equal(t, 4, after, "key %s moved between old buckets", key)
		}
	}
}
