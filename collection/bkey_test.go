package collection

import (
	"encoding/hex"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUintBKeyString(t *testing.T) {
	tests := []struct {
		value    uint64
		expected string
	}{
		{0, "0"},
		{1, "1"},
		{42, "42"},
		{1000, "1000"},
		{math.MaxUint64, "18446744073709551615"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			k := UintBKey(tt.value)
			assert.Equal(t, tt.expected, k.String())
			assert.Equal(t, BKeyUint, k.Kind())
			assert.True(t, k.IsValid())
		})
	}
}

func TestBytesBKeyString(t *testing.T) {
	k, err := BytesBKey([]byte{0x00, 0x0a, 0xff})
	require.NoError(t, err)
	assert.Equal(t, "0x000AFF", k.String())
	assert.Equal(t, BKeyBytes, k.Kind())

	_, ok := k.Uint()
	assert.False(t, ok)
}

func TestBytesBKeyRejects(t *testing.T) {
	_, err := BytesBKey(nil)
	require.Error(t, err)
	assert.False(t, ShouldCloseConnection(err))

	_, err = BytesBKey(make([]byte, MaxBKeyLength+1))
	var precondition *PreconditionError
	require.ErrorAs(t, err, &precondition)

	_, err = BytesBKey(make([]byte, MaxBKeyLength))
	require.NoError(t, err)
}

func TestBytesBKeyCopiesInput(t *testing.T) {
	raw := []byte{1, 2, 3}
	k := MustBytesBKey(raw)
	raw[0] = 9

	b, ok := k.Bytes()
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, b)
	assert.Equal(t, "0x010203", k.String())
}

func TestUintBKeyRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 9, 10, 99, 12345, 1 << 32, math.MaxUint64} {
		parsed, err := ParseBKey(UintBKey(n).String())
		require.NoError(t, err)

		got, ok := parsed.Uint()
		require.True(t, ok)
		assert.Equal(t, n, got)
	}
}

func TestBytesBKeyRoundTrip(t *testing.T) {
	for size := 1; size <= MaxBKeyLength; size++ {
		raw := make([]byte, size)
		for i := range raw {
			raw[i] = byte(i*37 + size)
		}

		text := MustBytesBKey(raw).String()
		require.True(t, strings.HasPrefix(text, "0x"))
		require.Equal(t, 2+2*size, len(text))
		assert.Equal(t, strings.ToUpper(text[2:]), text[2:])

		decoded, err := hex.DecodeString(text[2:])
		require.NoError(t, err)
		assert.Equal(t, raw, decoded)

		parsed, err := ParseBKey(text)
		require.NoError(t, err)
		assert.True(t, parsed.Equal(MustBytesBKey(raw)))
	}
}

func TestParseBKeyInvalid(t *testing.T) {
	for _, s := range []string{"", "-1", "abc", "0x", "0xABC", "0xZZ", "18446744073709551616"} {
		_, err := ParseBKey(s)
		assert.Error(t, err, s)
	}
}

func TestBKeyEqual(t *testing.T) {
	assert.True(t, UintBKey(1).Equal(UintBKey(1)))
	assert.False(t, UintBKey(1).Equal(UintBKey(2)))
	assert.False(t, UintBKey(1).Equal(MustBytesBKey([]byte{1})))
	assert.False(t, BKey{}.IsValid())
}

func TestBKeyRangeString(t *testing.T) {
	assert.Equal(t, "1..100", BKeyRange{From: UintBKey(1), To: UintBKey(100)}.String())
	assert.Equal(t, "100..1", BKeyRange{From: UintBKey(100), To: UintBKey(1)}.String())
	assert.Equal(t, "7", BKeyRange{From: UintBKey(7), To: UintBKey(7)}.String())
	assert.Equal(t, "0x01..0xFF", BKeyRange{From: MustBytesBKey([]byte{1}), To: MustBytesBKey([]byte{0xff})}.String())
}

func TestOrderToken(t *testing.T) {
	assert.Equal(t, "asc", Ascending.Token())
	assert.Equal(t, "desc", Descending.Token())

	o, ok := ParseOrder("desc")
	require.True(t, ok)
	assert.Equal(t, Descending, o)

	_, ok = ParseOrder("DESC")
	assert.False(t, ok)
}
