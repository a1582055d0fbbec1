package collection

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, cmd Command) string {
	t.Helper()
	require.NoError(t, cmd.Validate(DefaultLimits()))
	buf := cmd.AppendRequest(nil)
	require.Equal(t, cmd.RequestSize(), len(buf), "RequestSize must match the rendered request")
	return string(buf)
}

func TestSingleCommandRequests(t *testing.T) {
	tests := []struct {
		name     string
		cmd      Command
		verb     CmdType
		expected string
	}{
		{
			name:     "set exist",
			cmd:      NewSetExist("myset", []byte("hello")),
			verb:     CmdSopExist,
			expected: "sop exist myset 5\r\nhello\r\n",
		},
		{
			name:     "set exist empty value",
			cmd:      NewSetExist("myset", nil),
			verb:     CmdSopExist,
			expected: "sop exist myset 0\r\n\r\n",
		},
		{
			name:     "exist with subkey",
			cmd:      NewExist("myset", "field", []byte("v")),
			verb:     CmdSopExist,
			expected: "sop exist myset field 1\r\nv\r\n",
		},
		{
			name:     "position ascending",
			cmd:      NewFindPosition("tree", UintBKey(10), Ascending),
			verb:     CmdBopPosition,
			expected: "bop position tree 10 asc\r\n",
		},
		{
			name:     "position descending byte bkey",
			cmd:      NewFindPosition("tree", MustBytesBKey([]byte{0xde, 0xad}), Descending),
			verb:     CmdBopPosition,
			expected: "bop position tree 0xDEAD desc\r\n",
		},
		{
			name:     "count range",
			cmd:      NewCount("tree", UintBKey(0), UintBKey(100)),
			verb:     CmdBopCount,
			expected: "bop count tree 0..100\r\n",
		},
		{
			name:     "count single bkey",
			cmd:      NewCount("tree", UintBKey(5), UintBKey(5)),
			verb:     CmdBopCount,
			expected: "bop count tree 5\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.verb, tt.cmd.CommandName())
			assert.Equal(t, 1, tt.cmd.ItemCount())
			assert.Equal(t, tt.expected, render(t, tt.cmd))
		})
	}
}

func TestExistHasNoArguments(t *testing.T) {
	cmd := NewExist("myset", "field", []byte("value"))
	assert.Equal(t, CmdSopExist, cmd.CommandName())
	assert.Empty(t, cmd.StringifyArguments())
	assert.Equal(t, "sop exist myset field 5\r\nvalue\r\n", render(t, cmd))
}

func TestFindPositionStringifyArguments(t *testing.T) {
	cmd := NewFindPosition("tree", UintBKey(3), Descending)
	assert.Equal(t, "3 desc", cmd.StringifyArguments())
	assert.Equal(t, "3 desc", cmd.StringifyArguments())
}

func TestBopPipedInsertRequest(t *testing.T) {
	elements := []Element{
		{BKey: UintBKey(1), Value: []byte("one")},
		{BKey: UintBKey(2), Value: []byte("two"), EFlag: []byte{0x01, 0x02}},
		{BKey: UintBKey(3), Value: []byte("three")},
	}
	cmd := NewBopPipedInsert("tree", elements, nil)

	assert.Equal(t, 3, cmd.ItemCount())
	assert.Equal(t, []string{"1 3", "2 0x0102 3", "3 5"}, cmd.StringifyArguments())
	assert.Equal(t,
		"bop insert tree 1 3 pipe\r\none\r\n"+
			"bop insert tree 2 0x0102 3 pipe\r\ntwo\r\n"+
			"bop insert tree 3 5\r\nthree\r\n",
		render(t, cmd))
}

func TestPipedInsertWithAttributes(t *testing.T) {
	attrs := &Attributes{Flags: 7, ExpireTime: 60, MaxCount: 1000, OverflowAction: "smallest_trim", Unreadable: true}
	cmd := NewBopPipedInsert("tree", []Element{{BKey: UintBKey(1), Value: []byte("a")}}, attrs)

	assert.Equal(t, "bop insert tree 1 1 create 7 60 1000 smallest_trim unreadable\r\na\r\n", render(t, cmd))
}

func TestSopAndLopPipedInsertRequests(t *testing.T) {
	sop := NewSopPipedInsert("set", [][]byte{[]byte("a"), []byte("bc")}, &Attributes{MaxCount: 10})
	assert.Equal(t,
		"sop insert set 1 create 0 0 10 pipe\r\na\r\n"+
			"sop insert set 2 create 0 0 10\r\nbc\r\n",
		render(t, sop))

	lop := NewLopPipedInsert("list", -1, [][]byte{[]byte("x"), []byte("y")}, nil)
	assert.Equal(t,
		"lop insert list -1 1 pipe\r\nx\r\n"+
			"lop insert list -1 1\r\ny\r\n",
		render(t, lop))
}

func TestBopPipedUpdateRequest(t *testing.T) {
	replace, err := ReplaceFlag([]byte{1, 1, 1, 1})
	require.NoError(t, err)
	bitwise, err := BitwiseFlag(1, BitwiseOR, []byte{0x80})
	require.NoError(t, err)
	reset := ResetFlag()

	cmd := NewBopPipedUpdate("tree", []Element{
		{BKey: UintBKey(1), Value: []byte("v1"), FlagUpdate: &replace},
		{BKey: UintBKey(2), FlagUpdate: &bitwise},
		{BKey: UintBKey(3), Value: []byte("v3")},
		{BKey: UintBKey(4), FlagUpdate: &reset},
	})

	assert.Equal(t,
		"bop update tree 1 0x01010101 2 pipe\r\nv1\r\n"+
			"bop update tree 2 1 | 0x80 -1 pipe\r\n"+
			"bop update tree 3 2 pipe\r\nv3\r\n"+
			"bop update tree 4 0 -1\r\n",
		render(t, cmd))
	assert.Equal(t, []string{"1 0x01010101 2", "2 1 | 0x80 -1", "3 2", "4 0 -1"}, cmd.StringifyArguments())
}

func TestBopPipedDeleteRequest(t *testing.T) {
	cmd := NewBopPipedDelete("tree", []BKey{UintBKey(1), UintBKey(2)}, false)
	assert.Equal(t, "bop delete tree 1 pipe\r\nbop delete tree 2\r\n", render(t, cmd))

	drop := NewBopPipedDelete("tree", []BKey{MustBytesBKey([]byte{1})}, true)
	assert.Equal(t, "bop delete tree 0x01 drop\r\n", render(t, drop))
}

func TestCommandValidation(t *testing.T) {
	limits := Limits{MaxPipedItemCount: 2, MaxPipedUpdateCount: 1, MaxValueSize: 4, MaxPipedPayloadSize: 64}

	many := []Element{
		{BKey: UintBKey(1), Value: []byte("a")},
		{BKey: UintBKey(2), Value: []byte("b")},
		{BKey: UintBKey(3), Value: []byte("c")},
	}

	tests := []struct {
		name string
		cmd  Command
	}{
		{"empty key", NewSetExist("", []byte("a"))},
		{"key with space", NewSetExist("my key", []byte("a"))},
		{"key too long", NewFindPosition(strings.Repeat("k", 4001), UintBKey(1), Ascending)},
		{"unset bkey", NewFindPosition("tree", BKey{}, Ascending)},
		{"unknown order", NewFindPosition("tree", UintBKey(1), Order(9))},
		{"unset count range", NewCount("tree", BKey{}, UintBKey(1))},
		{"exist value too large", NewSetExist("set", []byte("abcde"))},
		{"exist subkey with space", NewExist("set", "sub key", []byte("a"))},
		{"no items", NewBopPipedInsert("tree", nil, nil)},
		{"too many inserts", NewBopPipedInsert("tree", many, nil)},
		{"too many updates", NewBopPipedUpdate("tree", many[:2])},
		{"too many deletes", NewBopPipedDelete("tree", []BKey{UintBKey(1), UintBKey(2), UintBKey(3)}, false)},
		{"insert value too large", NewSopPipedInsert("set", [][]byte{[]byte("abcde")}, nil)},
		{"insert unset bkey", NewBopPipedInsert("tree", []Element{{Value: []byte("a")}}, nil)},
		{"update without change", NewBopPipedUpdate("tree", []Element{{BKey: UintBKey(1)}})},
		{"payload too large", NewBopPipedInsert(strings.Repeat("k", 60), many[:1], nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate(limits)
			var precondition *PreconditionError
			require.ErrorAs(t, err, &precondition)
			assert.False(t, ShouldCloseConnection(err))

			op, err := NewOperation(tt.cmd, limits, nil)
			assert.Nil(t, op)
			assert.Error(t, err)
		})
	}
}

func TestPipedInsertAtLimit(t *testing.T) {
	limits := DefaultLimits()

	bkeys := make([]BKey, limits.MaxPipedItemCount)
	for i := range bkeys {
		bkeys[i] = UintBKey(uint64(i))
	}
	require.NoError(t, NewBopPipedDelete("tree", bkeys, false).Validate(limits))

	bkeys = append(bkeys, UintBKey(9999))
	assert.Error(t, NewBopPipedDelete("tree", bkeys, false).Validate(limits))
}

func TestRequestLineCount(t *testing.T) {
	bkeys := make([]BKey, 50)
	for i := range bkeys {
		bkeys[i] = UintBKey(uint64(i))
	}

	request := render(t, NewBopPipedDelete("tree", bkeys, false))
	assert.Equal(t, 50, strings.Count(request, CRLF))
	assert.Equal(t, 49, strings.Count(request, " pipe\r\n"))
}
