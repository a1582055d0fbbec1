package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTable(t *testing.T) {
	tests := []struct {
		code    ResponseCode
		token   string
		success bool
	}{
		{ResponseExist, "EXIST", true},
		{ResponseNotExist, "NOT_EXIST", true},
		{ResponseEnd, "END", true},
		{ResponseStored, "STORED", true},
		{ResponseCreatedStored, "CREATED_STORED", true},
		{ResponseUpdated, "UPDATED", true},
		{ResponseDeleted, "DELETED", true},
		{ResponseDeletedDropped, "DELETED_DROPPED", true},
		{ResponseNotFound, "NOT_FOUND", false},
		{ResponseNotFoundElement, "NOT_FOUND_ELEMENT", false},
		{ResponseTypeMismatch, "TYPE_MISMATCH", false},
		{ResponseBKeyMismatch, "BKEY_MISMATCH", false},
		{ResponseEFlagMismatch, "EFLAG_MISMATCH", false},
		{ResponseUnreadable, "UNREADABLE", false},
		{ResponseNothingToUpdate, "NOTHING_TO_UPDATE", false},
		{ResponseElementExists, "ELEMENT_EXISTS", false},
		{ResponseOverflowed, "OVERFLOWED", false},
		{ResponseOutOfRange, "OUT_OF_RANGE", false},
		{ResponseNotSupported, "NOT_SUPPORTED", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			st := StatusOf(tt.code)
			assert.Equal(t, tt.code, st.Code)
			assert.Equal(t, tt.token, st.Message)
			assert.Equal(t, tt.success, st.Success)
			assert.Equal(t, tt.token, tt.code.String())
		})
	}
}

func TestStatusOfIsStable(t *testing.T) {
	assert.Equal(t, StatusOf(ResponseNotFound), StatusOf(ResponseNotFound))

	canceled := CanceledStatus()
	assert.False(t, canceled.Success)
	assert.Equal(t, ResponseCanceled, canceled.Code)
	assert.Equal(t, "collection canceled", canceled.Message)

	assert.Equal(t, ResponseUndefined, StatusOf(ResponseProtocolViolation).Code)
	assert.Equal(t, ResponseUndefined, StatusOf(ResponseCode(200)).Code)
}

func TestMatchStatus(t *testing.T) {
	st, ok := MatchStatus("NOT_FOUND", ResponseExist, ResponseNotFound)
	require.True(t, ok)
	assert.Equal(t, ResponseNotFound, st.Code)

	// Exact, case-sensitive tokens only
	_, ok = MatchStatus("not_found", ResponseNotFound)
	assert.False(t, ok)
	_, ok = MatchStatus("NOT_FOUND ", ResponseNotFound)
	assert.False(t, ok)
	_, ok = MatchStatus("NOT_FOUND_ELEMENT", ResponseNotFound)
	assert.False(t, ok)

	// Only candidates match
	_, ok = MatchStatus("STORED", ResponseExist, ResponseNotExist)
	assert.False(t, ok)

	_, ok = MatchStatus("CLIENT_ERROR bad command line format", ResponseExist)
	assert.False(t, ok)
}

func TestMatchStatusServerError(t *testing.T) {
	st, ok := MatchStatus("SERVER_ERROR out of memory", ResponseStored)
	require.True(t, ok)
	assert.False(t, st.Success)
	assert.Equal(t, ResponseServerError, st.Code)
	assert.Equal(t, "SERVER_ERROR out of memory", st.Message)

	_, ok = MatchStatus("SERVER_ERRORS", ResponseStored)
	assert.False(t, ok)
}
