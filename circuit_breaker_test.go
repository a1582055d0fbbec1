package arcus

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/arcus/collection"
)

func TestIsBreakerFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"precondition", &collection.PreconditionError{Message: "key is empty"}, false},
		{"wrapped precondition", errors.Wrap(&collection.PreconditionError{Message: "x"}, "arcus"), false},
		{"canceled", errors.Wrap(context.Canceled, "arcus: bop count cancelled"), false},
		{"deadline", context.DeadlineExceeded, true},
		{"protocol", &collection.ProtocolError{Command: collection.CmdBopCount, Line: "?", Message: "unexpected response"}, true},
		{"connection", &collection.ConnectionError{Op: "read", Err: io.EOF}, true},
		{"dial", fmt.Errorf("connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBreakerFailure(tt.err))
		})
	}
}

func TestNewCircuitBreakerConfig(t *testing.T) {
	newBreaker := NewCircuitBreakerConfig(1, time.Minute, time.Minute)

	cb := newBreaker("cache1:11211")
	require.NotNil(t, cb)
	assert.Equal(t, "cache1:11211", cb.Name())
	assert.Equal(t, gobreaker.StateClosed, cb.State())

	fail := func() (struct{}, error) { return struct{}{}, io.ErrUnexpectedEOF }

	for range 2 {
		_, err := cb.Execute(fail)
		require.Error(t, err)
		assert.Equal(t, gobreaker.StateClosed, cb.State())
	}

	_, err := cb.Execute(fail)
	require.Error(t, err)
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err = cb.Execute(func() (struct{}, error) { return struct{}{}, nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestNewCircuitBreakerConfig_IgnoresRejections(t *testing.T) {
	cb := NewCircuitBreakerConfig(1, time.Minute, time.Minute)("cache1:11211")

	for range 10 {
		_, err := cb.Execute(func() (struct{}, error) {
			return struct{}{}, &collection.PreconditionError{Message: "too many items"}
		})
		require.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.Equal(t, uint32(0), cb.Counts().TotalFailures)
}
