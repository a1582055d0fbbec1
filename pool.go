package arcus

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrPoolClosed is returned by Acquire once the pool is closed.
var ErrPoolClosed = errors.New("arcus: pool closed")

// Pool is a bounded pool of connections to one server.
type Pool interface {
	// Acquire returns an idle connection or creates one, waiting for a
	// release when the pool is full.
	Acquire(ctx context.Context) (Resource, error)

	// AcquireAllIdle acquires every idle connection, for lifetime checks.
	AcquireAllIdle() []Resource

	// Close destroys idle connections. Acquired connections are destroyed
	// when released.
	Close()

	Stats() PoolStats
}

// Resource is a connection acquired from a Pool. Exactly one of Release,
// ReleaseUnused or Destroy must be called.
type Resource interface {
	Value() *Connection
	Release()
	ReleaseUnused()
	Destroy()
	CreationTime() time.Time
	IdleDuration() time.Duration
}

// PoolFactory builds a Pool from a connection constructor.
// NewChannelPool and NewPuddlePool are PoolFactory.
type PoolFactory func(constructor func(ctx context.Context) (*Connection, error), maxSize int32) (Pool, error)
