package arcus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/arcus/internal/testutils"
)

var poolFactories = map[string]PoolFactory{
	"channel": NewChannelPool,
	"puddle":  NewPuddlePool,
}

func mockConstructor(created *atomic.Int32) func(ctx context.Context) (*Connection, error) {
	return func(ctx context.Context) (*Connection, error) {
		created.Add(1)
		return NewConnection(testutils.NewConnectionMock(), nil), nil
	}
}

func TestPool_AcquireRelease(t *testing.T) {
	for name, newPool := range poolFactories {
		t.Run(name, func(t *testing.T) {
			var created atomic.Int32
			pool, err := newPool(mockConstructor(&created), 2)
			require.NoError(t, err)
			defer pool.Close()

			ctx := context.Background()

			res, err := pool.Acquire(ctx)
			require.NoError(t, err)
			conn := res.Value()
			require.NotNil(t, conn)
			res.Release()

			res, err = pool.Acquire(ctx)
			require.NoError(t, err)
			assert.Same(t, conn, res.Value(), "idle connection should be reused")
			res.Release()

			assert.Equal(t, int32(1), created.Load())
		})
	}
}

func TestPool_DestroyClosesConnection(t *testing.T) {
	for name, newPool := range poolFactories {
		t.Run(name, func(t *testing.T) {
			mock := testutils.NewConnectionMock()
			pool, err := newPool(func(ctx context.Context) (*Connection, error) {
				return NewConnection(mock, nil), nil
			}, 1)
			require.NoError(t, err)
			defer pool.Close()

			res, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			res.Destroy()

			// puddle runs destructors in the background
			require.Eventually(t, mock.IsClosed, time.Second, 5*time.Millisecond)
		})
	}
}

func TestPool_WaitsWhenFull(t *testing.T) {
	for name, newPool := range poolFactories {
		t.Run(name, func(t *testing.T) {
			var created atomic.Int32
			pool, err := newPool(mockConstructor(&created), 1)
			require.NoError(t, err)
			defer pool.Close()

			res, err := pool.Acquire(context.Background())
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			_, err = pool.Acquire(ctx)
			require.ErrorIs(t, err, context.DeadlineExceeded)

			go func() {
				time.Sleep(10 * time.Millisecond)
				res.Release()
			}()

			res, err = pool.Acquire(context.Background())
			require.NoError(t, err)
			res.Release()

			assert.Equal(t, int32(1), created.Load())
		})
	}
}

func TestPool_ConstructorError(t *testing.T) {
	dialErr := errors.New("connection refused")

	for name, newPool := range poolFactories {
		t.Run(name, func(t *testing.T) {
			pool, err := newPool(func(ctx context.Context) (*Connection, error) {
				return nil, dialErr
			}, 1)
			require.NoError(t, err)
			defer pool.Close()

			_, err = pool.Acquire(context.Background())
			require.ErrorIs(t, err, dialErr)

			// The failed slot is given back
			_, err = pool.Acquire(context.Background())
			require.ErrorIs(t, err, dialErr)
		})
	}
}

func TestPool_Close(t *testing.T) {
	for name, newPool := range poolFactories {
		t.Run(name, func(t *testing.T) {
			mock := testutils.NewConnectionMock()
			pool, err := newPool(func(ctx context.Context) (*Connection, error) {
				return NewConnection(mock, nil), nil
			}, 1)
			require.NoError(t, err)

			res, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			res.Release()

			pool.Close()
			require.Eventually(t, mock.IsClosed, time.Second, 5*time.Millisecond)

			_, err = pool.Acquire(context.Background())
			require.ErrorIs(t, err, ErrPoolClosed)
		})
	}
}

func TestPool_AcquireAllIdle(t *testing.T) {
	for name, newPool := range poolFactories {
		t.Run(name, func(t *testing.T) {
			var created atomic.Int32
			pool, err := newPool(mockConstructor(&created), 3)
			require.NoError(t, err)
			defer pool.Close()

			ctx := context.Background()
			var acquired []Resource
			for range 3 {
				res, err := pool.Acquire(ctx)
				require.NoError(t, err)
				acquired = append(acquired, res)
			}
			for _, res := range acquired {
				res.Release()
			}

			idle := pool.AcquireAllIdle()
			require.Len(t, idle, 3)
			for _, res := range idle {
				assert.False(t, res.CreationTime().IsZero())
				res.ReleaseUnused()
			}

			assert.Equal(t, int32(3), pool.Stats().IdleConns)
		})
	}
}

func TestPool_Concurrent(t *testing.T) {
	for name, newPool := range poolFactories {
		t.Run(name, func(t *testing.T) {
			var created atomic.Int32
			pool, err := newPool(mockConstructor(&created), 4)
			require.NoError(t, err)
			defer pool.Close()

			var wg sync.WaitGroup
			for range 20 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for range 50 {
						res, err := pool.Acquire(context.Background())
						if !assert.NoError(t, err) {
							return
						}
						res.Release()
					}
				}()
			}
			wg.Wait()

			assert.LessOrEqual(t, created.Load(), int32(4))
			assert.Equal(t, uint64(1000), pool.Stats().AcquireCount)
		})
	}
}

func TestServerPool_CheckConnections(t *testing.T) {
	mock := testutils.NewConnectionMock()
	pool, err := NewChannelPool(func(ctx context.Context) (*Connection, error) {
		return NewConnection(mock, nil), nil
	}, 1)
	require.NoError(t, err)

	sp := newServerPool("cache1:11211", pool, nil, testLogger())
	defer sp.Close()

	res, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	res.Release()

	// Young and recently used connections stay
	sp.checkConnections(time.Hour, time.Hour)
	assert.False(t, mock.IsClosed())
	assert.Equal(t, int32(1), pool.Stats().IdleConns)

	time.Sleep(5 * time.Millisecond)
	sp.checkConnections(time.Millisecond, 0)
	assert.True(t, mock.IsClosed())
	assert.Equal(t, int32(0), pool.Stats().TotalConns)
}
