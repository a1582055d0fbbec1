package arcus

import (
	"context"
	"sync"
	"time"

	"github.com/pior/arcus/internal/coarsetime"
)

// NewChannelPool creates a channel-based connection pool. This is the
// default pool.
func NewChannelPool(constructor func(ctx context.Context) (*Connection, error), maxSize int32) (Pool, error) {
	return &channelPool{
		constructor: constructor,
		maxSize:     maxSize,
		resources:   make(chan *channelResource, maxSize),
	}, nil
}

// channelResource implements Resource for channelPool.
type channelResource struct {
	conn         *Connection
	pool         *channelPool
	creationTime time.Time
	lastUsedTime time.Time
}

func (r *channelResource) Value() *Connection {
	return r.conn
}

func (r *channelResource) Release() {
	r.lastUsedTime = coarsetime.Now()
	r.pool.put(r)
}

// ReleaseUnused returns the connection without touching its last use time.
func (r *channelResource) ReleaseUnused() {
	r.pool.put(r)
}

func (r *channelResource) Destroy() {
	_ = r.conn.Close()
	r.pool.removeResource()
}

func (r *channelResource) CreationTime() time.Time {
	return r.creationTime
}

func (r *channelResource) IdleDuration() time.Duration {
	return coarsetime.Since(r.lastUsedTime)
}

// channelPool keeps idle connections in a buffered channel.
type channelPool struct {
	constructor func(ctx context.Context) (*Connection, error)
	maxSize     int32

	mu        sync.Mutex
	resources chan *channelResource
	size      int32
	closed    bool

	stats poolStatsCollector
}

func (p *channelPool) Acquire(ctx context.Context) (Resource, error) {
	p.stats.recordAcquire()

	select {
	case res, ok := <-p.resources:
		if !ok {
			p.stats.recordAcquireError()
			return nil, ErrPoolClosed
		}
		p.stats.recordAcquireFromIdle()
		return res, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.stats.recordAcquireError()
		return nil, ErrPoolClosed
	}

	if p.size < p.maxSize {
		p.size++
		p.mu.Unlock()

		conn, err := p.constructor(ctx)
		if err != nil {
			p.mu.Lock()
			p.size--
			p.mu.Unlock()
			p.stats.recordAcquireError()
			return nil, err
		}

		p.stats.recordCreate()

		now := coarsetime.Now()
		return &channelResource{
			conn:         conn,
			pool:         p,
			creationTime: now,
			lastUsedTime: now,
		}, nil
	}
	p.mu.Unlock()

	// Pool is full, wait for a release
	waitStart := time.Now()
	select {
	case res, ok := <-p.resources:
		if !ok {
			p.stats.recordAcquireError()
			return nil, ErrPoolClosed
		}
		p.stats.recordAcquireWait(time.Since(waitStart))
		p.stats.recordAcquireFromIdle()
		return res, nil
	case <-ctx.Done():
		p.stats.recordAcquireError()
		return nil, ctx.Err()
	}
}

func (p *channelPool) put(res *channelResource) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		select {
		case p.resources <- res:
			p.stats.recordRelease()
			return
		default:
		}
	}

	_ = res.conn.Close()
	p.size--
	p.stats.recordDestroyActive()
}

func (p *channelPool) removeResource() {
	p.mu.Lock()
	p.size--
	p.mu.Unlock()
	p.stats.recordDestroyActive()
}

func (p *channelPool) AcquireAllIdle() []Resource {
	var idle []Resource

	for {
		select {
		case res, ok := <-p.resources:
			if !ok {
				return idle
			}
			p.stats.recordAcquireFromIdle()
			idle = append(idle, res)
		default:
			return idle
		}
	}
}

func (p *channelPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	close(p.resources)
	for res := range p.resources {
		_ = res.conn.Close()
		p.size--
		p.stats.recordDestroyIdle()
	}
}

// Stats returns a snapshot of pool statistics.
func (p *channelPool) Stats() PoolStats {
	return p.stats.snapshot()
}
