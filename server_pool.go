package arcus

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker/v2"

	"github.com/pior/arcus/collection"
)

// ServerPool is the connection pool and circuit breaker of one server.
type ServerPool struct {
	addr           string
	pool           Pool
	circuitBreaker *CircuitBreaker // nil if not configured
	logger         *slog.Logger
}

func newServerPool(addr string, pool Pool, cb *CircuitBreaker, logger *slog.Logger) *ServerPool {
	return &ServerPool{
		addr:           addr,
		pool:           pool,
		circuitBreaker: cb,
		logger:         logger.With("addr", addr),
	}
}

func (sp *ServerPool) Address() string {
	return sp.addr
}

// ServerPoolStats contains stats for a single server pool.
type ServerPoolStats struct {
	Addr                 string
	PoolStats            PoolStats
	CircuitBreakerState  gobreaker.State
	CircuitBreakerCounts gobreaker.Counts
}

func (sp *ServerPool) Stats() ServerPoolStats {
	stats := ServerPoolStats{
		Addr:      sp.addr,
		PoolStats: sp.pool.Stats(),
	}
	if sp.circuitBreaker != nil {
		stats.CircuitBreakerState = sp.circuitBreaker.State()
		stats.CircuitBreakerCounts = sp.circuitBreaker.Counts()
	}
	return stats
}

// Execute runs op on a pooled connection, through the circuit breaker when
// one is configured. op is terminal when Execute returns.
func (sp *ServerPool) Execute(ctx context.Context, op *collection.Operation) error {
	if sp.circuitBreaker == nil {
		return sp.execDirect(ctx, op)
	}

	_, err := sp.circuitBreaker.Execute(func() (struct{}, error) {
		return struct{}{}, sp.execDirect(ctx, op)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		op.Abort(err)
		return errors.Wrapf(err, "arcus: server %s", sp.addr)
	}
	return err
}

func (sp *ServerPool) execDirect(ctx context.Context, op *collection.Operation) error {
	res, err := sp.pool.Acquire(ctx)
	if err != nil {
		op.Abort(err)
		return errors.Wrapf(err, "arcus: acquire connection to %s", sp.addr)
	}

	conn := res.Value()
	if err := conn.Execute(ctx, op); err != nil {
		sp.logger.Warn("arcus: destroying connection", "conn", conn.ID().String(), "error", err)
		res.Destroy()
		return err
	}

	res.Release()
	return nil
}

// checkConnections destroys idle connections past their lifetime or idle
// time. Zero limits are ignored.
func (sp *ServerPool) checkConnections(maxLifetime, maxIdle time.Duration) {
	now := time.Now()

	for _, res := range sp.pool.AcquireAllIdle() {
		if maxLifetime > 0 && now.Sub(res.CreationTime()) > maxLifetime {
			res.Destroy()
			continue
		}
		if maxIdle > 0 && res.IdleDuration() > maxIdle {
			res.Destroy()
			continue
		}
		res.ReleaseUnused()
	}
}

func (sp *ServerPool) Close() {
	sp.pool.Close()
}
