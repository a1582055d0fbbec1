package arcus

import (
	"sync/atomic"
	"time"
)

// PoolStats contains statistics about a connection pool.
//
// For Prometheus integration, expose these as:
//   - Gauges: TotalConns, IdleConns, ActiveConns
//   - Counters: AcquireCount, AcquireWaitCount, CreatedConns, DestroyedConns, AcquireErrors
//   - Counter: AcquireWaitTimeNs (seconds spent waiting)
type PoolStats struct {
	// Lifetime counters
	AcquireCount      uint64 // Total acquire attempts
	AcquireWaitCount  uint64 // Acquires that had to wait
	CreatedConns      uint64 // Total connections created
	DestroyedConns    uint64 // Total connections destroyed
	AcquireErrors     uint64 // Failed acquire attempts
	AcquireWaitTimeNs uint64 // Total nanoseconds spent waiting

	// Current state gauges
	TotalConns  int32 // Total connections in pool (active + idle)
	IdleConns   int32 // Idle connections available
	ActiveConns int32 // Connections currently in use
}

// ClientStats contains statistics about collection operations.
//
// Server-reported failures (NOT_FOUND, ELEMENT_EXISTS, ...) are not errors:
// they are counted per item in PipedFailures or per call in the shape
// counters. Errors counts calls that returned a Go error.
type ClientStats struct {
	Exists         uint64 // Existence checks
	Positions      uint64 // Find-position queries
	Counts         uint64 // Item count queries
	PipedOps       uint64 // Piped requests sent (one per chunk)
	PipedItems     uint64 // Items carried by piped requests
	PipedFailures  uint64 // Items reported as failed by piped responses
	ProtocolErrors uint64 // Responses that violated the protocol
	Cancellations  uint64 // Operations cancelled by their context
	Errors         uint64 // Calls that returned an error
}

// poolStatsCollector provides internal methods for updating pool stats.
// Not exported - pools update their own stats.
type poolStatsCollector struct {
	stats PoolStats
}

func (c *poolStatsCollector) recordAcquire() {
	atomic.AddUint64(&c.stats.AcquireCount, 1)
}

func (c *poolStatsCollector) recordAcquireWait(duration time.Duration) {
	atomic.AddUint64(&c.stats.AcquireWaitCount, 1)
	atomic.AddUint64(&c.stats.AcquireWaitTimeNs, uint64(duration.Nanoseconds()))
}

func (c *poolStatsCollector) recordCreate() {
	atomic.AddUint64(&c.stats.CreatedConns, 1)
	atomic.AddInt32(&c.stats.TotalConns, 1)
	atomic.AddInt32(&c.stats.ActiveConns, 1)
}

// recordDestroyActive records the destruction of an acquired connection.
func (c *poolStatsCollector) recordDestroyActive() {
	atomic.AddUint64(&c.stats.DestroyedConns, 1)
	atomic.AddInt32(&c.stats.TotalConns, -1)
	atomic.AddInt32(&c.stats.ActiveConns, -1)
}

// recordDestroyIdle records the destruction of an idle connection.
func (c *poolStatsCollector) recordDestroyIdle() {
	atomic.AddUint64(&c.stats.DestroyedConns, 1)
	atomic.AddInt32(&c.stats.TotalConns, -1)
	atomic.AddInt32(&c.stats.IdleConns, -1)
}

func (c *poolStatsCollector) recordAcquireError() {
	atomic.AddUint64(&c.stats.AcquireErrors, 1)
}

func (c *poolStatsCollector) recordAcquireFromIdle() {
	atomic.AddInt32(&c.stats.IdleConns, -1)
	atomic.AddInt32(&c.stats.ActiveConns, 1)
}

func (c *poolStatsCollector) recordRelease() {
	atomic.AddInt32(&c.stats.IdleConns, 1)
	atomic.AddInt32(&c.stats.ActiveConns, -1)
}

func (c *poolStatsCollector) snapshot() PoolStats {
	return PoolStats{
		TotalConns:        atomic.LoadInt32(&c.stats.TotalConns),
		IdleConns:         atomic.LoadInt32(&c.stats.IdleConns),
		ActiveConns:       atomic.LoadInt32(&c.stats.ActiveConns),
		AcquireCount:      atomic.LoadUint64(&c.stats.AcquireCount),
		AcquireWaitCount:  atomic.LoadUint64(&c.stats.AcquireWaitCount),
		CreatedConns:      atomic.LoadUint64(&c.stats.CreatedConns),
		DestroyedConns:    atomic.LoadUint64(&c.stats.DestroyedConns),
		AcquireErrors:     atomic.LoadUint64(&c.stats.AcquireErrors),
		AcquireWaitTimeNs: atomic.LoadUint64(&c.stats.AcquireWaitTimeNs),
	}
}

// clientStatsCollector provides internal methods for updating client stats.
type clientStatsCollector struct {
	stats ClientStats
}

func (c *clientStatsCollector) recordExist() {
	atomic.AddUint64(&c.stats.Exists, 1)
}

func (c *clientStatsCollector) recordPosition() {
	atomic.AddUint64(&c.stats.Positions, 1)
}

func (c *clientStatsCollector) recordCount() {
	atomic.AddUint64(&c.stats.Counts, 1)
}

func (c *clientStatsCollector) recordPiped(items, failures int) {
	atomic.AddUint64(&c.stats.PipedOps, 1)
	atomic.AddUint64(&c.stats.PipedItems, uint64(items))
	atomic.AddUint64(&c.stats.PipedFailures, uint64(failures))
}

func (c *clientStatsCollector) recordProtocolError() {
	atomic.AddUint64(&c.stats.ProtocolErrors, 1)
}

func (c *clientStatsCollector) recordCancellation() {
	atomic.AddUint64(&c.stats.Cancellations, 1)
}

func (c *clientStatsCollector) recordError() {
	atomic.AddUint64(&c.stats.Errors, 1)
}

func (c *clientStatsCollector) snapshot() ClientStats {
	return ClientStats{
		Exists:         atomic.LoadUint64(&c.stats.Exists),
		Positions:      atomic.LoadUint64(&c.stats.Positions),
		Counts:         atomic.LoadUint64(&c.stats.Counts),
		PipedOps:       atomic.LoadUint64(&c.stats.PipedOps),
		PipedItems:     atomic.LoadUint64(&c.stats.PipedItems),
		PipedFailures:  atomic.LoadUint64(&c.stats.PipedFailures),
		ProtocolErrors: atomic.LoadUint64(&c.stats.ProtocolErrors),
		Cancellations:  atomic.LoadUint64(&c.stats.Cancellations),
		Errors:         atomic.LoadUint64(&c.stats.Errors),
	}
}
