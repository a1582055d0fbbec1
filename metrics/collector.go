// Package metrics exports arcus client statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pior/arcus"
)

// Source is the statistics provider, usually an *arcus.Client.
type Source interface {
	Stats() arcus.ClientStats
	AllPoolStats() []arcus.ServerPoolStats
}

// Collector is a prometheus.Collector reading a Source on every scrape.
type Collector struct {
	source Source

	operations     *prometheus.Desc
	pipedItems     *prometheus.Desc
	pipedFailures  *prometheus.Desc
	protocolErrors *prometheus.Desc
	cancellations  *prometheus.Desc
	errors         *prometheus.Desc

	poolConnections *prometheus.Desc
	poolCreated     *prometheus.Desc
	poolDestroyed   *prometheus.Desc
	poolAcquires    *prometheus.Desc
	poolErrors      *prometheus.Desc
	poolWaitSeconds *prometheus.Desc

	circuitState    *prometheus.Desc
	circuitRequests *prometheus.Desc
	circuitFailures *prometheus.Desc
}

// NewCollector creates a collector for source. Register it with
// prometheus.Registry.MustRegister.
func NewCollector(source Source) *Collector {
	return &Collector{
		source: source,

		operations: prometheus.NewDesc(
			"arcus_operations_total",
			"Completed collection operations by kind",
			[]string{"kind"}, nil, // exist, position, count, piped
		),
		pipedItems: prometheus.NewDesc(
			"arcus_piped_items_total",
			"Items carried by piped requests",
			nil, nil,
		),
		pipedFailures: prometheus.NewDesc(
			"arcus_piped_failures_total",
			"Items reported as failed by piped responses",
			nil, nil,
		),
		protocolErrors: prometheus.NewDesc(
			"arcus_protocol_errors_total",
			"Responses that violated the protocol",
			nil, nil,
		),
		cancellations: prometheus.NewDesc(
			"arcus_cancellations_total",
			"Operations cancelled by their context",
			nil, nil,
		),
		errors: prometheus.NewDesc(
			"arcus_errors_total",
			"Calls that returned an error",
			nil, nil,
		),

		poolConnections: prometheus.NewDesc(
			"arcus_pool_connections",
			"Connection pool statistics",
			[]string{"server", "state"}, nil, // total, active, idle
		),
		poolCreated: prometheus.NewDesc(
			"arcus_pool_connections_created_total",
			"Connections created",
			[]string{"server"}, nil,
		),
		poolDestroyed: prometheus.NewDesc(
			"arcus_pool_connections_destroyed_total",
			"Connections destroyed",
			[]string{"server"}, nil,
		),
		poolAcquires: prometheus.NewDesc(
			"arcus_pool_acquires_total",
			"Connection acquire attempts",
			[]string{"server"}, nil,
		),
		poolErrors: prometheus.NewDesc(
			"arcus_pool_acquire_errors_total",
			"Failed connection acquires",
			[]string{"server"}, nil,
		),
		poolWaitSeconds: prometheus.NewDesc(
			"arcus_pool_acquire_wait_seconds_total",
			"Time spent waiting for a connection",
			[]string{"server"}, nil,
		),

		circuitState: prometheus.NewDesc(
			"arcus_circuit_breaker_state",
			"Circuit breaker state (0=closed, 1=half-open, 2=open)",
			[]string{"server"}, nil,
		),
		circuitRequests: prometheus.NewDesc(
			"arcus_circuit_breaker_requests",
			"Requests tracked by the circuit breaker in the current interval",
			[]string{"server"}, nil,
		),
		circuitFailures: prometheus.NewDesc(
			"arcus_circuit_breaker_failures",
			"Circuit breaker failure counts",
			[]string{"server", "type"}, nil, // total, consecutive
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.operations
	ch <- c.pipedItems
	ch <- c.pipedFailures
	ch <- c.protocolErrors
	ch <- c.cancellations
	ch <- c.errors
	ch <- c.poolConnections
	ch <- c.poolCreated
	ch <- c.poolDestroyed
	ch <- c.poolAcquires
	ch <- c.poolErrors
	ch <- c.poolWaitSeconds
	ch <- c.circuitState
	ch <- c.circuitRequests
	ch <- c.circuitFailures
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()

	counter := func(desc *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v), labels...)
	}
	gauge := func(desc *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v, labels...)
	}

	counter(c.operations, stats.Exists, "exist")
	counter(c.operations, stats.Positions, "position")
	counter(c.operations, stats.Counts, "count")
	counter(c.operations, stats.PipedOps, "piped")
	counter(c.pipedItems, stats.PipedItems)
	counter(c.pipedFailures, stats.PipedFailures)
	counter(c.protocolErrors, stats.ProtocolErrors)
	counter(c.cancellations, stats.Cancellations)
	counter(c.errors, stats.Errors)

	for _, sp := range c.source.AllPoolStats() {
		pool := sp.PoolStats

		gauge(c.poolConnections, float64(pool.TotalConns), sp.Addr, "total")
		gauge(c.poolConnections, float64(pool.ActiveConns), sp.Addr, "active")
		gauge(c.poolConnections, float64(pool.IdleConns), sp.Addr, "idle")
		counter(c.poolCreated, pool.CreatedConns, sp.Addr)
		counter(c.poolDestroyed, pool.DestroyedConns, sp.Addr)
		counter(c.poolAcquires, pool.AcquireCount, sp.Addr)
		counter(c.poolErrors, pool.AcquireErrors, sp.Addr)
		ch <- prometheus.MustNewConstMetric(c.poolWaitSeconds, prometheus.CounterValue, float64(pool.AcquireWaitTimeNs)/1e9, sp.Addr)

		gauge(c.circuitState, float64(sp.CircuitBreakerState), sp.Addr)
		gauge(c.circuitRequests, float64(sp.CircuitBreakerCounts.Requests), sp.Addr)
		gauge(c.circuitFailures, float64(sp.CircuitBreakerCounts.TotalFailures), sp.Addr, "total")
		gauge(c.circuitFailures, float64(sp.CircuitBreakerCounts.ConsecutiveFailures), sp.Addr, "consecutive")
	}
}
