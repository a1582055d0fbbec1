package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/arcus"
)

type fakeSource struct {
	stats arcus.ClientStats
	pools []arcus.ServerPoolStats
}

func (f *fakeSource) Stats() arcus.ClientStats              { return f.stats }
func (f *fakeSource) AllPoolStats() []arcus.ServerPoolStats { return f.pools }

func TestCollector(t *testing.T) {
	source := &fakeSource{
		stats: arcus.ClientStats{
			Exists:        4,
			PipedOps:      3,
			PipedItems:    1200,
			PipedFailures: 600,
			Errors:        1,
		},
		pools: []arcus.ServerPoolStats{{
			Addr: "cache1:11211",
			PoolStats: arcus.PoolStats{
				TotalConns:   2,
				IdleConns:    1,
				ActiveConns:  1,
				CreatedConns: 2,
			},
			CircuitBreakerState:  gobreaker.StateOpen,
			CircuitBreakerCounts: gobreaker.Counts{Requests: 5, TotalFailures: 3, ConsecutiveFailures: 3},
		}},
	}

	collector := NewCollector(source)
	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(collector))

	expected := `
# HELP arcus_operations_total Completed collection operations by kind
# TYPE arcus_operations_total counter
arcus_operations_total{kind="count"} 0
arcus_operations_total{kind="exist"} 4
arcus_operations_total{kind="piped"} 3
arcus_operations_total{kind="position"} 0
# HELP arcus_piped_failures_total Items reported as failed by piped responses
# TYPE arcus_piped_failures_total counter
arcus_piped_failures_total 600
# HELP arcus_pool_connections Connection pool statistics
# TYPE arcus_pool_connections gauge
arcus_pool_connections{server="cache1:11211",state="active"} 1
arcus_pool_connections{server="cache1:11211",state="idle"} 1
arcus_pool_connections{server="cache1:11211",state="total"} 2
# HELP arcus_circuit_breaker_state Circuit breaker state (0=closed, 1=half-open, 2=open)
# TYPE arcus_circuit_breaker_state gauge
arcus_circuit_breaker_state{server="cache1:11211"} 2
`
	err := testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"arcus_operations_total",
		"arcus_piped_failures_total",
		"arcus_pool_connections",
		"arcus_circuit_breaker_state",
	)
	require.NoError(t, err)

	// 9 client series, 12 per server
	assert.Equal(t, 21, testutil.CollectAndCount(collector))
}

func TestCollectorNoPools(t *testing.T) {
	collector := NewCollector(&fakeSource{})
	assert.Equal(t, 9, testutil.CollectAndCount(collector))

	problems, err := testutil.CollectAndLint(collector)
	require.NoError(t, err)
	assert.Empty(t, problems)
}
