package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type poolStatus struct {
	Addr           string `json:"addr"`
	TotalConns     int32  `json:"total_conns"`
	IdleConns      int32  `json:"idle_conns"`
	ActiveConns    int32  `json:"active_conns"`
	AcquireErrors  uint64 `json:"acquire_errors"`
	CircuitBreaker string `json:"circuit_breaker"`
}

// NewHandler serves the statistics of source:
//
//	GET /health   liveness probe
//	GET /metrics  Prometheus exposition
//	GET /stats    JSON snapshot of client and pool statistics
func NewHandler(source Source) http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(NewCollector(source))

	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		pools := source.AllPoolStats()
		body := struct {
			Client any          `json:"client"`
			Pools  []poolStatus `json:"pools"`
		}{
			Client: source.Stats(),
			Pools:  make([]poolStatus, 0, len(pools)),
		}
		for _, sp := range pools {
			body.Pools = append(body.Pools, poolStatus{
				Addr:           sp.Addr,
				TotalConns:     sp.PoolStats.TotalConns,
				IdleConns:      sp.PoolStats.IdleConns,
				ActiveConns:    sp.PoolStats.ActiveConns,
				AcquireErrors:  sp.PoolStats.AcquireErrors,
				CircuitBreaker: sp.CircuitBreakerState.String(),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})

	return r
}
