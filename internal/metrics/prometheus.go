//go:build !noprom

package metrics

import (
	"fmt"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

type promRecorder struct {
	catalogTotal   *prom.CounterVec
	catalogSeconds *prom.HistogramVec
	toolTotal      *prom.CounterVec
	toolSeconds    *prom.HistogramVec
	catalogNodes   prom.Gauge
}

func (p *promRecorder) IncCatalogOpTotal(op string, success bool) {
	p.catalogTotal.WithLabelValues(op, fmt.Sprintf("%t", success)).Inc()
}

func (p *promRecorder) ObserveCatalogOpSeconds(op string, success bool, seconds float64) {
	p.catalogSeconds.WithLabelValues(op, fmt.Sprintf("%t", success)).Observe(seconds)
}

func (p *promRecorder) IncToolTotal(tool string, success bool) {
	p.toolTotal.WithLabelValues(tool, fmt.Sprintf("%t", success)).Inc()
}

func (p *promRecorder) ObserveToolSeconds(tool string, success bool, seconds float64) {
	p.toolSeconds.WithLabelValues(tool, fmt.Sprintf("%t", success)).Observe(seconds)
}

func (p *promRecorder) ObserveCatalogSize(nodes int) {
	p.catalogNodes.Set(float64(nodes))
}

func enablePrometheus(addr string) error {
	registry := prom.NewRegistry()
	p := &promRecorder{
		catalogTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "catalog_ops_total",
			Help: "Total number of catalog operations",
		}, []string{"op", "success"}),
		catalogSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "catalog_op_seconds",
			Help:    "Catalog operation duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"op", "success"}),
		toolTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "tool_calls_total",
			Help: "Total number of tool handler calls",
		}, []string{"tool", "success"}),
		toolSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "tool_call_seconds",
			Help:    "Tool handler duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"tool", "success"}),
		catalogNodes: prom.NewGauge(prom.GaugeOpts{
			Name: "catalog_nodes",
			Help: "Number of entities in the loaded catalog",
		}),
	}

	registry.MustRegister(p.catalogTotal, p.catalogSeconds, p.toolTotal, p.toolSeconds, p.catalogNodes)
	SetRecorder(p)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() { _ = http.ListenAndServe(addr, mux) }()
	return nil
}
