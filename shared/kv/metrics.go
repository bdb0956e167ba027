package kv

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	kvOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foro_kv_operations_total",
			Help: "Total number of key-value store operations",
		},
		[]string{"backend", "op", "result"},
	)

	kvOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foro_kv_operation_duration_seconds",
			Help:    "Key-value store operation duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"backend", "op"},
	)
)

type instrumented struct {
	Store
	backend string
}

// Instrument records operation counts and latencies for s under the backend label.
func Instrument(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := i.Store.Get(ctx, key)
	i.observe("get", start, err, ok)
	return value, ok, err
}

func (i *instrumented) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := i.Store.Set(ctx, key, value)
	i.observe("set", start, err, true)
	return err
}

func (i *instrumented) observe(op string, start time.Time, err error, found bool) {
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case !found:
		result = "miss"
	}
	kvOpsTotal.WithLabelValues(i.backend, op, result).Inc()
	kvOpDuration.WithLabelValues(i.backend, op).Observe(time.Since(start).Seconds())
}
