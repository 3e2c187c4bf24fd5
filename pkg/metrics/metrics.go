// Package metrics defines the Prometheus collectors exposed at /metrics.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/store"
)

var (
	// StoreOperationDuration tracks LoadAll/SaveAll latency per collection
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ezra_store_operation_duration_seconds",
			Help:    "Duration of record store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection", "operation"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ezra_store_operation_errors_total",
			Help: "Total number of failed record store operations",
		},
		[]string{"collection", "operation"},
	)

	// CollectionRecords is the record count seen by the last load or save
	CollectionRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ezra_collection_records",
			Help: "Number of records in each collection as of the last store operation",
		},
		[]string{"collection"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ezra_api_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ezra_api_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordStoreOperation records one store call
func RecordStoreOperation(collection, operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(collection, operation).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(collection, operation).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware records request count and latency labelled by the mux route
// template, so /api/groups/{id} is one series regardless of the id.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		RecordAPIRequest(r.Method, routeTemplate(r), m.Code, m.Duration)
	})
}

func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}
	return tpl
}

// instrumentedCollection decorates a store.Collection with metrics
type instrumentedCollection[T any] struct {
	store.Collection[T]
}

// InstrumentCollection wraps c so every LoadAll and SaveAll is measured.
func InstrumentCollection[T any](c store.Collection[T]) store.Collection[T] {
	return instrumentedCollection[T]{Collection: c}
}

func (c instrumentedCollection[T]) LoadAll(ctx context.Context) ([]T, error) {
	start := time.Now()
	records, err := c.Collection.LoadAll(ctx)
	RecordStoreOperation(c.Name(), "load", time.Since(start), err)
	if err == nil {
		CollectionRecords.WithLabelValues(c.Name()).Set(float64(len(records)))
	}
	return records, err
}

func (c instrumentedCollection[T]) SaveAll(ctx context.Context, records []T) error {
	start := time.Now()
	err := c.Collection.SaveAll(ctx, records)
	RecordStoreOperation(c.Name(), "save", time.Since(start), err)
	if err == nil {
		CollectionRecords.WithLabelValues(c.Name()).Set(float64(len(records)))
	}
	return err
}
