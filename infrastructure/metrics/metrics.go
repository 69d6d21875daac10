package metrics

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess      = "success"
	ResultInsufficient = "insufficient"
	ResultNotFound     = "not_found"
	ResultRejected     = "rejected"
	ResultError        = "error"
)

var (
	stockActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "order_service",
			Name:      "stock_actions_total",
			Help:      "Total number of stock reserve and release calls",
		},
		[]string{"action", "result"},
	)

	orderOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "order_service",
			Name:      "order_operations_total",
			Help:      "Total number of order lifecycle operations",
		},
		[]string{"operation", "result"},
	)

	orderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "order_service",
			Name:      "order_operation_duration_ms",
			Help:      "Duration of order lifecycle operations in ms",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 200, 400, 800, 1600},
		},
		[]string{"operation"},
	)
)

func StockAction(action, result string) {
	stockActions.WithLabelValues(action, result).Inc()
}

// ObserveOrder records the outcome and duration of one lifecycle operation started at start.
func ObserveOrder(operation, result string, start time.Time) {
	orderOperations.WithLabelValues(operation, result).Inc()
	orderDuration.WithLabelValues(operation).Observe(float64(time.Since(start).Milliseconds()))
}

// NewServer returns an http server exposing the default registry on /metrics.
func NewServer(address string, port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              net.JoinHostPort(address, strconv.Itoa(port)),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
