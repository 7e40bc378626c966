// Package pkgmetric defines the Prometheus collectors exported on /metrics.
package pkgmetric

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shandysiswandi/gosend/internal/pkg/pkguid"
)

//nolint:gochecknoglobals // registration guard
var registerOnce sync.Once

// HTTP metrics.
//
//nolint:gochecknoglobals // collectors are process-wide
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gosend_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gosend_http_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Issuance metrics.
//
//nolint:gochecknoglobals // collectors are process-wide
var (
	IDsIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gosend_ids_issued_total",
			Help: "Numeric ids issued by engine",
		},
		[]string{"engine"},
	)

	SerialBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gosend_serial_builds_total",
			Help: "Serial builds by kind and outcome",
		},
		[]string{"kind", "status"},
	)

	SerialBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gosend_serial_build_duration_seconds",
			Help:    "Serial build latency in seconds, including inspector round trips",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
)

// Register registers the package collectors with the default registry. It is
// safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			IDsIssuedTotal,
			SerialBuildsTotal,
			SerialBuildDuration,
		)
	})
}

// RegisterFrame exposes the counters of a pkguid.Frame on reg.
func RegisterFrame(reg prometheus.Registerer, frame *pkguid.Frame) error {
	collectors := []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "gosend_frame_allocations_total",
			Help: "Sequence numbers allocated from the frame",
		}, func() float64 { return float64(frame.Stats().Allocated) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "gosend_frame_blocked_allocations_total",
			Help: "Allocations that waited for the next second",
		}, func() float64 { return float64(frame.Stats().Blocked) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "gosend_frame_clock_behind_total",
			Help: "Allocation attempts that saw the wall clock behind the frame epoch",
		}, func() float64 { return float64(frame.Stats().Behind) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "gosend_frame_epoch_seconds",
			Help: "Current frame epoch in seconds since the timebase",
		}, func() float64 { return float64(frame.Stats().Epoch) }),
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}

	return nil
}

// ObserveBuild records one finished serial build.
func ObserveBuild(kind string, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	SerialBuildsTotal.WithLabelValues(kind, status).Inc()
	SerialBuildDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests per matched route.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		route := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath()
		if route == "" {
			route = "unmatched"
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
