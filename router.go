package main

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ocall/internal/api"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ocall",
			Name:      "http_requests_total",
			Help:      "The total number of handled HTTP requests",
		}, []string{"method", "status"})

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ocall",
			Name:      "http_request_duration_seconds",
			Help:      "Time spent serving HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration)
}

// routerDeps carries the services behind the JSON API. With either one
// nil the API is not mounted and only the static routes are served.
// db backs the health check.
type routerDeps struct {
	profiles api.ProfileService
	agenda   api.AgendaService
	db       pinger
}

func newRouter(deps routerDeps) http.Handler {
	router := chi.NewRouter()

	router.Get("/login", handleLoginGet)
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
	router.Get("/api/health", healthHandler(deps.db))
	router.Handle("/metrics", promhttp.Handler())

	if deps.profiles != nil && deps.agenda != nil {
		apiCfg := huma.DefaultConfig("OCall", "1.0.0")
		apiCfg.Info.Description = "Profiles, events, applications and tags of the OCall agenda."
		humaAPI := humachi.New(router, apiCfg)
		api.Register(humaAPI, deps.profiles, deps.agenda)
	}

	return logRequests(router)
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		elapsed := time.Since(start)
		httpRequests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method).Observe(elapsed.Seconds())

		xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
		log.Printf(
			"request: status=%d bytes=%d dur=%s method=%s path=%s remote=%s xff=%q ua=%q",
			rec.status,
			rec.bytes,
			elapsed.Truncate(time.Millisecond),
			r.Method,
			r.URL.Path,
			r.RemoteAddr,
			xff,
			r.UserAgent(),
		)
	})
}
