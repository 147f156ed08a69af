package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-activityform/pkg/submission"
)

// Collectors holds the service metrics. It implements submission.Observer.
type Collectors struct {
	Submissions   *prometheus.CounterVec
	Duration      *prometheus.HistogramVec
	Uploads       *prometheus.CounterVec
	Invalidations *prometheus.CounterVec
}

var _ submission.Observer = (*Collectors)(nil)

// NewCollectors creates the collectors and registers them on reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "activityform",
			Name:      "submissions_total",
			Help:      "Finished submissions by terminal state and failure kind.",
		}, []string{"state", "kind"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "activityform",
			Name:      "submission_duration_seconds",
			Help:      "Time from receipt to terminal state.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"state"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "activityform",
			Name:      "image_uploads_total",
			Help:      "Image uploads by result.",
		}, []string{"result"}),
		Invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "activityform",
			Name:      "invalidations_total",
			Help:      "Cache invalidation deliveries by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		registerCollector(reg, c.Submissions)
		registerCollector(reg, c.Duration)
		registerCollector(reg, c.Uploads)
		registerCollector(reg, c.Invalidations)
	}
	return c
}

// ObserveSubmission implements submission.Observer.
func (c *Collectors) ObserveSubmission(state submission.State, kind submission.Kind, elapsed time.Duration) {
	c.Submissions.WithLabelValues(state.String(), kind.String()).Inc()
	c.Duration.WithLabelValues(state.String()).Observe(elapsed.Seconds())
}

// ObserveUpload counts one upload outcome.
func (c *Collectors) ObserveUpload(out submission.UploadOutcome) {
	result := "success"
	switch {
	case out.Invalid:
		result = "invalid"
	case out.Err != nil:
		result = out.Err.Kind.String()
	}
	c.Uploads.WithLabelValues(result).Inc()
}

// ObserveInvalidation counts one delivery attempt. It matches the
// invalidate.WithObserver callback.
func (c *Collectors) ObserveInvalidation(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.Invalidations.WithLabelValues(result).Inc()
}

// Options configures the /metrics and /health handler.
type Options struct {
	Registry      *prometheus.Registry
	Health        func(ctx context.Context) error
	MetricsPath   string
	HealthPath    string
	HealthTimeout time.Duration
}

func registerCollector(reg prometheus.Registerer, c prometheus.Collector) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return
		}
	}
}

// Handler serves /metrics and /health. It returns the registry in use so
// callers can register their own collectors.
func Handler(opts Options) (http.Handler, *prometheus.Registry) {
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.HealthPath == "" {
		opts.HealthPath = "/health"
	}
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = 500 * time.Millisecond
	}

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	registerCollector(reg, prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	registerCollector(reg, prometheus.NewGoCollector())

	mux := http.NewServeMux()
	mux.Handle(opts.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc(opts.HealthPath, func(w http.ResponseWriter, r *http.Request) {
		if opts.Health == nil {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), opts.HealthTimeout)
		defer cancel()

		errCh := make(chan error, 1)
		go func() { errCh <- opts.Health(ctx) }()

		select {
		case err := <-errCh:
			if err != nil {
				http.Error(w, "UNHEALTHY: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		case <-ctx.Done():
			http.Error(w, "UNHEALTHY: health timeout", http.StatusServiceUnavailable)
		}
	})

	return mux, reg
}
