package obs

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	FramesTotal     *prometheus.CounterVec
	BlockedTotal    *prometheus.CounterVec
	ObservedRate    *prometheus.HistogramVec
	TransportErrors prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "busgate_frames_total",
				Help: "Frames evaluated by the gateway, by policy label and outcome",
			},
			[]string{"label", "outcome"},
		),
		BlockedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "busgate_blocked_total",
				Help: "Frames the gateway refused to forward, by policy label and reason",
			},
			[]string{"label", "reason"},
		),
		ObservedRate: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "busgate_observed_rate",
				Help:    "Per-identifier arrival count inside the rate window at decision time",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
			},
			[]string{"label"},
		),
		TransportErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "busgate_transport_errors_total",
				Help: "Receive or forward failures reported by the bus transport",
			},
		),
	}

	reg.MustRegister(m.FramesTotal, m.BlockedTotal, m.ObservedRate, m.TransportErrors)
	return m
}

// Serve exposes the registry on addr at path until the server fails. Run it
// in its own goroutine; errors go back to the caller.
func Serve(addr, path string, reg prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
