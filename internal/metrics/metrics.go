package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Merge engine metrics
	MergesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "screenpulse_merges_total",
			Help: "Total usage merge runs",
		},
	)

	MergeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "screenpulse_merge_duration_seconds",
			Help:    "Usage merge duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	MergedApps = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "screenpulse_merged_apps",
			Help: "Number of applications in the last merge",
		},
	)

	// Category rollup metrics
	CategoryMinutes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "screenpulse_category_minutes",
			Help: "Foreground minutes per category in the last rollup",
		},
		[]string{"category"},
	)

	// Ledger metrics
	NotificationsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "screenpulse_notifications_recorded_total",
			Help: "Total notification events recorded",
		},
	)

	ManualStudyAdjustments = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "screenpulse_manual_study_adjustments_total",
			Help: "Total manual study ledger adjustments",
		},
	)

	CountersSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "screenpulse_counters_swept_total",
			Help: "Total stale day counters removed by retention sweeps",
		},
	)

	// Export metrics
	ReportExports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screenpulse_report_exports_total",
			Help: "Total report export attempts",
		},
		[]string{"status"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		MergesTotal,
		MergeDuration,
		MergedApps,
		CategoryMinutes,
		NotificationsRecorded,
		ManualStudyAdjustments,
		CountersSwept,
		ReportExports,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server *http.Server
	logger zerolog.Logger
}

// NewServer creates a new metrics server
func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Start starts the metrics server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
