package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	pageViews = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ebadmin",
			Name:      "page_views_total",
			Help:      "Dashboard page renders by page.",
		},
		[]string{"page"},
	)

	gatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ebadmin",
			Name:      "gateway_requests_total",
			Help:      "Backend API requests by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	optimisticTransitions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ebadmin",
			Name:      "optimistic_transitions_total",
			Help:      "Status transitions applied locally before confirmation.",
		},
	)

	boardResyncs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ebadmin",
			Name:      "board_resyncs_total",
			Help:      "Full board reloads triggered by failed persistence calls.",
		},
	)

	uploadsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ebadmin",
			Name:      "uploads_rejected_total",
			Help:      "Knowledge uploads rejected by local validation.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			pageViews,
			gatewayRequests,
			optimisticTransitions,
			boardResyncs,
			uploadsRejected,
		)
	})
}

// IncPage increments the render counter for a page label.
func IncPage(page string) {
	pageViews.WithLabelValues(page).Inc()
}

// IncGateway increments the backend request counter.
func IncGateway(endpoint, outcome string) {
	gatewayRequests.WithLabelValues(endpoint, outcome).Inc()
}

// IncOptimisticTransition counts a locally-applied status change.
func IncOptimisticTransition() {
	optimisticTransitions.Inc()
}

// IncResync counts a full reload after a failed write.
func IncResync() {
	boardResyncs.Inc()
}

// IncUploadRejected counts a locally-rejected upload.
func IncUploadRejected() {
	uploadsRejected.Inc()
}
