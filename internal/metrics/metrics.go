package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "krob_relay"

var (
	PollTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "poll_ticks_total",
		Help:      "Total number of poll ticks per resource kind and outcome",
	}, []string{"kind", "outcome"})

	ChangeEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "change_events_total",
		Help:      "Total number of detected change events",
	}, []string{"kind"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "notifications_total",
		Help:      "Total number of notification deliveries",
	}, []string{"status"})

	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_requests_total",
		Help:      "Total number of marketplace API requests",
	}, []string{"endpoint", "status"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "active_sessions",
		Help:      "Number of currently tracked chat sessions",
	})
)

func IncPollTick(kind, outcome string) {
	PollTicks.WithLabelValues(kind, outcome).Inc()
}

func IncChangeEvent(kind string) {
	ChangeEvents.WithLabelValues(kind).Inc()
}

func IncNotification(err error) {
	status := "delivered"
	if err != nil {
		status = "failed"
	}
	Notifications.WithLabelValues(status).Inc()
}

func IncAPIRequest(endpoint, status string) {
	APIRequests.WithLabelValues(endpoint, status).Inc()
}

func SetActiveSessions(count float64) {
	ActiveSessions.Set(count)
}
