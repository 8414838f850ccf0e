package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideflow", Name: "api_requests_total", Help: "Outbound API requests by outcome"},
		[]string{"method", "route", "outcome"},
	)
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rideflow",
			Name:      "api_request_duration_seconds",
			Help:      "Outbound API request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RideActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideflow", Name: "ride_actions_total", Help: "Ride lifecycle actions by target status and result"},
		[]string{"role", "target", "result"},
	)
	ActivityEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideflow", Name: "activity_events_total", Help: "Client activity events published"},
		[]string{"result"},
	)
	ActivityEventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideflow", Name: "activity_events_consumed_total", Help: "Activity events read back by the tail command"},
		[]string{"result"},
	)
	LiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "rideflow", Name: "live_subscribers", Help: "Connected active-ride websocket subscribers"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideflow", Name: "http_requests_total", Help: "Total dashboard HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rideflow",
			Name:      "http_request_duration_seconds",
			Help:      "Dashboard HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
