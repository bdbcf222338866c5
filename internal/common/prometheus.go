package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	SlotReservationTotal       = "slot_reservation_total"
	SlotConfirmationTotal      = "slot_confirmation_total"
	SlotSweptTotal             = "slot_swept_total"
	WinnerSelectionTotal       = "winner_selection_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "status_code"}),
		SlotReservationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: SlotReservationTotal,
			Help: "Count of slot reservation attempts",
		}, []string{"result"}),
		SlotConfirmationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: SlotConfirmationTotal,
			Help: "Count of slot confirmation attempts",
		}, []string{"result"}),
		SlotSweptTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: SlotSweptTotal,
			Help: "Count of expired reservations cleared by sweeps",
		}, []string{"source"}),
		WinnerSelectionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: WinnerSelectionTotal,
			Help: "Count of winner selection runs",
		}, []string{"mode", "result"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "status_code"}),
	}
)

// IncCounter increases the counter name with the given label values.
func IncCounter(name string, labels ...string) {
	PromCounters[name].WithLabelValues(labels...).Inc()
}

func AddCounter(name string, value float64, labels ...string) {
	PromCounters[name].WithLabelValues(labels...).Add(value)
}
