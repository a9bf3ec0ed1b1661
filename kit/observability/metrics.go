package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CompletionsTotal  *prometheus.CounterVec
	DuplicateReturns  prometheus.Counter
	PushEventsApplied *prometheus.CounterVec
	PushEventsDeduped *prometheus.CounterVec
	Reconciliations   prometheus.Counter
	Resyncs           prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CompletionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "labrent_payment_completions_total",
			Help: "Payment completion outcomes",
		}, []string{"outcome"}),
		DuplicateReturns: f.NewCounter(prometheus.CounterOpts{
			Name: "labrent_duplicate_gateway_returns_total",
			Help: "Gateway returns skipped because the payment was already being processed",
		}),
		PushEventsApplied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "labrent_push_events_applied_total",
			Help: "Push events merged into the session view",
		}, []string{"resource"}),
		PushEventsDeduped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "labrent_push_events_deduped_total",
			Help: "Push events dropped because the id was already present",
		}, []string{"resource"}),
		Reconciliations: f.NewCounter(prometheus.CounterOpts{
			Name: "labrent_wallet_reconciliations_total",
			Help: "Authoritative wallet pulls",
		}),
		Resyncs: f.NewCounter(prometheus.CounterOpts{
			Name: "labrent_full_resyncs_total",
			Help: "Full session resyncs after a failed reconciliation",
		}),
	}
}
