package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "xox"

const (
	ResultOK      = "ok"
	ResultDropped = "dropped"
	ResultFailed  = "failed"
)

type Metrics struct {
	actions       *prometheus.CounterVec
	conflicts     *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// New - registers the counters in reg. Pass prometheus.DefaultRegisterer to
// expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Session actions by outcome code.",
		}, []string{"action", "result"}),
		conflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_conflicts_total",
			Help:      "Lost compare-and-swap writes.",
		}, []string{"action"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Session view broadcasts by outcome.",
		}, []string{"result"}),
	}
}

func (that *Metrics) Action(action, result string) {
	that.actions.WithLabelValues(action, result).Inc()
}

func (that *Metrics) StoreConflict(action string) {
	that.conflicts.WithLabelValues(action).Inc()
}

func (that *Metrics) Notification(result string) {
	that.notifications.WithLabelValues(result).Inc()
}
