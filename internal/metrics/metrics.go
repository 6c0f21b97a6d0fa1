package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	handsDealtCounter    prometheus.Counter
	handsAbortedCounter  prometheus.Counter
	autoFoldCounter      prometheus.Counter
	actionCounter        *prometheus.CounterVec
	rakeCounter          prometheus.Counter
	potHistogram         prometheus.Histogram
	activeTablesGauge    prometheus.Gauge
	seatedPlayersGauge   prometheus.Gauge
	ledgerFailureCounter prometheus.Counter
}

func (m *metrics) HandDealt() {
	m.handsDealtCounter.Inc()
}

func (m *metrics) HandAborted() {
	m.handsAbortedCounter.Inc()
}

func (m *metrics) AutoFold() {
	m.autoFoldCounter.Inc()
}

func (m *metrics) Action(action string) {
	m.actionCounter.WithLabelValues(action).Inc()
}

func (m *metrics) HandEnded(pot, remainder int) {
	m.potHistogram.Observe(float64(pot))
	m.rakeCounter.Add(float64(remainder))
}

func (m *metrics) SetActiveTables(count int) {
	m.activeTablesGauge.Set(float64(count))
}

func (m *metrics) PlayersSeated(delta int) {
	m.seatedPlayersGauge.Add(float64(delta))
}

func (m *metrics) LedgerFailure() {
	m.ledgerFailureCounter.Inc()
}

// Metrics is the process-wide set of poker metrics
var Metrics = &metrics{
	handsDealtCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "poker_hands_dealt_total",
		Help: "Total number of hands dealt",
	}),
	handsAbortedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "poker_hands_aborted_total",
		Help: "Total number of hands aborted by a structural error",
	}),
	autoFoldCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "poker_auto_folds_total",
		Help: "Total number of players folded by the action timer",
	}),
	actionCounter: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_actions_total",
		Help: "Total number of accepted player actions",
	}, []string{"action"}),
	rakeCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "poker_rake_chips_total",
		Help: "Chips left over from uneven split pots",
	}),
	potHistogram: promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "poker_pot_chips",
		Help:    "Size of the pot when a hand ends",
		Buckets: prometheus.ExponentialBuckets(100, 2, 12),
	}),
	activeTablesGauge: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "poker_active_tables",
		Help: "Number of tables registered with the pit boss",
	}),
	seatedPlayersGauge: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "poker_seated_players",
		Help: "Number of players seated across all tables",
	}),
	ledgerFailureCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "poker_ledger_failures_total",
		Help: "Total number of ledger calls that failed",
	}),
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
