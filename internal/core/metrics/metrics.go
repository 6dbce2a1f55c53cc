package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SyncCycles counts finished sync cycles by trigger and outcome.
	SyncCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ordersync_cycles_total",
			Help: "Number of completed sync cycles",
		},
		[]string{"trigger", "outcome"}, // trigger: cold_start|force|poll|manual, outcome: ok|error|skipped
	)
	// ShopFetchErrors counts per-shop fetch failures recovered during a cycle.
	ShopFetchErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ordersync_shop_fetch_errors_total",
			Help: "Number of shop fetches that ended with an error annotation",
		},
	)
	// OrdersFetched counts orders returned by providers, before reconciliation.
	OrdersFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ordersync_orders_fetched_total",
			Help: "Number of raw orders fetched from providers",
		},
	)
	// OrdersCached reports the size of the authoritative cached order set.
	OrdersCached = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ordersync_orders_cached",
			Help: "Number of orders currently held in the authoritative set",
		},
	)
	// SyncDuration observes the wall time of one sync cycle.
	SyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ordersync_cycle_duration_seconds",
			Help:    "Duration of sync cycles",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// MustRegister registers every collector with the default registry.
// Panics if called twice; call once from main.
func MustRegister() {
	prometheus.MustRegister(SyncCycles, ShopFetchErrors, OrdersFetched, OrdersCached, SyncDuration)
}
