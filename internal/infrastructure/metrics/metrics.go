package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "energyledger"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Registration metrics
	Registrations *prometheus.CounterVec

	// Listing metrics
	ListingsCreated prometheus.Counter
	EnergyListed    prometheus.Counter

	// Settlement metrics
	TradesSettled        prometheus.Counter
	TradeEnergy          prometheus.Histogram
	TradeValue           prometheus.Histogram
	SettlementDuration   prometheus.Histogram
	SettlementRejections *prometheus.CounterVec

	// Wallet metrics
	Deposits prometheus.Counter

	// Event metrics
	EventsPublished *prometheus.CounterVec
	EventsFailed    *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Storage metrics
	TxRetries   prometheus.Counter
	CacheLookup *prometheus.CounterVec
	CacheWrites *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them on reg.
// A nil reg falls back to prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		Registrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Total participant registrations by role",
			},
			[]string{"role"},
		),

		ListingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_total",
			Help:      "Total successful energy listings",
		}),
		EnergyListed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "energy_listed_units_total",
			Help:      "Total energy units listed by prosumers",
		}),

		TradesSettled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_settled_total",
			Help:      "Total number of settled trades",
		}),
		TradeEnergy: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trade_energy_units",
			Help:      "Energy units per settled trade",
			Buckets:   []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		TradeValue: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trade_value",
			Help:      "Total price per settled trade",
			Buckets:   []float64{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000},
		}),
		SettlementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_duration_seconds",
			Help:      "Duration of buy operations",
			Buckets:   prometheus.DefBuckets,
		}),
		SettlementRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settlement_rejections_total",
				Help:      "Rejected buy operations by error code",
			},
			[]string{"code"},
		),

		Deposits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_deposits_total",
			Help:      "Total wallet deposits",
		}),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Outbox events delivered to publishers",
			},
			[]string{"event_type"},
		),
		EventsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_failed_total",
				Help:      "Outbox events that failed delivery",
			},
			[]string{"event_type"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		TxRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_retries_total",
			Help:      "Transactions retried after serialization failures or deadlocks",
		}),
		CacheLookup: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "account_cache_lookups_total",
				Help:      "Account cache lookups by result",
			},
			[]string{"result"},
		),
		CacheWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "account_cache_writes_total",
				Help:      "Account cache writes by result (stored, stale, error, invalidate_failed)",
			},
			[]string{"result"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
}
