package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Amendment metrics
	AmendmentsCreated   prometheus.Counter
	DocumentsGenerated  prometheus.Counter
	FlowsCompleted      prometheus.Counter
	AmendmentErrors     *prometheus.CounterVec
	AmendmentDuration   *prometheus.HistogramVec
	ScheduleSwapRetries prometheus.Counter

	// Contract numbering metrics
	ContractNumbersMinted prometheus.Counter
	ContractCacheHits     prometheus.Counter
	ContractCacheMisses   prometheus.Counter
	ContractErrors        *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	EventErrors     *prometheus.CounterVec
}

// New creates all metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Amendment metrics
		AmendmentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "goinvest_amendments_created_total",
			Help: "Total number of amendments created",
		}),
		DocumentsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "goinvest_amendment_documents_generated_total",
			Help: "Total number of amendments whose documents were generated",
		}),
		FlowsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "goinvest_amendment_flows_completed_total",
			Help: "Total number of amendments completed with a schedule swap",
		}),
		AmendmentErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goinvest_amendment_errors_total",
				Help: "Total number of amendment workflow errors by operation and kind",
			},
			[]string{"operation", "kind"},
		),
		AmendmentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goinvest_amendment_operation_duration_seconds",
				Help:    "Duration of amendment workflow operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		ScheduleSwapRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "goinvest_schedule_swap_retries_total",
			Help: "Total number of retried schedule swap transactions",
		}),

		// Contract numbering metrics
		ContractNumbersMinted: factory.NewCounter(prometheus.CounterOpts{
			Name: "goinvest_contract_numbers_resolved_total",
			Help: "Total number of contract numbers returned by the sequence generator",
		}),
		ContractCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "goinvest_contract_cache_hits_total",
			Help: "Total contract number cache hits",
		}),
		ContractCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "goinvest_contract_cache_misses_total",
			Help: "Total contract number cache misses",
		}),
		ContractErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goinvest_contract_errors_total",
				Help: "Total contract numbering errors by kind",
			},
			[]string{"kind"},
		),

		// Outbox metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goinvest_events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type"},
		),
		EventErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goinvest_event_errors_total",
				Help: "Total outbox publish failures by type",
			},
			[]string{"event_type"},
		),
	}
}
