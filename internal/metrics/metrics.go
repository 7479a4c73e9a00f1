package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RatingsSubmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "porchrate_ratings_submitted_total",
		Help: "Total ratings accepted into the ledger",
	}, []string{"theme"})
	DuplicateSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "porchrate_duplicate_submissions_total",
		Help: "Total submissions rejected by the dedup check",
	}, []string{"theme"})
	ValidationFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "porchrate_validation_failures_total",
		Help: "Total submissions rejected by input validation",
	})
	HousesCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "porchrate_houses_created_total",
		Help: "Total houses created, by resolution mode",
	}, []string{"mode"})
	DupIndexHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "porchrate_dupindex_hits_total",
		Help: "Total duplicate-index fast-path hits confirmed by the ledger",
	})
	DupIndexErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "porchrate_dupindex_errors_total",
		Help: "Total duplicate-index operations that failed and were ignored",
	})
	StorageFailOpenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "porchrate_storage_fail_open_total",
		Help: "Total reads answered as empty because the backing store failed",
	}, []string{"collection"})
)

func init() {
	prometheus.MustRegister(RatingsSubmittedTotal)
	prometheus.MustRegister(DuplicateSubmissionsTotal)
	prometheus.MustRegister(ValidationFailuresTotal)
	prometheus.MustRegister(HousesCreatedTotal)
	prometheus.MustRegister(DupIndexHitsTotal)
	prometheus.MustRegister(DupIndexErrorsTotal)
	prometheus.MustRegister(StorageFailOpenTotal)
}
