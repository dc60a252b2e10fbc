package validity

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultPassed = "passed"
	resultFailed = "failed"
	resultError  = "error"
)

var (
	// checksTotal counts check invocations by check name and result.
	//
	// Labels:
	//   - check: is_empty, has_required_columns, has_no_redundant_columns, has_valid_data_types,
	//     has_no_missing_data, or the name given to a custom Check.
	//   - result: "passed" when nothing was recorded, "failed" when only rule violations were
	//     recorded, "error" when at least one unexpected error was recorded.
	//
	// Useful queries:
	//   - sum(rate(validity_checks_total{result!="passed"}[5m])) by (check) - failing checks
	//   - validity_checks_total{result="error"} - broken predicates or tables
	//
	// Prometheus metrics are registered once for the process, hence the global.
	checksTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "validity_checks_total",
		Help: "The total number of validity checks run",
	}, []string{"check", "result"})

	// checkTime records check durations in milliseconds. Checks scan the whole table, so
	// the buckets reach into seconds for large inputs.
	checkTime = promauto.NewHistogramVec(prometheus.HistogramOpts{ //nolint:gochecknoglobals
		Name: "validity_check_time_millis",
		Help: "The time it takes to run a validity check, in milliseconds",
		Buckets: []float64{
			0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000,
		},
	}, []string{"check"})

	// scopesTotal counts closed scopes by outcome ("passed" or "failed").
	scopesTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "validity_scopes_total",
		Help: "The total number of closed validation scopes",
	}, []string{"outcome"})
)

// init makes the outcome series exist before the first scope closes, so rate() queries
// and alerts see zero instead of no data.
func init() {
	scopesTotal.WithLabelValues(resultPassed).Add(0)
	scopesTotal.WithLabelValues(resultFailed).Add(0)
}

func observeCheck(check, result string, elapsed time.Duration) {
	checksTotal.WithLabelValues(check, result).Inc()
	checkTime.WithLabelValues(check).Observe(float64(elapsed.Microseconds()) / 1000) //nolint:mnd
}

func observeScope(failed bool) {
	if failed {
		scopesTotal.WithLabelValues(resultFailed).Inc()
	} else {
		scopesTotal.WithLabelValues(resultPassed).Inc()
	}
}
