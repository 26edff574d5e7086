package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "staking"

var (
	WalletRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "wallet",
		Name:      "cas_retries_total",
		Help:      "Wallet writes retried after losing a version race.",
	})
	WalletConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "wallet",
		Name:      "conflicts_total",
		Help:      "Wallet writes abandoned after exhausting retries.",
	})

	Stakes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "positions_opened_total",
		Help:      "Stake requests by outcome.",
	}, []string{"result"})

	BonusLevels = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bonus",
		Name:      "levels_total",
		Help:      "Referral bonus levels by outcome.",
	}, []string{"result"})

	AccrualPositions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "accrual",
		Name:      "positions_total",
		Help:      "Positions visited by accrual runs, by outcome.",
	}, []string{"result"})
	AccrualRunSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "accrual",
		Name:      "run_seconds",
		Help:      "Duration of accrual runs.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8),
	})
)

const (
	ResultOK      = "ok"
	ResultCredit  = "credited"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
)

func Handler() http.Handler {
	return promhttp.Handler()
}
