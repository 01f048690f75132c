package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation counters, labeled by outcome.
var (
	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cashbook_payments_total",
			Help: "Total number of payment attempts by outcome",
		},
		[]string{"outcome"},
	)

	DevolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cashbook_devolutions_total",
			Help: "Total number of devolution attempts by outcome",
		},
		[]string{"outcome"},
	)

	EntriesApproved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cashbook_entries_approved_total",
		Help: "Total number of ledger entries approved",
	})

	EntriesCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cashbook_entries_cancelled_total",
		Help: "Total number of ledger entries cancelled",
	})

	AccountsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cashbook_accounts_created_total",
		Help: "Total number of accounts created",
	})

	ExpensesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cashbook_expenses_created_total",
		Help: "Total number of expenses registered",
	})

	PaymentAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cashbook_payment_amount",
		Help:    "Payment amounts in source currency units",
		Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
	})
)
