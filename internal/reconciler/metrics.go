package reconciler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var linesReconciled = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_cart_lines_reconciled_total",
		Help: "Cart reconciliation line outcomes.",
	},
	[]string{"outcome"},
)
