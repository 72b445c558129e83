package orders

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkouts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "orders",
		Name:      "checkouts_total",
		Help:      "Orders created from carts.",
	})
	transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "orders",
		Name:      "status_transitions_total",
		Help:      "Order status changes by source and target status.",
	}, []string{"from", "to"})
	stockRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "orders",
		Name:      "stock_rejections_total",
		Help:      "Acceptances refused for insufficient stock.",
	})
)
