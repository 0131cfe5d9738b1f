package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ordenes_created_total",
		Help: "Orders created successfully",
	})

	StatusUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ordenes_status_updates_total",
		Help: "Order status transitions applied",
	})

	OrdersDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ordenes_deleted_total",
		Help: "Orders deleted",
	})

	MarketSends = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ordenes_market_sends_total",
		Help: "Orders sent to the simulated market",
	})

	OperationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ordenes_operation_failures_total",
		Help: "Order operations that reported failure",
	}, []string{"op"})
)
