package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	tradesCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trades_completed_total",
		Help: "Total number of trade jobs completed successfully",
	})
	tradesCancelledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trades_cancelled_total",
		Help: "Total number of trade jobs cancelled before completion",
	})
)

func init() {
	prometheus.MustRegister(tradesCompletedTotal, tradesCancelledTotal)
}
