package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	tradesSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trades_submitted_total",
		Help: "Total number of trade jobs taken in by this process",
	})
	tradesRoutedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trades_routed_total",
		Help: "Total number of trade jobs forwarded to a sibling worker",
	})
	tradesFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trades_failed_total",
		Help: "Total number of trade jobs that reached the failed state, by reason",
	}, []string{"reason"})
	queueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trade_queue_depth",
		Help: "Entries waiting or in flight on the local executor queue",
	}, []string{"variant"})
)

func init() {
	prometheus.MustRegister(tradesSubmittedTotal, tradesRoutedTotal, tradesFailedTotal, queueDepth)
}
