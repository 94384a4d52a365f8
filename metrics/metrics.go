package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	MessagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "skillswap_messages_sent_total", Help: "Total chat messages delivered"},
	)
	ExchangesProposed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "skillswap_exchanges_proposed_total", Help: "Total swap proposals"},
	)
	ExchangesCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "skillswap_exchanges_completed_total", Help: "Total exchanges run to completion"},
	)
	RefundsApplied = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "skillswap_refunds_applied_total", Help: "Total credit refunds applied"},
	)
	StreamConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "skillswap_stream_connections", Help: "Open websocket connections"},
	)
)

func Register() {
	prometheus.MustRegister(MessagesSent, ExchangesProposed, ExchangesCompleted, RefundsApplied, StreamConnections)
}
