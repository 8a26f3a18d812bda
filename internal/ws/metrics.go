package ws

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "minesweeper_ws_clients",
		Help: "Open websocket connections",
	})
	DroppedClients = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "minesweeper_ws_dropped_total",
		Help: "Connections closed because their send buffer was full",
	})
)

func init() {
	prometheus.MustRegister(ConnectedClients, DroppedClients)
}
