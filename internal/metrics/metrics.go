package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Rooms = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roomcast_rooms",
		Help: "Current number of live rooms",
	})
	Users = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roomcast_users",
		Help: "Current number of registered users",
	})
	WsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roomcast_ws_connections",
		Help: "Current number of active websocket connections",
	})
	ChatMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roomcast_chat_messages_total",
		Help: "Total number of chat messages relayed",
	})
	WsEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roomcast_ws_events_total",
		Help: "Total number of websocket events received",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(Rooms, Users, WsConnections, ChatMessagesTotal, WsEventsTotal)
}
