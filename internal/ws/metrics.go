package ws

import "expvar"

var (
	metricConnectionsTotal = expvar.NewInt("ws_connections_total")
	metricMessagesIn       = expvar.NewInt("ws_messages_in_total")
	metricRequestErrors    = expvar.NewInt("ws_request_errors_total")
)
