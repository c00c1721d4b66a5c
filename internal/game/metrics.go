package game

import "expvar"

var (
	metricConnectionsActive   = expvar.NewInt("connections_active")
	metricMoves               = expvar.NewInt("moves_total")
	metricMovesRejected       = expvar.NewInt("moves_rejected_total")
	metricBroadcastSendErrors = expvar.NewInt("broadcast_send_errors_total")
	metricSweeps              = expvar.NewInt("sweeps_total")
)
