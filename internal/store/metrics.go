package store

import "expvar"

var (
	metricResultsRecorded = expvar.NewInt("results_recorded_total")
	metricResultsDropped  = expvar.NewInt("results_dropped_total")
	metricResultsFailed   = expvar.NewInt("results_failed_total")
	metricResultsQueueLen = expvar.NewInt("results_queue_len")
)
