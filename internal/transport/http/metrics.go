package httptransport

import "expvar"

var metricHealthDBDown = expvar.NewInt("health_db_down_total")
