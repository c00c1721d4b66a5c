package room

import "expvar"

var (
	metricRoomsCreated = expvar.NewInt("rooms_created_total")
	metricRoomsClosed  = expvar.NewInt("rooms_closed_total")
	metricRoomsSwept   = expvar.NewInt("rooms_swept_total")
)
