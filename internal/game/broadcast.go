package game

import (
	"encoding/json"

	"tictac-rooms/internal/protocol"
	"tictac-rooms/internal/room"
	"tictac-rooms/internal/session"

	"github.com/rs/zerolog/log"
)

// notifier adapts the coordinator to room.Notifier. The store only calls it
// while the coordinator lock is held.
type notifier struct {
	c *Coordinator
}

func (n notifier) BroadcastState(r *room.Room) {
	n.c.broadcastLocked(r)
}

func (n notifier) NotifyClosed(connID, roomID, reason string) {
	conn, ok := n.c.registry.Conn(connID)
	if !ok {
		return
	}
	log.Info().Str("room_id", roomID).Str("conn_id", connID).Msg("room_closed_idle")
	n.c.send(connID, conn, protocol.NewError("room_closed", reason))
}

// broadcastLocked sends the full state to a snapshot of the seated players.
// A failed send is logged and skipped.
func (c *Coordinator) broadcastLocked(r *room.Room) {
	msg, err := json.Marshal(protocol.NewGameState(r))
	if err != nil {
		log.Error().Err(err).Str("room_id", r.ID).Msg("marshal game state failed")
		return
	}
	for _, connID := range r.Seats.Occupied() {
		conn, ok := c.registry.Conn(connID)
		if !ok || conn.Closed() {
			continue
		}
		if err := conn.Send(msg); err != nil {
			metricBroadcastSendErrors.Add(1)
			log.Warn().Err(err).Str("room_id", r.ID).Str("conn_id", connID).Msg("broadcast send failed")
		}
	}
}

func (c *Coordinator) send(connID string, conn session.Conn, v any) {
	if conn == nil || conn.Closed() {
		return
	}
	msg, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("conn_id", connID).Msg("marshal message failed")
		return
	}
	if err := conn.Send(msg); err != nil {
		metricBroadcastSendErrors.Add(1)
		log.Warn().Err(err).Str("conn_id", connID).Msg("send failed")
	}
}
