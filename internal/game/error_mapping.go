package game

import (
	"errors"

	"tictac-rooms/internal/protocol"
	"tictac-rooms/internal/room"
	"tictac-rooms/internal/session"
)

const genericErrorMessage = "An error occurred while processing your request."

// MapError turns any request error into the code and message sent to the client.
func MapError(err error) (string, string) {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return "room_not_found", "Room not found"
	case errors.Is(err, room.ErrRoomFull):
		return "room_full", "Room is full"
	case errors.Is(err, room.ErrRoomExists):
		return "room_exists", "Room already exists"
	case errors.Is(err, room.ErrInvalidRoomID):
		return "invalid_room_id", "Invalid room ID"
	case errors.Is(err, ErrNoRoom):
		return "no_room", "You are not in a room"
	case errors.Is(err, ErrNotYourTurn):
		return "not_your_turn", "Not your turn"
	case errors.Is(err, ErrGameOver):
		return "game_over", "Game is over"
	case errors.Is(err, ErrInvalidPosition):
		return "invalid_position", "Invalid position"
	case errors.Is(err, ErrCellOccupied):
		return "cell_occupied", "Cell is already occupied"
	case errors.Is(err, ErrWaitingForPlayers):
		return "waiting_for_players", "Waiting for an opponent"
	case errors.Is(err, protocol.ErrMalformedMessage):
		return "malformed_message", "Malformed message"
	case errors.Is(err, session.ErrUnknownConnection):
		return "unknown_connection", genericErrorMessage
	default:
		return "internal_error", genericErrorMessage
	}
}

func ErrorEvent(err error) protocol.Error {
	code, msg := MapError(err)
	return protocol.NewError(code, msg)
}
