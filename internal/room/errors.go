package room

import "errors"

var (
	ErrRoomNotFound  = errors.New("room_not_found")
	ErrRoomFull      = errors.New("room_full")
	ErrRoomExists    = errors.New("room_exists")
	ErrInvalidRoomID = errors.New("invalid_room_id")
)
