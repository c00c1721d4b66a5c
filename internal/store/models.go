package store

import "time"

// GameResult is one concluded game. Winner is "" for a draw.
type GameResult struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	Winner    string    `json:"winner"`
	PlayerX   string    `json:"player_x"`
	PlayerO   string    `json:"player_o"`
	Board     string    `json:"board"`
	Moves     int       `json:"moves"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

func (r GameResult) Draw() bool {
	return r.Winner == ""
}
