package protocol

import (
	"tictac-rooms/internal/board"
	"tictac-rooms/internal/room"
)

const (
	TypeCreate = "create"
	TypeJoin   = "join"
	TypeMove   = "move"
	TypeReset  = "reset"

	TypeInit      = "init"
	TypeGameState = "gameState"
	TypeError     = "error"
)

type ClientMessage struct {
	Type     string `json:"type" validate:"required,oneof=create join move reset"`
	RoomID   string `json:"roomId,omitempty" validate:"omitempty,max=64,printascii"`
	Position *int   `json:"position,omitempty"`
}

type Init struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

type Players struct {
	X string `json:"X,omitempty"`
	O string `json:"O,omitempty"`
}

type GameState struct {
	Type          string      `json:"type"`
	RoomID        string      `json:"roomId"`
	Board         board.Board `json:"board"`
	CurrentPlayer string      `json:"currentPlayer"`
	Winner        *string     `json:"winner"`
	IsGameOver    bool        `json:"isGameOver"`
	Players       Players     `json:"players"`
	LastActivity  int64       `json:"lastActivity"`
	Status        string      `json:"status"`
}

type Error struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewInit(playerID string) Init {
	return Init{Type: TypeInit, PlayerID: playerID}
}

func NewGameState(r *room.Room) GameState {
	gs := GameState{
		Type:          TypeGameState,
		RoomID:        r.ID,
		Board:         r.Board,
		CurrentPlayer: string(r.CurrentPlayer),
		IsGameOver:    r.IsGameOver,
		Players:       Players{X: r.Seats.X, O: r.Seats.O},
		LastActivity:  r.LastActivity.UnixMilli(),
		Status:        string(r.Status()),
	}
	if r.Winner != board.Empty {
		w := string(r.Winner)
		gs.Winner = &w
	}
	return gs
}

func NewError(code, message string) Error {
	return Error{Type: TypeError, Code: code, Message: message}
}
