package game

import (
	"errors"

	"tictac-rooms/internal/board"
	"tictac-rooms/internal/room"
)

var (
	ErrNoRoom            = errors.New("no_room")
	ErrNotYourTurn       = errors.New("not_your_turn")
	ErrGameOver          = errors.New("game_over")
	ErrInvalidPosition   = errors.New("invalid_position")
	ErrCellOccupied      = errors.New("cell_occupied")
	ErrWaitingForPlayers = errors.New("waiting_for_players")
)

// ValidateMove checks a move against the room state without mutating it.
// Checks run in a fixed order so callers always see the same error for the
// same state.
func ValidateMove(r *room.Room, connID string, pos int) (board.Symbol, error) {
	if r.IsGameOver {
		return board.Empty, ErrGameOver
	}
	if !board.InRange(pos) {
		return board.Empty, ErrInvalidPosition
	}
	if r.Board.Cell(pos) != board.Empty {
		return board.Empty, ErrCellOccupied
	}
	sym, seated := r.Seats.SymbolOf(connID)
	if !seated || sym != r.CurrentPlayer {
		return board.Empty, ErrNotYourTurn
	}
	if r.Seats.Count() < 2 {
		return board.Empty, ErrWaitingForPlayers
	}
	return sym, nil
}

// applyMove writes a validated move and advances the state machine.
func applyMove(r *room.Room, sym board.Symbol, pos int) {
	r.Board.Place(pos, sym)
	if winner, ok := board.DetectOutcome(r.Board); ok {
		r.Winner = winner
		r.IsGameOver = true
		return
	}
	if r.Board.Full() {
		r.IsGameOver = true
		return
	}
	r.CurrentPlayer = sym.Opponent()
}
