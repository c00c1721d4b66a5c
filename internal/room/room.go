package room

import (
	"time"

	"tictac-rooms/internal/board"
)

type Status string

const (
	StatusWaiting    Status = "waiting_for_players"
	StatusInProgress Status = "in_progress"
	StatusConcluded  Status = "concluded"
)

// Seats holds the connection id occupying each symbol; "" means free.
type Seats struct {
	X string
	O string
}

func (s Seats) Of(sym board.Symbol) string {
	switch sym {
	case board.X:
		return s.X
	case board.O:
		return s.O
	default:
		return ""
	}
}

// SymbolOf returns the seat the connection occupies. Unseated callers get ok=false.
func (s Seats) SymbolOf(connID string) (board.Symbol, bool) {
	switch {
	case connID == "":
		return board.Empty, false
	case s.X == connID:
		return board.X, true
	case s.O == connID:
		return board.O, true
	default:
		return board.Empty, false
	}
}

func (s Seats) Count() int {
	n := 0
	if s.X != "" {
		n++
	}
	if s.O != "" {
		n++
	}
	return n
}

func (s Seats) Occupied() []string {
	out := make([]string, 0, 2)
	if s.X != "" {
		out = append(out, s.X)
	}
	if s.O != "" {
		out = append(out, s.O)
	}
	return out
}

type Room struct {
	ID            string
	Board         board.Board
	CurrentPlayer board.Symbol
	Winner        board.Symbol
	IsGameOver    bool
	Seats         Seats
	CreatedAt     time.Time
	StartedAt     time.Time
	LastActivity  time.Time
}

func newRoom(id string, now time.Time) *Room {
	r := &Room{ID: id, CreatedAt: now}
	r.resetGame(now)
	return r
}

func (r *Room) resetGame(now time.Time) {
	r.Board = board.Board{}
	r.CurrentPlayer = board.X
	r.Winner = board.Empty
	r.IsGameOver = false
	r.StartedAt = now
	r.LastActivity = now
}

// Moves counts the marks placed since the last reset.
func (r *Room) Moves() int {
	n := 0
	for _, c := range r.Board {
		if c != board.Empty {
			n++
		}
	}
	return n
}

func (r *Room) Status() Status {
	switch {
	case r.IsGameOver:
		return StatusConcluded
	case r.Seats.Count() < 2:
		return StatusWaiting
	default:
		return StatusInProgress
	}
}

func (r *Room) Empty() bool {
	return r.Seats.Count() == 0
}

// Clone returns a copy safe to hand outside the coordinator lock.
func (r *Room) Clone() *Room {
	cp := *r
	return &cp
}
