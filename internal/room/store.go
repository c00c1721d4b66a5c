package room

import (
	"sort"
	"time"

	"tictac-rooms/internal/board"

	"github.com/rs/zerolog/log"
)

const InactivityReason = "Room closed due to inactivity"

// Membership is the connection -> room index owned by the session registry.
type Membership interface {
	RoomOf(connID string) (string, bool)
	Bind(connID, roomID string)
	Unbind(connID string)
}

// Notifier delivers room events to seated connections.
type Notifier interface {
	BroadcastState(r *Room)
	NotifyClosed(connID, roomID, reason string)
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store owns per-room game state. Like the registry it relies on the
// coordinator for serialization.
type Store struct {
	rooms      map[string]*Room
	membership Membership
	notifier   Notifier
	now        func() time.Time
}

func NewStore(m Membership, n Notifier, opts ...Option) *Store {
	s := &Store{
		rooms:      map[string]*Room{},
		membership: m,
		notifier:   n,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Create(roomID string) (*Room, error) {
	if roomID == "" {
		return nil, ErrInvalidRoomID
	}
	if _, ok := s.rooms[roomID]; ok {
		return nil, ErrRoomExists
	}
	r := newRoom(roomID, s.now())
	s.rooms[roomID] = r
	metricRoomsCreated.Add(1)
	return r, nil
}

func (s *Store) Get(roomID string) (*Room, bool) {
	r, ok := s.rooms[roomID]
	return r, ok
}

// TakeSeat seats the connection as X, or O when X is taken. A seat held in a
// different room is released first.
func (s *Store) TakeSeat(roomID, connID string) (*Room, error) {
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if cur, ok := s.membership.RoomOf(connID); ok {
		if cur == roomID {
			if _, seated := r.Seats.SymbolOf(connID); seated {
				r.LastActivity = s.now()
				return r, nil
			}
		} else {
			if r.Seats.Count() == 2 {
				return nil, ErrRoomFull
			}
			s.ReleaseSeat(connID)
		}
	}
	switch {
	case r.Seats.X == "":
		r.Seats.X = connID
	case r.Seats.O == "":
		r.Seats.O = connID
	default:
		return nil, ErrRoomFull
	}
	r.LastActivity = s.now()
	s.membership.Bind(connID, roomID)
	return r, nil
}

// ReleaseSeat clears the connection's seat. An emptied room is destroyed,
// otherwise the remaining player gets the new state.
func (s *Store) ReleaseSeat(connID string) {
	roomID, ok := s.membership.RoomOf(connID)
	if !ok {
		return
	}
	s.membership.Unbind(connID)
	r, ok := s.rooms[roomID]
	if !ok {
		return
	}
	switch connID {
	case r.Seats.X:
		r.Seats.X = ""
	case r.Seats.O:
		r.Seats.O = ""
	}
	if r.Empty() {
		s.destroy(roomID)
		log.Info().Str("room_id", roomID).Msg("room_closed_empty")
		return
	}
	if s.notifier != nil {
		s.notifier.BroadcastState(r)
	}
}

func (s *Store) Touch(roomID string) {
	if r, ok := s.rooms[roomID]; ok {
		r.LastActivity = s.now()
	}
}

// Reset reinitializes the game in any state. Seats are kept.
func (s *Store) Reset(roomID string) (*Room, error) {
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	r.resetGame(s.now())
	return r, nil
}

// SweepIdle destroys rooms idle for longer than timeout and returns their ids, sorted.
func (s *Store) SweepIdle(now time.Time, timeout time.Duration) []string {
	var closed []string
	for id, r := range s.rooms {
		if now.Sub(r.LastActivity) <= timeout {
			continue
		}
		for _, connID := range r.Seats.Occupied() {
			if s.notifier != nil {
				s.notifier.NotifyClosed(connID, id, InactivityReason)
			}
			if cur, ok := s.membership.RoomOf(connID); ok && cur == id {
				s.membership.Unbind(connID)
			}
		}
		closed = append(closed, id)
	}
	for _, id := range closed {
		s.destroy(id)
	}
	metricRoomsSwept.Add(int64(len(closed)))
	sort.Strings(closed)
	return closed
}

func (s *Store) destroy(roomID string) {
	delete(s.rooms, roomID)
	metricRoomsClosed.Add(1)
}

func (s *Store) Len() int {
	return len(s.rooms)
}

// CountByStatus is used for the public stats endpoint.
func (s *Store) CountByStatus() map[Status]int {
	out := map[Status]int{}
	for _, r := range s.rooms {
		out[r.Status()]++
	}
	return out
}

// Symbol of the seat connID holds in roomID.
func (s *Store) SeatOf(roomID, connID string) (board.Symbol, bool) {
	r, ok := s.rooms[roomID]
	if !ok {
		return board.Empty, false
	}
	return r.Seats.SymbolOf(connID)
}
