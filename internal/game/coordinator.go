package game

import (
	"sync"
	"time"

	"tictac-rooms/internal/ids"
	"tictac-rooms/internal/protocol"
	"tictac-rooms/internal/room"
	"tictac-rooms/internal/session"
	"tictac-rooms/internal/store"

	"github.com/rs/zerolog/log"
)

const DefaultIdleTimeout = 30 * time.Minute

// ResultSink receives concluded games. Record is called with the coordinator
// lock held and must not block.
type ResultSink interface {
	Record(r store.GameResult)
}

type Option func(*Coordinator)

func WithIdleTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.idleTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func WithResultSink(sink ResultSink) Option {
	return func(c *Coordinator) { c.results = sink }
}

// Coordinator is the single owner of rooms, connections and membership.
// One mutex serializes request handling and sweeps.
type Coordinator struct {
	mu          sync.Mutex
	registry    *session.Registry
	rooms       *room.Store
	idleTimeout time.Duration
	results     ResultSink
	now         func() time.Time
	newID       func() string
}

func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		newID:       ids.New,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.registry = session.NewRegistry()
	c.rooms = room.NewStore(c.registry, notifier{c}, room.WithClock(c.now))
	c.registry.SetSeatReleaser(c.rooms)
	return c
}

// Connect registers a transport handle and greets it with its identity.
func (c *Coordinator) Connect(conn session.Conn) string {
	c.mu.Lock()
	id := c.newID()
	c.registry.Register(id, conn)
	c.mu.Unlock()
	metricConnectionsActive.Add(1)
	c.send(id, conn, protocol.NewInit(id))
	log.Debug().Str("conn_id", id).Msg("connection_registered")
	return id
}

// Disconnect drops the connection and frees its seat.
func (c *Coordinator) Disconnect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnectLocked(connID)
}

func (c *Coordinator) disconnectLocked(connID string) {
	if err := c.registry.Unregister(connID); err != nil {
		return
	}
	metricConnectionsActive.Add(-1)
	log.Debug().Str("conn_id", connID).Msg("connection_unregistered")
}

// Handle dispatches one decoded client message.
func (c *Coordinator) Handle(connID string, msg protocol.ClientMessage) error {
	switch msg.Type {
	case protocol.TypeCreate:
		return c.Create(connID, msg.RoomID)
	case protocol.TypeJoin:
		return c.Join(connID, msg.RoomID)
	case protocol.TypeMove:
		if msg.Position == nil {
			return protocol.ErrMalformedMessage
		}
		return c.ApplyMove(connID, *msg.Position)
	case protocol.TypeReset:
		return c.Reset(connID, msg.RoomID)
	default:
		return protocol.ErrMalformedMessage
	}
}

// Create makes a room and seats its creator as X.
func (c *Coordinator) Create(connID, roomID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.registry.Registered(connID) {
		return session.ErrUnknownConnection
	}
	if _, err := c.rooms.Create(roomID); err != nil {
		return err
	}
	r, err := c.rooms.TakeSeat(roomID, connID)
	if err != nil {
		return err
	}
	log.Info().Str("room_id", roomID).Str("conn_id", connID).Msg("room_created")
	c.broadcastLocked(r)
	return nil
}

func (c *Coordinator) Join(connID, roomID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.registry.Registered(connID) {
		return session.ErrUnknownConnection
	}
	r, err := c.rooms.TakeSeat(roomID, connID)
	if err != nil {
		return err
	}
	sym, _ := r.Seats.SymbolOf(connID)
	log.Info().Str("room_id", roomID).Str("conn_id", connID).Str("seat", string(sym)).Msg("room_joined")
	c.broadcastLocked(r)
	return nil
}

// ApplyMove places the caller's symbol at position. Rejected moves leave the
// room untouched.
func (c *Coordinator) ApplyMove(connID string, position int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	roomID, ok := c.registry.ResolveRoom(connID)
	if !ok {
		metricMovesRejected.Add(1)
		return ErrNoRoom
	}
	r, ok := c.rooms.Get(roomID)
	if !ok {
		c.registry.Unbind(connID)
		metricMovesRejected.Add(1)
		return ErrNoRoom
	}
	sym, err := ValidateMove(r, connID, position)
	if err != nil {
		metricMovesRejected.Add(1)
		log.Debug().Err(err).Str("room_id", roomID).Str("conn_id", connID).Int("position", position).Msg("move_rejected")
		return err
	}
	applyMove(r, sym, position)
	c.rooms.Touch(roomID)
	metricMoves.Add(1)
	c.broadcastLocked(r)
	if r.IsGameOver {
		c.concludeLocked(r)
	}
	return nil
}

// Reset starts a fresh game in the caller's room, whatever its state.
// A non-empty roomID must name the caller's room.
func (c *Coordinator) Reset(connID, roomID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.registry.ResolveRoom(connID)
	if !ok || (roomID != "" && roomID != cur) {
		return ErrNoRoom
	}
	r, err := c.rooms.Reset(cur)
	if err != nil {
		c.registry.Unbind(connID)
		return ErrNoRoom
	}
	log.Info().Str("room_id", cur).Str("conn_id", connID).Msg("room_reset")
	c.broadcastLocked(r)
	return nil
}

// Broadcast sends the current state of roomID to its seated players.
func (c *Coordinator) Broadcast(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.rooms.Get(roomID); ok {
		c.broadcastLocked(r)
	}
}

// Room returns a copy of the room state.
func (c *Coordinator) Room(roomID string) (*room.Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rooms.Get(roomID)
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// RoomOf reports which room a connection is seated in.
func (c *Coordinator) RoomOf(connID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.ResolveRoom(connID)
}

type SweepReport struct {
	ClosedRooms []string
	PrunedConns []string
}

// Sweep closes rooms idle past the timeout and drops connections whose
// transport is already gone.
func (c *Coordinator) Sweep(now time.Time) SweepReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	rep := SweepReport{ClosedRooms: c.rooms.SweepIdle(now, c.idleTimeout)}
	for _, id := range c.registry.Dead() {
		c.disconnectLocked(id)
		rep.PrunedConns = append(rep.PrunedConns, id)
	}
	if len(rep.ClosedRooms) > 0 || len(rep.PrunedConns) > 0 {
		log.Info().
			Int("rooms_closed", len(rep.ClosedRooms)).
			Int("conns_pruned", len(rep.PrunedConns)).
			Msg("sweep")
	}
	return rep
}

type Stats struct {
	Rooms       int `json:"rooms"`
	Waiting     int `json:"waiting"`
	InProgress  int `json:"in_progress"`
	Concluded   int `json:"concluded"`
	Connections int `json:"connections"`
	Seated      int `json:"seated"`
}

func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	by := c.rooms.CountByStatus()
	return Stats{
		Rooms:       c.rooms.Len(),
		Waiting:     by[room.StatusWaiting],
		InProgress:  by[room.StatusInProgress],
		Concluded:   by[room.StatusConcluded],
		Connections: c.registry.Len(),
		Seated:      c.registry.Members(),
	}
}

func (c *Coordinator) concludeLocked(r *room.Room) {
	log.Info().Str("room_id", r.ID).Str("winner", string(r.Winner)).Int("moves", r.Moves()).Msg("game_concluded")
	if c.results == nil {
		return
	}
	c.results.Record(store.GameResult{
		RoomID:    r.ID,
		Winner:    string(r.Winner),
		PlayerX:   r.Seats.X,
		PlayerO:   r.Seats.O,
		Board:     r.Board.String(),
		Moves:     r.Moves(),
		StartedAt: r.StartedAt,
		EndedAt:   r.LastActivity,
	})
}
