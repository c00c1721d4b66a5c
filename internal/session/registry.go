package session

import (
	"errors"
	"sort"
)

var ErrUnknownConnection = errors.New("unknown_connection")

// Conn is the send side of a transport handle.
type Conn interface {
	Send(msg []byte) error
	Closed() bool
}

// SeatReleaser frees whatever seat a connection holds. Implemented by the room store.
type SeatReleaser interface {
	ReleaseSeat(connID string)
}

// Registry tracks live connections and the connection -> room membership index.
// It is not safe for concurrent use; the game coordinator serializes access.
type Registry struct {
	conns    map[string]Conn
	rooms    map[string]string
	releaser SeatReleaser
}

func NewRegistry() *Registry {
	return &Registry{
		conns: map[string]Conn{},
		rooms: map[string]string{},
	}
}

// SetSeatReleaser wires the store that owns seats. Registry and store
// reference each other, so this cannot be a constructor argument.
func (r *Registry) SetSeatReleaser(rel SeatReleaser) {
	r.releaser = rel
}

// Register adds a connection with no room membership. Re-registering an id
// replaces its handle and clears any stale membership.
func (r *Registry) Register(id string, c Conn) {
	r.conns[id] = c
	delete(r.rooms, id)
}

func (r *Registry) Conn(id string) (Conn, bool) {
	c, ok := r.conns[id]
	return c, ok && c != nil
}

func (r *Registry) Registered(id string) bool {
	_, ok := r.conns[id]
	return ok
}

// Unregister removes the connection and releases its seat, if any.
func (r *Registry) Unregister(id string) error {
	if _, ok := r.conns[id]; !ok {
		return ErrUnknownConnection
	}
	if _, seated := r.rooms[id]; seated && r.releaser != nil {
		r.releaser.ReleaseSeat(id)
	}
	delete(r.rooms, id)
	delete(r.conns, id)
	return nil
}

func (r *Registry) ResolveRoom(id string) (string, bool) {
	roomID, ok := r.rooms[id]
	return roomID, ok
}

// RoomOf is ResolveRoom under the name the room store expects.
func (r *Registry) RoomOf(id string) (string, bool) {
	return r.ResolveRoom(id)
}

func (r *Registry) Bind(id, roomID string) {
	r.rooms[id] = roomID
}

func (r *Registry) Unbind(id string) {
	delete(r.rooms, id)
}

// Dead returns ids whose transport handle is missing or already closed, sorted.
func (r *Registry) Dead() []string {
	var out []string
	for id, c := range r.conns {
		if c == nil || c.Closed() {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int {
	return len(r.conns)
}

func (r *Registry) Members() int {
	return len(r.rooms)
}
