package game

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"tictac-rooms/internal/board"
	"tictac-rooms/internal/protocol"
	"tictac-rooms/internal/room"
	"tictac-rooms/internal/store"
)

type fakeConn struct {
	mu      sync.Mutex
	msgs    [][]byte
	closed  bool
	sendErr error
}

func (f *fakeConn) Send(msg []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.msgs = append(f.msgs, append([]byte(nil), msg...))
	return nil
}

func (f *fakeConn) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

type wireMsg struct {
	Type          string            `json:"type"`
	PlayerID      string            `json:"playerId"`
	RoomID        string            `json:"roomId"`
	Board         []string          `json:"board"`
	CurrentPlayer string            `json:"currentPlayer"`
	Winner        *string           `json:"winner"`
	IsGameOver    bool              `json:"isGameOver"`
	Players       map[string]string `json:"players"`
	Status        string            `json:"status"`
	Code          string            `json:"code"`
	Message       string            `json:"message"`
}

func (f *fakeConn) all(t *testing.T) []wireMsg {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]wireMsg, 0, len(f.msgs))
	for _, raw := range f.msgs {
		var m wireMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) last(t *testing.T) wireMsg {
	t.Helper()
	all := f.all(t)
	if len(all) == 0 {
		t.Fatalf("no messages received")
	}
	return all[len(all)-1]
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type captureSink struct {
	mu      sync.Mutex
	results []store.GameResult
}

func (s *captureSink) Record(r store.GameResult) {
	s.mu.Lock()
	s.results = append(s.results, r)
	s.mu.Unlock()
}

func newTestCoordinator(t *testing.T, opts ...Option) (*Coordinator, *testClock) {
	t.Helper()
	clk := &testClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clk.now)}, opts...)
	return NewCoordinator(opts...), clk
}

// pair connects two clients and seats them in roomID as X and O.
func pair(t *testing.T, c *Coordinator, roomID string) (string, *fakeConn, string, *fakeConn) {
	t.Helper()
	a, b := &fakeConn{}, &fakeConn{}
	idA, idB := c.Connect(a), c.Connect(b)
	if err := c.Create(idA, roomID); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := c.Join(idB, roomID); err != nil {
		t.Fatalf("join: %v", err)
	}
	return idA, a, idB, b
}

func mustMove(t *testing.T, c *Coordinator, connID string, pos int) {
	t.Helper()
	if err := c.ApplyMove(connID, pos); err != nil {
		t.Fatalf("move %d: %v", pos, err)
	}
}

func TestConnectSendsInit(t *testing.T) {
	c, _ := newTestCoordinator(t)
	conn := &fakeConn{}
	id := c.Connect(conn)
	if id == "" {
		t.Fatalf("expected id")
	}
	msg := conn.last(t)
	if msg.Type != protocol.TypeInit || msg.PlayerID != id {
		t.Fatalf("unexpected init: %+v", msg)
	}
	if c.Connect(&fakeConn{}) == id {
		t.Fatalf("identities must be unique")
	}
}

func TestCreateAndJoinAssignsSeats(t *testing.T) {
	c, _ := newTestCoordinator(t)
	idA, a, idB, b := pair(t, c, "r1")

	for _, conn := range []*fakeConn{a, b} {
		st := conn.last(t)
		if st.Type != protocol.TypeGameState || st.RoomID != "r1" {
			t.Fatalf("expected r1 state, got %+v", st)
		}
		if st.Players["X"] != idA || st.Players["O"] != idB {
			t.Fatalf("unexpected players: %+v", st.Players)
		}
		if st.CurrentPlayer != "X" || st.IsGameOver || st.Winner != nil {
			t.Fatalf("unexpected fresh state: %+v", st)
		}
		if len(st.Board) != 9 {
			t.Fatalf("board len=%d", len(st.Board))
		}
		if st.Status != string(room.StatusInProgress) {
			t.Fatalf("status=%s", st.Status)
		}
	}
}

func TestCreatorSeesWaitingState(t *testing.T) {
	c, _ := newTestCoordinator(t)
	a := &fakeConn{}
	id := c.Connect(a)
	if err := c.Create(id, "solo"); err != nil {
		t.Fatalf("create: %v", err)
	}
	st := a.last(t)
	if st.Players["X"] != id || st.Players["O"] != "" {
		t.Fatalf("unexpected players: %+v", st.Players)
	}
	if st.Status != string(room.StatusWaiting) {
		t.Fatalf("status=%s", st.Status)
	}
	if err := c.ApplyMove(id, 0); !errors.Is(err, ErrWaitingForPlayers) {
		t.Fatalf("expected waiting_for_players, got %v", err)
	}
}

func TestThirdJoinerRejected(t *testing.T) {
	c, _ := newTestCoordinator(t)
	_, a, _, b := pair(t, c, "r1")
	before := a.count() + b.count()
	third := &fakeConn{}
	id := c.Connect(third)
	if err := c.Join(id, "r1"); !errors.Is(err, room.ErrRoomFull) {
		t.Fatalf("expected room_full, got %v", err)
	}
	if a.count()+b.count() != before {
		t.Fatalf("seated players must not be notified of a rejected join")
	}
	if _, ok := c.RoomOf(id); ok {
		t.Fatalf("rejected joiner must have no membership")
	}
}

func TestJoinMissingRoom(t *testing.T) {
	c, _ := newTestCoordinator(t)
	id := c.Connect(&fakeConn{})
	if err := c.Join(id, "nope"); !errors.Is(err, room.ErrRoomNotFound) {
		t.Fatalf("expected room_not_found, got %v", err)
	}
}

func TestCreateDuplicateRejected(t *testing.T) {
	c, _ := newTestCoordinator(t)
	pair(t, c, "r1")
	id := c.Connect(&fakeConn{})
	if err := c.Create(id, "r1"); !errors.Is(err, room.ErrRoomExists) {
		t.Fatalf("expected room_exists, got %v", err)
	}
}

func TestRowWinConcludesGame(t *testing.T) {
	sink := &captureSink{}
	c, _ := newTestCoordinator(t, WithResultSink(sink))
	x, a, o, b := pair(t, c, "r1")

	mustMove(t, c, x, 0)
	mustMove(t, c, o, 3)
	mustMove(t, c, x, 1)
	mustMove(t, c, o, 4)
	mustMove(t, c, x, 2)

	for _, conn := range []*fakeConn{a, b} {
		st := conn.last(t)
		if !st.IsGameOver || st.Winner == nil || *st.Winner != "X" {
			t.Fatalf("expected X win, got %+v", st)
		}
		if st.Status != string(room.StatusConcluded) {
			t.Fatalf("status=%s", st.Status)
		}
	}
	if err := c.ApplyMove(o, 5); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected game_over, got %v", err)
	}
	if len(sink.results) != 1 {
		t.Fatalf("expected one recorded result, got %d", len(sink.results))
	}
	res := sink.results[0]
	if res.RoomID != "r1" || res.Winner != "X" || res.PlayerX != x || res.PlayerO != o || res.Moves != 5 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Board != "XXXOO...." {
		t.Fatalf("board=%q", res.Board)
	}
}

func TestDrawConcludesWithoutWinner(t *testing.T) {
	sink := &captureSink{}
	c, _ := newTestCoordinator(t, WithResultSink(sink))
	x, a, o, _ := pair(t, c, "r1")

	// X O X / X O O / O X X
	for i, pos := range []int{0, 1, 2, 4, 3, 5, 7, 6, 8} {
		who := x
		if i%2 == 1 {
			who = o
		}
		mustMove(t, c, who, pos)
	}
	st := a.last(t)
	if !st.IsGameOver || st.Winner != nil {
		t.Fatalf("expected draw, got %+v", st)
	}
	if len(sink.results) != 1 || !sink.results[0].Draw() {
		t.Fatalf("expected a recorded draw, got %+v", sink.results)
	}
}

func TestTurnsAlternate(t *testing.T) {
	c, _ := newTestCoordinator(t)
	x, a, o, _ := pair(t, c, "r1")
	mustMove(t, c, x, 4)
	if st := a.last(t); st.CurrentPlayer != "O" {
		t.Fatalf("after X expected O, got %s", st.CurrentPlayer)
	}
	mustMove(t, c, o, 0)
	if st := a.last(t); st.CurrentPlayer != "X" {
		t.Fatalf("after O expected X, got %s", st.CurrentPlayer)
	}
}

func TestRejectedMovesDoNotMutate(t *testing.T) {
	c, _ := newTestCoordinator(t)
	x, a, o, b := pair(t, c, "r1")
	mustMove(t, c, x, 4)
	before, _ := c.Room("r1")
	sentA, sentB := a.count(), b.count()

	cases := []struct {
		name   string
		connID string
		pos    int
		want   error
	}{
		{"wrong turn", x, 0, ErrNotYourTurn},
		{"occupied", o, 4, ErrCellOccupied},
		{"negative", o, -1, ErrInvalidPosition},
		{"too large", o, 9, ErrInvalidPosition},
	}
	for _, tc := range cases {
		if err := c.ApplyMove(tc.connID, tc.pos); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	after, _ := c.Room("r1")
	if after.Board != before.Board || after.CurrentPlayer != before.CurrentPlayer || !after.LastActivity.Equal(before.LastActivity) {
		t.Fatalf("rejected moves changed state: before=%+v after=%+v", before, after)
	}
	if a.count() != sentA || b.count() != sentB {
		t.Fatalf("rejected moves must not broadcast")
	}
}

func TestMoveWithoutRoom(t *testing.T) {
	c, _ := newTestCoordinator(t)
	id := c.Connect(&fakeConn{})
	if err := c.ApplyMove(id, 0); !errors.Is(err, ErrNoRoom) {
		t.Fatalf("expected no_room, got %v", err)
	}
}

func TestDisconnectFreesSeatForNewcomer(t *testing.T) {
	c, _ := newTestCoordinator(t)
	x, a, o, _ := pair(t, c, "r1")
	c.Disconnect(o)

	st := a.last(t)
	if st.Players["O"] != "" || st.Players["X"] != x {
		t.Fatalf("remaining player should see O freed: %+v", st.Players)
	}
	d := &fakeConn{}
	idD := c.Connect(d)
	if err := c.Join(idD, "r1"); err != nil {
		t.Fatalf("join freed seat: %v", err)
	}
	if st := d.last(t); st.Players["O"] != idD {
		t.Fatalf("newcomer should take O: %+v", st.Players)
	}
}

func TestDisconnectLastPlayerDestroysRoom(t *testing.T) {
	c, _ := newTestCoordinator(t)
	x, _, o, _ := pair(t, c, "r1")
	c.Disconnect(x)
	c.Disconnect(o)
	if _, ok := c.Room("r1"); ok {
		t.Fatalf("room should be destroyed")
	}
	if got := c.Stats(); got.Rooms != 0 || got.Connections != 0 || got.Seated != 0 {
		t.Fatalf("unexpected stats: %+v", got)
	}
	id := c.Connect(&fakeConn{})
	if err := c.Join(id, "r1"); !errors.Is(err, room.ErrRoomNotFound) {
		t.Fatalf("expected room_not_found, got %v", err)
	}
}

func TestJoinOtherRoomLeavesPrevious(t *testing.T) {
	c, _ := newTestCoordinator(t)
	x, _, o, b := pair(t, c, "r1")
	z := c.Connect(&fakeConn{})
	if err := c.Create(z, "r2"); err != nil {
		t.Fatalf("create r2: %v", err)
	}
	if err := c.Join(x, "r2"); err != nil {
		t.Fatalf("join r2: %v", err)
	}
	if got, _ := c.RoomOf(x); got != "r2" {
		t.Fatalf("x should be in r2, got %s", got)
	}
	r1, _ := c.Room("r1")
	if r1.Seats.X != "" || r1.Seats.O != o {
		t.Fatalf("x should have left r1: %+v", r1.Seats)
	}
	if st := b.last(t); st.Players["X"] != "" {
		t.Fatalf("o should see X freed: %+v", st.Players)
	}
}

func TestUnseatedCallerCannotMove(t *testing.T) {
	c, _ := newTestCoordinator(t)
	x, _, _, _ := pair(t, c, "r1")
	r, _ := c.Room("r1")
	if r.Seats.X != x {
		t.Fatalf("setup")
	}
	stranger := c.Connect(&fakeConn{})
	if err := c.ApplyMove(stranger, 0); !errors.Is(err, ErrNoRoom) {
		t.Fatalf("expected no_room, got %v", err)
	}
}

func TestResetKeepsSeats(t *testing.T) {
	c, clk := newTestCoordinator(t)
	x, a, o, _ := pair(t, c, "r1")
	mustMove(t, c, x, 0)
	mustMove(t, c, o, 1)
	clk.advance(time.Minute)
	if err := c.Reset(o, ""); err != nil {
		t.Fatalf("reset: %v", err)
	}
	st := a.last(t)
	for i, cell := range st.Board {
		if cell != "" {
			t.Fatalf("cell %d not cleared: %q", i, cell)
		}
	}
	if st.CurrentPlayer != "X" || st.IsGameOver || st.Winner != nil {
		t.Fatalf("unexpected reset state: %+v", st)
	}
	if st.Players["X"] != x || st.Players["O"] != o {
		t.Fatalf("seats must survive reset: %+v", st.Players)
	}
	r, _ := c.Room("r1")
	if !r.LastActivity.Equal(clk.now()) {
		t.Fatalf("reset should touch the room")
	}
}

func TestResetRequiresMembership(t *testing.T) {
	c, _ := newTestCoordinator(t)
	x, _, _, _ := pair(t, c, "r1")
	if err := c.Reset(x, "other"); !errors.Is(err, ErrNoRoom) {
		t.Fatalf("mismatched room: expected no_room, got %v", err)
	}
	id := c.Connect(&fakeConn{})
	if err := c.Reset(id, "r1"); !errors.Is(err, ErrNoRoom) {
		t.Fatalf("non-member: expected no_room, got %v", err)
	}
}

func TestSweepClosesIdleRooms(t *testing.T) {
	c, clk := newTestCoordinator(t, WithIdleTimeout(30*time.Minute))
	x, a, o, b := pair(t, c, "idle")
	y, _, _, _ := pair(t, c, "busy")

	clk.advance(20 * time.Minute)
	mustMove(t, c, y, 0)
	clk.advance(11 * time.Minute)

	rep := c.Sweep(clk.now())
	if len(rep.ClosedRooms) != 1 || rep.ClosedRooms[0] != "idle" {
		t.Fatalf("expected only idle closed, got %+v", rep.ClosedRooms)
	}
	for _, conn := range []*fakeConn{a, b} {
		msg := conn.last(t)
		if msg.Type != protocol.TypeError || msg.Message != room.InactivityReason {
			t.Fatalf("expected inactivity notice, got %+v", msg)
		}
	}
	for _, id := range []string{x, o} {
		if _, ok := c.RoomOf(id); ok {
			t.Fatalf("%s still has membership", id)
		}
		if err := c.ApplyMove(id, 4); !errors.Is(err, ErrNoRoom) {
			t.Fatalf("expected no_room after sweep, got %v", err)
		}
	}
	if _, ok := c.Room("busy"); !ok {
		t.Fatalf("busy room should survive")
	}
}

func TestSweepPrunesDeadConnections(t *testing.T) {
	c, _ := newTestCoordinator(t)
	x, a, o, b := pair(t, c, "r1")
	a.close()
	rep := c.Sweep(time.Date(2024, 1, 1, 12, 1, 0, 0, time.UTC))
	if len(rep.PrunedConns) != 1 || rep.PrunedConns[0] != x {
		t.Fatalf("expected %s pruned, got %+v", x, rep.PrunedConns)
	}
	r, ok := c.Room("r1")
	if !ok || r.Seats.X != "" || r.Seats.O != o {
		t.Fatalf("dead seat should be released: %+v", r)
	}
	if st := b.last(t); st.Players["X"] != "" {
		t.Fatalf("survivor should be told: %+v", st.Players)
	}
}

func TestBroadcastToleratesFailedSend(t *testing.T) {
	c, _ := newTestCoordinator(t)
	x, a, _, b := pair(t, c, "r1")
	a.mu.Lock()
	a.sendErr = errors.New("buffer full")
	a.mu.Unlock()
	before := b.count()
	mustMove(t, c, x, 0)
	if b.count() != before+1 {
		t.Fatalf("healthy peer should still receive state")
	}
}

func TestHandleDispatch(t *testing.T) {
	c, _ := newTestCoordinator(t)
	a := &fakeConn{}
	id := c.Connect(a)
	if err := c.Handle(id, protocol.ClientMessage{Type: protocol.TypeCreate, RoomID: "h"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := c.Handle(id, protocol.ClientMessage{Type: protocol.TypeMove}); !errors.Is(err, protocol.ErrMalformedMessage) {
		t.Fatalf("move without position: %v", err)
	}
	if err := c.Handle(id, protocol.ClientMessage{Type: "dance"}); !errors.Is(err, protocol.ErrMalformedMessage) {
		t.Fatalf("unknown type: %v", err)
	}
	if err := c.Handle(id, protocol.ClientMessage{Type: protocol.TypeReset}); err != nil {
		t.Fatalf("reset: %v", err)
	}
}

func TestConcurrentMovesSerialize(t *testing.T) {
	c, _ := newTestCoordinator(t)
	x, _, o, _ := pair(t, c, "r1")
	var wg sync.WaitGroup
	errs := make(chan error, 18)
	for pos := 0; pos < board.Size; pos++ {
		for _, id := range []string{x, o} {
			wg.Add(1)
			go func(id string, pos int) {
				defer wg.Done()
				errs <- c.ApplyMove(id, pos)
			}(id, pos)
		}
	}
	wg.Wait()
	close(errs)
	r, _ := c.Room("r1")
	if r.Moves() == 0 {
		t.Fatalf("expected some moves applied")
	}
	var xs, ys int
	for _, cell := range r.Board {
		switch cell {
		case board.X:
			xs++
		case board.O:
			ys++
		}
	}
	if xs-ys != 0 && xs-ys != 1 {
		t.Fatalf("turn order violated: X=%d O=%d", xs, ys)
	}
}

func TestErrorEventCodes(t *testing.T) {
	cases := map[error]string{
		room.ErrRoomFull:             "room_full",
		ErrNotYourTurn:               "not_your_turn",
		protocol.ErrMalformedMessage: "malformed_message",
		errors.New("disk on fire"):   "internal_error",
	}
	for err, want := range cases {
		ev := ErrorEvent(err)
		if ev.Type != protocol.TypeError || ev.Code != want {
			t.Fatalf("%v: got %+v", err, ev)
		}
	}
	if ev := ErrorEvent(errors.New("x")); ev.Message != genericErrorMessage {
		t.Fatalf("generic message expected, got %q", ev.Message)
	}
}
