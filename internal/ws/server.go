package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"tictac-rooms/internal/game"
	"tictac-rooms/internal/protocol"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type Server struct {
	coord      *game.Coordinator
	upgrader   websocket.Upgrader
	sendBuffer int

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// NewServer builds the websocket endpoint. An empty origins list accepts any
// Origin header.
func NewServer(coord *game.Coordinator, sendBuffer int, origins []string) *Server {
	s := &Server{
		coord:      coord,
		sendBuffer: sendBuffer,
		clients:    map[*Client]struct{}{},
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return len(origins) == 0 || origin == "" || lo.Contains(origins, origin)
		},
	}
	return s
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("ws upgrade failed")
		return
	}
	client := newClient(conn, s.sendBuffer)
	s.mu.Lock()
	s.clients[client] = struct{}{}
	s.mu.Unlock()

	client.id = s.coord.Connect(client)
	metricConnectionsTotal.Add(1)

	go s.writeLoop(client)
	s.readLoop(client)
}

// CloseAll drops every open connection. Used on shutdown since hijacked
// connections outlive http.Server.Shutdown.
func (s *Server) CloseAll() {
	s.mu.Lock()
	clients := lo.Keys(s.clients)
	s.mu.Unlock()
	for _, c := range clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = c.conn.Close()
	}
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		s.coord.Disconnect(c.id)
		c.shutdown()
		_ = c.conn.Close()
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("conn_id", c.id).Msg("ws read closed")
			}
			return
		}
		metricMessagesIn.Add(1)
		msg, err := protocol.Decode(raw)
		if err == nil {
			err = s.coord.Handle(c.id, msg)
		}
		if err != nil {
			s.replyError(c, err)
		}
	}
}

func (s *Server) writeLoop(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.shutdown()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.shutdown()
				return
			}
		}
	}
}

// replyError answers the originating client only.
func (s *Server) replyError(c *Client, err error) {
	ev := game.ErrorEvent(err)
	metricRequestErrors.Add(1)
	log.Debug().Str("conn_id", c.id).Str("code", ev.Code).Err(err).Msg("request rejected")
	msg, mErr := json.Marshal(ev)
	if mErr != nil {
		return
	}
	if sErr := c.Send(msg); sErr != nil {
		log.Warn().Err(sErr).Str("conn_id", c.id).Msg("error reply dropped")
	}
}
