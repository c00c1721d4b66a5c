package main

import (
	"encoding/json"
	"math/rand"
	"time"

	"tictac-rooms/internal/config"
	"tictac-rooms/internal/logging"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type serverMsg struct {
	Type          string            `json:"type"`
	PlayerID      string            `json:"playerId"`
	Board         []string          `json:"board"`
	CurrentPlayer string            `json:"currentPlayer"`
	Winner        *string           `json:"winner"`
	IsGameOver    bool              `json:"isGameOver"`
	Players       map[string]string `json:"players"`
	Code          string            `json:"code"`
	Message       string            `json:"message"`
}

type clientMsg struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId,omitempty"`
	Position *int   `json:"position,omitempty"`
}

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(logCfg); err != nil {
		panic(err)
	}
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}

	conn, _, err := websocket.DefaultDialer.Dial(cfg.WSURL, nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.WSURL).Msg("dial failed")
	}
	defer conn.Close()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	var me string
	played := 0
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg serverMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "init":
			me = msg.PlayerID
			typ := "join"
			if cfg.Create {
				typ = "create"
			}
			write(conn, clientMsg{Type: typ, RoomID: cfg.RoomID})
		case "error":
			log.Warn().Str("code", msg.Code).Msg(msg.Message)
			if msg.Code == "room_closed" {
				return
			}
		case "gameState":
			if msg.IsGameOver {
				played++
				winner := "draw"
				if msg.Winner != nil {
					winner = *msg.Winner
				}
				log.Info().Str("winner", winner).Int("played", played).Msg("game over")
				if cfg.Games > 0 && played >= cfg.Games {
					return
				}
				if msg.Players["X"] == me {
					write(conn, clientMsg{Type: "reset"})
				}
				continue
			}
			if pos, ok := pickMove(rnd, msg, me); ok {
				write(conn, clientMsg{Type: "move", Position: &pos})
			}
		}
	}
}

// pickMove chooses a random empty cell when it is this bot's turn and both
// seats are filled.
func pickMove(rnd *rand.Rand, s serverMsg, me string) (int, bool) {
	if s.IsGameOver || s.Players["X"] == "" || s.Players["O"] == "" {
		return 0, false
	}
	if s.Players[s.CurrentPlayer] != me {
		return 0, false
	}
	empty := make([]int, 0, len(s.Board))
	for i, c := range s.Board {
		if c == "" {
			empty = append(empty, i)
		}
	}
	if len(empty) == 0 {
		return 0, false
	}
	return empty[rnd.Intn(len(empty))], true
}

func write(conn *websocket.Conn, m clientMsg) {
	payload, _ := json.Marshal(m)
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Warn().Err(err).Str("type", m.Type).Msg("write failed")
	}
}
