package httptransport

import (
	"context"
	"errors"
	"net/http"

	"tictac-rooms/internal/game"
	"tictac-rooms/internal/protocol"
	"tictac-rooms/internal/room"
	"tictac-rooms/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type RoomSource interface {
	Stats() game.Stats
	Room(roomID string) (*room.Room, bool)
}

type ResultsReader interface {
	ListRecentResults(ctx context.Context, limit int) ([]store.GameResult, error)
	GetResult(ctx context.Context, id string) (*store.GameResult, error)
}

type PublicHandlers struct {
	rooms   RoomSource
	results ResultsReader
}

func NewPublicHandlers(rooms RoomSource, results ResultsReader) *PublicHandlers {
	return &PublicHandlers{rooms: rooms, results: results}
}

func (h *PublicHandlers) Stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{
			"stats":           h.rooms.Stats(),
			"archive_enabled": h.results != nil,
		})
	}
}

// Room returns the same payload a seated player receives as gameState.
func (h *PublicHandlers) Room() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, ok := h.rooms.Room(chi.URLParam(r, "room_id"))
		if !ok {
			WriteHTTPError(w, http.StatusNotFound, "room_not_found")
			return
		}
		WriteJSON(w, http.StatusOK, protocol.NewGameState(rm))
	}
}

func (h *PublicHandlers) Results() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.results == nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "archive_disabled")
			return
		}
		limit := ParseLimit(r, 50, 200)
		items, err := h.results.ListRecentResults(r.Context(), limit)
		if err != nil {
			log.Error().Err(err).Msg("list results failed")
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"items": items, "limit": limit})
	}
}

func (h *PublicHandlers) Result() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.results == nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "archive_disabled")
			return
		}
		res, err := h.results.GetResult(r.Context(), chi.URLParam(r, "result_id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "result_not_found")
				return
			}
			log.Error().Err(err).Msg("get result failed")
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		WriteJSON(w, http.StatusOK, res)
	}
}
