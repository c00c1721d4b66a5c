package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tictac-rooms/internal/config"
	"tictac-rooms/internal/game"
	"tictac-rooms/internal/logging"
	"tictac-rooms/internal/store"
	httptransport "tictac-rooms/internal/transport/http"
	"tictac-rooms/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg.Server)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	httptransport.LogRoutes(app.router)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           app.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	app.close()
}

type app struct {
	router   *chi.Mux
	coord    *game.Coordinator
	wsServer *ws.Server
	sweeper  *game.Sweeper
	recorder *store.Recorder
	store    *store.Store
}

// newApp wires the coordinator, transports and the optional results archive.
func newApp(ctx context.Context, cfg config.ServerConfig) (*app, error) {
	a := &app{}
	opts := []game.Option{game.WithIdleTimeout(cfg.RoomIdleTimeout)}
	deps := httptransport.Deps{AllowedOrigins: cfg.AllowedOrigins}

	if cfg.ArchiveEnabled() {
		st, err := store.New(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := st.Ping(ctx); err != nil {
			st.Close()
			return nil, err
		}
		if err := st.EnsureSchema(ctx); err != nil {
			st.Close()
			return nil, err
		}
		a.store = st
		a.recorder = store.NewRecorder(st, cfg.ResultQueue)
		a.recorder.Start(context.WithoutCancel(ctx))
		opts = append(opts, game.WithResultSink(a.recorder))
		deps.Results = st
		deps.Pinger = st
		log.Info().Msg("results archive enabled")
	} else {
		log.Info().Msg("results archive disabled; set POSTGRES_DSN to enable")
	}

	a.coord = game.NewCoordinator(opts...)
	a.wsServer = ws.NewServer(a.coord, cfg.SendBuffer, cfg.AllowedOrigins)
	a.sweeper = game.NewSweeper(a.coord, cfg.SweepInterval)
	a.sweeper.Start(ctx)

	deps.WS = http.HandlerFunc(a.wsServer.HandleWS)
	deps.Rooms = a.coord
	a.router = httptransport.NewRouter(deps)
	return a, nil
}

func (a *app) close() {
	a.sweeper.Stop()
	a.wsServer.CloseAll()
	if a.recorder != nil {
		a.recorder.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}
