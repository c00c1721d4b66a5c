package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Deps are the collaborators behind the HTTP surface. Results and Pinger are
// nil when the archive is disabled.
type Deps struct {
	WS             http.Handler
	Rooms          RoomSource
	Results        ResultsReader
	Pinger         Pinger
	AllowedOrigins []string
}

func NewRouter(d Deps) *chi.Mux {
	publicHandlers := NewPublicHandlers(d.Rooms, d.Results)
	healthHandlers := NewHealthHandlers(d.Pinger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	if d.WS != nil {
		r.Method(http.MethodGet, "/ws", d.WS)
	}
	r.With(APILogMiddleware()).Get("/healthz", healthHandlers.Health())

	r.Route("/api/public", func(r chi.Router) {
		r.Use(CORSMiddleware(d.AllowedOrigins))
		r.Use(SecurityMiddleware())
		r.Use(APILogMiddleware())
		r.Get("/stats", publicHandlers.Stats())
		r.Get("/rooms/{room_id}", publicHandlers.Room())
		r.Get("/results", publicHandlers.Results())
		r.Get("/results/{result_id}", publicHandlers.Result())
	})

	r.Get("/debug/vars", expvar.Handler().ServeHTTP)
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 16)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
