package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// API wires the anime handlers to a router
type API struct {
	animes *Animes
	logger *log.Logger
}

// NewAPI creates a new API over store. A nil logger discards output.
func NewAPI(store AnimeStore, logger *log.Logger) *API {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &API{
		animes: NewAnimes(store, logger),
		logger: logger,
	}
}

// RegisterRoutes registers all API endpoints to the given chi router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/animes", func(r chi.Router) {
		r.Get("/", a.animes.ListAnimesHandler)
		r.Post("/", a.animes.CreateAnimeHandler)
		r.Get("/{id}", a.animes.GetAnimeHandler)
		r.Put("/{id}", a.animes.UpdateAnimeHandler)
		r.Delete("/{id}", a.animes.DeleteAnimeHandler)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if _, err := fmt.Fprintln(w, "ok"); err != nil {
			a.logger.Warn("failed to write health response", "err", err)
		}
	})
}

// NewRouter returns a router with the standard middleware stack and every
// API route registered.
func NewRouter(store AnimeStore, logger *log.Logger) *chi.Mux {
	a := NewAPI(store, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(a.logger))
	r.Use(middleware.Recoverer)

	a.RegisterRoutes(r)
	return r
}
