package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/jbweber/homelab/animes/internal/domain"
	"github.com/jbweber/homelab/animes/internal/service"
)

// maxBodyBytes caps request bodies on create and update
const maxBodyBytes = 1 << 20

// AnimeStore is the service interface the anime handlers depend on.
// *service.AnimeService satisfies it.
type AnimeStore interface {
	List(ctx context.Context) ([]domain.Anime, error)
	FindByID(ctx context.Context, id int64) (domain.Anime, error)
	Save(ctx context.Context, anime domain.Anime) (domain.Anime, error)
	Update(ctx context.Context, anime domain.Anime) error
	Delete(ctx context.Context, id int64) error
}

// AnimeRequest is the body accepted by create and update. Any "id" field is
// ignored; update takes the ID from the path.
type AnimeRequest struct {
	Name string `json:"name"`
}

type AnimeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Animes groups anime handlers for testability
type Animes struct {
	store  AnimeStore
	logger *log.Logger
}

func NewAnimes(store AnimeStore, logger *log.Logger) *Animes {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Animes{store: store, logger: logger}
}

func toResponse(a domain.Anime) AnimeResponse {
	return AnimeResponse{ID: a.ID, Name: a.Name}
}

// ListAnimesHandler handles GET /animes
func (h *Animes) ListAnimesHandler(w http.ResponseWriter, r *http.Request) {
	animes, err := h.store.List(r.Context())
	if err != nil {
		h.writeStoreError(w, err, "Failed to list animes")
		return
	}

	response := make([]AnimeResponse, len(animes))
	for i, a := range animes {
		response[i] = toResponse(a)
	}
	h.writeJSON(w, http.StatusOK, response)
}

// GetAnimeHandler handles GET /animes/{id}
func (h *Animes) GetAnimeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	anime, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, "Failed to get anime")
		return
	}
	h.writeJSON(w, http.StatusOK, toResponse(anime))
}

// CreateAnimeHandler handles POST /animes.
//
// Request: JSON body with field "name".
// Response: 201 Created with the stored anime, 400 for invalid input.
func (h *Animes) CreateAnimeHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	created, err := h.store.Save(r.Context(), domain.Anime{Name: req.Name})
	if err != nil {
		h.writeStoreError(w, err, "Failed to create anime")
		return
	}

	h.logger.Info("created anime", "id", created.ID)
	h.writeJSON(w, http.StatusCreated, toResponse(created))
}

// UpdateAnimeHandler handles PUT /animes/{id}.
//
// The stored record is replaced with the request body. Returns 204 on
// success, 400 for invalid input, 404 if the anime does not exist.
func (h *Animes) UpdateAnimeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	if err := h.store.Update(r.Context(), domain.Anime{ID: id, Name: req.Name}); err != nil {
		h.writeStoreError(w, err, "Failed to update anime")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAnimeHandler handles DELETE /animes/{id}
func (h *Animes) DeleteAnimeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "Failed to delete anime")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Animes) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "Invalid anime ID")
		return 0, false
	}
	return id, true
}

func (h *Animes) decodeRequest(w http.ResponseWriter, r *http.Request) (AnimeRequest, bool) {
	var req AnimeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return AnimeRequest{}, false
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "Name is required")
		return AnimeRequest{}, false
	}
	return req, true
}

// writeStoreError maps service errors to responses. Not-found errors carry
// their own message; anything else is logged and reported as msg.
func (h *Animes) writeStoreError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, service.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, service.ErrNotFound.Error())
		return
	}
	h.logger.Error(msg, "err", err)
	h.writeError(w, http.StatusInternalServerError, msg)
}
