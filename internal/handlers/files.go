package handlers

import (
	"DressCode/internal/config"
	"DressCode/internal/storage"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FileHandler отдаёт загруженные картинки и состояние сервера.
type FileHandler struct {
	Store  storage.Store
	Ping   func(ctx context.Context) error
	Logger *zap.SugaredLogger
	Config *config.Config
}

func NewFileHandler(store storage.Store, ping func(ctx context.Context) error, logger *zap.SugaredLogger, cfg *config.Config) *FileHandler {
	return &FileHandler{Store: store, Ping: ping, Logger: logger, Config: cfg}
}

func (h *FileHandler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.Ping != nil {
		if err := h.Ping(r.Context()); err != nil {
			h.Logger.Errorw("health: database unavailable", "error", err)
			writeError(w, http.StatusServiceUnavailable, start, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, start, map[string]any{
		"tag_provider":    h.Config.TagProvider,
		"tryon_provider":  h.Config.TryOnProvider,
		"public_base_url": h.Config.PublicBaseURL,
	})
}

func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rc, err := h.Store.Open(r.Context(), name)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrBadKey) {
		writeError(w, http.StatusNotFound, time.Time{}, "not found")
		return
	}
	if err != nil {
		h.Logger.Errorw("failed to open file", "name", name, "error", err)
		writeError(w, http.StatusInternalServerError, time.Time{}, "internal error")
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", storage.ContentTypeFor(name))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.Warnw("file copy interrupted", "name", name, "error", err)
	}
}
