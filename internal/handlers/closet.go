package handlers

import (
	"DressCode/internal/config"
	"DressCode/internal/model"
	"DressCode/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ClosetHandler — CRUD гардероба текущего пользователя.
type ClosetHandler struct {
	Closet *service.ClosetService
	Logger *zap.SugaredLogger
	Config *config.Config
}

func NewClosetHandler(closet *service.ClosetService, logger *zap.SugaredLogger, cfg *config.Config) *ClosetHandler {
	return &ClosetHandler{Closet: closet, Logger: logger, Config: cfg}
}

type closetItemView struct {
	ID         int64           `json:"id"`
	Owner      string          `json:"owner"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Color      string          `json:"color"`
	Season     string          `json:"season"`
	Style      string          `json:"style"`
	Scene      string          `json:"scene"`
	IsFavorite bool            `json:"isFavorite"`
	ImageURL   string          `json:"imageUrl"`
	Tags       json.RawMessage `json:"tags"`
	TagModel   string          `json:"tagModel"`
	CreatedAt  int64           `json:"createdAt"`
	UpdatedAt  int64           `json:"updatedAt"`
}

func viewOf(it *model.ClosetItem) closetItemView {
	v := closetItemView{
		ID:         it.ID,
		Owner:      it.Owner,
		Name:       it.Name,
		Category:   it.Category,
		Color:      it.Color,
		Season:     it.Season,
		Style:      it.Style,
		Scene:      it.Scene,
		IsFavorite: it.IsFavorite,
		ImageURL:   it.ImageURL,
		TagModel:   it.TagModel,
		CreatedAt:  it.CreatedAt.UnixMilli(),
		UpdatedAt:  it.UpdatedAt.UnixMilli(),
	}
	if len(it.Tags) > 0 {
		v.Tags = json.RawMessage(it.Tags)
	}
	return v
}

// formBool разбирает true/false/1/0; пустое значение даёт def.
func formBool(r *http.Request, key string, def bool) bool {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, time.Time{}, "invalid id")
		return 0, false
	}
	return id, true
}

// Create принимает multipart: image + поля вещи. autoTag по умолчанию включён.
func (h *ClosetHandler) Create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := parseMultipart(w, r, h.Config.UploadMaxSizeMB); err != nil {
		h.Logger.Warnw("closet create: invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, start, "invalid multipart form")
		return
	}
	data, hdr, err := readFormFile(r, "image")
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, start, "image is required")
		return
	}
	if len(data) > h.Config.UploadMaxSizeMB<<20 {
		writeError(w, http.StatusRequestEntityTooLarge, start, "image too large")
		return
	}

	it, err := h.Closet.Create(r.Context(), uid, service.NewClosetItem{
		Owner:       r.FormValue("owner"),
		Name:        r.FormValue("name"),
		Category:    r.FormValue("category"),
		Color:       r.FormValue("color"),
		Season:      r.FormValue("season"),
		Style:       r.FormValue("style"),
		Scene:       r.FormValue("scene"),
		IsFavorite:  formBool(r, "isFavorite", false),
		AutoTag:     formBool(r, "autoTag", true),
		Image:       data,
		ContentType: contentTypeOf(hdr, data),
	})
	if err != nil {
		h.Logger.Errorw("closet create failed", "user_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, start, err.Error())
		return
	}
	h.Logger.Infow("closet item created", "user_id", uid, "id", it.ID, "tag_model", it.TagModel)
	writeJSON(w, http.StatusOK, start, map[string]any{"item": viewOf(it)})
}

func (h *ClosetHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	items, err := h.Closet.List(r.Context(), uid, r.URL.Query().Get("category"))
	if err != nil {
		h.Logger.Errorw("closet list failed", "user_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, time.Time{}, "internal error")
		return
	}
	views := make([]closetItemView, 0, len(items))
	for i := range items {
		views = append(views, viewOf(&items[i]))
	}
	writeJSON(w, http.StatusOK, time.Time{}, map[string]any{"items": views})
}

type closetPatchRequest struct {
	Name       *string `json:"name"`
	Category   *string `json:"category"`
	Color      *string `json:"color"`
	Season     *string `json:"season"`
	Style      *string `json:"style"`
	Scene      *string `json:"scene"`
	IsFavorite *bool   `json:"isFavorite"`
}

func (h *ClosetHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	var req closetPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, time.Time{}, "invalid request")
		return
	}
	it, err := h.Closet.Update(r.Context(), uid, id, model.ClosetPatch(req))
	if errors.Is(err, service.ErrNotFound) {
		writeError(w, http.StatusNotFound, time.Time{}, "not found")
		return
	}
	if err != nil {
		h.Logger.Errorw("closet update failed", "user_id", uid, "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, time.Time{}, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, time.Time{}, map[string]any{"item": viewOf(it)})
}

// Delete идемпотентен: отсутствующая вещь тоже даёт ok.
func (h *ClosetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	if err := h.Closet.Delete(r.Context(), uid, id); err != nil && !errors.Is(err, service.ErrNotFound) {
		h.Logger.Errorw("closet delete failed", "user_id", uid, "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, time.Time{}, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, time.Time{}, nil)
}

// Retag повторно размечает фото вещи.
func (h *ClosetHandler) Retag(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	it, out, err := h.Closet.Retag(r.Context(), uid, id)
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, start, "not found")
		return
	case errors.Is(err, service.ErrBadImage):
		writeError(w, http.StatusUnprocessableEntity, start, err.Error())
		return
	case err != nil:
		h.Logger.Errorw("closet retag failed", "user_id", uid, "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, start, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, start, map[string]any{
		"model":  out.Model,
		"result": out.Result,
		"item":   viewOf(it),
	})
}
