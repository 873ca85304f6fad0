package handlers

import (
	"DressCode/internal/config"
	"DressCode/internal/imaging"
	"DressCode/internal/service"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// AIHandler — теги, рекомендация и примерка. Доступны без входа.
type AIHandler struct {
	Providers service.Providers
	Logger    *zap.SugaredLogger
	Config    *config.Config
}

func NewAIHandler(p service.Providers, logger *zap.SugaredLogger, cfg *config.Config) *AIHandler {
	return &AIHandler{Providers: p, Logger: logger, Config: cfg}
}

func (h *AIHandler) imageField(w http.ResponseWriter, r *http.Request, field string, start time.Time) ([]byte, bool) {
	data, _, err := readFormFile(r, field)
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, start, field+" is required")
		return nil, false
	}
	if len(data) > h.Config.UploadMaxSizeMB<<20 {
		writeError(w, http.StatusRequestEntityTooLarge, start, field+" too large")
		return nil, false
	}
	return data, true
}

// Tag размечает одно фото из поля image.
func (h *AIHandler) Tag(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := parseMultipart(w, r, h.Config.UploadMaxSizeMB); err != nil {
		writeError(w, http.StatusBadRequest, start, "invalid multipart form")
		return
	}
	data, ok := h.imageField(w, r, "image", start)
	if !ok {
		return
	}
	out, err := service.TagImage(r.Context(), h.Providers.Tagger, data)
	if errors.Is(err, service.ErrBadImage) {
		writeError(w, http.StatusUnprocessableEntity, start, err.Error())
		return
	}
	if err != nil {
		h.Logger.Errorw("tagging failed", "provider", h.Providers.Tagger.Name(), "error", err)
		writeError(w, http.StatusInternalServerError, start, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, start, map[string]any{"model": out.Model, "result": out.Result})
}

// Recommend — JSON {weather, gender, closet_items} в рекомендацию на день.
func (h *AIHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var in service.RecommendInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, start, "invalid request")
		return
	}
	rec, err := h.Providers.Recommender.Recommend(r.Context(), in)
	if err != nil {
		h.Logger.Errorw("recommendation failed", "provider", h.Providers.Recommender.Name(), "error", err)
		writeError(w, http.StatusInternalServerError, start, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, start, map[string]any{"model": h.Providers.Recommender.Name(), "result": rec})
}

// TryOn принимает personImage и clothImage, возвращает картинку в base64.
func (h *AIHandler) TryOn(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := parseMultipart(w, r, h.Config.UploadMaxSizeMB); err != nil {
		writeError(w, http.StatusBadRequest, start, "invalid multipart form")
		return
	}
	person, ok := h.imageField(w, r, "personImage", start)
	if !ok {
		return
	}
	cloth, ok := h.imageField(w, r, "clothImage", start)
	if !ok {
		return
	}
	// перед моделью ужимаем до imaging.MaxSide
	person, err := imaging.Shrink(person, 90)
	if err == nil {
		cloth, err = imaging.Shrink(cloth, 90)
	}
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, start, err.Error())
		return
	}

	out, err := h.Providers.TryOn.TryOn(r.Context(), person, cloth)
	if err != nil {
		h.Logger.Errorw("try-on failed", "provider", h.Providers.TryOn.Name(), "error", err)
		writeError(w, http.StatusInternalServerError, start, err.Error())
		return
	}
	h.Logger.Infow("try-on done", "provider", h.Providers.TryOn.Name(), "bytes", len(out.Image), "elapsed", time.Since(start))
	writeJSON(w, http.StatusOK, start, map[string]any{
		"result_image_base64": base64.StdEncoding.EncodeToString(out.Image),
		"content_type":        out.ContentType,
		"model":               h.Providers.TryOn.Name(),
	})
}
