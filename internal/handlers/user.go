package handlers

import (
	"DressCode/internal/config"
	"DressCode/internal/middleware"
	"DressCode/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// UserHandler — регистрация, вход и текущий пользователь.
type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger, Config: cfg}
}

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (h *UserHandler) decode(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("invalid credentials body", "error", err)
		writeError(w, http.StatusBadRequest, time.Time{}, "invalid request")
		return req, false
	}
	return req, true
}

// Register создаёт пользователя и сразу выдаёт cookie сессии.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	user, err := h.UserService.Register(r.Context(), req.Login, req.Password)
	switch {
	case errors.Is(err, service.ErrEmptyCredentials):
		writeError(w, http.StatusBadRequest, time.Time{}, err.Error())
		return
	case errors.Is(err, service.ErrLoginTaken):
		writeError(w, http.StatusConflict, time.Time{}, err.Error())
		return
	case err != nil:
		h.Logger.Errorw("Register: service error", "login", req.Login, "error", err)
		writeError(w, http.StatusInternalServerError, time.Time{}, "internal error")
		return
	}
	h.issue(w, user.ID, user.Login)
}

// Login проверяет пароль и выдаёт cookie сессии.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	user, err := h.UserService.Login(r.Context(), req.Login, req.Password)
	switch {
	case errors.Is(err, service.ErrEmptyCredentials):
		writeError(w, http.StatusBadRequest, time.Time{}, err.Error())
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, time.Time{}, err.Error())
		return
	case err != nil:
		h.Logger.Errorw("Login: service error", "login", req.Login, "error", err)
		writeError(w, http.StatusInternalServerError, time.Time{}, "internal error")
		return
	}
	h.issue(w, user.ID, user.Login)
}

func (h *UserHandler) issue(w http.ResponseWriter, userID int64, login string) {
	if err := middleware.SetLoginCookie(w, userID, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("failed to sign token", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, time.Time{}, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, time.Time{}, map[string]any{"user_id": userID, "login": login})
}

// Me возвращает user_id текущей сессии.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, time.Time{}, map[string]any{"user_id": uid})
}
