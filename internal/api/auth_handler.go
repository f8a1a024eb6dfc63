package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"mathdrill/internal/auth"
	"mathdrill/internal/config"
	"mathdrill/internal/database"
	"mathdrill/internal/models"
	"mathdrill/internal/session"
	"mathdrill/internal/task"
)

// Handler обслуживает HTTP API: учётные записи и занятия
type Handler struct {
	store    *database.Store
	auth     *auth.Manager
	sessions *session.Manager
	presets  []config.Preset

	// Clock подменяется в тестах
	Clock task.Clock
}

func NewHandler(store *database.Store, tokens *auth.Manager, sessions *session.Manager, presets []config.Preset) *Handler {
	return &Handler{
		store:    store,
		auth:     tokens,
		sessions: sessions,
		presets:  presets,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if strings.TrimSpace(req.Login) == "" || strings.TrimSpace(req.Password) == "" {
		SendErrorResponse(w, http.StatusBadRequest, "Login and password required")
		return
	}

	if _, err := h.store.CreateUser(req.Login, req.Password); err != nil {
		if errors.Is(err, database.ErrUserExists) {
			SendErrorResponse(w, http.StatusConflict, "User already exists")
			return
		}
		log.Printf("Ошибка регистрации %s: %v", req.Login, err)
		SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	SendJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

// Login обрабатывает запрос на вход в систему
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := h.store.GetUser(req.Login)
	if err != nil {
		log.Printf("Ошибка получения пользователя %s: %v", req.Login, err)
		SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil || !database.CheckPasswordHash(req.Password, user.Password) {
		SendErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.auth.GenerateToken(user.ID, user.Login)
	if err != nil {
		SendErrorResponse(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	SendJSON(w, http.StatusOK, models.AuthResponse{
		Token:            token,
		ExpiresInMinutes: int(h.auth.TTL().Minutes()),
	})
}

// TokenInfo возвращает информацию о времени жизни токена
func (h *Handler) TokenInfo(w http.ResponseWriter, r *http.Request) {
	SendJSON(w, http.StatusOK, map[string]int{
		"expirationMinutes": int(h.auth.TTL().Minutes()),
	})
}
