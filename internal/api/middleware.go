package api

import (
	"context"
	"errors"
	"net/http"

	"mathdrill/internal/auth"
)

type ContextKey string

const (
	UserIDKey    ContextKey = "user_id"
	UserLoginKey ContextKey = "user_login"
)

// AuthMiddleware проверяет JWT токен и добавляет данные пользователя в контекст
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := auth.ExtractTokenFromRequest(r)
		if tokenString == "" {
			SendErrorResponse(w, http.StatusUnauthorized, "Unauthorized: no token provided")
			return
		}

		claims, err := h.auth.ValidateToken(tokenString)
		if err != nil {
			message := "Unauthorized: invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				message = "Unauthorized: token has expired"
			}
			SendErrorResponse(w, http.StatusUnauthorized, message)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserLoginKey, claims.Login)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext извлекает ID пользователя из контекста
func GetUserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}
