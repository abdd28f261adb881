package middleware

import (
	"context"
	"net/http"
	"strings"

	"noticeboard/internal/logger"
	"noticeboard/internal/reqctx"
	"noticeboard/internal/utils"

	"go.uber.org/zap"
)

// SessionCookieName — cookie с access-токеном, выставляется при логине.
const SessionCookieName = "session"

// SessionAuth достаёт токен сессии из cookie либо из заголовка Authorization.
// Браузерные запросы (Accept: text/html) при отказе редиректятся на главную,
// API-клиенты получают 401.
func SessionAuth(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		tokenString := sessionToken(r)
		if tokenString == "" {
			logger.WithCtx(r.Context()).Warn("SessionAuth: отсутствует токен сессии")
			deny(w, r, http.StatusUnauthorized, "Отсутствует токен сессии")
			return
		}

		claims, err := utils.ParseToken(secret, tokenString)
		if err != nil {
			logger.WithCtx(r.Context()).Warn("SessionAuth: неверный или просроченный токен", zap.Error(err))
			deny(w, r, http.StatusUnauthorized, "Неверный или просроченный токен")
			return
		}

		userID, ok1 := claims["user_id"].(string)
		role, ok2 := claims["role"].(string)
		if !ok1 || !ok2 {
			logger.WithCtx(r.Context()).Warn("SessionAuth: недопустимый payload", zap.Any("claims", claims))
			deny(w, r, http.StatusUnauthorized, "Недопустимый payload")
			return
		}

		ctx := context.WithValue(r.Context(), ContextUserID, userID)
		ctx = context.WithValue(ctx, ContextRole, role)
		ctx = reqctx.WithUserID(ctx, userID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func deny(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	http.Error(w, msg, status)
}
