package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthCookieName — имя cookie с JWT сессии.
const AuthCookieName = "auth_token"

const tokenTTL = 30 * 24 * time.Hour

type ctxKey struct{}

type claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// BuildToken подписывает JWT для пользователя.
func BuildToken(userID int64, secret string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	return token.SignedString([]byte(secret))
}

// ParseToken проверяет подпись и срок действия, возвращает user_id.
func ParseToken(tokenString, secret string) (int64, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, err
	}
	if c.UserID <= 0 {
		return 0, errors.New("token without user_id")
	}
	return c.UserID, nil
}

// SetLoginCookie выдаёт пользователю cookie с подписанным токеном.
func SetLoginCookie(w http.ResponseWriter, userID int64, secret string) error {
	token, err := BuildToken(userID, secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(tokenTTL),
	})
	return nil
}

// WithAuth кладёт user_id в контекст, если запрос несёт валидный токен.
// Токен берётся из cookie или заголовка Authorization: Bearer.
// Без токена запрос проходит анонимно, закрытые ручки проверяют GetUserIDFromContext сами.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if c, err := r.Cookie(AuthCookieName); err == nil {
					token = c.Value
				}
			}
			if token != "" {
				if uid, err := ParseToken(token, secret); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, uid))
				} else if sugar != nil {
					sugar.Debugw("invalid auth token", "error", err)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

// GetUserIDFromContext возвращает user_id, положенный WithAuth.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(ctxKey{}).(int64)
	return uid, ok && uid > 0
}
