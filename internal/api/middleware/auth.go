package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/St1cky1/task-tracker/internal/entity"
	"github.com/St1cky1/task-tracker/internal/infrastructure/auth"
)

// TokenVerifier проверяет access токен (auth.JWTManager)
type TokenVerifier interface {
	ValidateAccessToken(token string) (*entity.JWTClaims, error)
}

// ErrorWriter пишет доменную ошибку в ответ
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

type claimsKey struct{}

// Authenticate достаёт Bearer токен из заголовка Authorization и кладёт claims в контекст
func Authenticate(verifier TokenVerifier, writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, r, entity.ErrUnauthorized)
				return
			}

			claims, err := verifier.ValidateAccessToken(token)
			if err != nil {
				writeError(w, r, entity.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole пропускает только указанные роли
func RequireRole(writeError ErrorWriter, roles ...entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := auth.Authorize(ClaimsFromContext(r.Context()), roles...); err != nil {
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithClaims(ctx context.Context, claims *entity.JWTClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext - nil, если запрос не прошёл Authenticate
func ClaimsFromContext(ctx context.Context) *entity.JWTClaims {
	claims, _ := ctx.Value(claimsKey{}).(*entity.JWTClaims)
	return claims
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
