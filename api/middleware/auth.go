package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/pantryshare-backend/api/responses"
	"github.com/angelmondragon/pantryshare-backend/internal/users"
	pkgAuth "github.com/angelmondragon/pantryshare-backend/pkg/auth"
	"github.com/angelmondragon/pantryshare-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
)

// Auth validates the bearer token, makes sure the caller has a profile and
// seeds the request context with the uid.
func Auth(cfg config.JWTConfig, directory users.Directory, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if directory != nil {
				if _, err := directory.EnsureUser(r.Context(), claims.UID, claims.Email); err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UID)
			ctx = context.WithValue(ctx, ctxEmail, claims.Email)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
