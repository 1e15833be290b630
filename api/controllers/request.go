package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pantryshare-backend/api/middleware"
	"github.com/angelmondragon/pantryshare-backend/api/responses"
	"github.com/angelmondragon/pantryshare-backend/api/validators"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
)

const (
	defaultPageLimit = 25
	maxPageLimit     = 100
)

// requireUser writes a 401 and returns false when the auth middleware did not
// run for this request.
func requireUser(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (string, bool) {
	uid := middleware.UserIDFromContext(r.Context())
	if uid == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return "", false
	}
	return uid, true
}

func serviceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}

func unavailable(logg *logger.Logger, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceUnavailable(w, r, logg, name)
	}
}

func pageLimit(r *http.Request) (int, error) {
	return validators.ParseQueryInt(r, "limit", defaultPageLimit, 1, maxPageLimit)
}

// pathParam returns the decoded route parameter. chi hands back the escaped
// segment whenever the request carries a RawPath.
func pathParam(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) (string, bool) {
	value := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return strings.TrimSpace(value), true
	}
	value, err := url.PathUnescape(value)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid path parameter").
			WithDetails(map[string]any{"param": name}))
		return "", false
	}
	return strings.TrimSpace(value), true
}
