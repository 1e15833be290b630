package controllers

import (
	"net/http"

	"github.com/angelmondragon/pantryshare-backend/api/responses"
	"github.com/angelmondragon/pantryshare-backend/api/validators"
	"github.com/angelmondragon/pantryshare-backend/internal/favorites"
	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
)

func FavoritesList(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "favorites")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		limit, err := pageLimit(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), uid, limit, validators.QueryString(r, "cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func FavoriteGet(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "favorites")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		id, ok := pathParam(w, r, logg, "recipeId")
		if !ok {
			return
		}
		fav, err := svc.Get(r.Context(), uid, recipes.ID(id))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fav)
	}
}

type favoriteRequest struct {
	Recipe recipes.Recipe `json:"recipe"`
}

func FavoriteAdd(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "favorites")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		var payload favoriteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fav, err := svc.Add(r.Context(), uid, payload.Recipe)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, fav)
	}
}

func FavoriteRemove(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "favorites")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		id, ok := pathParam(w, r, logg, "recipeId")
		if !ok {
			return
		}
		recipeID := recipes.ID(id)
		if err := svc.Remove(r.Context(), uid, recipeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"recipeId": recipeID, "removed": true})
	}
}
