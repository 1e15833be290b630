package controllers

import (
	"net/http"

	"github.com/angelmondragon/pantryshare-backend/api/responses"
	"github.com/angelmondragon/pantryshare-backend/api/validators"
	"github.com/angelmondragon/pantryshare-backend/internal/groupresources"
	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
)

func GroupPantry(svc groupresources.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "group resources")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		groupID, ok := pathParam(w, r, logg, "groupId")
		if !ok {
			return
		}
		pantries, err := svc.GetPantryForGroup(r.Context(), uid, groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pantries)
	}
}

func GroupRecipesList(svc groupresources.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "group resources")
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

		groupID, ok := pathParam(w, r, logg, "groupId")
		if !ok {
			return
		}
		page, err := svc.GetRecipesForGroup(r.Context(), uid, groupID, limit, validators.QueryString(r, "cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

type groupRecipeRequest struct {
	Recipe recipes.Recipe `json:"recipe"`
}

func GroupRecipeAdd(svc groupresources.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "group resources")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		var payload groupRecipeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groupID, ok := pathParam(w, r, logg, "groupId")
		if !ok {
			return
		}
		added, err := svc.AddRecipeToGroup(r.Context(), uid, groupID, payload.Recipe)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, added)
	}
}

func GroupRecipeRemove(svc groupresources.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "group resources")
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
		groupID, ok := pathParam(w, r, logg, "groupId")
		if !ok {
			return
		}
		if err := svc.RemoveRecipeFromGroup(r.Context(), uid, groupID, recipeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"recipeId": recipeID, "removed": true})
	}
}

func GroupSearchMostMatching(svc groupresources.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "group resources")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		page, limit, err := searchPaging(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groupID, ok := pathParam(w, r, logg, "groupId")
		if !ok {
			return
		}
		results, err := svc.SearchRecipesByMaxMatchingForGroup(r.Context(), uid, groupID, page, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, results)
	}
}
