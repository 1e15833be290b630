package controllers

import (
	"net/http"

	"github.com/angelmondragon/pantryshare-backend/api/responses"
	"github.com/angelmondragon/pantryshare-backend/api/validators"
	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	"github.com/angelmondragon/pantryshare-backend/internal/search"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
)

const (
	defaultSearchLimit = 10
	maxSearchPage      = 1000
)

func searchPaging(r *http.Request) (int, int, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, maxSearchPage)
	if err != nil {
		return 0, 0, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", defaultSearchLimit, 1, maxPageLimit)
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func RecipeSearchKeyword(svc search.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "search")
			return
		}
		page, limit, err := searchPaging(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		results, err := svc.SearchByKeyword(r.Context(), validators.QueryString(r, "query"), page, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, results)
	}
}

// RecipeSearchMostMatching ranks recipes by how many of the caller's pantry
// ingredients they use.
func RecipeSearchMostMatching(svc search.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "search")
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

		results, err := svc.SearchMostMatching(r.Context(), uid, page, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, results)
	}
}

func RecipeSearchLeastMissing(svc search.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "search")
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

		results, err := svc.SearchLeastMissing(r.Context(), uid, page, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, results)
	}
}

func RecipeInformation(svc search.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "search")
			return
		}

		id, ok := pathParam(w, r, logg, "recipeId")
		if !ok {
			return
		}
		recipe, err := svc.GetRecipe(r.Context(), recipes.ID(id))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, recipe)
	}
}
