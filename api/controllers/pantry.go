package controllers

import (
	"net/http"

	"github.com/angelmondragon/pantryshare-backend/api/responses"
	"github.com/angelmondragon/pantryshare-backend/api/validators"
	"github.com/angelmondragon/pantryshare-backend/internal/ledger"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
)

// lastVisibleParam is the pantry and shopping list cursor: the name of the
// last ingredient the client has seen.
const lastVisibleParam = "lastVisibleIngredient"

func PantryList(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "ledger")
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

		page, err := svc.GetPantry(r.Context(), uid, limit, validators.QueryString(r, lastVisibleParam))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func PantryAdd(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "ledger")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		var payload ledger.AddPantryInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.AddToPantry(r.Context(), uid, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

func PantryModify(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "ledger")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		var payload ledger.ModifyPantryInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.ModifyInPantry(r.Context(), uid, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

func PantryRemove(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "ledger")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		name, ok := pathParam(w, r, logg, "ingredientName")
		if !ok {
			return
		}
		if err := svc.RemoveFromPantry(r.Context(), uid, name); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"ingredientName": name, "removed": true})
	}
}
