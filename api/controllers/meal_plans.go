package controllers

import (
	"net/http"

	"github.com/angelmondragon/pantryshare-backend/api/responses"
	"github.com/angelmondragon/pantryshare-backend/api/validators"
	"github.com/angelmondragon/pantryshare-backend/internal/mealplans"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
)

func MealPlanList(svc mealplans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "meal plan")
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

		page, err := svc.GetMealPlan(r.Context(), uid, limit, validators.QueryString(r, "cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func MealPlanGet(svc mealplans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "meal plan")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		mealID, ok := pathParam(w, r, logg, "mealId")
		if !ok {
			return
		}
		meal, err := svc.GetMealByID(r.Context(), uid, mealID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, meal)
	}
}

func MealPlanAdd(svc mealplans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "meal plan")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		var payload mealplans.AddInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		meal, err := svc.AddRecipeToMealPlan(r.Context(), uid, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, meal)
	}
}

func MealPlanRemove(svc mealplans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "meal plan")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		mealID, ok := pathParam(w, r, logg, "mealId")
		if !ok {
			return
		}
		if err := svc.RemoveRecipeFromMealPlan(r.Context(), uid, mealID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"mealId": mealID, "removed": true})
	}
}

// MealPlanReconcile rebuilds the caller's back-references from their meal
// plans after a partially failed cascade.
func MealPlanReconcile(svc mealplans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "meal plan")
			return
		}
		uid, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		report, err := svc.Reconcile(r.Context(), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
