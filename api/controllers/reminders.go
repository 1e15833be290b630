package controllers

import (
	"net/http"

	"github.com/angelmondragon/pantryshare-backend/api/responses"
	"github.com/angelmondragon/pantryshare-backend/api/validators"
	"github.com/angelmondragon/pantryshare-backend/internal/reminders"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
)

// ReminderTaskCreate adds a task to the caller's Google task list. Unlike the
// reminders created by pantry and meal-plan changes, a failure here is
// returned to the client.
func ReminderTaskCreate(svc reminders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "reminders")
			return
		}
		if _, ok := requireUser(w, r, logg); !ok {
			return
		}

		var payload reminders.CreateTaskInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		task, err := svc.CreateTask(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, task)
	}
}
