package middleware

import (
	"net/http"

	"github.com/angelmondragon/pantryshare-backend/internal/reminders"
)

// ReminderTokenHeader carries the caller's Google access token.
const ReminderTokenHeader = "GoogleAccessToken"

// ReminderToken moves the reminder provider token from the request header into
// the context. Requests without it simply skip reminder side effects.
func ReminderToken() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := r.Header.Get(ReminderTokenHeader); token != "" {
				r = r.WithContext(reminders.WithToken(r.Context(), token))
			}
			next.ServeHTTP(w, r)
		})
	}
}
