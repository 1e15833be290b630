package controllers

import (
	"net/http"

	"github.com/angelmondragon/pantryshare-backend/api/middleware"
	"github.com/angelmondragon/pantryshare-backend/api/responses"
)

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"scope":  "private",
			"status": "ok",
			"uid":    middleware.UserIDFromContext(r.Context()),
		})
	}
}
