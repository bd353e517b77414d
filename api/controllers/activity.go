package controllers

import (
	"net/http"

	"github.com/ruwinya10/agrilink-backend/api/responses"
	"github.com/ruwinya10/agrilink-backend/internal/activity"
	"github.com/ruwinya10/agrilink-backend/pkg/logger"
)

// MyActivity returns the authenticated user's activity feed, newest first.
func MyActivity(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
