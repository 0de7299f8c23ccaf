package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/middleware"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/store"
	"github.com/IsukaW/Urban-Cleanse-sub001/pkg/utils"
)

// ListNotifications handles GET /api/notifications for the authenticated user.
func ListNotifications(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		notifications, err := s.ListNotificationsByUser(claims.UserID)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch notifications")
			return
		}
		utils.RespondJSON(w, http.StatusOK, notifications)
	}
}

// MarkNotificationRead handles POST /api/notifications/{id}/read.
func MarkNotificationRead(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		err := s.MarkNotificationRead(chi.URLParam(r, "id"), claims.UserID)
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Notification not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update notification")
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
