package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/scheduler"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/store"
	"github.com/IsukaW/Urban-Cleanse-sub001/pkg/utils"
)

// ListRoutes handles GET /api/operator/routes with an optional ?date= filter.
func ListRoutes(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routes, err := s.ListRoutes(r.URL.Query().Get("date"))
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch routes")
			return
		}
		utils.RespondJSON(w, http.StatusOK, routes)
	}
}

// GetRoute handles GET /api/operator/routes/{id} including the task list.
func GetRoute(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route, err := s.GetRoute(chi.URLParam(r, "id"))
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Route not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch route")
			return
		}

		bins, err := s.GetRouteBins(route.ID)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch route tasks")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.RouteWithBins{Route: *route, Bins: bins})
	}
}

// CancelRoute handles POST /api/operator/routes/{id}/cancel. Every member
// request goes back to pending; pruning the last task deletes the route, so
// there is no lingering cancelled shell to reconcile later.
func CancelRoute(engine *scheduler.Engine, s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		route, err := s.GetRoute(id)
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Route not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch route")
			return
		}
		if !route.IsActive() {
			utils.RespondError(w, http.StatusBadRequest, "Route is no longer active")
			return
		}

		bins, err := s.GetRouteBins(route.ID)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch route tasks")
			return
		}

		released := 0
		for _, b := range bins {
			if b.Status == models.BinTaskStatusCompleted {
				continue
			}
			if _, err := engine.ResetRequest(b.RequestID); err != nil {
				log.Printf("⚠️  Request %s not released from route %s: %v", b.RequestID, route.ID, err)
				continue
			}
			released++
		}

		log.Printf("✅ Route %s cancelled (%d requests released)", id, released)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"released": released,
		})
	}
}
