package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/middleware"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/scheduler"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/store"
	"github.com/IsukaW/Urban-Cleanse-sub001/pkg/utils"
)

// GetTodayRoute handles GET /api/collector/route/today. An explicit ?date=
// wins over today.
func GetTodayRoute(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		date := r.URL.Query().Get("date")
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}

		route, err := s.FindActiveRoute(claims.UserID, date)
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "No route assigned for "+date)
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

// RecordCollection handles POST /api/collector/collections.
func RecordCollection(engine *scheduler.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req models.RecordCollectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		record, err := engine.RecordCollection(claims.UserID, &req)
		if err != nil {
			respondEngineError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusCreated, record)
	}
}

// ListMyCollections handles GET /api/collector/collections.
func ListMyCollections(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		collections, err := s.ListCollectionsByCollector(claims.UserID)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch collections")
			return
		}
		utils.RespondJSON(w, http.StatusOK, collections)
	}
}
