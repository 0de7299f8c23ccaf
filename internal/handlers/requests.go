package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/middleware"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/scheduler"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/store"
	"github.com/IsukaW/Urban-Cleanse-sub001/pkg/utils"
)

// respondEngineError maps engine error types onto HTTP status codes.
func respondEngineError(w http.ResponseWriter, err error) {
	utils.RespondError(w, models.HTTPStatus(err), err.Error())
}

// CreateRequest handles POST /api/requests.
func CreateRequest(engine *scheduler.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req models.CreateRequestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		created, err := engine.CreateRequest(claims.UserID, &req)
		if err != nil {
			respondEngineError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusCreated, created)
	}
}

// ListMyRequests handles GET /api/requests, scoped to the caller.
func ListMyRequests(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		requests, err := s.ListRequests(store.RequestFilter{
			UserID: claims.UserID,
			Status: models.RequestStatus(r.URL.Query().Get("status")),
		})
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch requests")
			return
		}
		utils.RespondJSON(w, http.StatusOK, requests)
	}
}

// GetRequest handles GET /api/requests/{id}. Customers only see their own.
func GetRequest(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		req, err := s.GetRequest(chi.URLParam(r, "id"))
		if err == store.ErrNotFound {
			utils.RespondError(w, http.StatusNotFound, "Request not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch request")
			return
		}
		if claims.Role == models.RoleCustomer && req.UserID != claims.UserID {
			utils.RespondError(w, http.StatusNotFound, "Request not found")
			return
		}
		utils.RespondJSON(w, http.StatusOK, req)
	}
}

// CancelRequest handles POST /api/requests/{id}/cancel.
func CancelRequest(engine *scheduler.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		cancelled, err := engine.CancelRequest(chi.URLParam(r, "id"), claims.UserID)
		if err != nil {
			respondEngineError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, cancelled)
	}
}

// PayRequest handles POST /api/requests/{id}/pay. The gateway interaction is
// simulated; a real integration would verify the provider callback here.
func PayRequest(engine *scheduler.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		paid, err := engine.MarkRequestPaid(chi.URLParam(r, "id"), claims.UserID)
		if err != nil {
			respondEngineError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, paid)
	}
}
