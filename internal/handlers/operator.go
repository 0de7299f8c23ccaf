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

// ListAllRequests handles GET /api/operator/requests with optional status,
// user_id, worker_id and date query filters.
func ListAllRequests(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		requests, err := s.ListRequests(store.RequestFilter{
			Status:   models.RequestStatus(q.Get("status")),
			UserID:   q.Get("user_id"),
			WorkerID: q.Get("worker_id"),
			Date:     q.Get("date"),
		})
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch requests")
			return
		}
		utils.RespondJSON(w, http.StatusOK, requests)
	}
}

// ApproveRequest handles POST /api/operator/requests/{id}/approve.
func ApproveRequest(engine *scheduler.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req models.ApproveRequestRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
				return
			}
		}

		approved, err := engine.ApproveRequest(chi.URLParam(r, "id"), claims.UserID, &req)
		if err != nil {
			respondEngineError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, approved)
	}
}

type RejectRequestBody struct {
	Reason string `json:"reason"`
}

// RejectRequest handles POST /api/operator/requests/{id}/reject.
func RejectRequest(engine *scheduler.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body RejectRequestBody
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
				return
			}
		}

		rejected, err := engine.RejectRequest(chi.URLParam(r, "id"), body.Reason)
		if err != nil {
			respondEngineError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, rejected)
	}
}

// ResetRequest handles POST /api/operator/requests/{id}/reset.
func ResetRequest(engine *scheduler.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reset, err := engine.ResetRequest(chi.URLParam(r, "id"))
		if err != nil {
			respondEngineError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, reset)
	}
}

// WorkerAvailability handles GET /api/operator/workers/availability?date=.
func WorkerAvailability(engine *scheduler.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		availability, err := engine.WorkerAvailabilityFor(date)
		if err != nil {
			respondEngineError(w, err)
			return
		}
		utils.RespondJSON(w, http.StatusOK, availability)
	}
}

// SummaryReport is the operator dashboard rollup.
type SummaryReport struct {
	Pending   int     `json:"pending"`
	Approved  int     `json:"approved"`
	Completed int     `json:"completed"`
	Cancelled int     `json:"cancelled"`
	Revenue   float64 `json:"revenue"`
	ByType    map[string]int `json:"by_type"`
}

// GetSummaryReport handles GET /api/operator/summary. Revenue counts paid
// requests regardless of lifecycle status.
func GetSummaryReport(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requests, err := s.ListRequests(store.RequestFilter{})
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch requests")
			return
		}

		report := SummaryReport{ByType: map[string]int{}}
		for _, req := range requests {
			switch req.Status {
			case models.RequestStatusPending:
				report.Pending++
			case models.RequestStatusApproved:
				report.Approved++
			case models.RequestStatusCompleted:
				report.Completed++
			case models.RequestStatusCancelled:
				report.Cancelled++
			}
			if req.PaymentStatus == models.PaymentStatusPaid {
				report.Revenue += req.Cost
			}
			report.ByType[req.WasteType]++
		}
		utils.RespondJSON(w, http.StatusOK, report)
	}
}
