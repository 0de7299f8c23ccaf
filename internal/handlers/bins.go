package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/ids"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/middleware"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/store"
	"github.com/IsukaW/Urban-Cleanse-sub001/pkg/utils"
)

// CreateBin handles POST /api/bins. The caller becomes the bin's owner.
func CreateBin(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req models.CreateBinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Address == "" || req.Area == "" {
			utils.RespondError(w, http.StatusBadRequest, "address and area are required")
			return
		}

		fill := 0
		if req.FillLevel != nil {
			fill = clampPercent(*req.FillLevel)
		}
		battery := 100
		if req.Battery != nil {
			battery = clampPercent(*req.Battery)
		}

		now := time.Now()
		bin := &models.Bin{
			ID:               string(ids.NewBinID(now)),
			OwnerID:          claims.UserID,
			Address:          req.Address,
			Area:             req.Area,
			FillLevel:        fill,
			Battery:          battery,
			Status:           models.BinStatusFor(fill),
			NeedsMaintenance: models.NeedsMaintenanceFor(fill, battery),
			CreatedAt:        now.Unix(),
			UpdatedAt:        now.Unix(),
		}
		if err := s.CreateBin(bin); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create bin")
			return
		}

		log.Printf("✅ Bin %s registered for %s (%s)", bin.ID, claims.UserID, bin.Area)
		utils.RespondJSON(w, http.StatusCreated, bin)
	}
}

// ListBins handles GET /api/bins. Customers see their own bins, staff see all.
func ListBins(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		bins, err := s.ListBins()
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch bins")
			return
		}

		if claims.Role == models.RoleCustomer {
			own := []models.Bin{}
			for _, b := range bins {
				if b.OwnerID == claims.UserID {
					own = append(own, b)
				}
			}
			bins = own
		}
		utils.RespondJSON(w, http.StatusOK, bins)
	}
}

// UpdateBinLevel handles PATCH /api/bins/{id}/level, the sensor ingest path.
// Status and the maintenance flag are always re-derived from the new level.
func UpdateBinLevel(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req models.UpdateBinLevelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.FillLevel == nil && req.Battery == nil {
			utils.RespondError(w, http.StatusBadRequest, "fill_level or battery is required")
			return
		}

		bin, err := s.GetBin(id)
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Bin not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch bin")
			return
		}

		if req.FillLevel != nil {
			// overflow readings above 100 are kept as reported
			fill := *req.FillLevel
			if fill < 0 {
				fill = 0
			}
			bin.FillLevel = fill
		}
		if req.Battery != nil {
			bin.Battery = clampPercent(*req.Battery)
		}
		bin.Status = models.BinStatusFor(bin.FillLevel)
		bin.NeedsMaintenance = models.NeedsMaintenanceFor(bin.FillLevel, bin.Battery)
		bin.UpdatedAt = time.Now().Unix()

		if err := s.UpdateBin(bin); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update bin")
			return
		}
		utils.RespondJSON(w, http.StatusOK, bin)
	}
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
