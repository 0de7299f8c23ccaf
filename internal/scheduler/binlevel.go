package scheduler

import (
	"log"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
)

// bumpBinForRequest re-estimates a bin's fill level when a new pickup
// request lands on it. Failures here are logged, never propagated: the
// heuristic is a side effect of request creation, not part of it.
//
// A bin that sat empty jumps to 60 plus 15 per additional active request on
// the same day, capped at 90. A bin already collected earlier the same day
// settles back toward 50 (partial re-fill).
func (e *Engine) bumpBinForRequest(bin *models.Bin, date string) {
	activeToday, err := e.store.CountActiveForBinOnDate(bin.ID, date)
	if err != nil {
		log.Printf("⚠️  Fill estimate skipped for %s: %v", bin.ID, err)
		return
	}
	collectedToday, err := e.store.HasCompletedForBinOnDate(bin.ID, date)
	if err != nil {
		log.Printf("⚠️  Fill estimate skipped for %s: %v", bin.ID, err)
		return
	}

	fill := bin.FillLevel
	switch {
	case collectedToday:
		fill = 50
	case bin.Status == models.BinStatusEmpty || bin.FillLevel <= 20:
		// activeToday includes the request that triggered this bump
		fill = 60 + 15*(activeToday-1)
		if fill > 90 {
			fill = 90
		}
	}

	if fill == bin.FillLevel {
		return
	}

	bin.FillLevel = fill
	bin.Status = models.BinStatusFor(fill)
	bin.NeedsMaintenance = models.NeedsMaintenanceFor(fill, bin.Battery)
	bin.UpdatedAt = e.now().Unix()

	if err := e.store.UpdateBin(bin); err != nil {
		log.Printf("⚠️  Fill estimate not persisted for %s: %v", bin.ID, err)
	}
}

// resetBinAfterCollection empties a bin after a successful pickup.
func (e *Engine) resetBinAfterCollection(bin *models.Bin) error {
	now := e.now().Unix()
	bin.FillLevel = 0
	bin.Status = models.BinStatusFor(0)
	bin.NeedsMaintenance = models.NeedsMaintenanceFor(0, bin.Battery)
	bin.LastEmptiedAt = &now
	bin.UpdatedAt = now
	return e.store.UpdateBin(bin)
}
