package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/store"
)

// validateDate parses a YYYY-MM-DD date and requires it to be today or later.
func (e *Engine) validateDate(field, date string) error {
	if date == "" {
		return &models.ValidationError{Field: field, Reason: "date is required"}
	}
	parsed, err := time.ParseInLocation(dateLayout, date, e.now().Location())
	if err != nil {
		return &models.ValidationError{Field: field, Reason: "date must be YYYY-MM-DD"}
	}
	if parsed.Before(e.today()) {
		return &models.ValidationError{Field: field, Reason: "date must not be in the past"}
	}
	return nil
}

// validateTimeSlot requires one of the five fixed two-hour windows.
func validateTimeSlot(field, slot string) error {
	if slot == "" {
		return &models.ValidationError{Field: field, Reason: "time slot is required"}
	}
	if !models.IsValidTimeSlot(slot) {
		return &models.ValidationError{Field: field, Reason: fmt.Sprintf("time slot must be one of %v", models.TimeSlots)}
	}
	return nil
}

// checkBinConflict rejects a second active request for the same bin, same
// collection type and same calendar day. Distinct collection types on the
// same bin and day are allowed; the day is not blocked globally.
func (e *Engine) checkBinConflict(binID, wasteType, date, excludeID string) error {
	conflict, err := e.store.FindBinConflict(binID, wasteType, date, excludeID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return &models.InternalError{Op: "bin conflict check", Err: err}
	}
	return &models.ConflictError{
		Resource:   "request",
		ConflictID: conflict.ID,
		Reason:     fmt.Sprintf("a %s collection is already scheduled for bin %s on %s", wasteType, binID, date),
	}
}

// checkWorkerConflict rejects a second assignment for the same worker, same
// scheduled day and same time slot. Workers may hold several assignments per
// day as long as the slots differ.
func (e *Engine) checkWorkerConflict(workerID, date, slot, excludeID string) error {
	conflict, err := e.store.FindWorkerSlotConflict(workerID, date, slot, excludeID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return &models.InternalError{Op: "worker conflict check", Err: err}
	}
	return &models.ConflictError{
		Resource:   "request",
		ConflictID: conflict.ID,
		Reason:     fmt.Sprintf("worker %s already has an assignment on %s at %s", workerID, date, slot),
	}
}
