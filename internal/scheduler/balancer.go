package scheduler

import (
	"sort"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/store"
)

// WorkerAvailability is the observability view of one collector's day.
type WorkerAvailability struct {
	WorkerID          string   `json:"worker_id"`
	Name              string   `json:"name"`
	LoadScore         int      `json:"load_score"`
	OccupiedSlots     []string `json:"occupied_slots"`
	AvailableSlots    []string `json:"available_slots"`
	RemainingCapacity int      `json:"remaining_capacity"`
}

// loadScore is routes already assigned that day plus requests already
// assigned that day (approved or completed).
func (e *Engine) loadScore(workerID, date string) (int, error) {
	routes, err := e.store.CountRoutes(workerID, date)
	if err != nil {
		return 0, err
	}
	assigned, err := e.store.ListAssignedRequests(workerID, date)
	if err != nil {
		return 0, err
	}
	return routes + len(assigned), nil
}

// pickWorker selects the least-loaded active collector for a day. Ties break
// on worker id so the choice is deterministic.
func (e *Engine) pickWorker(date string) (string, error) {
	workers, err := e.store.ListActiveCollectors()
	if err != nil {
		return "", &models.InternalError{Op: "list collectors", Err: err}
	}
	if len(workers) == 0 {
		return "", &models.AssignmentError{Reason: "no active collectors available"}
	}

	best := ""
	bestScore := 0
	for _, w := range workers {
		score, err := e.loadScore(w.ID, date)
		if err != nil {
			return "", &models.InternalError{Op: "load score", Err: err}
		}
		// workers arrive sorted by id, so strict less keeps the first of a tie
		if best == "" || score < bestScore {
			best = w.ID
			bestScore = score
		}
	}
	return best, nil
}

// validateWorker checks an operator-specified assignee: the worker must
// exist, be active, hold a collection role and have slot capacity left for
// the day.
func (e *Engine) validateWorker(workerID, date string) error {
	worker, err := e.store.GetUser(workerID)
	if err == store.ErrNotFound {
		return &models.NotFoundError{Resource: "worker", ID: workerID}
	}
	if err != nil {
		return &models.InternalError{Op: "get worker", Err: err}
	}
	if !worker.Active {
		return &models.AssignmentError{WorkerID: workerID, Reason: "worker is not active"}
	}
	if !models.IsCollector(worker.Role) {
		return &models.AssignmentError{WorkerID: workerID, Reason: "worker does not hold a collection role"}
	}

	assigned, err := e.store.ListAssignedRequests(workerID, date)
	if err != nil {
		return &models.InternalError{Op: "list assigned requests", Err: err}
	}
	if len(assigned) >= e.dailyCapacity {
		return &models.AssignmentError{WorkerID: workerID, Reason: "worker is at daily capacity"}
	}
	return nil
}

// WorkerAvailabilityFor reports every active collector's occupied and free
// slots for a day, fully-available workers first, then by ascending load.
func (e *Engine) WorkerAvailabilityFor(date string) ([]WorkerAvailability, error) {
	if err := e.validateDate("date", date); err != nil {
		return nil, err
	}

	workers, err := e.store.ListActiveCollectors()
	if err != nil {
		return nil, &models.InternalError{Op: "list collectors", Err: err}
	}

	out := make([]WorkerAvailability, 0, len(workers))
	for _, w := range workers {
		assigned, err := e.store.ListAssignedRequests(w.ID, date)
		if err != nil {
			return nil, &models.InternalError{Op: "list assigned requests", Err: err}
		}
		score, err := e.loadScore(w.ID, date)
		if err != nil {
			return nil, &models.InternalError{Op: "load score", Err: err}
		}

		occupied := map[string]bool{}
		for _, req := range assigned {
			if req.ScheduledTimeSlot != nil {
				occupied[*req.ScheduledTimeSlot] = true
			}
		}

		availability := WorkerAvailability{
			WorkerID:          w.ID,
			Name:              w.Name,
			LoadScore:         score,
			OccupiedSlots:     []string{},
			AvailableSlots:    []string{},
			RemainingCapacity: e.dailyCapacity - len(assigned),
		}
		if availability.RemainingCapacity < 0 {
			availability.RemainingCapacity = 0
		}
		for _, slot := range models.TimeSlots {
			if occupied[slot] {
				availability.OccupiedSlots = append(availability.OccupiedSlots, slot)
			} else {
				availability.AvailableSlots = append(availability.AvailableSlots, slot)
			}
		}
		out = append(out, availability)
	}

	sort.SliceStable(out, func(i, j int) bool {
		fullI := len(out[i].OccupiedSlots) == 0
		fullJ := len(out[j].OccupiedSlots) == 0
		if fullI != fullJ {
			return fullI
		}
		if out[i].LoadScore != out[j].LoadScore {
			return out[i].LoadScore < out[j].LoadScore
		}
		return out[i].WorkerID < out[j].WorkerID
	})
	return out, nil
}
