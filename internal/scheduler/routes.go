package scheduler

import (
	"errors"
	"log"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/ids"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/store"
)

// assignToRoute folds an approved request into the worker's active route for
// the scheduled day, creating the route on first assignment. Adding the same
// request (or another request for the same bin) twice is an idempotent no-op
// that returns the existing route id. Caller holds the (worker, date) lock.
func (e *Engine) assignToRoute(req *models.WasteRequest, workerID, date string) (string, error) {
	customerName, customerAddress := e.customerInfo(req.UserID)
	wt := models.WasteTypes[req.WasteType]
	now := e.now().Unix()

	route, err := e.store.FindActiveRoute(workerID, date)
	if errors.Is(err, store.ErrNotFound) {
		return e.createRouteFor(req, workerID, date, customerName, customerAddress)
	}
	if err != nil {
		return "", &models.InternalError{Op: "find active route", Err: err}
	}

	bins, err := e.store.GetRouteBins(route.ID)
	if err != nil {
		return "", &models.InternalError{Op: "get route bins", Err: err}
	}
	for _, b := range bins {
		if b.RequestID == req.ID || b.BinID == req.BinID {
			return route.ID, nil
		}
	}

	task := &models.RouteBin{
		RouteID:          route.ID,
		BinID:            req.BinID,
		RequestID:        req.ID,
		Priority:         models.PriorityFor(req.WasteType, e.binFillLevel(req.BinID)),
		EstimatedMinutes: wt.EstimatedMinutes,
		SequenceOrder:    nextSequence(bins),
		Status:           models.BinTaskStatusPending,
		CustomerName:     customerName,
		CustomerAddress:  customerAddress,
		CreatedAt:        now,
	}
	if err := e.store.AddRouteBin(task); err != nil {
		return "", &models.InternalError{Op: "add route bin", Err: err}
	}

	route.RecountBins(append(bins, *task))
	route.UpdatedAt = now
	if err := e.store.UpdateRoute(route); err != nil {
		return "", &models.InternalError{Op: "update route", Err: err}
	}
	return route.ID, nil
}

func (e *Engine) createRouteFor(req *models.WasteRequest, workerID, date, customerName, customerAddress string) (string, error) {
	wt := models.WasteTypes[req.WasteType]
	now := e.now().Unix()

	route := &models.Route{
		ID:                string(ids.NewRouteID(e.now(), date)),
		CollectorID:       workerID,
		Date:              date,
		Status:            models.RouteStatusAssigned,
		Area:              e.binArea(req.BinID),
		TotalBins:         1,
		CompletedBins:     0,
		EstimatedDuration: wt.EstimatedMinutes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	task := models.RouteBin{
		RouteID:          route.ID,
		BinID:            req.BinID,
		RequestID:        req.ID,
		Priority:         models.PriorityFor(req.WasteType, e.binFillLevel(req.BinID)),
		EstimatedMinutes: wt.EstimatedMinutes,
		SequenceOrder:    1,
		Status:           models.BinTaskStatusPending,
		CustomerName:     customerName,
		CustomerAddress:  customerAddress,
		CreatedAt:        now,
	}
	if err := e.store.CreateRoute(route, []models.RouteBin{task}); err != nil {
		return "", &models.InternalError{Op: "create route", Err: err}
	}
	return route.ID, nil
}

// removeFromRoute prunes the request's bin-task from its route. A route left
// with no tasks is deleted; otherwise its counters are recomputed from the
// remaining tasks. routeID may be empty or stale, in which case the route is
// located by scanning for the request's task.
func (e *Engine) removeFromRoute(requestID string, routeID *string) error {
	var route *models.Route
	var err error
	if routeID != nil && *routeID != "" {
		route, err = e.store.GetRoute(*routeID)
		if errors.Is(err, store.ErrNotFound) {
			route = nil
			err = nil
		}
		if err != nil {
			return &models.InternalError{Op: "get route", Err: err}
		}
	}
	if route == nil {
		route, err = e.store.FindRouteByRequest(requestID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return &models.InternalError{Op: "find route by request", Err: err}
		}
	}

	if err := e.store.RemoveRouteBin(route.ID, requestID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return &models.InternalError{Op: "remove route bin", Err: err}
	}

	bins, err := e.store.GetRouteBins(route.ID)
	if err != nil {
		return &models.InternalError{Op: "get route bins", Err: err}
	}
	if len(bins) == 0 {
		if err := e.store.DeleteRoute(route.ID); err != nil {
			return &models.InternalError{Op: "delete route", Err: err}
		}
		log.Printf("📋 Route %s deleted (last task removed)", route.ID)
		return nil
	}

	route.RecountBins(bins)
	route.UpdatedAt = e.now().Unix()
	if err := e.store.UpdateRoute(route); err != nil {
		return &models.InternalError{Op: "update route", Err: err}
	}
	return nil
}

// reconcileOnCollection moves the request's bin-task to its terminal status
// and rolls the outcome up into the route: the first recorded event starts
// the route, the last completed task finishes it.
func (e *Engine) reconcileOnCollection(req *models.WasteRequest, collected bool) error {
	route, err := e.routeForRequest(req)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	bins, err := e.store.GetRouteBins(route.ID)
	if err != nil {
		return &models.InternalError{Op: "get route bins", Err: err}
	}

	now := e.now().Unix()
	taskStatus := models.BinTaskStatusFailed
	if collected {
		taskStatus = models.BinTaskStatusCompleted
	}
	for i := range bins {
		if bins[i].RequestID == req.ID {
			bins[i].Status = taskStatus
			bins[i].CompletedAt = &now
			if err := e.store.UpdateRouteBin(&bins[i]); err != nil {
				return &models.InternalError{Op: "update route bin", Err: err}
			}
			break
		}
	}

	route.RecountBins(bins)
	route.UpdatedAt = now

	allDone := true
	for _, b := range bins {
		if b.Status != models.BinTaskStatusCompleted && b.Status != models.BinTaskStatusFailed {
			allDone = false
			break
		}
	}
	switch {
	case allDone:
		route.Status = models.RouteStatusCompleted
		route.EndTime = &now
		if route.StartTime == nil {
			route.StartTime = &now
		}
		actual := int((now - *route.StartTime) / 60)
		route.ActualDuration = &actual
	case route.Status == models.RouteStatusAssigned:
		route.Status = models.RouteStatusInProgress
		route.StartTime = &now
	}

	if err := e.store.UpdateRoute(route); err != nil {
		return &models.InternalError{Op: "update route", Err: err}
	}
	return nil
}

// routeForRequest resolves the request's route, trusting request.RouteID
// first and falling back to a task scan when the reference is stale.
func (e *Engine) routeForRequest(req *models.WasteRequest) (*models.Route, error) {
	if req.RouteID != nil && *req.RouteID != "" {
		route, err := e.store.GetRoute(*req.RouteID)
		if err == nil {
			return route, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, &models.InternalError{Op: "get route", Err: err}
		}
	}
	route, err := e.store.FindRouteByRequest(req.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, &models.InternalError{Op: "find route by request", Err: err}
	}
	return route, err
}

func nextSequence(bins []models.RouteBin) int {
	max := 0
	for _, b := range bins {
		if b.SequenceOrder > max {
			max = b.SequenceOrder
		}
	}
	return max + 1
}

// customerInfo denormalizes the requester's name and address onto the
// bin-task. Missing users degrade to blanks rather than failing assignment.
func (e *Engine) customerInfo(userID string) (string, string) {
	user, err := e.store.GetUser(userID)
	if err != nil {
		return "", ""
	}
	return user.Name, user.Address
}

func (e *Engine) binArea(binID string) string {
	bin, err := e.store.GetBin(binID)
	if err != nil {
		return ""
	}
	return bin.Area
}

func (e *Engine) binFillLevel(binID string) int {
	bin, err := e.store.GetBin(binID)
	if err != nil {
		return 0
	}
	return bin.FillLevel
}
