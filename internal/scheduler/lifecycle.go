package scheduler

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/ids"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/store"
)

// CreateRequest validates and persists a new pickup request. The conflict
// check and the insert run under the (bin, preferred date) lock so two
// concurrent submissions for the same bin cannot both pass.
func (e *Engine) CreateRequest(userID string, in *models.CreateRequestRequest) (*models.WasteRequest, error) {
	if !models.IsValidBinID(in.BinID) {
		return nil, &models.ValidationError{Field: "bin_id", Reason: "malformed bin id"}
	}
	if !models.IsValidWasteType(in.WasteType) {
		return nil, &models.ValidationError{Field: "waste_type", Reason: "unsupported waste type"}
	}
	if err := e.validateDate("preferred_date", in.PreferredDate); err != nil {
		return nil, err
	}
	if err := validateTimeSlot("preferred_time_slot", in.PreferredTimeSlot); err != nil {
		return nil, err
	}

	bin, err := e.store.GetBin(in.BinID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &models.NotFoundError{Resource: "bin", ID: in.BinID}
	}
	if err != nil {
		return nil, &models.InternalError{Op: "get bin", Err: err}
	}

	key := binDateKey(in.BinID, in.PreferredDate)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	if err := e.checkBinConflict(in.BinID, in.WasteType, in.PreferredDate, ""); err != nil {
		return nil, err
	}

	now := e.now()
	req := &models.WasteRequest{
		UserID:            userID,
		BinID:             in.BinID,
		WasteType:         in.WasteType,
		PreferredDate:     in.PreferredDate,
		PreferredTimeSlot: in.PreferredTimeSlot,
		Status:            models.RequestStatusPending,
		PaymentStatus:     models.PaymentStatusPending,
		Cost:              models.WasteTypes[in.WasteType].BaseCost,
		CreatedAt:         now.Unix(),
		UpdatedAt:         now.Unix(),
	}

	// id collisions are vanishingly rare; retry a couple of times anyway
	for attempt := 0; ; attempt++ {
		req.ID = string(ids.NewRequestID(e.now()))
		err = e.store.CreateRequest(req)
		if !errors.Is(err, store.ErrDuplicateID) || attempt >= 2 {
			break
		}
	}
	if err != nil {
		return nil, &models.InternalError{Op: "create request", Err: err}
	}

	e.bumpBinForRequest(bin, in.PreferredDate)
	e.notifyOperators(models.NotifyNewRequest, "New collection request",
		fmt.Sprintf("%s pickup requested for %s on %s", in.WasteType, in.BinID, in.PreferredDate), req.ID)

	log.Printf("✅ Request %s created (%s, bin %s, %s %s)", req.ID, in.WasteType, in.BinID, in.PreferredDate, in.PreferredTimeSlot)
	return req, nil
}

// ApproveRequest assigns a pending, paid request to a worker and folds it
// into that worker's route for the day. When in.WorkerID is empty the load
// balancer picks the least-loaded eligible collector. The conflict check,
// route mutation and request update all run under the (worker, date) lock.
func (e *Engine) ApproveRequest(requestID, operatorID string, in *models.ApproveRequestRequest) (*models.WasteRequest, error) {
	req, err := e.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(req.Status, models.RequestStatusApproved) {
		return nil, &models.ValidationError{Field: "status", Reason: fmt.Sprintf("cannot approve a %s request", req.Status)}
	}
	if req.PaymentStatus != models.PaymentStatusPaid {
		return nil, &models.ValidationError{Field: "payment_status", Reason: "payment not completed"}
	}

	date := in.ScheduledDate
	if date == "" {
		date = req.PreferredDate
	}
	slot := in.TimeSlot
	if slot == "" {
		slot = req.PreferredTimeSlot
	}
	if err := e.validateDate("scheduled_date", date); err != nil {
		return nil, err
	}
	if err := validateTimeSlot("time_slot", slot); err != nil {
		return nil, err
	}

	workerID := in.WorkerID
	if workerID != "" {
		if err := e.validateWorker(workerID, date); err != nil {
			return nil, err
		}
	} else {
		workerID, err = e.pickWorker(date)
		if err != nil {
			return nil, err
		}
	}

	key := workerDateKey(workerID, date)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	if err := e.checkWorkerConflict(workerID, date, slot, req.ID); err != nil {
		return nil, err
	}

	routeID, err := e.assignToRoute(req, workerID, date)
	if err != nil {
		return nil, err
	}

	now := e.now().Unix()
	req.Status = models.RequestStatusApproved
	req.AssignedWorkerID = &workerID
	req.AssignedByID = &operatorID
	req.AssignedAt = &now
	req.ScheduledDate = &date
	req.ScheduledTimeSlot = &slot
	req.RouteID = &routeID
	req.Notes = appendNote(req.Notes, in.Notes)
	req.UpdatedAt = now

	if err := e.store.UpdateRequest(req); err != nil {
		// roll the route mutation back so the task does not outlive the
		// failed approval
		if rerr := e.removeFromRoute(req.ID, &routeID); rerr != nil {
			log.Printf("⚠️  Route rollback failed for %s: %v", req.ID, rerr)
		}
		return nil, &models.InternalError{Op: "update request", Err: err}
	}

	e.notify(req.UserID, models.NotifyRequestApproved, "Request approved",
		fmt.Sprintf("Your %s pickup is scheduled for %s at %s", req.WasteType, date, slot), req.ID)
	e.notify(workerID, models.NotifyRouteAssigned, "New pickup assigned",
		fmt.Sprintf("Bin %s added to your route for %s (%s)", req.BinID, date, slot), routeID)

	log.Printf("✅ Request %s approved (worker %s, %s %s, route %s)", req.ID, workerID, date, slot, routeID)
	return req, nil
}

// CancelRequest cancels a request on behalf of its owner. Operators may pass
// any userID through by sending the request owner's id.
func (e *Engine) CancelRequest(requestID, userID string) (*models.WasteRequest, error) {
	req, err := e.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, &models.NotFoundError{Resource: "request", ID: requestID}
	}
	return e.cancel(req, "cancelled by customer")
}

// RejectRequest cancels a pending request on the operator path, recording the
// reason in the request notes.
func (e *Engine) RejectRequest(requestID, reason string) (*models.WasteRequest, error) {
	req, err := e.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestStatusPending {
		return nil, &models.ValidationError{Field: "status", Reason: fmt.Sprintf("cannot reject a %s request", req.Status)}
	}
	if reason == "" {
		reason = "rejected by operator"
	}
	return e.cancel(req, reason)
}

func (e *Engine) cancel(req *models.WasteRequest, reason string) (*models.WasteRequest, error) {
	if !models.CanTransition(req.Status, models.RequestStatusCancelled) {
		return nil, &models.ValidationError{Field: "status", Reason: fmt.Sprintf("cannot cancel a %s request", req.Status)}
	}

	if req.IsAssigned() {
		key := workerDateKey(*req.AssignedWorkerID, *req.ScheduledDate)
		e.locks.Lock(key)
		defer e.locks.Unlock(key)

		// the status change wins even when route repair fails; the stale
		// task is pruned on the next route read
		if err := e.removeFromRoute(req.ID, req.RouteID); err != nil {
			log.Printf("⚠️  Route repair deferred for %s: %v", req.ID, err)
		}
		req.RouteID = nil
	}

	req.Status = models.RequestStatusCancelled
	req.Notes = appendNote(req.Notes, reason)
	req.UpdatedAt = e.now().Unix()
	if err := e.store.UpdateRequest(req); err != nil {
		return nil, &models.InternalError{Op: "update request", Err: err}
	}

	e.notify(req.UserID, models.NotifyRequestCancelled, "Request cancelled",
		fmt.Sprintf("Your %s pickup request was cancelled: %s", req.WasteType, reason), req.ID)
	log.Printf("✅ Request %s cancelled (%s)", req.ID, reason)
	return req, nil
}

// ResetRequest is the administrative escape hatch: it forces a request of any
// status back to pending, clears every assignment field and prunes the
// request's bin-task from its route.
func (e *Engine) ResetRequest(requestID string) (*models.WasteRequest, error) {
	req, err := e.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(req.Status, models.RequestStatusPending) {
		return nil, &models.ValidationError{Field: "status", Reason: fmt.Sprintf("cannot reset a %s request", req.Status)}
	}

	if req.IsAssigned() {
		key := workerDateKey(*req.AssignedWorkerID, *req.ScheduledDate)
		e.locks.Lock(key)
		defer e.locks.Unlock(key)

		if err := e.removeFromRoute(req.ID, req.RouteID); err != nil {
			log.Printf("⚠️  Route repair deferred for %s: %v", req.ID, err)
		}
	}

	req.Status = models.RequestStatusPending
	req.AssignedWorkerID = nil
	req.AssignedByID = nil
	req.AssignedAt = nil
	req.ScheduledDate = nil
	req.ScheduledTimeSlot = nil
	req.RouteID = nil
	req.Notes = appendNote(req.Notes, "reset to pending by operator")
	req.UpdatedAt = e.now().Unix()
	if err := e.store.UpdateRequest(req); err != nil {
		return nil, &models.InternalError{Op: "update request", Err: err}
	}

	log.Printf("✅ Request %s reset to pending", req.ID)
	return req, nil
}

// MarkRequestPaid records a successful payment on a pending request.
func (e *Engine) MarkRequestPaid(requestID, userID string) (*models.WasteRequest, error) {
	req, err := e.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, &models.NotFoundError{Resource: "request", ID: requestID}
	}
	if req.Status != models.RequestStatusPending {
		return nil, &models.ValidationError{Field: "status", Reason: fmt.Sprintf("cannot pay for a %s request", req.Status)}
	}
	if req.PaymentStatus == models.PaymentStatusPaid {
		return req, nil
	}

	req.PaymentStatus = models.PaymentStatusPaid
	req.UpdatedAt = e.now().Unix()
	if err := e.store.UpdateRequest(req); err != nil {
		return nil, &models.InternalError{Op: "update request", Err: err}
	}
	log.Printf("✅ Request %s marked paid (LKR %.2f)", req.ID, req.Cost)
	return req, nil
}

// RecordCollection writes the immutable audit record for one pickup attempt
// and reconciles the request, its bin and its route with the outcome. Only
// the assigned collector may record against a request.
func (e *Engine) RecordCollection(collectorID string, in *models.RecordCollectionRequest) (*models.Collection, error) {
	if !models.IsValidCollectionMethod(in.Method) {
		return nil, &models.ValidationError{Field: "method", Reason: "method must be scan or manual"}
	}
	if !models.IsValidCollectionOutcome(in.Outcome) {
		return nil, &models.ValidationError{Field: "outcome", Reason: "outcome must be collected or failed"}
	}
	if in.Outcome == models.CollectionOutcomeFailed && (in.Issue == nil || *in.Issue == "") {
		return nil, &models.ValidationError{Field: "issue", Reason: "failed collections require an issue description"}
	}

	req, err := e.getRequest(in.RequestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestStatusApproved || !req.IsAssigned() {
		return nil, &models.ValidationError{Field: "request_id", Reason: "request is not approved for collection"}
	}
	if *req.AssignedWorkerID != collectorID {
		return nil, &models.AssignmentError{WorkerID: collectorID, Reason: "request is assigned to a different collector"}
	}

	key := workerDateKey(collectorID, *req.ScheduledDate)
	e.locks.Lock(key)
	defer e.locks.Unlock(key)

	collected := in.Outcome == models.CollectionOutcomeCollected
	record := &models.Collection{
		ID:          uuid.New().String(),
		RequestID:   req.ID,
		BinID:       req.BinID,
		CollectorID: collectorID,
		Method:      in.Method,
		Outcome:     in.Outcome,
		Issue:       in.Issue,
		CollectedAt: e.now().Unix(),
	}
	if err := e.store.CreateCollection(record); err != nil {
		return nil, &models.InternalError{Op: "create collection", Err: err}
	}

	if collected {
		bin, err := e.store.GetBin(req.BinID)
		if err == nil {
			if err := e.resetBinAfterCollection(bin); err != nil {
				log.Printf("⚠️  Bin %s not reset after collection: %v", bin.ID, err)
			}
		}

		req.Status = models.RequestStatusCompleted
		req.UpdatedAt = e.now().Unix()
		if err := e.store.UpdateRequest(req); err != nil {
			return nil, &models.InternalError{Op: "update request", Err: err}
		}
	}

	if err := e.reconcileOnCollection(req, collected); err != nil {
		log.Printf("⚠️  Route reconcile deferred for %s: %v", req.ID, err)
	}

	if collected {
		e.notify(req.UserID, models.NotifyRequestCompleted, "Collection completed",
			fmt.Sprintf("Your %s pickup from %s is done", req.WasteType, req.BinID), req.ID)
		log.Printf("✅ Collection recorded for %s (collected, %s)", req.ID, in.Method)
	} else {
		log.Printf("⚠️  Collection recorded for %s (failed: %s)", req.ID, *in.Issue)
	}
	return record, nil
}

func (e *Engine) getRequest(id string) (*models.WasteRequest, error) {
	req, err := e.store.GetRequest(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &models.NotFoundError{Resource: "request", ID: id}
	}
	if err != nil {
		return nil, &models.InternalError{Op: "get request", Err: err}
	}
	return req, nil
}

func (e *Engine) notifyOperators(typ, title, message, relatedID string) {
	if e.notifier == nil {
		return
	}
	operators, err := e.store.ListUsersByRole(models.RoleOperator)
	if err != nil {
		log.Printf("⚠️  Operator notification skipped: %v", err)
		return
	}
	e.notifier.PublishToRole(operators, typ, title, message, relatedID)
}

func appendNote(existing, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
