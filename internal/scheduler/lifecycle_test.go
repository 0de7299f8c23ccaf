package scheduler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/store"
)

func TestCreateRequest(t *testing.T) {
	e, m := newTestEngine(t)

	req, err := e.CreateRequest(customerID, &models.CreateRequestRequest{
		BinID:             binA,
		WasteType:         models.WasteTypeFood,
		PreferredDate:     tomorrow,
		PreferredTimeSlot: slot1,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(req.ID, "WR-"))
	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.Equal(t, models.PaymentStatusPending, req.PaymentStatus)
	assert.Equal(t, 250.0, req.Cost)
	assert.Nil(t, req.AssignedWorkerID)

	// an empty bin jumps to the base fill estimate
	bin, err := m.GetBin(binA)
	require.NoError(t, err)
	assert.Equal(t, 60, bin.FillLevel)
	assert.Equal(t, models.BinStatusHalfFull, bin.Status)
}

func TestCreateRequestValidation(t *testing.T) {
	e, _ := newTestEngine(t)

	cases := []struct {
		name string
		in   models.CreateRequestRequest
	}{
		{"malformed bin id", models.CreateRequestRequest{BinID: "bin-123", WasteType: "food", PreferredDate: tomorrow, PreferredTimeSlot: slot1}},
		{"unsupported waste type", models.CreateRequestRequest{BinID: binA, WasteType: "glass", PreferredDate: tomorrow, PreferredTimeSlot: slot1}},
		{"past date", models.CreateRequestRequest{BinID: binA, WasteType: "food", PreferredDate: "2026-08-31", PreferredTimeSlot: slot1}},
		{"malformed date", models.CreateRequestRequest{BinID: binA, WasteType: "food", PreferredDate: "02-09-2026", PreferredTimeSlot: slot1}},
		{"unknown time slot", models.CreateRequestRequest{BinID: binA, WasteType: "food", PreferredDate: tomorrow, PreferredTimeSlot: "06:00-08:00"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := e.CreateRequest(customerID, &c.in)
			var ve *models.ValidationError
			require.ErrorAs(t, err, &ve)
		})
	}

	_, err := e.CreateRequest(customerID, &models.CreateRequestRequest{
		BinID: "BIN-1799999999999-GONE", WasteType: "food", PreferredDate: tomorrow, PreferredTimeSlot: slot1,
	})
	var nf *models.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestBinConflictSameTypeSameDay(t *testing.T) {
	e, _ := newTestEngine(t)

	createPaidRequest(t, e, binA, models.WasteTypeFood, tomorrow, slot1)

	// same bin, same type, same day is blocked even in a different slot
	_, err := e.CreateRequest(customerID, &models.CreateRequestRequest{
		BinID: binA, WasteType: models.WasteTypeFood, PreferredDate: tomorrow, PreferredTimeSlot: slot2,
	})
	var ce *models.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.NotEmpty(t, ce.ConflictID)

	// a different type on the same bin and day is allowed
	_, err = e.CreateRequest(customerID, &models.CreateRequestRequest{
		BinID: binA, WasteType: models.WasteTypePaper, PreferredDate: tomorrow, PreferredTimeSlot: slot2,
	})
	require.NoError(t, err)

	// same type on another day is allowed
	_, err = e.CreateRequest(customerID, &models.CreateRequestRequest{
		BinID: binA, WasteType: models.WasteTypeFood, PreferredDate: "2026-09-03", PreferredTimeSlot: slot1,
	})
	require.NoError(t, err)
}

func TestApproveRequiresPayment(t *testing.T) {
	e, _ := newTestEngine(t)

	req, err := e.CreateRequest(customerID, &models.CreateRequestRequest{
		BinID: binA, WasteType: models.WasteTypeFood, PreferredDate: tomorrow, PreferredTimeSlot: slot1,
	})
	require.NoError(t, err)

	_, err = e.ApproveRequest(req.ID, operatorID, &models.ApproveRequestRequest{})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Reason, "payment")
}

func TestApproveAssignsWorkerAndRoute(t *testing.T) {
	e, m := newTestEngine(t)

	req := createPaidRequest(t, e, binA, models.WasteTypeFood, tomorrow, slot1)
	approved, err := e.ApproveRequest(req.ID, operatorID, &models.ApproveRequestRequest{})
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusApproved, approved.Status)
	require.True(t, approved.IsAssigned())
	assert.Equal(t, "collector-a", *approved.AssignedWorkerID, "least loaded, first by id")
	assert.Equal(t, operatorID, *approved.AssignedByID)
	assert.Equal(t, tomorrow, *approved.ScheduledDate)
	assert.Equal(t, slot1, *approved.ScheduledTimeSlot)
	require.NotNil(t, approved.RouteID)

	route, err := m.GetRoute(*approved.RouteID)
	require.NoError(t, err)
	assert.Equal(t, "collector-a", route.CollectorID)
	assert.Equal(t, models.RouteStatusAssigned, route.Status)
	assert.Equal(t, 1, route.TotalBins)
	assert.Equal(t, 0, route.CompletedBins)
	assert.Equal(t, 15, route.EstimatedDuration)

	bins, err := m.GetRouteBins(route.ID)
	require.NoError(t, err)
	require.Len(t, bins, 1)
	assert.Equal(t, req.ID, bins[0].RequestID)
	assert.Equal(t, 1, bins[0].SequenceOrder)
	assert.Equal(t, "Customer One", bins[0].CustomerName)
}

func TestApproveSecondRequestJoinsRoute(t *testing.T) {
	e, m := newTestEngine(t)

	first := createPaidRequest(t, e, binA, models.WasteTypeFood, tomorrow, slot1)
	a1, err := e.ApproveRequest(first.ID, operatorID, &models.ApproveRequestRequest{WorkerID: "collector-a"})
	require.NoError(t, err)

	second := createPaidRequest(t, e, binB, models.WasteTypeHazardous, tomorrow, slot2)
	a2, err := e.ApproveRequest(second.ID, operatorID, &models.ApproveRequestRequest{WorkerID: "collector-a"})
	require.NoError(t, err)

	assert.Equal(t, *a1.RouteID, *a2.RouteID, "same worker and day share one route")

	route, err := m.GetRoute(*a1.RouteID)
	require.NoError(t, err)
	assert.Equal(t, 2, route.TotalBins)
	assert.Equal(t, 40, route.EstimatedDuration)

	bins, err := m.GetRouteBins(route.ID)
	require.NoError(t, err)
	require.Len(t, bins, 2)
	assert.Equal(t, 2, bins[1].SequenceOrder)
	assert.Equal(t, models.PriorityUrgent, bins[1].Priority, "hazardous pickups jump the queue")
}

func TestApproveWorkerSlotConflict(t *testing.T) {
	e, _ := newTestEngine(t)

	first := createPaidRequest(t, e, binA, models.WasteTypeFood, tomorrow, slot1)
	_, err := e.ApproveRequest(first.ID, operatorID, &models.ApproveRequestRequest{WorkerID: "collector-a"})
	require.NoError(t, err)

	second := createPaidRequest(t, e, binB, models.WasteTypeFood, tomorrow, slot1)
	_, err = e.ApproveRequest(second.ID, operatorID, &models.ApproveRequestRequest{WorkerID: "collector-a"})
	var ce *models.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, first.ID, ce.ConflictID)

	// the same slot on a different worker is fine
	approved, err := e.ApproveRequest(second.ID, operatorID, &models.ApproveRequestRequest{WorkerID: "collector-b"})
	require.NoError(t, err)
	assert.Equal(t, "collector-b", *approved.AssignedWorkerID)
}

func TestApproveRejectsIneligibleWorker(t *testing.T) {
	e, m := newTestEngine(t)
	req := createPaidRequest(t, e, binA, models.WasteTypeFood, tomorrow, slot1)

	_, err := e.ApproveRequest(req.ID, operatorID, &models.ApproveRequestRequest{WorkerID: "nobody"})
	var nf *models.NotFoundError
	require.ErrorAs(t, err, &nf)

	_, err = e.ApproveRequest(req.ID, operatorID, &models.ApproveRequestRequest{WorkerID: operatorID})
	var ae *models.AssignmentError
	require.ErrorAs(t, err, &ae)

	inactive := &models.User{ID: "collector-x", Email: "x@test.lk", Name: "X", Role: models.RoleCollector1, Active: false}
	require.NoError(t, m.CreateUser(inactive))
	_, err = e.ApproveRequest(req.ID, operatorID, &models.ApproveRequestRequest{WorkerID: "collector-x"})
	require.ErrorAs(t, err, &ae)
}

func TestCancelPrunesRouteAndFreesSchedule(t *testing.T) {
	e, m := newTestEngine(t)

	req := createPaidRequest(t, e, binA, models.WasteTypeFood, tomorrow, slot1)
	approved, err := e.ApproveRequest(req.ID, operatorID, &models.ApproveRequestRequest{})
	require.NoError(t, err)
	routeID := *approved.RouteID

	cancelled, err := e.CancelRequest(req.ID, customerID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.RouteID)

	// the single-task route is gone, not left empty
	_, err = m.GetRoute(routeID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// the bin-day is free again for the same type
	_, err = e.CreateRequest(customerID, &models.CreateRequestRequest{
		BinID: binA, WasteType: models.WasteTypeFood, PreferredDate: tomorrow, PreferredTimeSlot: slot1,
	})
	require.NoError(t, err)
}

func TestCancelRequiresOwner(t *testing.T) {
	e, _ := newTestEngine(t)
	req := createPaidRequest(t, e, binA, models.WasteTypeFood, tomorrow, slot1)

	_, err := e.CancelRequest(req.ID, "customer-2")
	var nf *models.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestRejectOnlyPending(t *testing.T) {
	e, _ := newTestEngine(t)

	req := createPaidRequest(t, e, binA, models.WasteTypeFood, tomorrow, slot1)
	rejected, err := e.RejectRequest(req.ID, "outside service area")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCancelled, rejected.Status)
	assert.Contains(t, rejected.Notes, "outside service area")

	_, err = e.RejectRequest(req.ID, "again")
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestResetClearsAssignment(t *testing.T) {
	e, m := newTestEngine(t)

	req := createPaidRequest(t, e, binA, models.WasteTypeFood, tomorrow, slot1)
	approved, err := e.ApproveRequest(req.ID, operatorID, &models.ApproveRequestRequest{})
	require.NoError(t, err)
	routeID := *approved.RouteID

	reset, err := e.ResetRequest(req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, reset.Status)
	assert.Nil(t, reset.AssignedWorkerID)
	assert.Nil(t, reset.AssignedByID)
	assert.Nil(t, reset.AssignedAt)
	assert.Nil(t, reset.ScheduledDate)
	assert.Nil(t, reset.ScheduledTimeSlot)
	assert.Nil(t, reset.RouteID)
	assert.Equal(t, models.PaymentStatusPaid, reset.PaymentStatus, "payment survives a reset")

	_, err = m.GetRoute(routeID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// the request can go through the whole cycle again
	_, err = e.ApproveRequest(req.ID, operatorID, &models.ApproveRequestRequest{})
	require.NoError(t, err)
}

func TestRecordCollectionCompletesEverything(t *testing.T) {
	e, m := newTestEngine(t)

	req := createPaidRequest(t, e, binA, models.WasteTypeFood, tomorrow, slot1)
	approved, err := e.ApproveRequest(req.ID, operatorID, &models.ApproveRequestRequest{WorkerID: "collector-a"})
	require.NoError(t, err)

	record, err := e.RecordCollection("collector-a", &models.RecordCollectionRequest{
		RequestID: req.ID,
		Method:    models.CollectionMethodScan,
		Outcome:   models.CollectionOutcomeCollected,
	})
	require.NoError(t, err)
	assert.Equal(t, binA, record.BinID)
	assert.Equal(t, models.CollectionOutcomeCollected, record.Outcome)

	got, err := m.GetRequest(req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCompleted, got.Status)
	assert.True(t, got.IsAssigned(), "assignment is kept for the audit trail")

	bin, err := m.GetBin(binA)
	require.NoError(t, err)
	assert.Equal(t, 0, bin.FillLevel)
	assert.Equal(t, models.BinStatusEmpty, bin.Status)
	require.NotNil(t, bin.LastEmptiedAt)

	route, err := m.GetRoute(*approved.RouteID)
	require.NoError(t, err)
	assert.Equal(t, models.RouteStatusCompleted, route.Status)
	assert.Equal(t, 1, route.CompletedBins)
	require.NotNil(t, route.EndTime)
	require.NotNil(t, route.ActualDuration)
}

func TestTwoTaskRouteProgressesThroughCollections(t *testing.T) {
	e, m := newTestEngine(t)

	first := createPaidRequest(t, e, binA, models.WasteTypeFood, tomorrow, slot1)
	a1, err := e.ApproveRequest(first.ID, operatorID, &models.ApproveRequestRequest{WorkerID: "collector-a"})
	require.NoError(t, err)

	second := createPaidRequest(t, e, binB, models.WasteTypePaper, tomorrow, slot2)
	a2, err := e.ApproveRequest(second.ID, operatorID, &models.ApproveRequestRequest{WorkerID: "collector-a"})
	require.NoError(t, err)
	require.Equal(t, *a1.RouteID, *a2.RouteID)

	// first pickup starts the route but does not finish it
	_, err = e.RecordCollection("collector-a", &models.RecordCollectionRequest{
		RequestID: first.ID,
		Method:    models.CollectionMethodScan,
		Outcome:   models.CollectionOutcomeCollected,
	})
	require.NoError(t, err)

	route, err := m.GetRoute(*a1.RouteID)
	require.NoError(t, err)
	assert.Equal(t, models.RouteStatusInProgress, route.Status)
	require.NotNil(t, route.StartTime)
	assert.Equal(t, 1, route.CompletedBins)
	assert.Equal(t, 2, route.TotalBins)
	assert.Nil(t, route.EndTime)
	assert.Nil(t, route.ActualDuration)

	// second pickup finishes it
	_, err = e.RecordCollection("collector-a", &models.RecordCollectionRequest{
		RequestID: second.ID,
		Method:    models.CollectionMethodManual,
		Outcome:   models.CollectionOutcomeCollected,
	})
	require.NoError(t, err)

	route, err = m.GetRoute(*a1.RouteID)
	require.NoError(t, err)
	assert.Equal(t, models.RouteStatusCompleted, route.Status)
	assert.Equal(t, 2, route.CompletedBins)
	require.NotNil(t, route.EndTime)
	require.NotNil(t, route.ActualDuration)
}

func TestAssignSameBinTwiceIsNoOp(t *testing.T) {
	e, m := newTestEngine(t)

	first := createPaidRequest(t, e, binA, models.WasteTypeFood, tomorrow, slot1)
	a1, err := e.ApproveRequest(first.ID, operatorID, &models.ApproveRequestRequest{WorkerID: "collector-a"})
	require.NoError(t, err)

	// a different waste type on the same bin and day is a valid second
	// request; folding it into the route must not duplicate the bin stop
	second := createPaidRequest(t, e, binA, models.WasteTypePaper, tomorrow, slot2)
	a2, err := e.ApproveRequest(second.ID, operatorID, &models.ApproveRequestRequest{WorkerID: "collector-a"})
	require.NoError(t, err)

	assert.Equal(t, *a1.RouteID, *a2.RouteID)

	route, err := m.GetRoute(*a1.RouteID)
	require.NoError(t, err)
	assert.Equal(t, 1, route.TotalBins, "one stop per bin per route")

	bins, err := m.GetRouteBins(route.ID)
	require.NoError(t, err)
	require.Len(t, bins, 1)
	assert.Equal(t, first.ID, bins[0].RequestID, "the existing task is kept")
}

func TestNotificationFanOut(t *testing.T) {
	e, _ := newTestEngine(t)
	rec := &recordingNotifier{}
	e.notifier = rec

	req := createPaidRequest(t, e, binA, models.WasteTypeFood, tomorrow, slot1)

	created := rec.ofType(models.NotifyNewRequest)
	require.Len(t, created, 1, "every operator hears about a new request")
	assert.Equal(t, operatorID, created[0].UserID)
	assert.Equal(t, req.ID, created[0].RelatedID)

	approved, err := e.ApproveRequest(req.ID, operatorID, &models.ApproveRequestRequest{WorkerID: "collector-a"})
	require.NoError(t, err)

	toCustomer := rec.ofType(models.NotifyRequestApproved)
	require.Len(t, toCustomer, 1)
	assert.Equal(t, customerID, toCustomer[0].UserID)

	toCollector := rec.ofType(models.NotifyRouteAssigned)
	require.Len(t, toCollector, 1)
	assert.Equal(t, "collector-a", toCollector[0].UserID)
	assert.Equal(t, *approved.RouteID, toCollector[0].RelatedID)

	_, err = e.RecordCollection("collector-a", &models.RecordCollectionRequest{
		RequestID: req.ID,
		Method:    models.CollectionMethodScan,
		Outcome:   models.CollectionOutcomeCollected,
	})
	require.NoError(t, err)

	completed := rec.ofType(models.NotifyRequestCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, customerID, completed[0].UserID)
}

func TestRecordCollectionFailedOutcome(t *testing.T) {
	e, m := newTestEngine(t)

	req := createPaidRequest(t, e, binA, models.WasteTypeFood, tomorrow, slot1)
	approved, err := e.ApproveRequest(req.ID, operatorID, &models.ApproveRequestRequest{WorkerID: "collector-a"})
	require.NoError(t, err)

	_, err = e.RecordCollection("collector-a", &models.RecordCollectionRequest{
		RequestID: req.ID,
		Method:    models.CollectionMethodManual,
		Outcome:   models.CollectionOutcomeFailed,
	})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve, "failed outcome needs an issue")

	issue := "gate locked, no access"
	_, err = e.RecordCollection("collector-a", &models.RecordCollectionRequest{
		RequestID: req.ID,
		Method:    models.CollectionMethodManual,
		Outcome:   models.CollectionOutcomeFailed,
		Issue:     &issue,
	})
	require.NoError(t, err)

	// the request stays approved; the operator decides what happens next
	got, err := m.GetRequest(req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, got.Status)

	route, err := m.GetRoute(*approved.RouteID)
	require.NoError(t, err)
	assert.Equal(t, models.RouteStatusCompleted, route.Status, "all tasks terminal")
	assert.Equal(t, 0, route.CompletedBins)

	bin, err := m.GetBin(binA)
	require.NoError(t, err)
	assert.NotEqual(t, 0, bin.FillLevel, "failed pickup leaves the bin untouched")
}

func TestRecordCollectionWrongCollector(t *testing.T) {
	e, _ := newTestEngine(t)

	req := createPaidRequest(t, e, binA, models.WasteTypeFood, tomorrow, slot1)
	_, err := e.ApproveRequest(req.ID, operatorID, &models.ApproveRequestRequest{WorkerID: "collector-a"})
	require.NoError(t, err)

	_, err = e.RecordCollection("collector-b", &models.RecordCollectionRequest{
		RequestID: req.ID,
		Method:    models.CollectionMethodScan,
		Outcome:   models.CollectionOutcomeCollected,
	})
	var ae *models.AssignmentError
	require.ErrorAs(t, err, &ae)
}

func TestCollectionIsImmutableAuditTrail(t *testing.T) {
	e, m := newTestEngine(t)

	req := createPaidRequest(t, e, binA, models.WasteTypeFood, tomorrow, slot1)
	_, err := e.ApproveRequest(req.ID, operatorID, &models.ApproveRequestRequest{WorkerID: "collector-a"})
	require.NoError(t, err)

	issue := "bin blocked by vehicle"
	_, err = e.RecordCollection("collector-a", &models.RecordCollectionRequest{
		RequestID: req.ID, Method: models.CollectionMethodManual,
		Outcome: models.CollectionOutcomeFailed, Issue: &issue,
	})
	require.NoError(t, err)

	_, err = e.RecordCollection("collector-a", &models.RecordCollectionRequest{
		RequestID: req.ID, Method: models.CollectionMethodScan,
		Outcome: models.CollectionOutcomeCollected,
	})
	require.NoError(t, err)

	records, err := m.ListCollectionsByRequest(req.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2, "each attempt is a separate record")
}
