package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to RequestStatus
		want     bool
	}{
		{RequestStatusPending, RequestStatusApproved, true},
		{RequestStatusPending, RequestStatusCancelled, true},
		{RequestStatusPending, RequestStatusCompleted, false},
		{RequestStatusApproved, RequestStatusCompleted, true},
		{RequestStatusApproved, RequestStatusCancelled, true},
		{RequestStatusApproved, RequestStatusPending, true},
		{RequestStatusCompleted, RequestStatusPending, true},
		{RequestStatusCompleted, RequestStatusApproved, false},
		{RequestStatusCancelled, RequestStatusPending, true},
		{RequestStatusCancelled, RequestStatusApproved, false},
		{RequestStatusCancelled, RequestStatusCompleted, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestBinStatusThresholds(t *testing.T) {
	assert.Equal(t, BinStatusEmpty, BinStatusFor(0))
	assert.Equal(t, BinStatusEmpty, BinStatusFor(39))
	assert.Equal(t, BinStatusHalfFull, BinStatusFor(40))
	assert.Equal(t, BinStatusHalfFull, BinStatusFor(79))
	assert.Equal(t, BinStatusFull, BinStatusFor(80))
	assert.Equal(t, BinStatusFull, BinStatusFor(100))
	assert.Equal(t, BinStatusOverflow, BinStatusFor(101))
}

func TestNeedsMaintenance(t *testing.T) {
	assert.False(t, NeedsMaintenanceFor(50, 80))
	assert.True(t, NeedsMaintenanceFor(50, 19), "weak battery")
	assert.True(t, NeedsMaintenanceFor(105, 80), "overflowing bin")
	assert.False(t, NeedsMaintenanceFor(100, 20))
}

func TestPriorityFor(t *testing.T) {
	assert.Equal(t, PriorityUrgent, PriorityFor(WasteTypeHazardous, 0))
	assert.Equal(t, PriorityUrgent, PriorityFor(WasteTypeFood, 91))
	assert.Equal(t, PriorityHigh, PriorityFor(WasteTypeEwaste, 0))
	assert.Equal(t, PriorityHigh, PriorityFor(WasteTypePaper, 71))
	assert.Equal(t, PriorityNormal, PriorityFor(WasteTypeFood, 70))
	assert.Equal(t, PriorityNormal, PriorityFor(WasteTypePolythene, 50))
}

func TestWasteTypeCatalog(t *testing.T) {
	assert.Len(t, WasteTypes, 5)
	assert.Equal(t, 250.0, WasteTypes[WasteTypeFood].BaseCost)
	assert.Equal(t, 25, WasteTypes[WasteTypeHazardous].EstimatedMinutes)
	assert.True(t, IsValidWasteType("ewaste"))
	assert.False(t, IsValidWasteType("glass"))
}

func TestTimeSlots(t *testing.T) {
	assert.Len(t, TimeSlots, 5)
	assert.True(t, IsValidTimeSlot("08:00-10:00"))
	assert.True(t, IsValidTimeSlot("16:00-18:00"))
	assert.False(t, IsValidTimeSlot("18:00-20:00"))
	assert.False(t, IsValidTimeSlot("8:00-10:00"))
}

func TestIsValidBinID(t *testing.T) {
	assert.True(t, IsValidBinID("BIN-1700000000000-AB12"))
	assert.True(t, IsValidBinID("BIN-1-Z"))
	assert.False(t, IsValidBinID("BIN-1700000000000-ab12"), "lowercase suffix")
	assert.False(t, IsValidBinID("WR-1700000000000-AB12"))
	assert.False(t, IsValidBinID("BIN--AB12"))
}

func TestRouteRecountBins(t *testing.T) {
	route := Route{TotalBins: 99, CompletedBins: 99, EstimatedDuration: 99}
	route.RecountBins([]RouteBin{
		{Status: BinTaskStatusCompleted, EstimatedMinutes: 15},
		{Status: BinTaskStatusPending, EstimatedMinutes: 10},
		{Status: BinTaskStatusFailed, EstimatedMinutes: 25},
	})
	assert.Equal(t, 3, route.TotalBins)
	assert.Equal(t, 1, route.CompletedBins)
	assert.Equal(t, 50, route.EstimatedDuration)
}

func TestIsAssigned(t *testing.T) {
	worker := "collector-001"
	date := "2026-09-02"
	slot := "08:00-10:00"

	req := WasteRequest{Status: RequestStatusApproved}
	assert.False(t, req.IsAssigned())

	req.AssignedWorkerID = &worker
	req.ScheduledDate = &date
	assert.False(t, req.IsAssigned())

	req.ScheduledTimeSlot = &slot
	assert.True(t, req.IsAssigned())
}
