package scheduler

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
)

// Parallel approvals aiming at the same worker, day and slot must resolve to
// exactly one assignment; the rest see the conflict.
func TestConcurrentApprovalsSameSlot(t *testing.T) {
	e, m := newTestEngine(t)

	bins := []string{binA, binB, binC, binD, binE}
	reqIDs := make([]string, len(bins))
	for i, bin := range bins {
		req := createPaidRequest(t, e, bin, models.WasteTypeFood, tomorrow, slot1)
		reqIDs[i] = req.ID
	}

	var wg sync.WaitGroup
	results := make([]error, len(reqIDs))
	for i, id := range reqIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, err := e.ApproveRequest(id, operatorID, &models.ApproveRequestRequest{WorkerID: "collector-a"})
			results[i] = err
		}(i, id)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		var ce *models.ConflictError
		require.True(t, errors.As(err, &ce), "unexpected error: %v", err)
		conflicts++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, len(reqIDs)-1, conflicts)

	// the surviving route holds exactly one task
	route, err := m.FindActiveRoute("collector-a", tomorrow)
	require.NoError(t, err)
	assert.Equal(t, 1, route.TotalBins)
}

// Parallel submissions for the same bin, type and day must resolve to exactly
// one created request.
func TestConcurrentCreatesSameBin(t *testing.T) {
	e, _ := newTestEngine(t)

	const n = 8
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := e.CreateRequest(customerID, &models.CreateRequestRequest{
				BinID:             binA,
				WasteType:         models.WasteTypePolythene,
				PreferredDate:     tomorrow,
				PreferredTimeSlot: slot1,
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		var ce *models.ConflictError
		require.True(t, errors.As(err, &ce), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, wins)
}

// Distinct slots on the same worker and day serialize through the same lock
// but must all succeed.
func TestConcurrentApprovalsDistinctSlots(t *testing.T) {
	e, m := newTestEngine(t)

	bins := []string{binA, binB, binC}
	slots := []string{slot1, slot2, slot3}
	reqIDs := make([]string, len(bins))
	for i, bin := range bins {
		req := createPaidRequest(t, e, bin, models.WasteTypeFood, tomorrow, slots[i])
		reqIDs[i] = req.ID
	}

	var wg sync.WaitGroup
	results := make([]error, len(reqIDs))
	for i, id := range reqIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, err := e.ApproveRequest(id, operatorID, &models.ApproveRequestRequest{WorkerID: "collector-b"})
			results[i] = err
		}(i, id)
	}
	wg.Wait()

	for _, err := range results {
		require.NoError(t, err)
	}

	route, err := m.FindActiveRoute("collector-b", tomorrow)
	require.NoError(t, err)
	assert.Equal(t, 3, route.TotalBins)

	bins2, err := m.GetRouteBins(route.ID)
	require.NoError(t, err)
	seen := map[int]bool{}
	for _, b := range bins2 {
		assert.False(t, seen[b.SequenceOrder], "duplicate sequence %d", b.SequenceOrder)
		seen[b.SequenceOrder] = true
	}
}
