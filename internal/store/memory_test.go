package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
)

func TestRequestCRUD(t *testing.T) {
	m := NewMemory()

	_, err := m.GetRequest("WR-1-none")
	assert.ErrorIs(t, err, ErrNotFound)

	req := &models.WasteRequest{ID: "WR-1-aaaaaa", UserID: "u1", BinID: "BIN-1-A", WasteType: "food", PreferredDate: "2026-09-02", Status: models.RequestStatusPending, PaymentStatus: models.PaymentStatusPending}
	require.NoError(t, m.CreateRequest(req))
	assert.ErrorIs(t, m.CreateRequest(req), ErrDuplicateID)

	got, err := m.GetRequest(req.ID)
	require.NoError(t, err)
	assert.Equal(t, "food", got.WasteType)

	// returned values are copies, not aliases into the store
	got.WasteType = "paper"
	again, err := m.GetRequest(req.ID)
	require.NoError(t, err)
	assert.Equal(t, "food", again.WasteType)

	got.WasteType = "paper"
	require.NoError(t, m.UpdateRequest(got))
	updated, err := m.GetRequest(req.ID)
	require.NoError(t, err)
	assert.Equal(t, "paper", updated.WasteType)
}

func TestListRequestsFilter(t *testing.T) {
	m := NewMemory()
	worker := "collector-a"
	date := "2026-09-02"
	reqs := []models.WasteRequest{
		{ID: "WR-1-a", UserID: "u1", Status: models.RequestStatusPending, CreatedAt: 1},
		{ID: "WR-2-b", UserID: "u1", Status: models.RequestStatusApproved, AssignedWorkerID: &worker, ScheduledDate: &date, CreatedAt: 2},
		{ID: "WR-3-c", UserID: "u2", Status: models.RequestStatusPending, CreatedAt: 3},
	}
	for i := range reqs {
		require.NoError(t, m.CreateRequest(&reqs[i]))
	}

	all, err := m.ListRequests(RequestFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "WR-3-c", all[0].ID, "newest first")

	mine, err := m.ListRequests(RequestFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	pending, err := m.ListRequests(RequestFilter{Status: models.RequestStatusPending, UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	assigned, err := m.ListRequests(RequestFilter{WorkerID: worker, Date: date})
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "WR-2-b", assigned[0].ID)
}

func TestRouteBinsLifecycle(t *testing.T) {
	m := NewMemory()

	route := &models.Route{ID: "ROUTE-20260902-1-x", CollectorID: "c1", Date: "2026-09-02", Status: models.RouteStatusAssigned}
	seed := []models.RouteBin{{RouteID: route.ID, BinID: "BIN-1-A", RequestID: "WR-1-a", SequenceOrder: 1, Status: models.BinTaskStatusPending}}
	require.NoError(t, m.CreateRoute(route, seed))

	extra := &models.RouteBin{RouteID: route.ID, BinID: "BIN-2-B", RequestID: "WR-2-b", SequenceOrder: 2, Status: models.BinTaskStatusPending}
	require.NoError(t, m.AddRouteBin(extra))
	assert.NotZero(t, extra.ID, "insert assigns the task id")

	bins, err := m.GetRouteBins(route.ID)
	require.NoError(t, err)
	require.Len(t, bins, 2)
	assert.Equal(t, 1, bins[0].SequenceOrder)

	found, err := m.FindRouteByRequest("WR-2-b")
	require.NoError(t, err)
	assert.Equal(t, route.ID, found.ID)

	require.NoError(t, m.RemoveRouteBin(route.ID, "WR-1-a"))
	assert.ErrorIs(t, m.RemoveRouteBin(route.ID, "WR-1-a"), ErrNotFound)

	require.NoError(t, m.DeleteRoute(route.ID))
	_, err = m.FindRouteByRequest("WR-2-b")
	assert.ErrorIs(t, err, ErrNotFound, "tasks go with the route")
}

func TestActiveRouteLookup(t *testing.T) {
	m := NewMemory()

	done := &models.Route{ID: "ROUTE-1", CollectorID: "c1", Date: "2026-09-02", Status: models.RouteStatusCompleted}
	require.NoError(t, m.CreateRoute(done, nil))
	_, err := m.FindActiveRoute("c1", "2026-09-02")
	assert.ErrorIs(t, err, ErrNotFound, "completed routes are not active")

	open := &models.Route{ID: "ROUTE-2", CollectorID: "c1", Date: "2026-09-02", Status: models.RouteStatusInProgress}
	require.NoError(t, m.CreateRoute(open, nil))
	found, err := m.FindActiveRoute("c1", "2026-09-02")
	require.NoError(t, err)
	assert.Equal(t, "ROUTE-2", found.ID)

	count, err := m.CountRoutes("c1", "2026-09-02")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "load score counts routes of any status")
}

func TestListActiveCollectorsOrdering(t *testing.T) {
	m := NewMemory()
	users := []models.User{
		{ID: "z-collector", Role: models.RoleCollector1, Active: true},
		{ID: "a-collector", Role: models.RoleCollector2, Active: true},
		{ID: "m-collector", Role: models.RoleCollector3, Active: false},
		{ID: "operator", Role: models.RoleOperator, Active: true},
	}
	for i := range users {
		require.NoError(t, m.CreateUser(&users[i]))
	}

	collectors, err := m.ListActiveCollectors()
	require.NoError(t, err)
	require.Len(t, collectors, 2)
	assert.Equal(t, "a-collector", collectors[0].ID)
	assert.Equal(t, "z-collector", collectors[1].ID)
}

func TestNotificationsAndTokens(t *testing.T) {
	m := NewMemory()

	n := &models.Notification{ID: "n1", UserID: "u1", Type: "request_approved", Title: "t", Message: "m"}
	require.NoError(t, m.CreateNotification(n))

	assert.ErrorIs(t, m.MarkNotificationRead("n1", "u2"), ErrNotFound, "scoped to the owner")
	require.NoError(t, m.MarkNotificationRead("n1", "u1"))

	list, err := m.ListNotificationsByUser("u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)

	_, err = m.LatestFCMToken("u1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.SaveFCMToken(&models.FCMToken{UserID: "u1", Token: "tok-1", CreatedAt: 1}))
	require.NoError(t, m.SaveFCMToken(&models.FCMToken{UserID: "u1", Token: "tok-2", CreatedAt: 2}))
	// re-registering an existing token moves it to another user
	require.NoError(t, m.SaveFCMToken(&models.FCMToken{UserID: "u2", Token: "tok-2", CreatedAt: 3}))

	token, err := m.LatestFCMToken("u1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}
