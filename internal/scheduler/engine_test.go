package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/store"
)

var testNow = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

const (
	binA = "BIN-1700000000001-TSTA"
	binB = "BIN-1700000000002-TSTB"
	binC = "BIN-1700000000003-TSTC"
	binD = "BIN-1700000000004-TSTD"
	binE = "BIN-1700000000005-TSTE"

	customerID = "customer-1"
	operatorID = "operator-1"

	tomorrow = "2026-09-02"
	slot1    = "08:00-10:00"
	slot2    = "10:00-12:00"
	slot3    = "12:00-14:00"
)

// newTestEngine builds an engine over a seeded in-memory store with one
// customer, one operator and three active collectors.
func newTestEngine(t *testing.T, opts ...Option) (*Engine, *store.Memory) {
	t.Helper()
	m := store.NewMemory()

	users := []models.User{
		{ID: operatorID, Email: "op@test.lk", Name: "Op", Role: models.RoleOperator, Active: true},
		{ID: "collector-a", Email: "a@test.lk", Name: "Collector A", Role: models.RoleCollector1, Active: true},
		{ID: "collector-b", Email: "b@test.lk", Name: "Collector B", Role: models.RoleCollector2, Active: true},
		{ID: "collector-c", Email: "c@test.lk", Name: "Collector C", Role: models.RoleCollector3, Active: true},
		{ID: customerID, Email: "cust@test.lk", Name: "Customer One", Role: models.RoleCustomer, Address: "42 Galle Road"},
	}
	for i := range users {
		users[i].CreatedAt = testNow.Unix()
		users[i].UpdatedAt = testNow.Unix()
		require.NoError(t, m.CreateUser(&users[i]))
	}

	for _, id := range []string{binA, binB, binC, binD, binE} {
		require.NoError(t, m.CreateBin(&models.Bin{
			ID:        id,
			OwnerID:   customerID,
			Address:   "42 Galle Road",
			Area:      "Colombo 04",
			FillLevel: 10,
			Battery:   100,
			Status:    models.BinStatusFor(10),
			CreatedAt: testNow.Unix(),
			UpdatedAt: testNow.Unix(),
		}))
	}

	clock := func() time.Time { return testNow }
	e := New(m, nil, append([]Option{WithClock(clock)}, opts...)...)
	return e, m
}

type recordedEvent struct {
	UserID    string
	Type      string
	RelatedID string
}

// recordingNotifier captures published events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingNotifier) Publish(userID, typ, title, message, relatedID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{UserID: userID, Type: typ, RelatedID: relatedID})
}

func (r *recordingNotifier) PublishToRole(users []models.User, typ, title, message, relatedID string) {
	for _, u := range users {
		r.Publish(u.ID, typ, title, message, relatedID)
	}
}

func (r *recordingNotifier) ofType(typ string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []recordedEvent{}
	for _, ev := range r.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// createPaidRequest creates a request and simulates the payment callback.
func createPaidRequest(t *testing.T, e *Engine, binID, wasteType, date, slot string) *models.WasteRequest {
	t.Helper()
	req, err := e.CreateRequest(customerID, &models.CreateRequestRequest{
		BinID:             binID,
		WasteType:         wasteType,
		PreferredDate:     date,
		PreferredTimeSlot: slot,
	})
	require.NoError(t, err)
	paid, err := e.MarkRequestPaid(req.ID, customerID)
	require.NoError(t, err)
	return paid
}
