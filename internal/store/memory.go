package store

import (
	"sort"
	"sync"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
)

// Memory is an in-process Store used by the engine tests. Values are copied
// on the way in and out so callers never share memory with the store.
type Memory struct {
	mu            sync.RWMutex
	requests      map[string]models.WasteRequest
	routes        map[string]models.Route
	routeBins     map[string][]models.RouteBin // keyed by route id
	bins          map[string]models.Bin
	users         map[string]models.User
	collections   map[string]models.Collection
	notifications map[string]models.Notification
	fcmTokens     []models.FCMToken
	nextRouteBin  int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		requests:      make(map[string]models.WasteRequest),
		routes:        make(map[string]models.Route),
		routeBins:     make(map[string][]models.RouteBin),
		bins:          make(map[string]models.Bin),
		users:         make(map[string]models.User),
		collections:   make(map[string]models.Collection),
		notifications: make(map[string]models.Notification),
		nextRouteBin:  1,
	}
}

// ─── requests ───

func (m *Memory) CreateRequest(req *models.WasteRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[req.ID]; ok {
		return ErrDuplicateID
	}
	m.requests[req.ID] = *req
	return nil
}

func (m *Memory) GetRequest(id string) (*models.WasteRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := req
	return &out, nil
}

func (m *Memory) UpdateRequest(req *models.WasteRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[req.ID]; !ok {
		return ErrNotFound
	}
	m.requests[req.ID] = *req
	return nil
}

func (m *Memory) ListRequests(f RequestFilter) ([]models.WasteRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.WasteRequest{}
	for _, req := range m.requests {
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		if f.UserID != "" && req.UserID != f.UserID {
			continue
		}
		if f.WorkerID != "" && (req.AssignedWorkerID == nil || *req.AssignedWorkerID != f.WorkerID) {
			continue
		}
		if f.Date != "" && (req.ScheduledDate == nil || *req.ScheduledDate != f.Date) {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *Memory) FindBinConflict(binID, wasteType, date, excludeID string) (*models.WasteRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var found *models.WasteRequest
	for _, req := range m.requests {
		if req.ID == excludeID || req.BinID != binID || req.WasteType != wasteType {
			continue
		}
		if req.PreferredDate != date || !req.IsActive() {
			continue
		}
		r := req
		if found == nil || r.CreatedAt < found.CreatedAt {
			found = &r
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (m *Memory) FindWorkerSlotConflict(workerID, date, slot, excludeID string) (*models.WasteRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var found *models.WasteRequest
	for _, req := range m.requests {
		if req.ID == excludeID {
			continue
		}
		if req.Status != models.RequestStatusApproved && req.Status != models.RequestStatusCompleted {
			continue
		}
		if req.AssignedWorkerID == nil || *req.AssignedWorkerID != workerID {
			continue
		}
		if req.ScheduledDate == nil || *req.ScheduledDate != date {
			continue
		}
		if req.ScheduledTimeSlot == nil || *req.ScheduledTimeSlot != slot {
			continue
		}
		r := req
		if found == nil || (r.AssignedAt != nil && found.AssignedAt != nil && *r.AssignedAt < *found.AssignedAt) {
			found = &r
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (m *Memory) ListAssignedRequests(workerID, date string) ([]models.WasteRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.WasteRequest{}
	for _, req := range m.requests {
		if req.Status != models.RequestStatusApproved && req.Status != models.RequestStatusCompleted {
			continue
		}
		if req.AssignedWorkerID == nil || *req.AssignedWorkerID != workerID {
			continue
		}
		if req.ScheduledDate == nil || *req.ScheduledDate != date {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := "", ""
		if out[i].ScheduledTimeSlot != nil {
			a = *out[i].ScheduledTimeSlot
		}
		if out[j].ScheduledTimeSlot != nil {
			b = *out[j].ScheduledTimeSlot
		}
		return a < b
	})
	return out, nil
}

func (m *Memory) CountActiveForBinOnDate(binID, date string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, req := range m.requests {
		if req.BinID == binID && req.PreferredDate == date && req.IsActive() {
			count++
		}
	}
	return count, nil
}

func (m *Memory) HasCompletedForBinOnDate(binID, date string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, req := range m.requests {
		if req.BinID == binID && req.PreferredDate == date && req.Status == models.RequestStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

// ─── routes ───

func (m *Memory) CreateRoute(route *models.Route, bins []models.RouteBin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routes[route.ID]; ok {
		return ErrDuplicateID
	}
	m.routes[route.ID] = *route
	stored := make([]models.RouteBin, len(bins))
	for i, b := range bins {
		b.ID = m.nextRouteBin
		m.nextRouteBin++
		stored[i] = b
	}
	m.routeBins[route.ID] = stored
	return nil
}

func (m *Memory) GetRoute(id string) (*models.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	route, ok := m.routes[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := route
	return &out, nil
}

func (m *Memory) UpdateRoute(route *models.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routes[route.ID]; !ok {
		return ErrNotFound
	}
	m.routes[route.ID] = *route
	return nil
}

func (m *Memory) DeleteRoute(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routes[id]; !ok {
		return ErrNotFound
	}
	delete(m.routes, id)
	delete(m.routeBins, id)
	return nil
}

func (m *Memory) ListRoutes(date string) ([]models.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Route{}
	for _, route := range m.routes {
		if date != "" && route.Date != date {
			continue
		}
		out = append(out, route)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *Memory) FindActiveRoute(collectorID, date string) (*models.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, route := range m.routes {
		if route.CollectorID == collectorID && route.Date == date && route.IsActive() {
			out := route
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindRouteByRequest(requestID string) (*models.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for routeID, bins := range m.routeBins {
		for _, b := range bins {
			if b.RequestID == requestID {
				route := m.routes[routeID]
				return &route, nil
			}
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetRouteBins(routeID string) ([]models.RouteBin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bins := m.routeBins[routeID]
	out := make([]models.RouteBin, len(bins))
	copy(out, bins)
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceOrder < out[j].SequenceOrder })
	return out, nil
}

func (m *Memory) AddRouteBin(bin *models.RouteBin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routes[bin.RouteID]; !ok {
		return ErrNotFound
	}
	bin.ID = m.nextRouteBin
	m.nextRouteBin++
	m.routeBins[bin.RouteID] = append(m.routeBins[bin.RouteID], *bin)
	return nil
}

func (m *Memory) UpdateRouteBin(bin *models.RouteBin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bins := m.routeBins[bin.RouteID]
	for i := range bins {
		if bins[i].ID == bin.ID {
			bins[i] = *bin
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) RemoveRouteBin(routeID, requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bins := m.routeBins[routeID]
	for i := range bins {
		if bins[i].RequestID == requestID {
			m.routeBins[routeID] = append(bins[:i], bins[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) CountRoutes(collectorID, date string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, route := range m.routes {
		if route.CollectorID == collectorID && route.Date == date {
			count++
		}
	}
	return count, nil
}

// ─── bins ───

func (m *Memory) CreateBin(bin *models.Bin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bins[bin.ID]; ok {
		return ErrDuplicateID
	}
	m.bins[bin.ID] = *bin
	return nil
}

func (m *Memory) GetBin(id string) (*models.Bin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bin, ok := m.bins[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := bin
	return &out, nil
}

func (m *Memory) UpdateBin(bin *models.Bin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bins[bin.ID]; !ok {
		return ErrNotFound
	}
	m.bins[bin.ID] = *bin
	return nil
}

func (m *Memory) ListBins() ([]models.Bin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Bin{}
	for _, bin := range m.bins {
		out = append(out, bin)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ─── users ───

func (m *Memory) CreateUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; ok {
		return ErrDuplicateID
	}
	m.users[user.ID] = *user
	return nil
}

func (m *Memory) GetUser(id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := user
	return &out, nil
}

func (m *Memory) GetUserByEmail(email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Email == email {
			out := user
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListActiveCollectors() ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.User{}
	for _, user := range m.users {
		if user.Active && models.IsCollector(user.Role) {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListUsersByRole(role string) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.User{}
	for _, user := range m.users {
		if user.Role == role {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ─── collections ───

func (m *Memory) CreateCollection(c *models.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[c.ID]; ok {
		return ErrDuplicateID
	}
	m.collections[c.ID] = *c
	return nil
}

func (m *Memory) ListCollectionsByRequest(requestID string) ([]models.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Collection{}
	for _, c := range m.collections {
		if c.RequestID == requestID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CollectedAt > out[j].CollectedAt })
	return out, nil
}

func (m *Memory) ListCollectionsByCollector(collectorID string) ([]models.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Collection{}
	for _, c := range m.collections {
		if c.CollectorID == collectorID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CollectedAt > out[j].CollectedAt })
	return out, nil
}

// ─── notifications ───

func (m *Memory) CreateNotification(n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notifications[n.ID]; ok {
		return ErrDuplicateID
	}
	m.notifications[n.ID] = *n
	return nil
}

func (m *Memory) ListNotificationsByUser(userID string) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Notification{}
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *Memory) SaveFCMToken(t *models.FCMToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.fcmTokens {
		if m.fcmTokens[i].Token == t.Token {
			m.fcmTokens[i] = *t
			return nil
		}
	}
	m.fcmTokens = append(m.fcmTokens, *t)
	return nil
}

func (m *Memory) LatestFCMToken(userID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *models.FCMToken
	for i := range m.fcmTokens {
		t := m.fcmTokens[i]
		if t.UserID != userID {
			continue
		}
		if best == nil || t.CreatedAt > best.CreatedAt {
			best = &t
		}
	}
	if best == nil {
		return "", ErrNotFound
	}
	return best.Token, nil
}

func (m *Memory) MarkNotificationRead(id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	n.Read = true
	m.notifications[id] = n
	return nil
}
