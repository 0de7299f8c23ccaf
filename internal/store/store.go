// Package store defines the persistence surface the scheduling engine runs
// against. The engine only sees these interfaces; Postgres backs them in
// production and the in-memory implementation backs the engine tests.
package store

import (
	"errors"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
)

// ErrNotFound is returned by all Get/Find methods when no row matches.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicateID is returned when an insert collides on a primary key.
var ErrDuplicateID = errors.New("store: duplicate id")

// RequestFilter narrows operator request listings.
type RequestFilter struct {
	Status   models.RequestStatus
	UserID   string
	WorkerID string
	Date     string // scheduled date, YYYY-MM-DD
}

type RequestStore interface {
	CreateRequest(req *models.WasteRequest) error
	GetRequest(id string) (*models.WasteRequest, error)
	UpdateRequest(req *models.WasteRequest) error
	ListRequests(f RequestFilter) ([]models.WasteRequest, error)

	// FindBinConflict returns an active (pending/approved) request for the
	// same bin, same waste type and same preferred day, excluding excludeID.
	FindBinConflict(binID, wasteType, date, excludeID string) (*models.WasteRequest, error)

	// FindWorkerSlotConflict returns an approved/completed request already
	// assigned to the worker for the same scheduled day and time slot.
	FindWorkerSlotConflict(workerID, date, slot, excludeID string) (*models.WasteRequest, error)

	// ListAssignedRequests returns approved/completed requests scheduled for
	// the worker on the given day.
	ListAssignedRequests(workerID, date string) ([]models.WasteRequest, error)

	// CountActiveForBinOnDate counts pending/approved requests for a bin on
	// a preferred day.
	CountActiveForBinOnDate(binID, date string) (int, error)

	// HasCompletedForBinOnDate reports whether the bin already had a request
	// completed on the given day.
	HasCompletedForBinOnDate(binID, date string) (bool, error)
}

type RouteStore interface {
	CreateRoute(route *models.Route, bins []models.RouteBin) error
	GetRoute(id string) (*models.Route, error)
	UpdateRoute(route *models.Route) error
	DeleteRoute(id string) error
	ListRoutes(date string) ([]models.Route, error)

	// FindActiveRoute returns the assigned/in_progress route for a
	// (collector, date) pair, if any.
	FindActiveRoute(collectorID, date string) (*models.Route, error)

	// FindRouteByRequest scans for the route holding a bin-task for the
	// request. Fallback for stale request.routeId references.
	FindRouteByRequest(requestID string) (*models.Route, error)

	GetRouteBins(routeID string) ([]models.RouteBin, error)
	AddRouteBin(bin *models.RouteBin) error
	UpdateRouteBin(bin *models.RouteBin) error
	RemoveRouteBin(routeID, requestID string) error

	// CountRoutes counts routes of any status assigned to the collector on
	// the given day. Feeds the load score.
	CountRoutes(collectorID, date string) (int, error)
}

type BinStore interface {
	CreateBin(bin *models.Bin) error
	GetBin(id string) (*models.Bin, error)
	UpdateBin(bin *models.Bin) error
	ListBins() ([]models.Bin, error)
}

type UserStore interface {
	CreateUser(user *models.User) error
	GetUser(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)

	// ListActiveCollectors returns active users holding a collection role,
	// ordered by id for deterministic tie-breaking.
	ListActiveCollectors() ([]models.User, error)

	ListUsersByRole(role string) ([]models.User, error)
}

type CollectionStore interface {
	CreateCollection(c *models.Collection) error
	ListCollectionsByRequest(requestID string) ([]models.Collection, error)
	ListCollectionsByCollector(collectorID string) ([]models.Collection, error)
}

type NotificationStore interface {
	CreateNotification(n *models.Notification) error
	ListNotificationsByUser(userID string) ([]models.Notification, error)
	MarkNotificationRead(id, userID string) error

	SaveFCMToken(t *models.FCMToken) error
	LatestFCMToken(userID string) (string, error)
}

// Store is the full persistence surface consumed by the engine and handlers.
type Store interface {
	RequestStore
	RouteStore
	BinStore
	UserStore
	CollectionStore
	NotificationStore
}
