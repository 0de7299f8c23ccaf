package models

// RouteStatus represents the status of a collector's daily route
type RouteStatus string

const (
	RouteStatusAssigned   RouteStatus = "assigned"
	RouteStatusInProgress RouteStatus = "in_progress"
	RouteStatusCompleted  RouteStatus = "completed"
	RouteStatusCancelled  RouteStatus = "cancelled"
)

// Bin-task statuses within a route
const (
	BinTaskStatusPending    = "pending"
	BinTaskStatusInProgress = "in_progress"
	BinTaskStatusCompleted  = "completed"
	BinTaskStatusFailed     = "failed"
)

// Route is one collector's ordered set of pickup tasks for one calendar day.
// A route exists only while it has at least one bin-task; pruning the last
// task deletes the route instead of persisting it empty.
type Route struct {
	ID                string      `json:"id" db:"id"`
	CollectorID       string      `json:"collector_id" db:"collector_id"`
	Date              string      `json:"date" db:"date"` // YYYY-MM-DD
	Status            RouteStatus `json:"status" db:"status"`
	Area              string      `json:"area" db:"area"`
	TotalBins         int         `json:"total_bins" db:"total_bins"`
	CompletedBins     int         `json:"completed_bins" db:"completed_bins"`
	EstimatedDuration int         `json:"estimated_duration" db:"estimated_duration"` // minutes
	ActualDuration    *int        `json:"actual_duration,omitempty" db:"actual_duration"`
	StartTime         *int64      `json:"start_time,omitempty" db:"start_time"`
	EndTime           *int64      `json:"end_time,omitempty" db:"end_time"`
	CreatedAt         int64       `json:"created_at" db:"created_at"`
	UpdatedAt         int64       `json:"updated_at" db:"updated_at"`
}

// RouteBin is one line item within a route, linked to the originating
// request. Customer name and address are denormalized onto the task so the
// collector view survives the request disappearing out from under it.
type RouteBin struct {
	ID               int     `json:"id" db:"id"`
	RouteID          string  `json:"route_id" db:"route_id"`
	BinID            string  `json:"bin_id" db:"bin_id"`
	RequestID        string  `json:"request_id" db:"request_id"`
	Priority         string  `json:"priority" db:"priority"`
	EstimatedMinutes int     `json:"estimated_minutes" db:"estimated_minutes"`
	SequenceOrder    int     `json:"sequence_order" db:"sequence_order"`
	Status           string  `json:"status" db:"status"`
	CustomerName     string  `json:"customer_name" db:"customer_name"`
	CustomerAddress  string  `json:"customer_address" db:"customer_address"`
	CompletedAt      *int64  `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt        int64   `json:"created_at" db:"created_at"`
}

// IsActive reports whether the route can still accept or execute bin-tasks.
func (r *Route) IsActive() bool {
	return r.Status == RouteStatusAssigned || r.Status == RouteStatusInProgress
}

// RecountBins restores the count invariants from a route's task list:
// total equals the task count, completed equals the completed-task count.
func (r *Route) RecountBins(bins []RouteBin) {
	r.TotalBins = len(bins)
	completed := 0
	estimated := 0
	for _, b := range bins {
		if b.Status == BinTaskStatusCompleted {
			completed++
		}
		estimated += b.EstimatedMinutes
	}
	r.CompletedBins = completed
	r.EstimatedDuration = estimated
}

// RouteWithBins is the collector-facing view of a route and its tasks.
type RouteWithBins struct {
	Route
	Bins []RouteBin `json:"bins"`
}
