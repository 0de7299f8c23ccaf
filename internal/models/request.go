package models

// RequestStatus represents the lifecycle status of a waste request
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// PaymentStatus represents the externally-driven payment state
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// WasteRequest is one customer pickup ask. Requests are never deleted, only
// transitioned between statuses.
type WasteRequest struct {
	ID                string        `json:"id" db:"id"`
	UserID            string        `json:"user_id" db:"user_id"`
	BinID             string        `json:"bin_id" db:"bin_id"`
	WasteType         string        `json:"waste_type" db:"waste_type"`
	PreferredDate     string        `json:"preferred_date" db:"preferred_date"` // YYYY-MM-DD
	PreferredTimeSlot string        `json:"preferred_time_slot" db:"preferred_time_slot"`
	Status            RequestStatus `json:"status" db:"status"`
	PaymentStatus     PaymentStatus `json:"payment_status" db:"payment_status"`
	Cost              float64       `json:"cost" db:"cost"`
	AssignedWorkerID  *string       `json:"assigned_worker_id,omitempty" db:"assigned_worker_id"`
	AssignedByID      *string       `json:"assigned_by_id,omitempty" db:"assigned_by_id"`
	AssignedAt        *int64        `json:"assigned_at,omitempty" db:"assigned_at"`
	ScheduledDate     *string       `json:"scheduled_date,omitempty" db:"scheduled_date"`
	ScheduledTimeSlot *string       `json:"scheduled_time_slot,omitempty" db:"scheduled_time_slot"`
	RouteID           *string       `json:"route_id,omitempty" db:"route_id"`
	Notes             string        `json:"notes" db:"notes"`
	CreatedAt         int64         `json:"created_at" db:"created_at"`
	UpdatedAt         int64         `json:"updated_at" db:"updated_at"`
}

// requestTransitions is the single source of truth for allowed status moves.
// The reset paths back to pending are the administrative escape hatch; the
// lifecycle manager clears all assignment fields when taking them.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending:   {RequestStatusApproved, RequestStatusCancelled},
	RequestStatusApproved:  {RequestStatusCompleted, RequestStatusCancelled, RequestStatusPending},
	RequestStatusCompleted: {RequestStatusPending},
	RequestStatusCancelled: {RequestStatusPending},
}

// CanTransition reports whether a request may move from one status to another.
func CanTransition(from, to RequestStatus) bool {
	for _, t := range requestTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// IsActive reports whether the request still holds a bin-schedule commitment.
func (r *WasteRequest) IsActive() bool {
	return r.Status == RequestStatusPending || r.Status == RequestStatusApproved
}

// IsAssigned reports whether the request carries a full assignment: worker,
// scheduled date and time slot all set. Holds exactly when status is approved
// (or completed, which preserves the assignment for the audit trail).
func (r *WasteRequest) IsAssigned() bool {
	return r.AssignedWorkerID != nil && r.ScheduledDate != nil && r.ScheduledTimeSlot != nil
}

// CreateRequestRequest is the request body for POST /api/requests
type CreateRequestRequest struct {
	BinID             string `json:"bin_id"`
	WasteType         string `json:"waste_type"`
	PreferredDate     string `json:"preferred_date"`
	PreferredTimeSlot string `json:"preferred_time_slot"`
}

// ApproveRequestRequest is the request body for POST /api/operator/requests/{id}/approve.
// WorkerID is optional: when empty the load balancer picks the least-loaded
// eligible collector.
type ApproveRequestRequest struct {
	WorkerID      string `json:"worker_id,omitempty"`
	ScheduledDate string `json:"scheduled_date,omitempty"`
	TimeSlot      string `json:"time_slot,omitempty"`
	Notes         string `json:"notes,omitempty"`
}
