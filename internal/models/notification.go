package models

// Notification types emitted by the scheduling engine
const (
	NotifyRequestApproved  = "request_approved"
	NotifyRequestCompleted = "request_completed"
	NotifyRequestCancelled = "request_cancelled"
	NotifyNewRequest       = "new_request"
	NotifyRouteAssigned    = "route_assigned"
)

// FCMToken is a registered Firebase Cloud Messaging token for a user device.
type FCMToken struct {
	ID         int    `json:"id" db:"id"`
	UserID     string `json:"user_id" db:"user_id"`
	Token      string `json:"token" db:"token"`
	DeviceType string `json:"device_type" db:"device_type"` // "ios" or "android"
	CreatedAt  int64  `json:"created_at" db:"created_at"`
	UpdatedAt  int64  `json:"updated_at" db:"updated_at"`
}

// Notification is one stored outbound message. Delivery (websocket, FCM) is
// best-effort; the row is the durable record.
type Notification struct {
	ID        string `json:"id" db:"id"`
	UserID    string `json:"user_id" db:"user_id"`
	Type      string `json:"type" db:"type"`
	Title     string `json:"title" db:"title"`
	Message   string `json:"message" db:"message"`
	RelatedID string `json:"related_id" db:"related_id"`
	Read      bool   `json:"read" db:"read"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}
