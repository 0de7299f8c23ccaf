package models

// Collection methods
const (
	CollectionMethodScan   = "scan"
	CollectionMethodManual = "manual"
)

// Collection outcomes
const (
	CollectionOutcomeCollected = "collected"
	CollectionOutcomeFailed    = "failed"
)

// Collection is the immutable audit record of a single pickup attempt.
// Created once per attempt and never mutated afterward.
type Collection struct {
	ID          string  `json:"id" db:"id"`
	RequestID   string  `json:"request_id" db:"request_id"`
	BinID       string  `json:"bin_id" db:"bin_id"`
	CollectorID string  `json:"collector_id" db:"collector_id"`
	Method      string  `json:"method" db:"method"`
	Outcome     string  `json:"outcome" db:"outcome"`
	Issue       *string `json:"issue,omitempty" db:"issue"`
	CollectedAt int64   `json:"collected_at" db:"collected_at"`
}

// RecordCollectionRequest is the request body for POST /api/collector/collections
type RecordCollectionRequest struct {
	RequestID string  `json:"request_id"`
	Method    string  `json:"method"`
	Outcome   string  `json:"outcome"`
	Issue     *string `json:"issue,omitempty"`
}

// IsValidCollectionMethod reports whether m is scan or manual.
func IsValidCollectionMethod(m string) bool {
	return m == CollectionMethodScan || m == CollectionMethodManual
}

// IsValidCollectionOutcome reports whether o is collected or failed.
func IsValidCollectionOutcome(o string) bool {
	return o == CollectionOutcomeCollected || o == CollectionOutcomeFailed
}
