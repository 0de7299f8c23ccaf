package models

import "regexp"

// Bin statuses derived from fill level
const (
	BinStatusEmpty    = "Empty"
	BinStatusHalfFull = "Half-Full"
	BinStatusFull     = "Full"
	BinStatusOverflow = "Overflow"
)

// binIDPattern matches the persisted bin identifier format, e.g. BIN-1700000000000-AB12.
var binIDPattern = regexp.MustCompile(`^BIN-\d+-[A-Z0-9]+$`)

type Bin struct {
	ID               string `json:"id" db:"id"`
	OwnerID          string `json:"owner_id" db:"owner_id"`
	Address          string `json:"address" db:"address"`
	Area             string `json:"area" db:"area"`
	FillLevel        int    `json:"fill_level" db:"fill_level"`
	Battery          int    `json:"battery" db:"battery"`
	Status           string `json:"status" db:"status"`
	NeedsMaintenance bool   `json:"needs_maintenance" db:"needs_maintenance"`
	LastEmptiedAt    *int64 `json:"last_emptied_at,omitempty" db:"last_emptied_at"`
	CreatedAt        int64  `json:"created_at" db:"created_at"`
	UpdatedAt        int64  `json:"updated_at" db:"updated_at"`
}

// BinStatusFor is the single derivation of status from fill level. Status is
// never stored independently of the level that produced it.
func BinStatusFor(fillLevel int) string {
	switch {
	case fillLevel < 40:
		return BinStatusEmpty
	case fillLevel < 80:
		return BinStatusHalfFull
	case fillLevel <= 100:
		return BinStatusFull
	default:
		return BinStatusOverflow
	}
}

// NeedsMaintenanceFor flags bins with a weak battery or overflowing fill.
func NeedsMaintenanceFor(fillLevel, battery int) bool {
	return battery < 20 || fillLevel > 100
}

// IsValidBinID reports whether id matches the persisted bin identifier format.
func IsValidBinID(id string) bool {
	return binIDPattern.MatchString(id)
}

// CreateBinRequest is the request body for POST /api/bins
type CreateBinRequest struct {
	Address   string `json:"address"`
	Area      string `json:"area"`
	FillLevel *int   `json:"fill_level,omitempty"`
	Battery   *int   `json:"battery,omitempty"`
}

// UpdateBinLevelRequest is the request body for PATCH /api/bins/{id}/level
type UpdateBinLevelRequest struct {
	FillLevel *int `json:"fill_level,omitempty"`
	Battery   *int `json:"battery,omitempty"`
}
