package models

// Waste collection types
const (
	WasteTypeFood      = "food"
	WasteTypePolythene = "polythene"
	WasteTypePaper     = "paper"
	WasteTypeHazardous = "hazardous"
	WasteTypeEwaste    = "ewaste"
)

// WasteTypeInfo holds the per-type pricing and effort figures used when a
// request is created and when its bin-task is appended to a route.
type WasteTypeInfo struct {
	BaseCost         float64 `json:"base_cost"`
	EstimatedMinutes int     `json:"estimated_minutes"`
}

// WasteTypes is the closed set of supported collection types.
var WasteTypes = map[string]WasteTypeInfo{
	WasteTypeFood:      {BaseCost: 250, EstimatedMinutes: 15},
	WasteTypePolythene: {BaseCost: 200, EstimatedMinutes: 12},
	WasteTypePaper:     {BaseCost: 150, EstimatedMinutes: 10},
	WasteTypeHazardous: {BaseCost: 750, EstimatedMinutes: 25},
	WasteTypeEwaste:    {BaseCost: 500, EstimatedMinutes: 20},
}

// IsValidWasteType reports whether t is a supported collection type.
func IsValidWasteType(t string) bool {
	_, ok := WasteTypes[t]
	return ok
}

// TimeSlots are the five fixed two-hour collection windows per day.
var TimeSlots = []string{
	"08:00-10:00",
	"10:00-12:00",
	"12:00-14:00",
	"14:00-16:00",
	"16:00-18:00",
}

// IsValidTimeSlot reports whether slot is one of the fixed windows.
func IsValidTimeSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// Bin-task priorities
const (
	PriorityUrgent = "urgent"
	PriorityHigh   = "high"
	PriorityNormal = "normal"
)

// PriorityFor derives the bin-task priority from the collection type and the
// bin's current fill level. Hazardous pickups and near-overflowing bins jump
// the queue.
func PriorityFor(wasteType string, fillLevel int) string {
	if wasteType == WasteTypeHazardous || fillLevel > 90 {
		return PriorityUrgent
	}
	if wasteType == WasteTypeEwaste || fillLevel > 70 {
		return PriorityHigh
	}
	return PriorityNormal
}
