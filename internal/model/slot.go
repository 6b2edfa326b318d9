package model

import "time"

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBusy      SlotStatus = "busy"
	SlotStatusPast      SlotStatus = "past"
)

// Slot часовой слот дня, вычисляется на лету и не хранится
type Slot struct {
	Time   string       `json:"time"` // "09:00"
	Start  time.Time    `json:"start"`
	End    time.Time    `json:"end"`
	Status SlotStatus   `json:"status"`
	Kind   OfferingType `json:"kind,omitempty"`
	Title  string       `json:"title,omitempty"`
}
