package domain

import "time"

type DeskStatus string

const (
	DeskStatusAvailable   DeskStatus = "available"
	DeskStatusReserved    DeskStatus = "reserved"
	DeskStatusOccupied    DeskStatus = "occupied"
	DeskStatusMaintenance DeskStatus = "maintenance"
)

// ValidDeskStatus reports whether s is one of the known desk statuses.
func ValidDeskStatus(s DeskStatus) bool {
	switch s {
	case DeskStatusAvailable, DeskStatusReserved, DeskStatusOccupied, DeskStatusMaintenance:
		return true
	}
	return false
}

// Desk is a bookable workspace. Status is staff-authoritative: finishing a
// booking never flips it back automatically.
type Desk struct {
	ID          string
	Label       string
	Status      DeskStatus
	HourlyRate  float64
	Location    string
	Description string
	CreatedAt   time.Time
}
