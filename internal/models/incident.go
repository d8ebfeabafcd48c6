package models

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryPower     Category = "power"
	CategoryWater     Category = "water"
	CategoryMedical   Category = "medical"
	CategoryFood      Category = "food"
	CategoryTransport Category = "transport"
	CategoryOther     Category = "other"
)

type Status string

const (
	StatusReported      Status = "Reported"
	StatusInvestigating Status = "Investigating"
	StatusInProgress    Status = "In Progress"
	StatusResolved      Status = "Resolved"
	StatusDelayed       Status = "Delayed"
)

type Severity string

const (
	SeverityRed    Severity = "red"
	SeverityYellow Severity = "yellow"
	SeverityGreen  Severity = "green"
)

// ParseCategory accepts the six recognized categories, case-insensitive.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToLower(s)) {
	case CategoryPower, CategoryWater, CategoryMedical, CategoryFood, CategoryTransport, CategoryOther:
		return Category(strings.ToLower(s)), true
	default:
		return "", false
	}
}

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusReported, StatusInvestigating, StatusInProgress, StatusResolved, StatusDelayed:
		return Status(s), true
	default:
		return "", false
	}
}

func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToLower(s)) {
	case SeverityRed, SeverityYellow, SeverityGreen:
		return Severity(strings.ToLower(s)), true
	default:
		return "", false
	}
}

// SeverityFor maps a status to its canonical severity tier. Total over the
// closed status enum; callers must validate status before calling.
func SeverityFor(status Status) Severity {
	switch status {
	case StatusInvestigating, StatusInProgress:
		return SeverityRed
	case StatusResolved:
		return SeverityGreen
	default: // Reported, Delayed
		return SeverityYellow
	}
}

// Rank orders severities for display: red first, green last.
func (s Severity) Rank() int {
	switch s {
	case SeverityRed:
		return 1
	case SeverityYellow:
		return 2
	default:
		return 3
	}
}

type Incident struct {
	ID          int64     `json:"issue_id"`
	Category    Category  `json:"category"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	ContactInfo string    `json:"contact_info"`
	Status      Status    `json:"status"`
	Severity    Severity  `json:"severity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Title derives the display title, which doubles as the correlation key
// between an incident and its projected alert.
func (i *Incident) Title() string {
	return AlertTitle(i.Category, i.Location)
}

type IncidentStats struct {
	Total  int `json:"total"`
	Urgent int `json:"urgent"` // severity red
	Active int `json:"active"` // status != Resolved
	// ResolvedToday counts Resolved rows *created* today, not resolved
	// today. Kept for dashboard compatibility with the historical query.
	ResolvedToday int `json:"resolved_today"`
}
