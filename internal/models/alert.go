package models

import (
	"strings"
	"time"
)

// Alert is the public projection of an incident, or a standalone notice.
// Unapproved alerts never reach public reads; incident-sourced alerts are
// created pre-approved.
type Alert struct {
	ID          int64     `json:"alert_id"`
	Title       string    `json:"title"`
	Category    Category  `json:"category"`
	Severity    Severity  `json:"severity"`
	Status      Status    `json:"status"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Approved    bool      `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// AlertTitle formats the textual correlation key shared by an incident and
// its alert: "{Capitalized category} Issue - {location}".
func AlertTitle(category Category, location string) string {
	c := string(category)
	if c != "" {
		c = strings.ToUpper(c[:1]) + c[1:]
	}
	return c + " Issue - " + location
}
