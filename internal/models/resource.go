package models

import "time"

// Resource is a trackable campus resource (water stock, generators, ...).
type Resource struct {
	ID          int64     `json:"resource_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	Quantity    int       `json:"quantity"`
	Unit        string    `json:"unit"`
	IsAvailable bool      `json:"is_available"`
	Notes       string    `json:"notes"`
	LastUpdated time.Time `json:"last_updated"`
	UpdatedBy   string    `json:"updated_by"`
}
