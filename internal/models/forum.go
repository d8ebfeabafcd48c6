package models

import (
	"fmt"
	"time"
)

// ForumPost starts unapproved and becomes visible only after an admin
// approves it. Rejection deletes the row; there is no stored rejected state.
type ForumPost struct {
	ID        int64     `json:"post_id"`
	Author    string    `json:"user_name"`
	Message   string    `json:"message"`
	Approved  bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// RelativeAge renders a coarse age label for public post listings.
// Past 30 days it falls back to an absolute date.
func RelativeAge(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hr ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
