package attendance

import (
	"strings"
	"time"
)

// Status values stored on the wire and in Postgres. Lowercase on write,
// normalized case-insensitively on read.
const (
	StatusYes        = "yes"
	StatusNo         = "no"
	StatusNoResponse = "no response"
)

// The two "no data" defaults are deliberately different and must never be
// merged: an individual lookup with no record answers "no response", while the
// aggregate report counts a silent member as attending (opt-out model).
const (
	IndividualDefault = StatusNoResponse
	RosterDefault     = StatusYes
)

// Record is one member's answer for one meal on one date. At most one record
// exists per (email, date) in each meal table.
type Record struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Date       string    `json:"date"`
	Status     string    `json:"status"`
	GuestCount int       `json:"guest_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NormalizeStatus maps stored or submitted status text to the canonical
// lowercase form, or "" when unrecognized.
func NormalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case StatusYes:
		return StatusYes
	case StatusNo:
		return StatusNo
	}
	return ""
}
