package domain

import "time"

// Department is a named unit that owns agents and receives tickets.
// Its name is unique across the system.
type Department struct {
	ID          string
	Version     int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
