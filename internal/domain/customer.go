package domain

import "time"

// Customer wraps exactly one User with role CUSTOMER plus a phone number.
// Like Agent, it owns its User row.
type Customer struct {
	ID        string
	Version   int64
	Phone     string
	User      User
	CreatedAt time.Time
	UpdatedAt time.Time
}
