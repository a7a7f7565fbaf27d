package domain

import "time"

// Agent wraps exactly one User with role AGENT and belongs to exactly one
// Department. The User row is owned by the Agent: both are created and
// deleted in the same transaction.
type Agent struct {
	ID           string
	Version      int64
	DepartmentID string
	User         User
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
