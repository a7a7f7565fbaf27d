package dto

import "time"

// CreateDepartmentRequest payload.
type CreateDepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateDepartmentRequest payload. Nil fields are left unchanged; Version
// must carry the value the caller last read.
type UpdateDepartmentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Version     int64   `json:"version"`
}

// DepartmentResponse is the outward department shape.
type DepartmentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DepartmentRef is a lightweight department reference embedded in other
// responses.
type DepartmentRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}
