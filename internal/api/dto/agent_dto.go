package dto

import (
	"time"

	"github.com/crmkit/support-desk/internal/domain"
)

// CreateAgentRequest payload. Password is write-only; it never appears in
// any response shape.
type CreateAgentRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	DepartmentID string `json:"department_id"`
}

// UpdateAgentRequest payload. Nil fields are left unchanged; a non-nil
// Password changes the credential.
type UpdateAgentRequest struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Email        *string `json:"email"`
	Password     *string `json:"password"`
	DepartmentID *string `json:"department_id"`
	Version      int64   `json:"version"`
}

// AgentResponse is the outward agent shape.
type AgentResponse struct {
	ID         string        `json:"id"`
	FirstName  string        `json:"first_name"`
	LastName   string        `json:"last_name"`
	Email      string        `json:"email"`
	Role       domain.Role   `json:"role"`
	Department DepartmentRef `json:"department"`
	Version    int64         `json:"version"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// AgentRef is a lightweight agent reference embedded in other responses.
type AgentRef struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}
