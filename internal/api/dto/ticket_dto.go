package dto

import (
	"time"

	"github.com/crmkit/support-desk/internal/domain"
)

// CreateTicketRequest payload. AgentID is optional; absent means the ticket
// starts unassigned.
type CreateTicketRequest struct {
	Subject      string                `json:"subject"`
	Description  string                `json:"description"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	CustomerID   string                `json:"customer_id"`
	DepartmentID string                `json:"department_id"`
	AgentID      *string               `json:"agent_id"`
}

// UpdateTicketRequest payload. Nil fields keep the stored value; ClearAgent
// removes the current assignment.
type UpdateTicketRequest struct {
	Subject      *string                `json:"subject"`
	Description  *string                `json:"description"`
	Status       *domain.TicketStatus   `json:"status"`
	Priority     *domain.TicketPriority `json:"priority"`
	DepartmentID *string                `json:"department_id"`
	AgentID      *string                `json:"agent_id"`
	ClearAgent   bool                   `json:"clear_agent"`
	Version      int64                  `json:"version"`
}

// UpdateTicketStatusRequest payload for the narrow status endpoint.
type UpdateTicketStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// AssignTicketRequest payload for the assignment endpoint.
type AssignTicketRequest struct {
	AgentID string `json:"agent_id"`
}

// TicketResponse is the outward ticket shape. Relationship fields are
// lightweight references; list endpoints populate only their ids.
type TicketResponse struct {
	ID            string                `json:"id"`
	Subject       string                `json:"subject"`
	Description   string                `json:"description"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	Customer      CustomerRef           `json:"customer"`
	Department    DepartmentRef         `json:"department"`
	AssignedAgent *AgentRef             `json:"assigned_agent"`
	Version       int64                 `json:"version"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}
