package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. Any status may
// replace any other status; no transition graph is enforced.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// ValidStatus reports whether the value is one of the known statuses.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// ValidPriority reports whether the value is one of the known priorities.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// MaxSubjectLen bounds the ticket subject.
const MaxSubjectLen = 255

// Ticket is the central work item. It always references a valid Customer
// (immutable after creation) and Department (reassignable); the assigned
// agent is optional.
type Ticket struct {
	ID              string
	Version         int64
	CustomerID      string
	DepartmentID    string
	AssignedAgentID *string
	Subject         string
	Description     string
	Status          TicketStatus
	Priority        TicketPriority
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
