package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crmkit/support-desk/internal/domain"
	"github.com/crmkit/support-desk/internal/events"
	"github.com/crmkit/support-desk/internal/repository"
	apperrors "github.com/crmkit/support-desk/pkg/util"
)

// TicketService coordinates the ticket lifecycle: creation, partial update,
// status overwrite, agent assignment and deletion.
type TicketService struct {
	tickets    repository.TicketRepository
	resolver   *Resolver
	dispatcher events.Dispatcher
}

// TicketDependencies bundles requirements for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Resolver   *Resolver
	Dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
	}
}

// TicketCreateInput describes ticket creation payload. AgentID is optional;
// nil means unassigned.
type TicketCreateInput struct {
	Subject      string
	Description  string
	Status       domain.TicketStatus
	Priority     domain.TicketPriority
	CustomerID   string
	DepartmentID string
	AgentID      *string
}

// TicketUpdateInput describes a partial ticket update. Nil fields keep the
// stored value; ClearAgent removes the assignment. Version must carry the
// value the caller last read.
type TicketUpdateInput struct {
	Subject      *string
	Description  *string
	Status       *domain.TicketStatus
	Priority     *domain.TicketPriority
	DepartmentID *string
	AgentID      *string
	ClearAgent   bool
	Version      int64
}

// Create validates scalar fields before any reference resolution, then
// resolves customer and department (and agent when supplied) and persists.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	switch {
	case subject == "":
		return nil, apperrors.NewValidationError("subject required", nil)
	case len(subject) > domain.MaxSubjectLen:
		return nil, apperrors.NewValidationError("subject too long",
			map[string]any{"max_length": domain.MaxSubjectLen})
	case description == "":
		return nil, apperrors.NewValidationError("description required", nil)
	case !domain.ValidStatus(input.Status):
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": input.Status})
	case !domain.ValidPriority(input.Priority):
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}

	customer, err := s.resolver.Customer(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	dept, err := s.resolver.Department(ctx, input.DepartmentID)
	if err != nil {
		return nil, err
	}

	var agentID *string
	if input.AgentID != nil {
		agent, err := s.resolver.Agent(ctx, *input.AgentID)
		if err != nil {
			return nil, err
		}
		agentID = &agent.ID
	}

	ticket := &domain.Ticket{
		CustomerID:      customer.ID,
		DepartmentID:    dept.ID,
		AssignedAgentID: agentID,
		Subject:         subject,
		Description:     description,
		Status:          input.Status,
		Priority:        input.Priority,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			CustomerID:   ticket.CustomerID,
			DepartmentID: ticket.DepartmentID,
			Priority:     ticket.Priority,
			Subject:      ticket.Subject,
		},
	})
	return ticket, nil
}

// GetByID fetches a ticket.
func (s *TicketService) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.resolver.Ticket(ctx, id)
}

// List returns tickets matching the filter. An empty result is not an error.
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListByCustomer returns all tickets filed by the customer.
func (s *TicketService) ListByCustomer(ctx context.Context, customerID string) ([]domain.Ticket, error) {
	return s.List(ctx, repository.TicketFilter{CustomerID: &customerID})
}

// ListByDepartment returns all tickets routed to the department.
func (s *TicketService) ListByDepartment(ctx context.Context, departmentID string) ([]domain.Ticket, error) {
	return s.List(ctx, repository.TicketFilter{DepartmentID: &departmentID})
}

// ListByAssignedAgent returns all tickets assigned to the agent.
func (s *TicketService) ListByAssignedAgent(ctx context.Context, agentID string) ([]domain.Ticket, error) {
	return s.List(ctx, repository.TicketFilter{AssignedAgentID: &agentID})
}

// ListByStatus returns all tickets in the given status.
func (s *TicketService) ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	if !domain.ValidStatus(status) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}
	return s.List(ctx, repository.TicketFilter{Status: &status})
}

// ListByPriority returns all tickets with the given priority.
func (s *TicketService) ListByPriority(ctx context.Context, priority domain.TicketPriority) ([]domain.Ticket, error) {
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}
	return s.List(ctx, repository.TicketFilter{Priority: &priority})
}

// Update applies a partial update with last-write-wins semantics per field.
// Relationship references are re-resolved only when they actually differ from
// the stored ones; a no-op update is skipped entirely so the version counter
// is not bumped.
func (s *TicketService) Update(ctx context.Context, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	if input.Version <= 0 {
		return nil, apperrors.NewValidationError("version required", nil)
	}
	if input.Status != nil && !domain.ValidStatus(*input.Status) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
	}
	if input.Priority != nil && !domain.ValidPriority(*input.Priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
	}

	ticket, err := s.resolver.Ticket(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	oldStatus := ticket.Status

	if input.Subject != nil {
		subject := strings.TrimSpace(*input.Subject)
		if subject == "" {
			return nil, apperrors.NewValidationError("subject required", nil)
		}
		if len(subject) > domain.MaxSubjectLen {
			return nil, apperrors.NewValidationError("subject too long",
				map[string]any{"max_length": domain.MaxSubjectLen})
		}
		if subject != ticket.Subject {
			ticket.Subject = subject
			changed = true
		}
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, apperrors.NewValidationError("description required", nil)
		}
		if description != ticket.Description {
			ticket.Description = description
			changed = true
		}
	}
	if input.Status != nil && *input.Status != ticket.Status {
		ticket.Status = *input.Status
		changed = true
	}
	if input.Priority != nil && *input.Priority != ticket.Priority {
		ticket.Priority = *input.Priority
		changed = true
	}

	if input.DepartmentID != nil && *input.DepartmentID != ticket.DepartmentID {
		dept, err := s.resolver.Department(ctx, *input.DepartmentID)
		if err != nil {
			return nil, err
		}
		ticket.DepartmentID = dept.ID
		changed = true
	}

	if input.ClearAgent {
		if ticket.AssignedAgentID != nil {
			ticket.AssignedAgentID = nil
			changed = true
		}
	} else if input.AgentID != nil {
		if ticket.AssignedAgentID == nil || *ticket.AssignedAgentID != *input.AgentID {
			agent, err := s.resolver.Agent(ctx, *input.AgentID)
			if err != nil {
				return nil, err
			}
			ticket.AssignedAgentID = &agent.ID
			changed = true
		}
	}

	if !changed {
		return ticket, nil
	}

	ticket.Version = input.Version
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapRepoError(err, "ticket", map[string]any{"ticket_id": id})
	}

	if ticket.Status != oldStatus {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	return ticket, nil
}

// UpdateStatus overwrites the ticket status. Any status may follow any
// status; no transition graph is enforced.
func (s *TicketService) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !domain.ValidStatus(status) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}

	ticket, err := s.resolver.Ticket(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	ticket.Status = status
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapRepoError(err, "ticket", map[string]any{"ticket_id": id})
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: status,
		},
	})
	return ticket, nil
}

// AssignAgent overwrites the assigned-agent relationship unconditionally.
// Ticket and agent are resolved independently; there is no check that the
// agent belongs to the ticket's department.
func (s *TicketService) AssignAgent(ctx context.Context, id, agentID string) (*domain.Ticket, error) {
	ticket, err := s.resolver.Ticket(ctx, id)
	if err != nil {
		return nil, err
	}
	agent, err := s.resolver.Agent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	ticket.AssignedAgentID = &agent.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapRepoError(err, "ticket", map[string]any{"ticket_id": id})
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Payload:  events.TicketAssignedPayload{AgentID: ticket.AssignedAgentID},
	})
	return ticket, nil
}

// Delete removes a ticket after the existence check. Tickets carry no
// downstream guard: comments cascade at the storage layer.
func (s *TicketService) Delete(ctx context.Context, id string) error {
	exists, err := s.tickets.Exists(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !exists {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}

	if err := s.tickets.Delete(ctx, id); err != nil {
		return mapRepoError(err, "ticket", map[string]any{"ticket_id": id})
	}
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
