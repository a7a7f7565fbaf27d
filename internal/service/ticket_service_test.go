package service

import (
	"context"
	"strings"
	"testing"

	"github.com/crmkit/support-desk/internal/domain"
	"github.com/crmkit/support-desk/internal/repository"
)

func TestTicketCreateValidationRunsBeforeResolution(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// None of these reference ids exist, yet the failures must be
	// validation failures, not NotFound: scalar checks run first.
	cases := []struct {
		name  string
		input TicketCreateInput
	}{
		{"empty subject", TicketCreateInput{
			Description: "d", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow,
			CustomerID: "missing", DepartmentID: "missing",
		}},
		{"empty description", TicketCreateInput{
			Subject: "s", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow,
			CustomerID: "missing", DepartmentID: "missing",
		}},
		{"subject too long", TicketCreateInput{
			Subject: strings.Repeat("x", domain.MaxSubjectLen+1), Description: "d",
			Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow,
			CustomerID: "missing", DepartmentID: "missing",
		}},
		{"bad status", TicketCreateInput{
			Subject: "s", Description: "d", Status: "ARCHIVED", Priority: domain.TicketPriorityLow,
			CustomerID: "missing", DepartmentID: "missing",
		}},
		{"bad priority", TicketCreateInput{
			Subject: "s", Description: "d", Status: domain.TicketStatusOpen, Priority: "URGENT",
			CustomerID: "missing", DepartmentID: "missing",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.ticketSvc.Create(ctx, tc.input)
			assertCode(t, err, "VALIDATION_FAILED")
		})
	}
}

func TestTicketCreateResolvesReferences(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	dept := env.mustDepartment(ctx, "Support")
	customer := env.mustCustomer(ctx, "Ali", "ali@example.com")

	_, err := env.ticketSvc.Create(ctx, TicketCreateInput{
		Subject: "s", Description: "d",
		Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow,
		CustomerID: "missing", DepartmentID: dept.ID,
	})
	assertCode(t, err, "NOT_FOUND")

	_, err = env.ticketSvc.Create(ctx, TicketCreateInput{
		Subject: "s", Description: "d",
		Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow,
		CustomerID: customer.ID, DepartmentID: "missing",
	})
	assertCode(t, err, "NOT_FOUND")

	missingAgent := "missing"
	_, err = env.ticketSvc.Create(ctx, TicketCreateInput{
		Subject: "s", Description: "d",
		Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow,
		CustomerID: customer.ID, DepartmentID: dept.ID, AgentID: &missingAgent,
	})
	assertCode(t, err, "NOT_FOUND")

	ticket, err := env.ticketSvc.Create(ctx, TicketCreateInput{
		Subject: "Refund request", Description: "Customer wants a refund",
		Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh,
		CustomerID: customer.ID, DepartmentID: dept.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.ID == "" || ticket.Version != 1 {
		t.Fatalf("expected server-assigned id and version 1, got %q v%d", ticket.ID, ticket.Version)
	}
	if ticket.AssignedAgentID != nil {
		t.Fatalf("expected new ticket unassigned")
	}
	if ticket.CreatedAt.IsZero() || ticket.UpdatedAt.IsZero() {
		t.Fatalf("expected server-assigned timestamps")
	}
}

// Walks a full support flow: file a ticket, close it, then try to delete the
// department it still references.
func TestTicketLifecycleScenario(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	support := env.mustDepartment(ctx, "Support")
	ali := env.mustCustomer(ctx, "Ali", "ali@example.com")
	ticket := env.mustTicket(ctx, "Refund for order 1042", ali.ID, support.ID)
	readUpdatedAt := ticket.UpdatedAt

	closed, err := env.ticketSvc.UpdateStatus(ctx, ticket.ID, domain.TicketStatusClosed)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if closed.Status != domain.TicketStatusClosed {
		t.Fatalf("expected CLOSED, got %s", closed.Status)
	}
	if !closed.UpdatedAt.After(readUpdatedAt) {
		t.Fatalf("expected updated_at to advance: %v -> %v", readUpdatedAt, closed.UpdatedAt)
	}
	if closed.Version != ticket.Version+1 {
		t.Fatalf("expected version bump %d -> %d, got %d", ticket.Version, ticket.Version+1, closed.Version)
	}

	err = env.departmentSvc.Delete(ctx, support.ID)
	assertCode(t, err, "RESOURCE_IN_USE")

	if err := env.ticketSvc.Delete(ctx, ticket.ID); err != nil {
		t.Fatalf("delete ticket: %v", err)
	}
	if err := env.departmentSvc.Delete(ctx, support.ID); err != nil {
		t.Fatalf("delete department after ticket removal: %v", err)
	}
	_, err = env.departmentSvc.GetByID(ctx, support.ID)
	assertCode(t, err, "NOT_FOUND")
}

func TestTicketPartialUpdateSkipsNoOps(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	dept := env.mustDepartment(ctx, "Support")
	customer := env.mustCustomer(ctx, "Ali", "ali@example.com")
	ticket := env.mustTicket(ctx, "Printer on fire", customer.ID, dept.ID)

	sameSubject := ticket.Subject
	for i := 0; i < 2; i++ {
		got, err := env.ticketSvc.Update(ctx, ticket.ID, TicketUpdateInput{
			Subject: &sameSubject,
			Version: ticket.Version,
		})
		if err != nil {
			t.Fatalf("no-op update %d: %v", i, err)
		}
		if got.Version != ticket.Version {
			t.Fatalf("no-op update bumped version to %d", got.Version)
		}
		if got.Status != ticket.Status || got.Priority != ticket.Priority {
			t.Fatalf("no-op update changed unrelated fields")
		}
	}

	newSubject := "Printer extinguished"
	got, err := env.ticketSvc.Update(ctx, ticket.ID, TicketUpdateInput{
		Subject: &newSubject,
		Version: ticket.Version,
	})
	if err != nil {
		t.Fatalf("real update: %v", err)
	}
	if got.Version != ticket.Version+1 {
		t.Fatalf("expected version bump, got %d", got.Version)
	}
	if got.Subject != newSubject {
		t.Fatalf("subject not applied")
	}
}

func TestTicketUpdateStaleVersionConflicts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	dept := env.mustDepartment(ctx, "Support")
	customer := env.mustCustomer(ctx, "Ali", "ali@example.com")
	ticket := env.mustTicket(ctx, "Two writers", customer.ID, dept.ID)

	first := "first writer wins"
	if _, err := env.ticketSvc.Update(ctx, ticket.ID, TicketUpdateInput{
		Subject: &first,
		Version: ticket.Version,
	}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	second := "second writer loses"
	_, err := env.ticketSvc.Update(ctx, ticket.ID, TicketUpdateInput{
		Subject: &second,
		Version: ticket.Version,
	})
	assertCode(t, err, "CONCURRENCY_CONFLICT")

	stored, err := env.ticketSvc.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Subject != first {
		t.Fatalf("conflicting write clobbered the row: %q", stored.Subject)
	}
}

func TestTicketUpdateReassignsRelationships(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	support := env.mustDepartment(ctx, "Support")
	billing := env.mustDepartment(ctx, "Billing")
	customer := env.mustCustomer(ctx, "Ali", "ali@example.com")
	agent := env.mustAgent(ctx, "Reza", "reza@example.com", support.ID)
	ticket := env.mustTicket(ctx, "Wrong charge", customer.ID, support.ID)

	got, err := env.ticketSvc.Update(ctx, ticket.ID, TicketUpdateInput{
		DepartmentID: &billing.ID,
		AgentID:      &agent.ID,
		Version:      ticket.Version,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.DepartmentID != billing.ID {
		t.Fatalf("department not reassigned")
	}
	if got.AssignedAgentID == nil || *got.AssignedAgentID != agent.ID {
		t.Fatalf("agent not assigned")
	}

	cleared, err := env.ticketSvc.Update(ctx, got.ID, TicketUpdateInput{
		ClearAgent: true,
		Version:    got.Version,
	})
	if err != nil {
		t.Fatalf("clear agent: %v", err)
	}
	if cleared.AssignedAgentID != nil {
		t.Fatalf("agent not cleared")
	}
}

func TestTicketAssignAgent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	support := env.mustDepartment(ctx, "Support")
	billing := env.mustDepartment(ctx, "Billing")
	customer := env.mustCustomer(ctx, "Ali", "ali@example.com")
	agent := env.mustAgent(ctx, "Reza", "reza@example.com", billing.ID)
	ticket := env.mustTicket(ctx, "Assignment", customer.ID, support.ID)

	_, err := env.ticketSvc.AssignAgent(ctx, "missing", agent.ID)
	assertCode(t, err, "NOT_FOUND")
	_, err = env.ticketSvc.AssignAgent(ctx, ticket.ID, "missing")
	assertCode(t, err, "NOT_FOUND")

	// Cross-department assignment is allowed.
	got, err := env.ticketSvc.AssignAgent(ctx, ticket.ID, agent.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got.AssignedAgentID == nil || *got.AssignedAgentID != agent.ID {
		t.Fatalf("assignment not applied")
	}
}

func TestTicketStatusAllowsAnyTransition(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	dept := env.mustDepartment(ctx, "Support")
	customer := env.mustCustomer(ctx, "Ali", "ali@example.com")
	ticket := env.mustTicket(ctx, "Reopened", customer.ID, dept.ID)

	for _, status := range []domain.TicketStatus{
		domain.TicketStatusClosed,
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusClosed,
	} {
		got, err := env.ticketSvc.UpdateStatus(ctx, ticket.ID, status)
		if err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
		if got.Status != status {
			t.Fatalf("expected %s, got %s", status, got.Status)
		}
	}

	_, err := env.ticketSvc.UpdateStatus(ctx, ticket.ID, "ARCHIVED")
	assertCode(t, err, "VALIDATION_FAILED")
}

func TestTicketListFilters(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	support := env.mustDepartment(ctx, "Support")
	billing := env.mustDepartment(ctx, "Billing")
	ali := env.mustCustomer(ctx, "Ali", "ali@example.com")
	sara := env.mustCustomer(ctx, "Sara", "sara@example.com")
	agent := env.mustAgent(ctx, "Reza", "reza@example.com", support.ID)

	t1 := env.mustTicket(ctx, "one", ali.ID, support.ID)
	env.mustTicket(ctx, "two", sara.ID, billing.ID)
	if _, err := env.ticketSvc.AssignAgent(ctx, t1.ID, agent.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	byCustomer, err := env.ticketSvc.ListByCustomer(ctx, ali.ID)
	if err != nil {
		t.Fatalf("by customer: %v", err)
	}
	if len(byCustomer) != 1 || byCustomer[0].ID != t1.ID {
		t.Fatalf("expected exactly ali's ticket, got %d", len(byCustomer))
	}

	byDept, err := env.ticketSvc.ListByDepartment(ctx, billing.ID)
	if err != nil {
		t.Fatalf("by department: %v", err)
	}
	if len(byDept) != 1 {
		t.Fatalf("expected one billing ticket, got %d", len(byDept))
	}

	byAgent, err := env.ticketSvc.ListByAssignedAgent(ctx, agent.ID)
	if err != nil {
		t.Fatalf("by agent: %v", err)
	}
	if len(byAgent) != 1 || byAgent[0].ID != t1.ID {
		t.Fatalf("expected exactly the assigned ticket, got %d", len(byAgent))
	}

	empty, err := env.ticketSvc.List(ctx, repository.TicketFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(empty) != 2 {
		t.Fatalf("expected 2 tickets, got %d", len(empty))
	}

	_, err = env.ticketSvc.ListByStatus(ctx, "ARCHIVED")
	assertCode(t, err, "VALIDATION_FAILED")
	_, err = env.ticketSvc.ListByPriority(ctx, "URGENT")
	assertCode(t, err, "VALIDATION_FAILED")

	none, err := env.ticketSvc.ListByStatus(ctx, domain.TicketStatusClosed)
	if err != nil {
		t.Fatalf("empty result must not be an error: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no closed tickets, got %d", len(none))
	}
}

func TestTicketDeleteMissing(t *testing.T) {
	env := newTestEnv()
	err := env.ticketSvc.Delete(context.Background(), "missing")
	assertCode(t, err, "NOT_FOUND")
}
