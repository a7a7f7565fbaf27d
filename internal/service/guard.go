package service

import (
	"context"

	"github.com/crmkit/support-desk/internal/repository"
	apperrors "github.com/crmkit/support-desk/pkg/util"
)

// IntegrityGuard blocks deletion of a row while other rows still reference
// it. The entity services run it after the existence check and before the
// actual delete.
type IntegrityGuard struct {
	agents  repository.AgentRepository
	tickets repository.TicketRepository
}

// NewIntegrityGuard constructs the guard.
func NewIntegrityGuard(agents repository.AgentRepository, tickets repository.TicketRepository) *IntegrityGuard {
	return &IntegrityGuard{agents: agents, tickets: tickets}
}

// CanDeleteDepartment reports whether no agent and no ticket still reference
// the department. The returned string names the blocking relationship.
func (g *IntegrityGuard) CanDeleteDepartment(ctx context.Context, id string) (bool, string, error) {
	inUse, err := g.agents.ExistsByDepartmentID(ctx, id)
	if err != nil {
		return false, "", err
	}
	if inUse {
		return false, "agents", nil
	}
	inUse, err = g.tickets.ExistsByDepartmentID(ctx, id)
	if err != nil {
		return false, "", err
	}
	if inUse {
		return false, "tickets", nil
	}
	return true, "", nil
}

// CanDeleteAgent reports whether no ticket has the agent as its assignee.
func (g *IntegrityGuard) CanDeleteAgent(ctx context.Context, id string) (bool, string, error) {
	inUse, err := g.tickets.ExistsByAssignedAgentID(ctx, id)
	if err != nil {
		return false, "", err
	}
	if inUse {
		return false, "tickets", nil
	}
	return true, "", nil
}

// CanDeleteCustomer reports whether the customer filed no tickets.
func (g *IntegrityGuard) CanDeleteCustomer(ctx context.Context, id string) (bool, string, error) {
	inUse, err := g.tickets.ExistsByCustomerID(ctx, id)
	if err != nil {
		return false, "", err
	}
	if inUse {
		return false, "tickets", nil
	}
	return true, "", nil
}

// CheckDepartmentDeletable returns ResourceInUse when the department is still
// referenced.
func (g *IntegrityGuard) CheckDepartmentDeletable(ctx context.Context, id string) error {
	ok, blocking, err := g.CanDeleteDepartment(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !ok {
		return apperrors.NewResourceInUse("cannot delete department: "+blocking+" still reference it",
			map[string]any{"department_id": id, "blocked_by": blocking})
	}
	return nil
}

// CheckAgentDeletable returns ResourceInUse when tickets are still assigned
// to the agent.
func (g *IntegrityGuard) CheckAgentDeletable(ctx context.Context, id string) error {
	ok, blocking, err := g.CanDeleteAgent(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !ok {
		return apperrors.NewResourceInUse("cannot delete agent: "+blocking+" still reference it",
			map[string]any{"agent_id": id, "blocked_by": blocking})
	}
	return nil
}

// CheckCustomerDeletable returns ResourceInUse when the customer still has
// tickets.
func (g *IntegrityGuard) CheckCustomerDeletable(ctx context.Context, id string) error {
	ok, blocking, err := g.CanDeleteCustomer(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !ok {
		return apperrors.NewResourceInUse("cannot delete customer: "+blocking+" still reference it",
			map[string]any{"customer_id": id, "blocked_by": blocking})
	}
	return nil
}
