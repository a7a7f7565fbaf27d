package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/crmkit/support-desk/internal/domain"
	"github.com/crmkit/support-desk/internal/repository"
	apperrors "github.com/crmkit/support-desk/pkg/util"
)

// Resolver materializes foreign-key references carried by requests into live
// entities. Every mutating operation that accepts a reference id goes through
// it. Lookups only, no side effects.
type Resolver struct {
	customers   repository.CustomerRepository
	departments repository.DepartmentRepository
	agents      repository.AgentRepository
	tickets     repository.TicketRepository
	comments    repository.TicketCommentRepository
}

// ResolverDependencies bundles the repositories the resolver reads from.
type ResolverDependencies struct {
	CustomerRepo   repository.CustomerRepository
	DepartmentRepo repository.DepartmentRepository
	AgentRepo      repository.AgentRepository
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.TicketCommentRepository
}

// NewResolver constructs the resolver.
func NewResolver(deps ResolverDependencies) *Resolver {
	return &Resolver{
		customers:   deps.CustomerRepo,
		departments: deps.DepartmentRepo,
		agents:      deps.AgentRepo,
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
	}
}

// Customer resolves a customer id or fails NotFound.
func (r *Resolver) Customer(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := r.customers.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "customer", map[string]any{"customer_id": id})
	}
	return customer, nil
}

// Department resolves a department id or fails NotFound.
func (r *Resolver) Department(ctx context.Context, id string) (*domain.Department, error) {
	dept, err := r.departments.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "department", map[string]any{"department_id": id})
	}
	return dept, nil
}

// Agent resolves an agent id or fails NotFound.
func (r *Resolver) Agent(ctx context.Context, id string) (*domain.Agent, error) {
	agent, err := r.agents.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "agent", map[string]any{"agent_id": id})
	}
	return agent, nil
}

// Ticket resolves a ticket id or fails NotFound.
func (r *Resolver) Ticket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := r.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "ticket", map[string]any{"ticket_id": id})
	}
	return ticket, nil
}

// Comment resolves a comment id or fails NotFound.
func (r *Resolver) Comment(ctx context.Context, id string) (*domain.TicketComment, error) {
	comment, err := r.comments.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "comment", map[string]any{"comment_id": id})
	}
	return comment, nil
}

// mapRepoError translates repository sentinels into the error taxonomy:
// missing rows become NotFound, version drift becomes ConcurrencyConflict,
// anything else stays an opaque internal failure.
func mapRepoError(err error, resource string, details map[string]any) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound(resource, details)
	case errors.Is(err, repository.ErrVersionConflict):
		return apperrors.NewConcurrencyConflict(resource, details)
	default:
		return apperrors.MapError(err)
	}
}
