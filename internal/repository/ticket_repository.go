package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crmkit/support-desk/internal/domain"
)

// TicketFilter captures ticket query parameters. All fields are optional and
// combine with AND.
type TicketFilter struct {
	CustomerID      *string
	DepartmentID    *string
	AssignedAgentID *string
	Status          *domain.TicketStatus
	Priority        *domain.TicketPriority
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	ExistsByCustomerID(ctx context.Context, customerID string) (bool, error)
	ExistsByDepartmentID(ctx context.Context, departmentID string) (bool, error)
	ExistsByAssignedAgentID(ctx context.Context, agentID string) (bool, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, version, customer_id, department_id, assigned_agent_id,
               subject, description, status, priority, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (customer_id, department_id, assigned_agent_id, subject, description, status, priority)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, version, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.CustomerID,
		ticket.DepartmentID,
		ticket.AssignedAgentID,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
	).Scan(&ticket.ID, &ticket.Version, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET department_id=$1, assigned_agent_id=$2, subject=$3, description=$4,
            status=$5, priority=$6, version=version+1, updated_at=NOW()
        WHERE id=$7 AND version=$8`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.DepartmentID,
		ticket.AssignedAgentID,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.ID,
		ticket.Version,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return staleRowError(ctx, r.pool, "tickets", ticket.ID)
	}
	ticket.Version++
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Version,
		&ticket.CustomerID,
		&ticket.DepartmentID,
		&ticket.AssignedAgentID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return scanTicket(r.pool.QueryRow(ctx, query, id))
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.AssignedAgentID != nil {
		args = append(args, *filter.AssignedAgentID)
		clauses = append(clauses, fmt.Sprintf("assigned_agent_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY updated_at DESC`,
		ticketColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Exists(ctx context.Context, id string) (bool, error) {
	return r.existsWhere(ctx, "id", id)
}

func (r *ticketRepository) ExistsByCustomerID(ctx context.Context, customerID string) (bool, error) {
	return r.existsWhere(ctx, "customer_id", customerID)
}

func (r *ticketRepository) ExistsByDepartmentID(ctx context.Context, departmentID string) (bool, error) {
	return r.existsWhere(ctx, "department_id", departmentID)
}

func (r *ticketRepository) ExistsByAssignedAgentID(ctx context.Context, agentID string) (bool, error) {
	return r.existsWhere(ctx, "assigned_agent_id", agentID)
}

func (r *ticketRepository) existsWhere(ctx context.Context, column, value string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM tickets WHERE %s=$1)`, column)
	var exists bool
	if err := r.pool.QueryRow(ctx, query, value).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
