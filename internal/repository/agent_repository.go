package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crmkit/support-desk/internal/domain"
)

// AgentFilter captures agent search parameters. Empty fields match
// everything.
type AgentFilter struct {
	Name           string
	DepartmentName string
}

// AgentRepository handles persistence for agent profiles. An agent owns its
// user row: Create and Delete touch both tables inside one transaction.
type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	Update(ctx context.Context, agent *domain.Agent) error
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
	List(ctx context.Context, filter AgentFilter) ([]domain.Agent, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	ExistsByDepartmentID(ctx context.Context, departmentID string) (bool, error)
}

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository instantiates the repository.
func NewAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &agentRepository{pool: pool}
}

const agentSelect = `
        SELECT a.id, a.version, a.department_id, a.created_at, a.updated_at,
               u.id, u.version, u.first_name, u.last_name, u.email, u.password_hash, u.role,
               u.created_at, u.updated_at
        FROM agents a
        JOIN users u ON u.id = a.user_id`

func (r *agentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const userQuery = `
        INSERT INTO users (first_name, last_name, email, password_hash, role)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, version, created_at, updated_at`
	user := &agent.User
	if err := tx.QueryRow(ctx, userQuery,
		user.FirstName,
		user.LastName,
		domain.NormalizeEmail(user.Email),
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID, &user.Version, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return err
	}

	const agentQuery = `
        INSERT INTO agents (department_id, user_id)
        VALUES ($1,$2)
        RETURNING id, version, created_at, updated_at`
	if err := tx.QueryRow(ctx, agentQuery,
		agent.DepartmentID,
		user.ID,
	).Scan(&agent.ID, &agent.Version, &agent.CreatedAt, &agent.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *agentRepository) Update(ctx context.Context, agent *domain.Agent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const agentQuery = `
        UPDATE agents SET department_id=$1, version=version+1, updated_at=NOW()
        WHERE id=$2 AND version=$3`
	cmd, err := tx.Exec(ctx, agentQuery, agent.DepartmentID, agent.ID, agent.Version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return staleRowError(ctx, tx, "agents", agent.ID)
	}

	user := &agent.User
	const userQuery = `
        UPDATE users
        SET first_name=$1, last_name=$2, email=$3, password_hash=$4,
            version=version+1, updated_at=NOW()
        WHERE id=$5 AND version=$6`
	cmd, err = tx.Exec(ctx, userQuery,
		user.FirstName,
		user.LastName,
		domain.NormalizeEmail(user.Email),
		user.PasswordHash,
		user.ID,
		user.Version,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return staleRowError(ctx, tx, "users", user.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	agent.Version++
	user.Version++
	return nil
}

func scanAgent(row pgx.Row) (*domain.Agent, error) {
	var agent domain.Agent
	if err := row.Scan(
		&agent.ID,
		&agent.Version,
		&agent.DepartmentID,
		&agent.CreatedAt,
		&agent.UpdatedAt,
		&agent.User.ID,
		&agent.User.Version,
		&agent.User.FirstName,
		&agent.User.LastName,
		&agent.User.Email,
		&agent.User.PasswordHash,
		&agent.User.Role,
		&agent.User.CreatedAt,
		&agent.User.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	const query = agentSelect + ` WHERE a.id=$1`
	return scanAgent(r.pool.QueryRow(ctx, query, id))
}

func (r *agentRepository) List(ctx context.Context, filter AgentFilter) ([]domain.Agent, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if strings.TrimSpace(filter.Name) != "" {
		args = append(args, strings.TrimSpace(filter.Name))
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(u.first_name ILIKE '%%' || $%d || '%%' OR u.last_name ILIKE '%%' || $%d || '%%')", n, n))
	}
	if strings.TrimSpace(filter.DepartmentName) != "" {
		args = append(args, strings.TrimSpace(filter.DepartmentName))
		clauses = append(clauses, fmt.Sprintf("a.department_id IN (SELECT id FROM departments WHERE name ILIKE '%%' || $%d || '%%')", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY u.last_name, u.first_name`, agentSelect, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *agent)
	}
	return result, rows.Err()
}

func (r *agentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var userID string
	if err := tx.QueryRow(ctx, `DELETE FROM agents WHERE id=$1 RETURNING user_id`, id).Scan(&userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id=$1`, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *agentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM agents WHERE id=$1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *agentRepository) ExistsByDepartmentID(ctx context.Context, departmentID string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM agents WHERE department_id=$1)`, departmentID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
