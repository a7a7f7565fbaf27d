package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crmkit/support-desk/internal/domain"
)

// CustomerFilter captures customer search parameters. An empty name matches
// everything.
type CustomerFilter struct {
	Name string
}

// CustomerRepository handles persistence for customer profiles. Like agents,
// a customer owns its user row; Create and Delete are transactional over both
// tables.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]domain.Customer, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository instantiates the repository.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

const customerSelect = `
        SELECT c.id, c.version, c.phone, c.created_at, c.updated_at,
               u.id, u.version, u.first_name, u.last_name, u.email, u.password_hash, u.role,
               u.created_at, u.updated_at
        FROM customers c
        JOIN users u ON u.id = c.user_id`

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const userQuery = `
        INSERT INTO users (first_name, last_name, email, password_hash, role)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, version, created_at, updated_at`
	user := &customer.User
	if err := tx.QueryRow(ctx, userQuery,
		user.FirstName,
		user.LastName,
		domain.NormalizeEmail(user.Email),
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID, &user.Version, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return err
	}

	const customerQuery = `
        INSERT INTO customers (phone, user_id)
        VALUES ($1,$2)
        RETURNING id, version, created_at, updated_at`
	if err := tx.QueryRow(ctx, customerQuery,
		customer.Phone,
		user.ID,
	).Scan(&customer.ID, &customer.Version, &customer.CreatedAt, &customer.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const customerQuery = `
        UPDATE customers SET phone=$1, version=version+1, updated_at=NOW()
        WHERE id=$2 AND version=$3`
	cmd, err := tx.Exec(ctx, customerQuery, customer.Phone, customer.ID, customer.Version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return staleRowError(ctx, tx, "customers", customer.ID)
	}

	user := &customer.User
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
	customer.Version++
	user.Version++
	return nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var customer domain.Customer
	if err := row.Scan(
		&customer.ID,
		&customer.Version,
		&customer.Phone,
		&customer.CreatedAt,
		&customer.UpdatedAt,
		&customer.User.ID,
		&customer.User.Version,
		&customer.User.FirstName,
		&customer.User.LastName,
		&customer.User.Email,
		&customer.User.PasswordHash,
		&customer.User.Role,
		&customer.User.CreatedAt,
		&customer.User.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const query = customerSelect + ` WHERE c.id=$1`
	return scanCustomer(r.pool.QueryRow(ctx, query, id))
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	const query = customerSelect + ` WHERE u.email=$1`
	return scanCustomer(r.pool.QueryRow(ctx, query, domain.NormalizeEmail(email)))
}

func (r *customerRepository) List(ctx context.Context, filter CustomerFilter) ([]domain.Customer, error) {
	query := customerSelect + ` ORDER BY u.last_name, u.first_name`
	args := []any{}
	if name := strings.TrimSpace(filter.Name); name != "" {
		query = customerSelect +
			` WHERE u.first_name ILIKE '%' || $1 || '%' OR u.last_name ILIKE '%' || $1 || '%'` +
			` ORDER BY u.last_name, u.first_name`
		args = append(args, name)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *customer)
	}
	return result, rows.Err()
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var userID string
	if err := tx.QueryRow(ctx, `DELETE FROM customers WHERE id=$1 RETURNING user_id`, id).Scan(&userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id=$1`, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *customerRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM customers WHERE id=$1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
