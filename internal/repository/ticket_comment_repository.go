package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crmkit/support-desk/internal/domain"
)

// TicketCommentRepository manages ticket comment threads. The per-ticket view
// reads oldest-first; the per-author view is a recent-activity feed and reads
// newest-first.
type TicketCommentRepository interface {
	Create(ctx context.Context, comment *domain.TicketComment) error
	Update(ctx context.Context, comment *domain.TicketComment) error
	GetByID(ctx context.Context, id string) (*domain.TicketComment, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketComment, error)
	ListByAuthor(ctx context.Context, authorUserID string) ([]domain.TicketComment, error)
	Delete(ctx context.Context, id string) error
}

type ticketCommentRepository struct {
	pool *pgxpool.Pool
}

// NewTicketCommentRepository builds repository.
func NewTicketCommentRepository(pool *pgxpool.Pool) TicketCommentRepository {
	return &ticketCommentRepository{pool: pool}
}

const commentColumns = `id, version, ticket_id, author_user_id, body, created_at`

func (r *ticketCommentRepository) Create(ctx context.Context, comment *domain.TicketComment) error {
	const query = `
        INSERT INTO ticket_comments (ticket_id, author_user_id, body)
        VALUES ($1,$2,$3)
        RETURNING id, version, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.AuthorUserID,
		comment.Body,
	).Scan(&comment.ID, &comment.Version, &comment.CreatedAt)
}

func (r *ticketCommentRepository) Update(ctx context.Context, comment *domain.TicketComment) error {
	const query = `
        UPDATE ticket_comments SET body=$1, version=version+1
        WHERE id=$2 AND version=$3`
	cmd, err := r.pool.Exec(ctx, query, comment.Body, comment.ID, comment.Version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return staleRowError(ctx, r.pool, "ticket_comments", comment.ID)
	}
	comment.Version++
	return nil
}

func scanComment(row pgx.Row) (*domain.TicketComment, error) {
	var comment domain.TicketComment
	if err := row.Scan(
		&comment.ID,
		&comment.Version,
		&comment.TicketID,
		&comment.AuthorUserID,
		&comment.Body,
		&comment.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *ticketCommentRepository) GetByID(ctx context.Context, id string) (*domain.TicketComment, error) {
	const query = `SELECT ` + commentColumns + ` FROM ticket_comments WHERE id=$1`
	return scanComment(r.pool.QueryRow(ctx, query, id))
}

func (r *ticketCommentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketComment, error) {
	const query = `SELECT ` + commentColumns + ` FROM ticket_comments
        WHERE ticket_id=$1 ORDER BY created_at ASC`
	return r.queryMany(ctx, query, ticketID)
}

func (r *ticketCommentRepository) ListByAuthor(ctx context.Context, authorUserID string) ([]domain.TicketComment, error) {
	const query = `SELECT ` + commentColumns + ` FROM ticket_comments
        WHERE author_user_id=$1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, authorUserID)
}

func (r *ticketCommentRepository) queryMany(ctx context.Context, query string, args ...any) ([]domain.TicketComment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketComment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *comment)
	}
	return result, rows.Err()
}

func (r *ticketCommentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM ticket_comments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
