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

// CommentService manages the append-only comment thread of a ticket. The
// author is always the authenticated principal handed in by the boundary,
// never inferred from the body.
type CommentService struct {
	comments   repository.TicketCommentRepository
	resolver   *Resolver
	dispatcher events.Dispatcher
}

// CommentDependencies bundles requirements for the comment service.
type CommentDependencies struct {
	CommentRepo repository.TicketCommentRepository
	Resolver    *Resolver
	Dispatcher  events.Dispatcher
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments:   deps.CommentRepo,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
	}
}

// Add appends a comment to a ticket authored by the given user.
func (s *CommentService) Add(ctx context.Context, ticketID, authorUserID, body string) (*domain.TicketComment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("comment body required", nil)
	}

	ticket, err := s.resolver.Ticket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	comment := &domain.TicketComment{
		TicketID:     ticket.ID,
		AuthorUserID: authorUserID,
		Body:         body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		Payload: events.TicketCommentAddedPayload{
			CommentID:    comment.ID,
			AuthorUserID: comment.AuthorUserID,
			BodyPreview:  bodyPreview(comment.Body, 120),
		},
	})
	return comment, nil
}

// ListByTicket returns the ticket's thread oldest-first; conversations read
// top to bottom.
func (s *CommentService) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketComment, error) {
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// ListByAuthor returns an author's comments newest-first; this view is a
// recent-activity feed, not a conversation.
func (s *CommentService) ListByAuthor(ctx context.Context, authorUserID string) ([]domain.TicketComment, error) {
	comments, err := s.comments.ListByAuthor(ctx, authorUserID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// Update replaces the body only; author, ticket and creation time are
// immutable.
func (s *CommentService) Update(ctx context.Context, id, newBody string, version int64) (*domain.TicketComment, error) {
	newBody = strings.TrimSpace(newBody)
	if newBody == "" {
		return nil, apperrors.NewValidationError("comment body required", nil)
	}
	if version <= 0 {
		return nil, apperrors.NewValidationError("version required", nil)
	}

	comment, err := s.resolver.Comment(ctx, id)
	if err != nil {
		return nil, err
	}

	comment.Body = newBody
	comment.Version = version
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, mapRepoError(err, "comment", map[string]any{"comment_id": id})
	}
	return comment, nil
}

// Delete removes a comment after the existence check.
func (s *CommentService) Delete(ctx context.Context, id string) error {
	if _, err := s.resolver.Comment(ctx, id); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return mapRepoError(err, "comment", map[string]any{"comment_id": id})
	}
	return nil
}

func (s *CommentService) publishEvent(ctx context.Context, event events.Event) {
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

// bodyPreview truncates on rune boundaries so multibyte text survives the
// cut intact.
func bodyPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
