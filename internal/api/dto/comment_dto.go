package dto

import "time"

// CreateCommentRequest payload. The author is taken from the authenticated
// principal, not from the body.
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// UpdateCommentRequest payload. Only the body is editable.
type UpdateCommentRequest struct {
	Body    string `json:"body"`
	Version int64  `json:"version"`
}

// CommentResponse is the outward comment shape.
type CommentResponse struct {
	ID           string    `json:"id"`
	TicketID     string    `json:"ticket_id"`
	AuthorUserID string    `json:"author_user_id"`
	Body         string    `json:"body"`
	Version      int64     `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
}
