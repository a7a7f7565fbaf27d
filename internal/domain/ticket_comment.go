package domain

import "time"

// TicketComment is an append-only message attached to exactly one Ticket and
// authored by exactly one User. Only the body may later be edited; author,
// ticket and creation time are immutable.
type TicketComment struct {
	ID           string
	Version      int64
	TicketID     string
	AuthorUserID string
	Body         string
	CreatedAt    time.Time
}
