package domain

import "time"

// Hold is a user's temporary claim on a ticket (cart entry). At most one
// active hold exists per (user, ticket) pair.
type Hold struct {
	ID        string
	UserID    string
	TicketID  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the hold's TTL has elapsed at the given instant.
func (h Hold) Expired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}

// CartItem is a hold joined with its ticket and trip for listing.
type CartItem struct {
	Hold   Hold
	Ticket Ticket
	Trip   Trip
}
