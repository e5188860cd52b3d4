package domain

import "time"

type TicketStatus string

const (
	TicketStatusAvailable TicketStatus = "available"
	TicketStatusHeld      TicketStatus = "held"
	TicketStatusBooked    TicketStatus = "booked"
)

type DiscountType string

const (
	DiscountNone      DiscountType = "NONE"
	DiscountPensioner DiscountType = "PENSIONER"
	DiscountStudent   DiscountType = "STUDENT"
)

// Valid reports whether d is a known discount type.
func (d DiscountType) Valid() bool {
	switch d {
	case DiscountNone, DiscountPensioner, DiscountStudent:
		return true
	}
	return false
}

// Ticket is one seat slot on one trip; the unit of inventory.
// Legal transitions: available ⇄ held → booked → available.
type Ticket struct {
	ID                  string
	TripID              string
	SeatNumber          int
	Reference           string
	Status              TicketStatus
	Price               int // whole N$
	DiscountType        DiscountType
	DiscountDocumentURL string
	CreatedAt           time.Time
}
