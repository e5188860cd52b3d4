package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusRefunded  BookingStatus = "refunded"
)

// Booking is a confirmed (or terminated) sale of one ticket to one user.
// While confirmed, its ticket must be booked; cancellation and refund release
// the ticket back to available.
type Booking struct {
	ID               string
	UserID           string
	TripID           string
	TicketID         string
	Reference        string
	Status           BookingStatus
	Price            int
	DiscountType     DiscountType
	PaymentReference string
	RefundReference  string
	CreatedAt        time.Time
}

// BookingDetail is a booking joined with its trip and seat for listing.
type BookingDetail struct {
	Booking
	Trip       Trip
	SeatNumber int
}

// TripRoster is one trip's confirmed passenger list in seat order, with the
// seat counts staff check a bus against.
type TripRoster struct {
	Trip    TripAvailability
	Entries []BookingDetail
}
