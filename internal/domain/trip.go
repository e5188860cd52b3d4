package domain

import "time"

// Trip is one scheduled departure. The (Date, DepartureTime, Route) triple is
// unique; trips are created in bulk by the generator and never deleted.
type Trip struct {
	ID            string
	Date          time.Time // calendar day, midnight UTC
	DepartureTime string    // time of day, e.g. "07:00"
	Route         string
	TotalSeats    int
	CreatedAt     time.Time
}

// TripAvailability is a trip with its current seat counts.
type TripAvailability struct {
	Trip
	BookedSeats    int
	AvailableSeats int
}
