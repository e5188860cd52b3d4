package app

import (
	"context"
	"sort"
	"time"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

// fakeStore backs the service tests with an in-memory copy of the schema. It
// implements every repository interface in this package.
type fakeStore struct {
	trips    map[string]domain.Trip
	tickets  map[string]*domain.Ticket
	holds    map[string]*domain.Hold
	bookings map[string]*domain.Booking
	refs     map[string]bool

	// refCollisions forces the next N CreateBooking calls to report a
	// reference collision.
	refCollisions int

	// beforeTx runs at the start of WithTx, standing in for a concurrent
	// writer that commits before this transaction takes its locks.
	beforeTx func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		trips:    make(map[string]domain.Trip),
		tickets:  make(map[string]*domain.Ticket),
		holds:    make(map[string]*domain.Hold),
		bookings: make(map[string]*domain.Booking),
		refs:     make(map[string]bool),
	}
}

func (f *fakeStore) addTrip(trip domain.Trip) {
	f.trips[trip.ID] = trip
}

func (f *fakeStore) addTicket(ticket domain.Ticket) {
	t := ticket
	f.tickets[t.ID] = &t
}

func (f *fakeStore) addHold(hold domain.Hold) {
	h := hold
	f.holds[h.ID] = &h
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.beforeTx != nil {
		f.beforeTx()
	}
	return fn(ctx)
}

func (f *fakeStore) GetTicketForUpdate(_ context.Context, ticketID string) (domain.Ticket, error) {
	t, ok := f.tickets[ticketID]
	if !ok {
		return domain.Ticket{}, domain.ErrNotFound
	}
	return *t, nil
}

func (f *fakeStore) TransitionTicket(_ context.Context, ticketID string, from, to domain.TicketStatus) error {
	t, ok := f.tickets[ticketID]
	if !ok {
		return domain.ErrNotFound
	}
	if t.Status != from {
		return domain.ErrInvalidTicketState
	}
	t.Status = to
	return nil
}

func (f *fakeStore) ApplyTicketDiscount(_ context.Context, ticketID string, price int, discount domain.DiscountType, documentURL string) error {
	t, ok := f.tickets[ticketID]
	if !ok {
		return domain.ErrNotFound
	}
	t.Price = price
	t.DiscountType = discount
	t.DiscountDocumentURL = documentURL
	return nil
}

func (f *fakeStore) FindHold(_ context.Context, userID, ticketID string) (*domain.Hold, error) {
	for _, h := range f.holds {
		if h.UserID == userID && h.TicketID == ticketID {
			cp := *h
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateHold(_ context.Context, hold domain.Hold) error {
	for _, h := range f.holds {
		if h.UserID == hold.UserID && h.TicketID == hold.TicketID {
			return domain.ErrTicketUnavailable
		}
	}
	f.addHold(hold)
	return nil
}

func (f *fakeStore) DeleteHold(_ context.Context, holdID string) error {
	if _, ok := f.holds[holdID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.holds, holdID)
	return nil
}

func (f *fakeStore) ListHoldsByUser(_ context.Context, userID string) ([]domain.Hold, error) {
	var out []domain.Hold
	for _, h := range f.holds {
		if h.UserID == userID {
			out = append(out, *h)
		}
	}
	sortHolds(out)
	return out, nil
}

func (f *fakeStore) ListExpiredHolds(_ context.Context, now time.Time) ([]domain.Hold, error) {
	var out []domain.Hold
	for _, h := range f.holds {
		if h.Expired(now) {
			out = append(out, *h)
		}
	}
	sortHolds(out)
	return out, nil
}

func (f *fakeStore) ListCartItems(_ context.Context, userID string) ([]domain.CartItem, error) {
	var out []domain.CartItem
	for _, h := range f.holds {
		if h.UserID != userID {
			continue
		}
		item, err := f.cartItem(*h)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hold.ID < out[j].Hold.ID })
	return out, nil
}

func (f *fakeStore) GetCartItemForUpdate(_ context.Context, userID, ticketID string) (*domain.CartItem, error) {
	for _, h := range f.holds {
		if h.UserID == userID && h.TicketID == ticketID {
			item, err := f.cartItem(*h)
			if err != nil {
				return nil, err
			}
			return &item, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) cartItem(h domain.Hold) (domain.CartItem, error) {
	ticket, ok := f.tickets[h.TicketID]
	if !ok {
		return domain.CartItem{}, domain.ErrNotFound
	}
	trip, ok := f.trips[ticket.TripID]
	if !ok {
		return domain.CartItem{}, domain.ErrNotFound
	}
	return domain.CartItem{Hold: h, Ticket: *ticket, Trip: trip}, nil
}

func (f *fakeStore) CreateBooking(_ context.Context, booking domain.Booking) error {
	if f.refCollisions > 0 {
		f.refCollisions--
		return domain.ErrDuplicateReference
	}
	if f.refs[booking.Reference] {
		return domain.ErrDuplicateReference
	}
	for _, b := range f.bookings {
		if b.TicketID == booking.TicketID && b.Status == domain.BookingStatusConfirmed {
			return domain.ErrTicketUnavailable
		}
	}
	f.refs[booking.Reference] = true
	b := booking
	f.bookings[b.ID] = &b
	return nil
}

func (f *fakeStore) GetBooking(_ context.Context, bookingID string) (domain.Booking, error) {
	b, ok := f.bookings[bookingID]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return *b, nil
}

func (f *fakeStore) GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error) {
	return f.GetBooking(ctx, bookingID)
}

func (f *fakeStore) SetBookingStatus(_ context.Context, bookingID string, status domain.BookingStatus, refundReference string) error {
	b, ok := f.bookings[bookingID]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = status
	if refundReference != "" {
		b.RefundReference = refundReference
	}
	return nil
}

func (f *fakeStore) RebindBooking(_ context.Context, bookingID, tripID, ticketID string) error {
	b, ok := f.bookings[bookingID]
	if !ok {
		return domain.ErrNotFound
	}
	b.TripID = tripID
	b.TicketID = ticketID
	return nil
}

func (f *fakeStore) GetTrip(_ context.Context, tripID string) (domain.Trip, error) {
	trip, ok := f.trips[tripID]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	return trip, nil
}

func (f *fakeStore) GetTicketBySeatForUpdate(_ context.Context, tripID string, seatNumber int) (domain.Ticket, error) {
	for _, t := range f.tickets {
		if t.TripID == tripID && t.SeatNumber == seatNumber {
			return *t, nil
		}
	}
	return domain.Ticket{}, domain.ErrNotFound
}

func (f *fakeStore) LowestAvailableTicketForUpdate(_ context.Context, tripID string) (domain.Ticket, error) {
	var best *domain.Ticket
	for _, t := range f.tickets {
		if t.TripID != tripID || t.Status != domain.TicketStatusAvailable {
			continue
		}
		if best == nil || t.SeatNumber < best.SeatNumber {
			best = t
		}
	}
	if best == nil {
		return domain.Ticket{}, domain.ErrNoSeatsAvailable
	}
	return *best, nil
}

func (f *fakeStore) ListBookingsByUser(_ context.Context, userID string) ([]domain.BookingDetail, error) {
	var out []domain.BookingDetail
	for _, b := range f.bookings {
		if b.UserID != userID {
			continue
		}
		out = append(out, f.bookingDetail(*b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) ListAllBookings(_ context.Context, tripID string) ([]domain.BookingDetail, error) {
	var out []domain.BookingDetail
	for _, b := range f.bookings {
		if tripID != "" && b.TripID != tripID {
			continue
		}
		out = append(out, f.bookingDetail(*b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) ListConfirmedBookingsByTrip(_ context.Context, tripID string) ([]domain.BookingDetail, error) {
	var out []domain.BookingDetail
	for _, b := range f.bookings {
		if b.TripID != tripID || b.Status != domain.BookingStatusConfirmed {
			continue
		}
		out = append(out, f.bookingDetail(*b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (f *fakeStore) bookingDetail(b domain.Booking) domain.BookingDetail {
	detail := domain.BookingDetail{Booking: b}
	if t, ok := f.tickets[b.TicketID]; ok {
		detail.SeatNumber = t.SeatNumber
	}
	if trip, ok := f.trips[b.TripID]; ok {
		detail.Trip = trip
	}
	return detail
}

func (f *fakeStore) TripExists(_ context.Context, date time.Time, departureTime, route string) (bool, error) {
	for _, trip := range f.trips {
		if trip.Date.Equal(date) && trip.DepartureTime == departureTime && trip.Route == route {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateTrip(_ context.Context, trip domain.Trip) error {
	for _, existing := range f.trips {
		if existing.Date.Equal(trip.Date) && existing.DepartureTime == trip.DepartureTime && existing.Route == trip.Route {
			return domain.ErrDuplicateTrip
		}
	}
	f.trips[trip.ID] = trip
	return nil
}

func (f *fakeStore) CreateTickets(_ context.Context, tickets []domain.Ticket) error {
	for _, t := range tickets {
		if f.refs[t.Reference] {
			return domain.ErrDuplicateReference
		}
		f.refs[t.Reference] = true
		f.addTicket(t)
	}
	return nil
}

func (f *fakeStore) ListTripsWithAvailability(_ context.Context, from, to time.Time) ([]domain.TripAvailability, error) {
	var out []domain.TripAvailability
	for _, trip := range f.trips {
		if trip.Date.Before(from) || trip.Date.After(to) {
			continue
		}
		avail := domain.TripAvailability{Trip: trip}
		for _, t := range f.tickets {
			if t.TripID != trip.ID {
				continue
			}
			switch t.Status {
			case domain.TicketStatusAvailable:
				avail.AvailableSeats++
			case domain.TicketStatusBooked:
				avail.BookedSeats++
			}
		}
		out = append(out, avail)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeStore) ListAvailableTickets(_ context.Context, tripID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range f.tickets {
		if t.TripID == tripID && t.Status == domain.TicketStatusAvailable {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func sortHolds(holds []domain.Hold) {
	sort.Slice(holds, func(i, j int) bool { return holds[i].ID < holds[j].ID })
}
