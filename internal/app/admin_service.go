package app

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/clock"
	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

type AdminRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetTrip(ctx context.Context, tripID string) (domain.Trip, error)
	GetTicketBySeatForUpdate(ctx context.Context, tripID string, seatNumber int) (domain.Ticket, error)
	LowestAvailableTicketForUpdate(ctx context.Context, tripID string) (domain.Ticket, error)
	TransitionTicket(ctx context.Context, ticketID string, from, to domain.TicketStatus) error
	ApplyTicketDiscount(ctx context.Context, ticketID string, price int, discount domain.DiscountType, documentURL string) error
	CreateBooking(ctx context.Context, booking domain.Booking) error
	ListAllBookings(ctx context.Context, tripID string) ([]domain.BookingDetail, error)
	ListConfirmedBookingsByTrip(ctx context.Context, tripID string) ([]domain.BookingDetail, error)
}

// AdminService holds the privileged overrides. Authorization is enforced at
// the transport layer; this service assumes the caller is an administrator.
type AdminService struct {
	repo     AdminRepository
	bookings *BookingService
	clock    clock.Clock
}

func NewAdminService(repo AdminRepository, bookings *BookingService, clk clock.Clock) *AdminService {
	return &AdminService{
		repo:     repo,
		bookings: bookings,
		clock:    clk,
	}
}

type ManualBookingInput struct {
	UserID string
	TripID string
	// SeatNumber 0 means pick the lowest-numbered available seat.
	SeatNumber int
	// Price 0 means default by discount type.
	Price        int
	DiscountType domain.DiscountType
}

// ManualBooking creates an out-of-band booking, bypassing the hold step. A
// requested seat must be available (ErrSeatTaken otherwise); with no seat
// given the lowest available one is used (ErrTripFull when none).
func (s *AdminService) ManualBooking(ctx context.Context, in ManualBookingInput) (domain.Booking, error) {
	if in.UserID == "" || in.TripID == "" {
		return domain.Booking{}, domain.ErrInvalidID
	}
	if in.DiscountType == "" {
		in.DiscountType = domain.DiscountNone
	}
	if !in.DiscountType.Valid() {
		return domain.Booking{}, domain.ErrInvalidDiscount
	}
	price := in.Price
	if price <= 0 {
		price = priceFor(in.DiscountType)
	}

	now := s.clock.Now()
	var result domain.Booking

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetTrip(txCtx, in.TripID); err != nil {
			return err
		}

		var ticket domain.Ticket
		if in.SeatNumber > 0 {
			t, err := s.repo.GetTicketBySeatForUpdate(txCtx, in.TripID, in.SeatNumber)
			if err != nil {
				return err
			}
			if t.Status != domain.TicketStatusAvailable {
				return domain.ErrSeatTaken
			}
			ticket = t
		} else {
			t, err := s.repo.LowestAvailableTicketForUpdate(txCtx, in.TripID)
			if err != nil {
				if errors.Is(err, domain.ErrNoSeatsAvailable) {
					return domain.ErrTripFull
				}
				return err
			}
			ticket = t
		}

		err := s.repo.TransitionTicket(txCtx, ticket.ID, domain.TicketStatusAvailable, domain.TicketStatusBooked)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidTicketState) {
				return domain.ErrSeatTaken
			}
			return err
		}
		if err := s.repo.ApplyTicketDiscount(txCtx, ticket.ID, price, in.DiscountType, ""); err != nil {
			return err
		}

		booking, err := insertBookingWithReference(txCtx, s.repo, domain.Booking{
			ID:           uuid.NewString(),
			UserID:       in.UserID,
			TripID:       in.TripID,
			TicketID:     ticket.ID,
			Status:       domain.BookingStatusConfirmed,
			Price:        price,
			DiscountType: in.DiscountType,
			CreatedAt:    now,
		}, now)
		if err != nil {
			return err
		}
		result = booking
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return result, nil
}

// ListBookings returns every booking in the system, newest first. A non-empty
// tripID narrows the list to that trip.
func (s *AdminService) ListBookings(ctx context.Context, tripID string) ([]domain.BookingDetail, error) {
	return s.repo.ListAllBookings(ctx, tripID)
}

// TripRoster returns the trip's confirmed passengers in seat order together
// with the booked and open seat counts.
func (s *AdminService) TripRoster(ctx context.Context, tripID string) (domain.TripRoster, error) {
	if tripID == "" {
		return domain.TripRoster{}, domain.ErrInvalidID
	}
	trip, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		return domain.TripRoster{}, err
	}
	entries, err := s.repo.ListConfirmedBookingsByTrip(ctx, tripID)
	if err != nil {
		return domain.TripRoster{}, err
	}
	return domain.TripRoster{
		Trip: domain.TripAvailability{
			Trip:           trip,
			BookedSeats:    len(entries),
			AvailableSeats: trip.TotalSeats - len(entries),
		},
		Entries: entries,
	}, nil
}

// CancelBooking delegates to the booking engine; no extra rules apply beyond
// the admin privilege checked upstream.
func (s *AdminService) CancelBooking(ctx context.Context, in CancelInput) (domain.Booking, error) {
	return s.bookings.Cancel(ctx, in)
}

// RescheduleBooking delegates to the booking engine.
func (s *AdminService) RescheduleBooking(ctx context.Context, bookingID, newTripID string) (domain.Booking, error) {
	return s.bookings.Reschedule(ctx, bookingID, newTripID)
}
