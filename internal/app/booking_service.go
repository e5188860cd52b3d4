package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/clock"
	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetCartItemForUpdate(ctx context.Context, userID, ticketID string) (*domain.CartItem, error)
	TransitionTicket(ctx context.Context, ticketID string, from, to domain.TicketStatus) error
	ApplyTicketDiscount(ctx context.Context, ticketID string, price int, discount domain.DiscountType, documentURL string) error
	CreateBooking(ctx context.Context, booking domain.Booking) error
	DeleteHold(ctx context.Context, holdID string) error
	GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error)
	SetBookingStatus(ctx context.Context, bookingID string, status domain.BookingStatus, refundReference string) error
	RebindBooking(ctx context.Context, bookingID, tripID, ticketID string) error
	GetTrip(ctx context.Context, tripID string) (domain.Trip, error)
	LowestAvailableTicketForUpdate(ctx context.Context, tripID string) (domain.Ticket, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]domain.BookingDetail, error)
}

// BookingService performs the atomic hold→booking conversion and the
// booking→cancellation/reschedule transitions.
type BookingService struct {
	repo          BookingRepository
	gateway       RefundGateway
	notifier      Notifier
	clock         clock.Clock
	refundTimeout time.Duration
}

const defaultRefundTimeout = 30 * time.Second

func NewBookingService(repo BookingRepository, gateway RefundGateway, notifier Notifier, clk clock.Clock, opts ...BookingServiceOption) *BookingService {
	svc := &BookingService{
		repo:          repo,
		gateway:       gateway,
		notifier:      notifier,
		clock:         clk,
		refundTimeout: defaultRefundTimeout,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type BookingServiceOption func(*BookingService)

// WithRefundTimeout bounds the blocking refund call during cancellation.
func WithRefundTimeout(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if d > 0 {
			s.refundTimeout = d
		}
	}
}

type CheckoutInput struct {
	UserID       string
	TicketIDs    []string
	DiscountType domain.DiscountType
	// DiscountDocuments holds per-ticket proof URLs, index-aligned with
	// TicketIDs. Recorded for later administrative review; the discount is
	// applied immediately regardless.
	DiscountDocuments []string
}

type bookingNotice struct {
	booking domain.Booking
	trip    domain.Trip
	seat    int
}

// Checkout converts the user's holds on the given tickets into confirmed
// bookings, one booking per seat. All-or-nothing: any missing, expired or
// foreign hold fails the whole set with ErrHoldInvalid and no state changes.
func (s *BookingService) Checkout(ctx context.Context, in CheckoutInput) ([]domain.Booking, error) {
	if in.UserID == "" {
		return nil, domain.ErrInvalidID
	}
	if len(in.TicketIDs) == 0 {
		return nil, domain.ErrHoldInvalid
	}
	if in.DiscountType == "" {
		in.DiscountType = domain.DiscountNone
	}
	if !in.DiscountType.Valid() {
		return nil, domain.ErrInvalidDiscount
	}

	now := s.clock.Now()
	unit := priceFor(in.DiscountType)

	var (
		bookings []domain.Booking
		notices  []bookingNotice
	)
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		bookings = bookings[:0]
		notices = notices[:0]

		items := make([]domain.CartItem, 0, len(in.TicketIDs))
		for _, ticketID := range in.TicketIDs {
			item, err := s.repo.GetCartItemForUpdate(txCtx, in.UserID, ticketID)
			if err != nil {
				return err
			}
			if item == nil || item.Hold.Expired(now) || item.Ticket.Status != domain.TicketStatusHeld {
				return domain.ErrHoldInvalid
			}
			items = append(items, *item)
		}

		for i, item := range items {
			err := s.repo.TransitionTicket(txCtx, item.Ticket.ID, domain.TicketStatusHeld, domain.TicketStatusBooked)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidTicketState) {
					// Lost the race to a concurrent expiry sweep.
					return domain.ErrHoldInvalid
				}
				return err
			}

			if in.DiscountType != domain.DiscountNone {
				doc := ""
				if i < len(in.DiscountDocuments) {
					doc = in.DiscountDocuments[i]
				}
				if err := s.repo.ApplyTicketDiscount(txCtx, item.Ticket.ID, unit, in.DiscountType, doc); err != nil {
					return err
				}
			}

			booking, err := insertBookingWithReference(txCtx, s.repo, domain.Booking{
				ID:           uuid.NewString(),
				UserID:       in.UserID,
				TripID:       item.Ticket.TripID,
				TicketID:     item.Ticket.ID,
				Status:       domain.BookingStatusConfirmed,
				Price:        unit,
				DiscountType: in.DiscountType,
				CreatedAt:    now,
			}, now)
			if err != nil {
				return err
			}
			if err := s.repo.DeleteHold(txCtx, item.Hold.ID); err != nil {
				return err
			}

			bookings = append(bookings, booking)
			notices = append(notices, bookingNotice{booking: booking, trip: item.Trip, seat: item.Ticket.SeatNumber})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Notifications only after the whole set committed.
	if s.notifier != nil {
		for _, n := range notices {
			s.notifier.BookingConfirmed(ctx, in.UserID, n.booking, n.trip, n.seat)
		}
	}
	return bookings, nil
}

type CancelInput struct {
	BookingID string
	Reason    string
	// RequestedBy restricts cancellation to the booking's owner. Empty means
	// a privileged caller; ownership is not checked.
	RequestedBy string
}

// Cancel terminates a confirmed booking and releases its seat. When the
// booking carries a payment reference the refund runs first, under the
// booking's row lock; a declined or timed-out refund aborts the cancellation
// with no state change.
func (s *BookingService) Cancel(ctx context.Context, in CancelInput) (domain.Booking, error) {
	var (
		result       domain.Booking
		refundIssued bool
		refundRef    string
	)
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingForUpdate(txCtx, in.BookingID)
		if err != nil {
			return err
		}
		if in.RequestedBy != "" && booking.UserID != in.RequestedBy {
			// Do not reveal other users' bookings.
			return domain.ErrNotFound
		}
		if booking.Status != domain.BookingStatusConfirmed {
			return domain.ErrAlreadyTerminal
		}

		target := domain.BookingStatusCancelled
		if booking.PaymentReference != "" {
			// Holding the row lock across the refund call serializes
			// concurrent cancellations: the loser blocks, then sees the
			// terminal status instead of issuing a second refund. The
			// refundIssued flag keeps a transaction retry from calling the
			// gateway again.
			if !refundIssued {
				if s.gateway == nil {
					return domain.ErrRefundFailed
				}
				reason := in.Reason
				if reason == "" {
					reason = "booking cancellation"
				}
				rctx, cancelTimeout := context.WithTimeout(txCtx, s.refundTimeout)
				res, err := s.gateway.Refund(rctx, RefundRequest{
					PaymentReference: booking.PaymentReference,
					Amount:           booking.Price,
					Reason:           reason,
				})
				cancelTimeout()
				if err != nil || !res.Success {
					return domain.ErrRefundFailed
				}
				refundIssued = true
				refundRef = res.RefundReference
			}
			target = domain.BookingStatusRefunded
		}

		if err := s.repo.SetBookingStatus(txCtx, in.BookingID, target, refundRef); err != nil {
			return err
		}
		if err := s.repo.TransitionTicket(txCtx, booking.TicketID, domain.TicketStatusBooked, domain.TicketStatusAvailable); err != nil {
			return err
		}

		booking.Status = target
		booking.RefundReference = refundRef
		result = booking
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return result, nil
}

// Reschedule moves a confirmed booking to the lowest-numbered available seat
// on the target trip. Release of the old seat and binding of the new one
// happen in one transaction; any failure rolls both back.
func (s *BookingService) Reschedule(ctx context.Context, bookingID, newTripID string) (domain.Booking, error) {
	if bookingID == "" || newTripID == "" {
		return domain.Booking{}, domain.ErrInvalidID
	}

	var result domain.Booking
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != domain.BookingStatusConfirmed {
			return domain.ErrAlreadyTerminal
		}
		if _, err := s.repo.GetTrip(txCtx, newTripID); err != nil {
			return err
		}

		newTicket, err := s.repo.LowestAvailableTicketForUpdate(txCtx, newTripID)
		if err != nil {
			return err
		}

		if err := s.repo.TransitionTicket(txCtx, booking.TicketID, domain.TicketStatusBooked, domain.TicketStatusAvailable); err != nil {
			return err
		}
		err = s.repo.TransitionTicket(txCtx, newTicket.ID, domain.TicketStatusAvailable, domain.TicketStatusBooked)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidTicketState) {
				return domain.ErrNoSeatsAvailable
			}
			return err
		}
		if err := s.repo.RebindBooking(txCtx, bookingID, newTripID, newTicket.ID); err != nil {
			return err
		}

		booking.TripID = newTripID
		booking.TicketID = newTicket.ID
		result = booking
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return result, nil
}

// ListBookings returns the user's bookings with trip and seat details.
func (s *BookingService) ListBookings(ctx context.Context, userID string) ([]domain.BookingDetail, error) {
	if userID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListBookingsByUser(ctx, userID)
}
