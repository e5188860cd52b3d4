package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *BookingRepository) GetCartItemForUpdate(ctx context.Context, userID, ticketID string) (*domain.CartItem, error) {
	const query = `
SELECT h.id, h.user_id, h.ticket_id, h.created_at, h.expires_at,
       tk.id, tk.trip_id, tk.seat_number, tk.reference, tk.status, tk.price, tk.discount_type, COALESCE(tk.discount_document_url, ''), tk.created_at,
       t.id, t.date, t.departure_time, t.route, t.total_seats, t.created_at
FROM holds h
JOIN tickets tk ON tk.id = h.ticket_id
JOIN trips t ON t.id = tk.trip_id
WHERE h.user_id = $1 AND h.ticket_id = $2
FOR UPDATE OF h, tk`

	var (
		item     domain.CartItem
		status   string
		discount string
	)
	err := queryer(ctx, r.pool).QueryRow(ctx, query, userID, ticketID).Scan(
		&item.Hold.ID, &item.Hold.UserID, &item.Hold.TicketID, &item.Hold.CreatedAt, &item.Hold.ExpiresAt,
		&item.Ticket.ID, &item.Ticket.TripID, &item.Ticket.SeatNumber, &item.Ticket.Reference, &status, &item.Ticket.Price, &discount, &item.Ticket.DiscountDocumentURL, &item.Ticket.CreatedAt,
		&item.Trip.ID, &item.Trip.Date, &item.Trip.DepartureTime, &item.Trip.Route, &item.Trip.TotalSeats, &item.Trip.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	item.Ticket.Status = domain.TicketStatus(status)
	item.Ticket.DiscountType = domain.DiscountType(discount)
	return &item, nil
}

func (r *BookingRepository) TransitionTicket(ctx context.Context, ticketID string, from, to domain.TicketStatus) error {
	return transitionTicket(ctx, queryer(ctx, r.pool), ticketID, from, to)
}

func (r *BookingRepository) ApplyTicketDiscount(ctx context.Context, ticketID string, price int, discount domain.DiscountType, documentURL string) error {
	const stmt = `
UPDATE tickets
SET price = $2, discount_type = $3, discount_document_url = NULLIF($4, '')
WHERE id = $1`

	tag, err := queryer(ctx, r.pool).Exec(ctx, stmt, ticketID, price, discount, documentURL)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("apply ticket discount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateBooking inserts the booking row. A reference-code collision reports
// ErrDuplicateReference without aborting the surrounding transaction, so the
// caller can retry with a fresh code.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking domain.Booking) error {
	const stmt = `
INSERT INTO bookings (id, user_id, trip_id, ticket_id, reference, status, price, discount_type, payment_reference, refund_reference, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), $11)
ON CONFLICT ON CONSTRAINT bookings_reference_key DO NOTHING`

	tag, err := queryer(ctx, r.pool).Exec(ctx, stmt,
		booking.ID,
		booking.UserID,
		booking.TripID,
		booking.TicketID,
		booking.Reference,
		booking.Status,
		booking.Price,
		booking.DiscountType,
		booking.PaymentReference,
		booking.RefundReference,
		booking.CreatedAt,
	)
	if err != nil {
		if uniqueConstraint(err) == "bookings_confirmed_ticket_key" {
			return domain.ErrTicketUnavailable
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateReference
	}
	return nil
}

func (r *BookingRepository) DeleteHold(ctx context.Context, holdID string) error {
	const stmt = `DELETE FROM holds WHERE id = $1`

	tag, err := queryer(ctx, r.pool).Exec(ctx, stmt, holdID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete hold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const bookingColumns = `id, user_id, trip_id, ticket_id, reference, status, price, discount_type, COALESCE(payment_reference, ''), COALESCE(refund_reference, ''), created_at`

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var (
		b        domain.Booking
		status   string
		discount string
	)
	err := row.Scan(&b.ID, &b.UserID, &b.TripID, &b.TicketID, &b.Reference, &status, &b.Price, &discount, &b.PaymentReference, &b.RefundReference, &b.CreatedAt)
	if err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	b.DiscountType = domain.DiscountType(discount)
	return b, nil
}

func (r *BookingRepository) GetBooking(ctx context.Context, bookingID string) (domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.getBooking(ctx, query, bookingID)
}

func (r *BookingRepository) GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	return r.getBooking(ctx, query, bookingID)
}

func (r *BookingRepository) getBooking(ctx context.Context, query, bookingID string) (domain.Booking, error) {
	b, err := scanBooking(queryer(ctx, r.pool).QueryRow(ctx, query, bookingID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Booking{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) SetBookingStatus(ctx context.Context, bookingID string, status domain.BookingStatus, refundReference string) error {
	const stmt = `
UPDATE bookings
SET status = $2, refund_reference = NULLIF($3, '')
WHERE id = $1`

	tag, err := queryer(ctx, r.pool).Exec(ctx, stmt, bookingID, status, refundReference)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) RebindBooking(ctx context.Context, bookingID, tripID, ticketID string) error {
	const stmt = `UPDATE bookings SET trip_id = $2, ticket_id = $3 WHERE id = $1`

	tag, err := queryer(ctx, r.pool).Exec(ctx, stmt, bookingID, tripID, ticketID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("rebind booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) GetTrip(ctx context.Context, tripID string) (domain.Trip, error) {
	const query = `SELECT id, date, departure_time, route, total_seats, created_at FROM trips WHERE id = $1`

	var t domain.Trip
	err := queryer(ctx, r.pool).QueryRow(ctx, query, tripID).
		Scan(&t.ID, &t.Date, &t.DepartureTime, &t.Route, &t.TotalSeats, &t.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Trip{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, fmt.Errorf("get trip: %w", err)
	}
	return t, nil
}

func (r *BookingRepository) GetTicketBySeatForUpdate(ctx context.Context, tripID string, seatNumber int) (domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE trip_id = $1 AND seat_number = $2 FOR UPDATE`

	t, err := scanTicket(queryer(ctx, r.pool).QueryRow(ctx, query, tripID, seatNumber))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Ticket{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Ticket{}, domain.ErrNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket by seat: %w", err)
	}
	return t, nil
}

// LowestAvailableTicketForUpdate locks and returns the deterministic seat
// pick: the lowest-numbered available ticket on the trip.
func (r *BookingRepository) LowestAvailableTicketForUpdate(ctx context.Context, tripID string) (domain.Ticket, error) {
	query := `
SELECT ` + ticketColumns + `
FROM tickets
WHERE trip_id = $1 AND status = 'available'
ORDER BY seat_number ASC
LIMIT 1
FOR UPDATE`

	t, err := scanTicket(queryer(ctx, r.pool).QueryRow(ctx, query, tripID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Ticket{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Ticket{}, domain.ErrNoSeatsAvailable
		}
		return domain.Ticket{}, fmt.Errorf("find available ticket: %w", err)
	}
	return t, nil
}

const bookingDetailQuery = `
SELECT b.id, b.user_id, b.trip_id, b.ticket_id, b.reference, b.status, b.price, b.discount_type, COALESCE(b.payment_reference, ''), COALESCE(b.refund_reference, ''), b.created_at,
       t.id, t.date, t.departure_time, t.route, t.total_seats, t.created_at,
       tk.seat_number
FROM bookings b
JOIN trips t ON t.id = b.trip_id
JOIN tickets tk ON tk.id = b.ticket_id`

func (r *BookingRepository) ListBookingsByUser(ctx context.Context, userID string) ([]domain.BookingDetail, error) {
	query := bookingDetailQuery + ` WHERE b.user_id = $1 ORDER BY b.created_at DESC`
	return r.queryBookingDetails(ctx, query, userID)
}

// ListAllBookings serves the staff overview: every booking regardless of
// owner, newest first, optionally narrowed to one trip.
func (r *BookingRepository) ListAllBookings(ctx context.Context, tripID string) ([]domain.BookingDetail, error) {
	if tripID == "" {
		return r.queryBookingDetails(ctx, bookingDetailQuery+` ORDER BY b.created_at DESC`)
	}
	query := bookingDetailQuery + ` WHERE b.trip_id = $1 ORDER BY b.created_at DESC`
	return r.queryBookingDetails(ctx, query, tripID)
}

// ListConfirmedBookingsByTrip returns the trip's passenger roster in seat
// order.
func (r *BookingRepository) ListConfirmedBookingsByTrip(ctx context.Context, tripID string) ([]domain.BookingDetail, error) {
	query := bookingDetailQuery + ` WHERE b.trip_id = $1 AND b.status = 'confirmed' ORDER BY tk.seat_number ASC`
	return r.queryBookingDetails(ctx, query, tripID)
}

func (r *BookingRepository) queryBookingDetails(ctx context.Context, query string, args ...any) ([]domain.BookingDetail, error) {
	rows, err := queryer(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []domain.BookingDetail
	for rows.Next() {
		var (
			d        domain.BookingDetail
			status   string
			discount string
		)
		err := rows.Scan(
			&d.ID, &d.UserID, &d.TripID, &d.TicketID, &d.Reference, &status, &d.Price, &discount, &d.PaymentReference, &d.RefundReference, &d.CreatedAt,
			&d.Trip.ID, &d.Trip.Date, &d.Trip.DepartureTime, &d.Trip.Route, &d.Trip.TotalSeats, &d.Trip.CreatedAt,
			&d.SeatNumber,
		)
		if err != nil {
			if isInvalidUUID(err) {
				return nil, domain.ErrInvalidID
			}
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		d.Status = domain.BookingStatus(status)
		d.DiscountType = domain.DiscountType(discount)
		bookings = append(bookings, d)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate bookings: %w", rows.Err())
	}
	return bookings, nil
}
