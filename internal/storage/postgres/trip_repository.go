package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

type TripRepository struct {
	pool *pgxpool.Pool
}

func NewTripRepository(pool *pgxpool.Pool) *TripRepository {
	return &TripRepository{pool: pool}
}

func (r *TripRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *TripRepository) TripExists(ctx context.Context, date time.Time, departureTime, route string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM trips WHERE date = $1 AND departure_time = $2 AND route = $3)`

	var exists bool
	if err := queryer(ctx, r.pool).QueryRow(ctx, query, date, departureTime, route).Scan(&exists); err != nil {
		return false, fmt.Errorf("check trip: %w", err)
	}
	return exists, nil
}

func (r *TripRepository) CreateTrip(ctx context.Context, trip domain.Trip) error {
	const stmt = `
INSERT INTO trips (id, date, departure_time, route, total_seats, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := queryer(ctx, r.pool).Exec(ctx, stmt,
		trip.ID,
		trip.Date,
		trip.DepartureTime,
		trip.Route,
		trip.TotalSeats,
		trip.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateTrip
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create trip: %w", err)
	}
	return nil
}

func (r *TripRepository) CreateTickets(ctx context.Context, tickets []domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (id, trip_id, seat_number, reference, status, price, discount_type, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	db := queryer(ctx, r.pool)
	for _, t := range tickets {
		_, err := db.Exec(ctx, stmt,
			t.ID,
			t.TripID,
			t.SeatNumber,
			t.Reference,
			t.Status,
			t.Price,
			t.DiscountType,
			t.CreatedAt,
		)
		if err != nil {
			if uniqueConstraint(err) == "tickets_reference_key" {
				return domain.ErrDuplicateReference
			}
			if isUniqueViolation(err) {
				return domain.ErrDuplicateTrip
			}
			return fmt.Errorf("create ticket seat %d: %w", t.SeatNumber, err)
		}
	}
	return nil
}

func (r *TripRepository) GetTrip(ctx context.Context, tripID string) (domain.Trip, error) {
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

func (r *TripRepository) ListTripsWithAvailability(ctx context.Context, from, to time.Time) ([]domain.TripAvailability, error) {
	const query = `
SELECT t.id, t.date, t.departure_time, t.route, t.total_seats, t.created_at,
       COUNT(*) FILTER (WHERE tk.status = 'booked')    AS booked_seats,
       COUNT(*) FILTER (WHERE tk.status = 'available') AS available_seats
FROM trips t
JOIN tickets tk ON tk.trip_id = t.id
WHERE t.date >= $1 AND t.date <= $2
GROUP BY t.id
ORDER BY t.date ASC, t.departure_time ASC, t.route ASC`

	rows, err := queryer(ctx, r.pool).Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []domain.TripAvailability
	for rows.Next() {
		var t domain.TripAvailability
		err := rows.Scan(&t.ID, &t.Date, &t.DepartureTime, &t.Route, &t.TotalSeats, &t.CreatedAt, &t.BookedSeats, &t.AvailableSeats)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate trips: %w", rows.Err())
	}
	return trips, nil
}

func (r *TripRepository) ListAvailableTickets(ctx context.Context, tripID string) ([]domain.Ticket, error) {
	const query = `
SELECT ` + ticketColumns + `
FROM tickets
WHERE trip_id = $1 AND status = 'available'
ORDER BY seat_number ASC`

	rows, err := queryer(ctx, r.pool).Query(ctx, query, tripID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list available tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if rows.Err() != nil {
		if isInvalidUUID(rows.Err()) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("iterate tickets: %w", rows.Err())
	}
	return tickets, nil
}
