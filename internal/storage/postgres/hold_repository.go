package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

type HoldRepository struct {
	pool *pgxpool.Pool
}

func NewHoldRepository(pool *pgxpool.Pool) *HoldRepository {
	return &HoldRepository{pool: pool}
}

func (r *HoldRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *HoldRepository) GetTicketForUpdate(ctx context.Context, ticketID string) (domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1 FOR UPDATE`

	t, err := scanTicket(queryer(ctx, r.pool).QueryRow(ctx, query, ticketID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Ticket{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Ticket{}, domain.ErrNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

func (r *HoldRepository) TransitionTicket(ctx context.Context, ticketID string, from, to domain.TicketStatus) error {
	return transitionTicket(ctx, queryer(ctx, r.pool), ticketID, from, to)
}

func (r *HoldRepository) FindHold(ctx context.Context, userID, ticketID string) (*domain.Hold, error) {
	const query = `
SELECT id, user_id, ticket_id, created_at, expires_at
FROM holds
WHERE user_id = $1 AND ticket_id = $2`

	var h domain.Hold
	err := queryer(ctx, r.pool).QueryRow(ctx, query, userID, ticketID).
		Scan(&h.ID, &h.UserID, &h.TicketID, &h.CreatedAt, &h.ExpiresAt)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find hold: %w", err)
	}
	return &h, nil
}

func (r *HoldRepository) CreateHold(ctx context.Context, hold domain.Hold) error {
	const stmt = `
INSERT INTO holds (id, user_id, ticket_id, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := queryer(ctx, r.pool).Exec(ctx, stmt,
		hold.ID,
		hold.UserID,
		hold.TicketID,
		hold.CreatedAt,
		hold.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// A concurrent request from the same user won the insert.
			return domain.ErrTicketUnavailable
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create hold: %w", err)
	}
	return nil
}

func (r *HoldRepository) DeleteHold(ctx context.Context, holdID string) error {
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

func (r *HoldRepository) ListHoldsByUser(ctx context.Context, userID string) ([]domain.Hold, error) {
	const query = `
SELECT id, user_id, ticket_id, created_at, expires_at
FROM holds
WHERE user_id = $1
ORDER BY created_at ASC
FOR UPDATE`

	return r.listHolds(ctx, query, userID)
}

func (r *HoldRepository) ListExpiredHolds(ctx context.Context, now time.Time) ([]domain.Hold, error) {
	const query = `
SELECT id, user_id, ticket_id, created_at, expires_at
FROM holds
WHERE expires_at <= $1
ORDER BY expires_at ASC
FOR UPDATE`

	return r.listHolds(ctx, query, now)
}

func (r *HoldRepository) listHolds(ctx context.Context, query string, arg any) ([]domain.Hold, error) {
	rows, err := queryer(ctx, r.pool).Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list holds: %w", err)
	}
	defer rows.Close()

	var holds []domain.Hold
	for rows.Next() {
		var h domain.Hold
		if err := rows.Scan(&h.ID, &h.UserID, &h.TicketID, &h.CreatedAt, &h.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan hold: %w", err)
		}
		holds = append(holds, h)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate holds: %w", rows.Err())
	}
	return holds, nil
}

func (r *HoldRepository) ListCartItems(ctx context.Context, userID string) ([]domain.CartItem, error) {
	const query = `
SELECT h.id, h.user_id, h.ticket_id, h.created_at, h.expires_at,
       tk.id, tk.trip_id, tk.seat_number, tk.reference, tk.status, tk.price, tk.discount_type, COALESCE(tk.discount_document_url, ''), tk.created_at,
       t.id, t.date, t.departure_time, t.route, t.total_seats, t.created_at
FROM holds h
JOIN tickets tk ON tk.id = h.ticket_id
JOIN trips t ON t.id = tk.trip_id
WHERE h.user_id = $1
ORDER BY h.created_at ASC
FOR UPDATE OF h`

	rows, err := queryer(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var (
			item     domain.CartItem
			status   string
			discount string
		)
		err := rows.Scan(
			&item.Hold.ID, &item.Hold.UserID, &item.Hold.TicketID, &item.Hold.CreatedAt, &item.Hold.ExpiresAt,
			&item.Ticket.ID, &item.Ticket.TripID, &item.Ticket.SeatNumber, &item.Ticket.Reference, &status, &item.Ticket.Price, &discount, &item.Ticket.DiscountDocumentURL, &item.Ticket.CreatedAt,
			&item.Trip.ID, &item.Trip.Date, &item.Trip.DepartureTime, &item.Trip.Route, &item.Trip.TotalSeats, &item.Trip.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.Ticket.Status = domain.TicketStatus(status)
		item.Ticket.DiscountType = domain.DiscountType(discount)
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate cart items: %w", rows.Err())
	}
	return items, nil
}
