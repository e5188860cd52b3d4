package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

const ticketColumns = `id, trip_id, seat_number, reference, status, price, discount_type, COALESCE(discount_document_url, ''), created_at`

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var (
		t        domain.Ticket
		status   string
		discount string
	)
	err := row.Scan(&t.ID, &t.TripID, &t.SeatNumber, &t.Reference, &status, &t.Price, &discount, &t.DiscountDocumentURL, &t.CreatedAt)
	if err != nil {
		return domain.Ticket{}, err
	}
	t.Status = domain.TicketStatus(status)
	t.DiscountType = domain.DiscountType(discount)
	return t, nil
}

// transitionTicket flips a ticket's status only when it currently matches the
// expected state, as a single conditional update. Zero rows means either the
// ticket is gone or another writer changed it first.
func transitionTicket(ctx context.Context, db dbtx, ticketID string, from, to domain.TicketStatus) error {
	const stmt = `UPDATE tickets SET status = $3 WHERE id = $1 AND status = $2`

	tag, err := db.Exec(ctx, stmt, ticketID, from, to)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("transition ticket: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var status string
	err = db.QueryRow(ctx, `SELECT status FROM tickets WHERE id = $1`, ticketID).Scan(&status)
	if err == pgx.ErrNoRows {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check ticket status: %w", err)
	}
	return domain.ErrInvalidTicketState
}
