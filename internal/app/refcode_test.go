package app

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

var refPattern = regexp.MustCompile(`^(BKG|TKT)-[0-9A-Z]+-[0-9A-Z]{7}$`)

func TestNewReference(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Regexp(t, refPattern, newBookingReference(now))
	assert.Regexp(t, refPattern, newTicketReference(now))

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref := newBookingReference(now)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}

func TestInsertBookingWithReference(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("retries on collision", func(t *testing.T) {
		store := newFakeStore()
		store.refCollisions = 2

		booking, err := insertBookingWithReference(context.Background(), store, domain.Booking{
			ID:     "booking-1",
			UserID: "user-1",
			Status: domain.BookingStatusConfirmed,
		}, now)
		require.NoError(t, err)
		assert.Regexp(t, refPattern, booking.Reference)
		assert.Len(t, store.bookings, 1)
	})

	t.Run("gives up after bounded attempts", func(t *testing.T) {
		store := newFakeStore()
		store.refCollisions = maxRefAttempts

		_, err := insertBookingWithReference(context.Background(), store, domain.Booking{ID: "booking-1"}, now)
		assert.ErrorIs(t, err, domain.ErrDuplicateReference)
		assert.Empty(t, store.bookings)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		store := newFakeStore()
		b := domain.Booking{ID: "existing", TicketID: "ticket-1", Status: domain.BookingStatusConfirmed, Reference: "BKG-X-0000000"}
		store.bookings[b.ID] = &b
		store.refs[b.Reference] = true

		_, err := insertBookingWithReference(context.Background(), store, domain.Booking{
			ID:       "booking-2",
			TicketID: "ticket-1",
			Status:   domain.BookingStatusConfirmed,
		}, now)
		assert.ErrorIs(t, err, domain.ErrTicketUnavailable)
	})
}
