package app

import (
	"context"
	"crypto/rand"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

const (
	bookingRefPrefix = "BKG"
	ticketRefPrefix  = "TKT"

	refRandomLen   = 7
	maxRefAttempts = 5
)

const refCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newReference builds a short user-presentable code from the current time
// plus randomness, e.g. BKG-MB3K2A1F-9X2C4QT. Uniqueness is enforced by the
// store's unique index; callers regenerate on collision.
func newReference(prefix string, now time.Time) string {
	ts := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))

	b := make([]byte, refRandomLen)
	if _, err := rand.Read(b); err != nil {
		// Fall back to time bits if the random source is unavailable.
		n := now.UnixNano()
		for i := range b {
			b[i] = byte(n >> (uint(i) * 8))
		}
	}
	for i := range b {
		b[i] = refCharset[int(b[i])%len(refCharset)]
	}
	return prefix + "-" + ts + "-" + string(b)
}

func newBookingReference(now time.Time) string {
	return newReference(bookingRefPrefix, now)
}

func newTicketReference(now time.Time) string {
	return newReference(ticketRefPrefix, now)
}

type bookingCreator interface {
	CreateBooking(ctx context.Context, booking domain.Booking) error
}

// insertBookingWithReference inserts a booking, regenerating its reference
// code on collision. Attempts are bounded so a broken unique index cannot
// spin forever.
func insertBookingWithReference(ctx context.Context, repo bookingCreator, booking domain.Booking, now time.Time) (domain.Booking, error) {
	var lastErr error
	for attempt := 0; attempt < maxRefAttempts; attempt++ {
		booking.Reference = newBookingReference(now)
		err := repo.CreateBooking(ctx, booking)
		if err == nil {
			return booking, nil
		}
		if !errors.Is(err, domain.ErrDuplicateReference) {
			return domain.Booking{}, err
		}
		lastErr = err
	}
	return domain.Booking{}, lastErr
}
