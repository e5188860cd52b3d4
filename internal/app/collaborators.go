package app

import (
	"context"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

// RefundGateway executes refunds against the external payment provider. The
// engine never charges or refunds by itself; it only records the outcome.
type RefundGateway interface {
	Refund(ctx context.Context, in RefundRequest) (RefundResult, error)
}

type RefundRequest struct {
	PaymentReference string
	Amount           int
	Reason           string
}

type RefundResult struct {
	Success         bool
	RefundReference string
	Error           string
}

// Notifier delivers customer notifications after state has committed.
// Implementations log and swallow failures; a lost notification never unwinds
// a booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, userID string, booking domain.Booking, trip domain.Trip, seatNumber int)
}
