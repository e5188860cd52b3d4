package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidID          = errors.New("invalid id")
	ErrTicketUnavailable  = errors.New("ticket is not available")
	ErrHoldInvalid        = errors.New("hold missing, expired, or held by another user")
	ErrInvalidTicketState = errors.New("illegal ticket state transition")
	ErrSeatTaken          = errors.New("requested seat is not available")
	ErrTripFull           = errors.New("no available seats on trip")
	ErrNoSeatsAvailable   = errors.New("no available seats on the new trip")
	ErrAlreadyTerminal    = errors.New("booking already cancelled or refunded")
	ErrRefundFailed       = errors.New("refund failed")
	ErrDuplicateTrip      = errors.New("trip already exists for date, time and route")
	ErrDuplicateReference = errors.New("reference code already in use")
	ErrInvalidDiscount    = errors.New("invalid discount type")
	ErrInvalidDateRange   = errors.New("invalid date range")
)
