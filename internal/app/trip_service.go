package app

import (
	"context"
	"time"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/clock"
	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

type TripRepository interface {
	ListTripsWithAvailability(ctx context.Context, from, to time.Time) ([]domain.TripAvailability, error)
	ListAvailableTickets(ctx context.Context, tripID string) ([]domain.Ticket, error)
	GetTrip(ctx context.Context, tripID string) (domain.Trip, error)
}

// TripService serves the read side: upcoming trips with seat availability and
// the open seats of a single trip.
type TripService struct {
	repo  TripRepository
	clock clock.Clock
}

func NewTripService(repo TripRepository, clk clock.Clock) *TripService {
	return &TripService{repo: repo, clock: clk}
}

type ListTripsInput struct {
	// From defaults to today, To to six months out.
	From *time.Time
	To   *time.Time
}

func (s *TripService) ListTrips(ctx context.Context, in ListTripsInput) ([]domain.TripAvailability, error) {
	from := startOfDay(s.clock.Now())
	if in.From != nil {
		from = startOfDay(*in.From)
	}
	to := from.AddDate(0, defaultForwardMonths, 0)
	if in.To != nil {
		to = startOfDay(*in.To)
	}
	if to.Before(from) {
		return nil, domain.ErrInvalidDateRange
	}
	return s.repo.ListTripsWithAvailability(ctx, from, to)
}

func (s *TripService) ListAvailableTickets(ctx context.Context, tripID string) ([]domain.Ticket, error) {
	if tripID == "" {
		return nil, domain.ErrInvalidID
	}
	if _, err := s.repo.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	return s.repo.ListAvailableTickets(ctx, tripID)
}
