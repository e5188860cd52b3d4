package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/clock"
	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

// RouteTemplateEntry is one departure in the fixed daily schedule.
type RouteTemplateEntry struct {
	DepartureTime string
	Route         string
}

// DefaultRouteTemplate is the fixed daily schedule: two departures each way
// between Windhoek and Walvis Bay.
var DefaultRouteTemplate = []RouteTemplateEntry{
	{DepartureTime: "07:00", Route: "Whk - Walvis Bay"},
	{DepartureTime: "07:00", Route: "W/Bay - Whk"},
	{DepartureTime: "14:00", Route: "Whk - Walvis Bay"},
	{DepartureTime: "14:00", Route: "W/Bay - Whk"},
}

const (
	// DefaultCapacity is the seat count of every generated trip.
	DefaultCapacity = 22

	defaultForwardMonths = 6
	maxTripRefAttempts   = 3
)

type GeneratorRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	TripExists(ctx context.Context, date time.Time, departureTime, route string) (bool, error)
	CreateTrip(ctx context.Context, trip domain.Trip) error
	CreateTickets(ctx context.Context, tickets []domain.Ticket) error
}

// GeneratorService populates future trips and their seat tickets from the
// fixed daily route template. Runs are idempotent over any date range.
type GeneratorService struct {
	repo     GeneratorRepository
	clock    clock.Clock
	template []RouteTemplateEntry
	capacity int
}

func NewGeneratorService(repo GeneratorRepository, clk clock.Clock, opts ...GeneratorOption) *GeneratorService {
	svc := &GeneratorService{
		repo:     repo,
		clock:    clk,
		template: DefaultRouteTemplate,
		capacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type GeneratorOption func(*GeneratorService)

// WithRouteTemplate overrides the daily schedule.
func WithRouteTemplate(entries []RouteTemplateEntry) GeneratorOption {
	return func(s *GeneratorService) {
		if len(entries) > 0 {
			s.template = entries
		}
	}
}

// WithCapacity overrides the per-trip seat count.
func WithCapacity(n int) GeneratorOption {
	return func(s *GeneratorService) {
		if n > 0 {
			s.capacity = n
		}
	}
}

type GenerateInput struct {
	// Start defaults to today; End defaults to Start plus six months. Both are
	// truncated to calendar days and the range is inclusive.
	Start *time.Time
	End   *time.Time
}

type GenerateResult struct {
	TripsCreated   int
	TicketsCreated int
}

func (s *GeneratorService) GenerateTrips(ctx context.Context, in GenerateInput) (GenerateResult, error) {
	start := startOfDay(s.clock.Now())
	if in.Start != nil {
		start = startOfDay(*in.Start)
	}
	end := start.AddDate(0, defaultForwardMonths, 0)
	if in.End != nil {
		end = startOfDay(*in.End)
	}
	if end.Before(start) {
		return GenerateResult{}, domain.ErrInvalidDateRange
	}

	var res GenerateResult
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		for _, entry := range s.template {
			created, err := s.ensureTrip(ctx, day, entry)
			if err != nil {
				return res, err
			}
			if created {
				res.TripsCreated++
				res.TicketsCreated += s.capacity
			}
		}
	}
	return res, nil
}

// ensureTrip creates one trip and its full seat set as a single atomic unit,
// skipping schedules that already exist. A ticket reference collision retries
// the whole unit with fresh codes.
func (s *GeneratorService) ensureTrip(ctx context.Context, day time.Time, entry RouteTemplateEntry) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < maxTripRefAttempts; attempt++ {
		created := false
		err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
			exists, err := s.repo.TripExists(txCtx, day, entry.DepartureTime, entry.Route)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}

			now := s.clock.Now()
			trip := domain.Trip{
				ID:            uuid.NewString(),
				Date:          day,
				DepartureTime: entry.DepartureTime,
				Route:         entry.Route,
				TotalSeats:    s.capacity,
				CreatedAt:     now,
			}
			if err := s.repo.CreateTrip(txCtx, trip); err != nil {
				return err
			}

			tickets := make([]domain.Ticket, 0, s.capacity)
			for seat := 1; seat <= s.capacity; seat++ {
				tickets = append(tickets, domain.Ticket{
					ID:           uuid.NewString(),
					TripID:       trip.ID,
					SeatNumber:   seat,
					Reference:    newTicketReference(now),
					Status:       domain.TicketStatusAvailable,
					Price:        regularPrice,
					DiscountType: domain.DiscountNone,
					CreatedAt:    now,
				})
			}
			if err := s.repo.CreateTickets(txCtx, tickets); err != nil {
				return err
			}
			created = true
			return nil
		})
		switch {
		case err == nil:
			return created, nil
		case errors.Is(err, domain.ErrDuplicateTrip):
			// A concurrent run created the same schedule first; idempotent skip.
			return false, nil
		case errors.Is(err, domain.ErrDuplicateReference):
			lastErr = err
			continue
		default:
			return false, err
		}
	}
	return false, lastErr
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
