package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/clock"
	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

type HoldRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetTicketForUpdate(ctx context.Context, ticketID string) (domain.Ticket, error)
	TransitionTicket(ctx context.Context, ticketID string, from, to domain.TicketStatus) error
	FindHold(ctx context.Context, userID, ticketID string) (*domain.Hold, error)
	CreateHold(ctx context.Context, hold domain.Hold) error
	DeleteHold(ctx context.Context, holdID string) error
	ListHoldsByUser(ctx context.Context, userID string) ([]domain.Hold, error)
	ListCartItems(ctx context.Context, userID string) ([]domain.CartItem, error)
	ListExpiredHolds(ctx context.Context, now time.Time) ([]domain.Hold, error)
}

// HoldService manages time-bounded seat holds (the cart). A hold pins its
// ticket in the held state until checkout consumes it, the user releases it,
// or the TTL elapses.
type HoldService struct {
	repo    HoldRepository
	clock   clock.Clock
	holdTTL time.Duration
}

const defaultHoldTTL = 24 * time.Hour

func NewHoldService(repo HoldRepository, clk clock.Clock, opts ...HoldServiceOption) *HoldService {
	svc := &HoldService{
		repo:    repo,
		clock:   clk,
		holdTTL: defaultHoldTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type HoldServiceOption func(*HoldService)

// WithHoldTTL overrides the default TTL for new holds.
func WithHoldTTL(d time.Duration) HoldServiceOption {
	return func(s *HoldService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

// CreateHold claims an available ticket for the user. Re-adding a ticket the
// user already holds returns the existing hold unchanged. The ticket-status
// transition is a conditional update, so of two racing requests exactly one
// wins and the other gets ErrTicketUnavailable.
func (s *HoldService) CreateHold(ctx context.Context, userID, ticketID string) (domain.Hold, error) {
	if userID == "" || ticketID == "" {
		return domain.Hold{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	var result domain.Hold

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindHold(txCtx, userID, ticketID)
		if err != nil {
			return err
		}
		if existing != nil {
			if !existing.Expired(now) {
				result = *existing
				return nil
			}
			// The user's own hold went stale; reclaim it and re-hold below.
			if err := s.releaseOne(txCtx, *existing); err != nil {
				return err
			}
		}

		ticket, err := s.repo.GetTicketForUpdate(txCtx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status != domain.TicketStatusAvailable {
			return domain.ErrTicketUnavailable
		}
		err = s.repo.TransitionTicket(txCtx, ticketID, domain.TicketStatusAvailable, domain.TicketStatusHeld)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidTicketState) {
				return domain.ErrTicketUnavailable
			}
			return err
		}

		hold := domain.Hold{
			ID:        uuid.NewString(),
			UserID:    userID,
			TicketID:  ticketID,
			CreatedAt: now,
			ExpiresAt: now.Add(s.holdTTL),
		}
		if err := s.repo.CreateHold(txCtx, hold); err != nil {
			return err
		}
		result = hold
		return nil
	})
	if err != nil {
		return domain.Hold{}, err
	}
	return result, nil
}

// ListActiveHolds returns the user's cart. Holds that expired or whose ticket
// was consumed by another path are reclaimed as a side effect of listing.
func (s *HoldService) ListActiveHolds(ctx context.Context, userID string) ([]domain.CartItem, error) {
	if userID == "" {
		return nil, domain.ErrInvalidID
	}

	now := s.clock.Now()
	var active []domain.CartItem

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		active = active[:0]
		items, err := s.repo.ListCartItems(txCtx, userID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if !item.Hold.Expired(now) && item.Ticket.Status == domain.TicketStatusHeld {
				active = append(active, item)
				continue
			}
			if err := s.releaseOne(txCtx, item.Hold); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return active, nil
}

// ReleaseHold removes one hold, or the user's whole cart when ticketID is
// empty. Each freed ticket goes back on sale only if it is still held.
func (s *HoldService) ReleaseHold(ctx context.Context, userID, ticketID string) error {
	if userID == "" {
		return domain.ErrInvalidID
	}

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var holds []domain.Hold
		if ticketID == "" {
			hs, err := s.repo.ListHoldsByUser(txCtx, userID)
			if err != nil {
				return err
			}
			holds = hs
		} else {
			h, err := s.repo.FindHold(txCtx, userID, ticketID)
			if err != nil {
				return err
			}
			if h == nil {
				return domain.ErrNotFound
			}
			holds = []domain.Hold{*h}
		}

		for _, h := range holds {
			if err := s.releaseOne(txCtx, h); err != nil {
				return err
			}
		}
		return nil
	})
}

// ExpireHolds sweeps every hold whose TTL has elapsed. Safe to run repeatedly
// and concurrently with checkout: the conditional transition never reverts a
// ticket that already reached booked.
func (s *HoldService) ExpireHolds(ctx context.Context) (int, error) {
	now := s.clock.Now()
	expired := 0

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		expired = 0
		holds, err := s.repo.ListExpiredHolds(txCtx, now)
		if err != nil {
			return err
		}
		for _, h := range holds {
			if err := s.releaseOne(txCtx, h); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}

// releaseOne deletes a hold and conditionally frees its ticket. A ticket that
// already moved on (booked, or freed by another sweep) is left untouched.
func (s *HoldService) releaseOne(ctx context.Context, h domain.Hold) error {
	if err := s.repo.DeleteHold(ctx, h.ID); err != nil {
		return err
	}
	err := s.repo.TransitionTicket(ctx, h.TicketID, domain.TicketStatusHeld, domain.TicketStatusAvailable)
	if err != nil && !errors.Is(err, domain.ErrInvalidTicketState) {
		return err
	}
	return nil
}
