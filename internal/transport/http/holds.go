package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

// HoldManager is the minimal interface needed to serve the cart.
type HoldManager interface {
	CreateHold(ctx context.Context, userID, ticketID string) (domain.Hold, error)
	ListActiveHolds(ctx context.Context, userID string) ([]domain.CartItem, error)
	ReleaseHold(ctx context.Context, userID, ticketID string) error
}

// HandleHolds serves the cart: POST creates a hold, GET lists active holds,
// DELETE releases one (?ticket_id=) or all of them.
func HandleHolds(svc HoldManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			createHold(svc, w, r)
		case http.MethodGet:
			listHolds(svc, w, r)
		case http.MethodDelete:
			releaseHold(svc, w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func createHold(svc HoldManager, w http.ResponseWriter, r *http.Request) {
	var req createHoldRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if req.TicketID == "" {
		writeError(w, http.StatusBadRequest, codeMissingRequiredField, "ticket_id is required")
		return
	}

	hold, err := svc.CreateHold(r.Context(), userFromContext(r.Context()), req.TicketID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, holdResponse{
		ID:        hold.ID,
		TicketID:  hold.TicketID,
		ExpiresAt: hold.ExpiresAt,
	})
}

func listHolds(svc HoldManager, w http.ResponseWriter, r *http.Request) {
	items, err := svc.ListActiveHolds(r.Context(), userFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]cartItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, cartItemResponse{
			TicketID:   item.Ticket.ID,
			SeatNumber: item.Ticket.SeatNumber,
			Price:      item.Ticket.Price,
			ExpiresAt:  item.Hold.ExpiresAt,
			Trip: tripResponse{
				ID:            item.Trip.ID,
				Date:          item.Trip.Date.Format(dateLayout),
				DepartureTime: item.Trip.DepartureTime,
				Route:         item.Trip.Route,
				TotalSeats:    item.Trip.TotalSeats,
			},
		})
	}
	writeJSON(w, http.StatusOK, listHoldsResponse{Items: out})
}

func releaseHold(svc HoldManager, w http.ResponseWriter, r *http.Request) {
	ticketID := r.URL.Query().Get("ticket_id")
	err := svc.ReleaseHold(r.Context(), userFromContext(r.Context()), ticketID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type createHoldRequest struct {
	TicketID string `json:"ticket_id"`
}

type holdResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type listHoldsResponse struct {
	Items []cartItemResponse `json:"items"`
}

type cartItemResponse struct {
	TicketID   string       `json:"ticket_id"`
	SeatNumber int          `json:"seat_number"`
	Price      int          `json:"price"`
	ExpiresAt  time.Time    `json:"expires_at"`
	Trip       tripResponse `json:"trip"`
}
