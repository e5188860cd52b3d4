package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/app"
	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

// CheckoutEngine converts holds into confirmed bookings.
type CheckoutEngine interface {
	Checkout(ctx context.Context, in app.CheckoutInput) ([]domain.Booking, error)
}

// HandleCheckout converts the caller's held tickets into bookings.
// POST /checkout
func HandleCheckout(svc CheckoutEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req checkoutRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if len(req.TicketIDs) == 0 {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "ticket_ids is required")
			return
		}

		bookings, err := svc.Checkout(r.Context(), app.CheckoutInput{
			UserID:            userFromContext(r.Context()),
			TicketIDs:         req.TicketIDs,
			DiscountType:      domain.DiscountType(req.DiscountType),
			DiscountDocuments: req.DiscountDocuments,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]bookingResponse, 0, len(bookings))
		for _, b := range bookings {
			out = append(out, newBookingResponse(b))
		}
		writeJSON(w, http.StatusCreated, checkoutResponse{Bookings: out})
	}
}

type checkoutRequest struct {
	TicketIDs         []string `json:"ticket_ids"`
	DiscountType      string   `json:"discount_type"`
	DiscountDocuments []string `json:"discount_documents"`
}

type checkoutResponse struct {
	Bookings []bookingResponse `json:"bookings"`
}

type bookingResponse struct {
	ID              string    `json:"id"`
	Reference       string    `json:"reference"`
	Status          string    `json:"status"`
	TripID          string    `json:"trip_id"`
	TicketID        string    `json:"ticket_id"`
	Price           int       `json:"price"`
	DiscountType    string    `json:"discount_type"`
	RefundReference string    `json:"refund_reference,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func newBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:              b.ID,
		Reference:       b.Reference,
		Status:          string(b.Status),
		TripID:          b.TripID,
		TicketID:        b.TicketID,
		Price:           b.Price,
		DiscountType:    string(b.DiscountType),
		RefundReference: b.RefundReference,
		CreatedAt:       b.CreatedAt,
	}
}
