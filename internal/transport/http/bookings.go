package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/app"
	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

// BookingViewer serves a user's own bookings.
type BookingViewer interface {
	ListBookings(ctx context.Context, userID string) ([]domain.BookingDetail, error)
	Cancel(ctx context.Context, in app.CancelInput) (domain.Booking, error)
}

// HandleListBookings returns the caller's bookings, newest first.
// GET /bookings
func HandleListBookings(svc BookingViewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		details, err := svc.ListBookings(r.Context(), userFromContext(r.Context()))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]bookingDetailResponse, 0, len(details))
		for _, d := range details {
			out = append(out, newBookingDetailResponse(d))
		}
		writeJSON(w, http.StatusOK, listBookingsResponse{Bookings: out})
	}
}

// HandleCancelBooking cancels one of the caller's own bookings, refunding paid
// ones through the gateway first.
// POST /bookings/cancel
func HandleCancelBooking(svc BookingViewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req cancelBookingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.BookingID == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "booking_id is required")
			return
		}

		booking, err := svc.Cancel(r.Context(), app.CancelInput{
			BookingID:   req.BookingID,
			Reason:      req.Reason,
			RequestedBy: userFromContext(r.Context()),
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newBookingResponse(booking))
	}
}

type cancelBookingRequest struct {
	BookingID string `json:"booking_id"`
	Reason    string `json:"reason"`
}

type listBookingsResponse struct {
	Bookings []bookingDetailResponse `json:"bookings"`
}

type bookingDetailResponse struct {
	bookingResponse
	SeatNumber int          `json:"seat_number"`
	Trip       tripResponse `json:"trip"`
}

func newBookingDetailResponse(d domain.BookingDetail) bookingDetailResponse {
	return bookingDetailResponse{
		bookingResponse: newBookingResponse(d.Booking),
		SeatNumber:      d.SeatNumber,
		Trip: tripResponse{
			ID:            d.Trip.ID,
			Date:          d.Trip.Date.Format(dateLayout),
			DepartureTime: d.Trip.DepartureTime,
			Route:         d.Trip.Route,
			TotalSeats:    d.Trip.TotalSeats,
		},
	}
}
