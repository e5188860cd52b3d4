package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/app"
	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

// TripGenerator populates future trips from the route template.
type TripGenerator interface {
	GenerateTrips(ctx context.Context, in app.GenerateInput) (app.GenerateResult, error)
}

// HandleGenerateTrips creates trips over a date range, skipping existing ones.
// POST /admin/trips/generate
func HandleGenerateTrips(svc TripGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req generateTripsRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		var in app.GenerateInput
		if req.StartDate != "" {
			t, err := time.Parse(dateLayout, req.StartDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidDateRange, "start_date must be YYYY-MM-DD")
				return
			}
			in.Start = &t
		}
		if req.EndDate != "" {
			t, err := time.Parse(dateLayout, req.EndDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidDateRange, "end_date must be YYYY-MM-DD")
				return
			}
			in.End = &t
		}

		res, err := svc.GenerateTrips(r.Context(), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, generateTripsResponse{
			TripsCreated:   res.TripsCreated,
			TicketsCreated: res.TicketsCreated,
		})
	}
}

// HoldExpirer reclaims expired holds.
type HoldExpirer interface {
	ExpireHolds(ctx context.Context) (int, error)
}

// HandleExpireHolds sweeps expired holds and frees their seats.
// POST /admin/holds/expire
func HandleExpireHolds(svc HoldExpirer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		released, err := svc.ExpireHolds(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, expireHoldsResponse{Released: released})
	}
}

// AdminBooker holds the privileged booking overrides.
type AdminBooker interface {
	ManualBooking(ctx context.Context, in app.ManualBookingInput) (domain.Booking, error)
	CancelBooking(ctx context.Context, in app.CancelInput) (domain.Booking, error)
	RescheduleBooking(ctx context.Context, bookingID, newTripID string) (domain.Booking, error)
}

// HandleManualBooking books a seat on a customer's behalf, skipping the hold
// step.
// POST /admin/bookings/manual
func HandleManualBooking(svc AdminBooker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req manualBookingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.UserID == "" || req.TripID == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "user_id and trip_id are required")
			return
		}

		booking, err := svc.ManualBooking(r.Context(), app.ManualBookingInput{
			UserID:       req.UserID,
			TripID:       req.TripID,
			SeatNumber:   req.SeatNumber,
			Price:        req.Price,
			DiscountType: domain.DiscountType(req.DiscountType),
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newBookingResponse(booking))
	}
}

// HandleAdminCancel cancels any booking regardless of owner.
// POST /admin/bookings/cancel
func HandleAdminCancel(svc AdminBooker) http.HandlerFunc {
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

		booking, err := svc.CancelBooking(r.Context(), app.CancelInput{
			BookingID: req.BookingID,
			Reason:    req.Reason,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newBookingResponse(booking))
	}
}

// HandleAdminReschedule moves a booking to another trip.
// POST /admin/bookings/reschedule
func HandleAdminReschedule(svc AdminBooker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req rescheduleRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.BookingID == "" || req.NewTripID == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "booking_id and new_trip_id are required")
			return
		}

		booking, err := svc.RescheduleBooking(r.Context(), req.BookingID, req.NewTripID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newBookingResponse(booking))
	}
}

// AdminViewer serves the privileged read surface.
type AdminViewer interface {
	ListBookings(ctx context.Context, tripID string) ([]domain.BookingDetail, error)
	TripRoster(ctx context.Context, tripID string) (domain.TripRoster, error)
}

// HandleAdminBookings lists every booking in the system, newest first. The
// trip_id query parameter narrows the list to one trip.
// GET /admin/bookings?trip_id=
func HandleAdminBookings(svc AdminViewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		details, err := svc.ListBookings(r.Context(), r.URL.Query().Get("trip_id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]adminBookingResponse, 0, len(details))
		for _, d := range details {
			out = append(out, adminBookingResponse{
				bookingDetailResponse: newBookingDetailResponse(d),
				UserID:                d.UserID,
			})
		}
		writeJSON(w, http.StatusOK, adminBookingsResponse{Bookings: out})
	}
}

// HandleTripRoster returns a trip's confirmed passenger list in seat order.
// GET /admin/trips/roster?trip_id=
func HandleTripRoster(svc AdminViewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		tripID := r.URL.Query().Get("trip_id")
		if tripID == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "trip_id is required")
			return
		}

		roster, err := svc.TripRoster(r.Context(), tripID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		entries := make([]rosterEntryResponse, 0, len(roster.Entries))
		for _, e := range roster.Entries {
			entries = append(entries, rosterEntryResponse{
				SeatNumber:   e.SeatNumber,
				UserID:       e.UserID,
				BookingID:    e.ID,
				Reference:    e.Reference,
				Price:        e.Price,
				DiscountType: string(e.DiscountType),
			})
		}
		writeJSON(w, http.StatusOK, tripRosterResponse{
			Trip:   newTripResponse(roster.Trip),
			Roster: entries,
		})
	}
}

type generateTripsRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type generateTripsResponse struct {
	TripsCreated   int `json:"trips_created"`
	TicketsCreated int `json:"tickets_created"`
}

type expireHoldsResponse struct {
	Released int `json:"released"`
}

type manualBookingRequest struct {
	UserID       string `json:"user_id"`
	TripID       string `json:"trip_id"`
	SeatNumber   int    `json:"seat_number"`
	Price        int    `json:"price"`
	DiscountType string `json:"discount_type"`
}

type rescheduleRequest struct {
	BookingID string `json:"booking_id"`
	NewTripID string `json:"new_trip_id"`
}

type adminBookingsResponse struct {
	Bookings []adminBookingResponse `json:"bookings"`
}

// adminBookingResponse adds the owner, which the user-facing listing leaves
// implicit.
type adminBookingResponse struct {
	bookingDetailResponse
	UserID string `json:"user_id"`
}

type tripRosterResponse struct {
	Trip   tripResponse          `json:"trip"`
	Roster []rosterEntryResponse `json:"roster"`
}

type rosterEntryResponse struct {
	SeatNumber   int    `json:"seat_number"`
	UserID       string `json:"user_id"`
	BookingID    string `json:"booking_id"`
	Reference    string `json:"reference"`
	Price        int    `json:"price"`
	DiscountType string `json:"discount_type"`
}
