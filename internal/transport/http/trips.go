package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/BryanTechnicalWriting/busticketsystem/internal/app"
	"github.com/BryanTechnicalWriting/busticketsystem/internal/domain"
)

const dateLayout = "2006-01-02"

// TripLister is the minimal interface needed to serve trip listings.
type TripLister interface {
	ListTrips(ctx context.Context, in app.ListTripsInput) ([]domain.TripAvailability, error)
	ListAvailableTickets(ctx context.Context, tripID string) ([]domain.Ticket, error)
}

// HandleListTrips returns upcoming trips with seat availability.
// GET /trips?from=2024-06-01&to=2024-06-30
func HandleListTrips(svc TripLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var in app.ListTripsInput
		if raw := r.URL.Query().Get("from"); raw != "" {
			t, err := time.Parse(dateLayout, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidDateRange, "from must be YYYY-MM-DD")
				return
			}
			in.From = &t
		}
		if raw := r.URL.Query().Get("to"); raw != "" {
			t, err := time.Parse(dateLayout, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidDateRange, "to must be YYYY-MM-DD")
				return
			}
			in.To = &t
		}

		trips, err := svc.ListTrips(r.Context(), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]tripResponse, 0, len(trips))
		for _, t := range trips {
			out = append(out, newTripResponse(t))
		}
		writeJSON(w, http.StatusOK, listTripsResponse{Trips: out})
	}
}

// HandleTripTickets lists the open seats of one trip.
// GET /trips/{id}/tickets
func HandleTripTickets(svc TripLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		tripID, ok := parseTripTicketsPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		tickets, err := svc.ListAvailableTickets(r.Context(), tripID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]ticketResponse, 0, len(tickets))
		for _, t := range tickets {
			out = append(out, newTicketResponse(t))
		}
		writeJSON(w, http.StatusOK, listTicketsResponse{Tickets: out})
	}
}

func parseTripTicketsPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "trips" || parts[2] != "tickets" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type listTripsResponse struct {
	Trips []tripResponse `json:"trips"`
}

type tripResponse struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	DepartureTime  string `json:"departure_time"`
	Route          string `json:"route"`
	TotalSeats     int    `json:"total_seats"`
	BookedSeats    int    `json:"booked_seats"`
	AvailableSeats int    `json:"available_seats"`
}

func newTripResponse(t domain.TripAvailability) tripResponse {
	return tripResponse{
		ID:             t.ID,
		Date:           t.Date.Format(dateLayout),
		DepartureTime:  t.DepartureTime,
		Route:          t.Route,
		TotalSeats:     t.TotalSeats,
		BookedSeats:    t.BookedSeats,
		AvailableSeats: t.AvailableSeats,
	}
}

type listTicketsResponse struct {
	Tickets []ticketResponse `json:"tickets"`
}

type ticketResponse struct {
	ID         string `json:"id"`
	TripID     string `json:"trip_id"`
	SeatNumber int    `json:"seat_number"`
	Reference  string `json:"reference"`
	Status     string `json:"status"`
	Price      int    `json:"price"`
}

func newTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:         t.ID,
		TripID:     t.TripID,
		SeatNumber: t.SeatNumber,
		Reference:  t.Reference,
		Status:     string(t.Status),
		Price:      t.Price,
	}
}
