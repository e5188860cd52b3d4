package http

import (
	stdhttp "net/http"
)

// HealthHandler reports basic liveness for the booking service.
func HealthHandler(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	writeJSON(w, stdhttp.StatusOK, healthResponse{Status: "ok"})
}

type healthResponse struct {
	Status string `json:"status"`
}
