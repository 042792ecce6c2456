package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ecashph/ecash/internal/apperr"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecash_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ecash_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})
)

func respondWithJSON(w http.ResponseWriter, code int, payload any, method, endpoint string) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondWithError(w http.ResponseWriter, code int, message, method, endpoint string) {
	respondWithJSON(w, code, map[string]string{"message": message}, method, endpoint)
}

// respondServiceError maps an error kind to its HTTP status. Internal
// causes are logged here and masked in the response.
func respondServiceError(w http.ResponseWriter, log *slog.Logger, err error, method, endpoint string) {
	code := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.Validation:
		code = http.StatusBadRequest
	case apperr.NotFound:
		code = http.StatusNotFound
	case apperr.Conflict, apperr.StateConflict:
		code = http.StatusConflict
	default:
		log.Error("internal error", "endpoint", endpoint, "error", err)
	}
	respondWithError(w, code, apperr.Message(err), method, endpoint)
}
