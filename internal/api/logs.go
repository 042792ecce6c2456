package api

import (
	"net/http"

	"github.com/ecashph/ecash/internal/domain"
)

// ListLogs serves the audit trail for the admin dashboard.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	filter := domain.LogFilter{
		Search:    r.URL.Query().Get("search"),
		StartDate: dateParam(r, "start_date"),
		EndDate:   dateParam(r, "end_date"),
	}
	page := pageFrom(r)

	entries, total, totalPages, err := h.logs.List(r.Context(), filter, page)
	if err != nil {
		respondServiceError(w, h.log, err, "GET", "/logs")
		return
	}
	respondWithJSON(w, http.StatusOK, listPayload(entries, total, page, totalPages), "GET", "/logs")
}
