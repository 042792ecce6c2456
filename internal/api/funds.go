package api

import (
	"net/http"

	"github.com/ecashph/ecash/internal/domain"
)

func (h *Handler) CreateFund(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateFundRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/funds")
		return
	}
	created, err := h.funds.Create(r.Context(), req, actorID(r))
	if err != nil {
		respondServiceError(w, h.log, err, "POST", "/funds")
		return
	}
	respondWithJSON(w, http.StatusCreated, created, "POST", "/funds")
}

// ListFunds returns every live fund with its allocation entries and
// utilization stats.
func (h *Handler) ListFunds(w http.ResponseWriter, r *http.Request) {
	funds, err := h.funds.List(r.Context())
	if err != nil {
		respondServiceError(w, h.log, err, "GET", "/funds")
		return
	}

	type fundWithStats struct {
		domain.FundSource
		Stats domain.FundStats `json:"stats"`
	}
	out := make([]fundWithStats, 0, len(funds))
	for i := range funds {
		stats, err := h.funds.Stats(r.Context(), &funds[i])
		if err != nil {
			respondServiceError(w, h.log, err, "GET", "/funds")
			return
		}
		out = append(out, fundWithStats{FundSource: funds[i], Stats: stats})
	}
	respondWithJSON(w, http.StatusOK, out, "GET", "/funds")
}

func (h *Handler) GetFund(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id", "GET", "/funds/{id}")
		return
	}
	fund, err := h.funds.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.log, err, "GET", "/funds/{id}")
		return
	}
	respondWithJSON(w, http.StatusOK, fund, "GET", "/funds/{id}")
}

func (h *Handler) EditFund(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id", "PATCH", "/funds/{id}")
		return
	}
	var patch domain.EditFundRequest
	if err := decodeJSON(r, &patch); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body", "PATCH", "/funds/{id}")
		return
	}
	updated, err := h.funds.Edit(r.Context(), id, patch, actorID(r))
	if err != nil {
		respondServiceError(w, h.log, err, "PATCH", "/funds/{id}")
		return
	}
	respondWithJSON(w, http.StatusOK, updated, "PATCH", "/funds/{id}")
}

func (h *Handler) DeactivateFund(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id", "DELETE", "/funds/{id}")
		return
	}
	if err := h.funds.Deactivate(r.Context(), id, actorID(r)); err != nil {
		respondServiceError(w, h.log, err, "DELETE", "/funds/{id}")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int64{"id": id}, "DELETE", "/funds/{id}")
}

func (h *Handler) AddFundEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id", "POST", "/funds/{id}/entries")
		return
	}
	var req domain.FundEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/funds/{id}/entries")
		return
	}
	entry, err := h.funds.AddEntry(r.Context(), id, req, actorID(r))
	if err != nil {
		respondServiceError(w, h.log, err, "POST", "/funds/{id}/entries")
		return
	}
	respondWithJSON(w, http.StatusCreated, entry, "POST", "/funds/{id}/entries")
}

func (h *Handler) FundDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.funds.Dashboard(r.Context())
	if err != nil {
		respondServiceError(w, h.log, err, "GET", "/funds/dashboard")
		return
	}
	respondWithJSON(w, http.StatusOK, stats, "GET", "/funds/dashboard")
}
