package api

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ecashph/ecash/internal/domain"
)

func (h *Handler) CreateDisbursement(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/disbursements"))
	defer timer.ObserveDuration()

	var req domain.CreateDisbursementRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/disbursements")
		return
	}

	created, err := h.disbursements.Create(r.Context(), req, actorID(r))
	if err != nil {
		respondServiceError(w, h.log, err, "POST", "/disbursements")
		return
	}
	respondWithJSON(w, http.StatusCreated, created, "POST", "/disbursements")
}

func (h *Handler) ListDisbursements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.DisbursementFilter{
		Status:    domain.Status(q.Get("status")),
		Method:    domain.Method(q.Get("method")),
		Search:    q.Get("search"),
		StartDate: dateParam(r, "start_date"),
		EndDate:   dateParam(r, "end_date"),
	}
	if fund := q.Get("fund_id"); fund != "" {
		if id, err := strconv.ParseInt(fund, 10, 64); err == nil {
			filter.FundID = id
		}
	}

	page := pageFrom(r)
	records, total, totalPages, err := h.disbursements.List(r.Context(), filter, page)
	if err != nil {
		respondServiceError(w, h.log, err, "GET", "/disbursements")
		return
	}
	respondWithJSON(w, http.StatusOK, listPayload(records, total, page, totalPages), "GET", "/disbursements")
}

func (h *Handler) GetDisbursement(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id", "GET", "/disbursements/{id}")
		return
	}
	d, err := h.disbursements.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.log, err, "GET", "/disbursements/{id}")
		return
	}
	respondWithJSON(w, http.StatusOK, d, "GET", "/disbursements/{id}")
}

func (h *Handler) EditDisbursement(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id", "PATCH", "/disbursements/{id}")
		return
	}
	var patch domain.EditDisbursementRequest
	if err := decodeJSON(r, &patch); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body", "PATCH", "/disbursements/{id}")
		return
	}

	updated, err := h.disbursements.Edit(r.Context(), id, patch, actorID(r))
	if err != nil {
		respondServiceError(w, h.log, err, "PATCH", "/disbursements/{id}")
		return
	}
	respondWithJSON(w, http.StatusOK, updated, "PATCH", "/disbursements/{id}")
}

func (h *Handler) ApproveDisbursement(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id", "POST", "/disbursements/{id}/approve")
		return
	}
	var body struct {
		Remarks *string `json:"remarks"`
	}
	// Body is optional on approval.
	decodeJSON(r, &body)

	approved, err := h.disbursements.Approve(r.Context(), id, body.Remarks, actorID(r))
	if err != nil {
		respondServiceError(w, h.log, err, "POST", "/disbursements/{id}/approve")
		return
	}
	respondWithJSON(w, http.StatusOK, approved, "POST", "/disbursements/{id}/approve")
}

func (h *Handler) RemoveDisbursement(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id", "DELETE", "/disbursements/{id}")
		return
	}
	removed, err := h.disbursements.SoftDelete(r.Context(), id, actorID(r))
	if err != nil {
		respondServiceError(w, h.log, err, "DELETE", "/disbursements/{id}")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int64{"id": removed}, "DELETE", "/disbursements/{id}")
}
