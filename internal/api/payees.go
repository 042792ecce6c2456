package api

import (
	"net/http"

	"github.com/ecashph/ecash/internal/domain"
)

func (h *Handler) CreatePayee(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePayeeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/payees")
		return
	}
	created, err := h.payees.Create(r.Context(), req, actorID(r))
	if err != nil {
		respondServiceError(w, h.log, err, "POST", "/payees")
		return
	}
	respondWithJSON(w, http.StatusCreated, created, "POST", "/payees")
}

func (h *Handler) ListPayees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := pageFrom(r)
	payees, total, totalPages, err := h.payees.List(r.Context(),
		q.Get("search"), domain.PayeeType(q.Get("type")), page)
	if err != nil {
		respondServiceError(w, h.log, err, "GET", "/payees")
		return
	}
	respondWithJSON(w, http.StatusOK, listPayload(payees, total, page, totalPages), "GET", "/payees")
}

func (h *Handler) GetPayee(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id", "GET", "/payees/{id}")
		return
	}
	p, err := h.payees.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.log, err, "GET", "/payees/{id}")
		return
	}
	respondWithJSON(w, http.StatusOK, p, "GET", "/payees/{id}")
}

func (h *Handler) EditPayee(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id", "PATCH", "/payees/{id}")
		return
	}
	var patch domain.EditPayeeRequest
	if err := decodeJSON(r, &patch); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body", "PATCH", "/payees/{id}")
		return
	}
	updated, err := h.payees.Edit(r.Context(), id, patch, actorID(r))
	if err != nil {
		respondServiceError(w, h.log, err, "PATCH", "/payees/{id}")
		return
	}
	respondWithJSON(w, http.StatusOK, updated, "PATCH", "/payees/{id}")
}

func (h *Handler) RemovePayee(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id", "DELETE", "/payees/{id}")
		return
	}
	if err := h.payees.Remove(r.Context(), id, actorID(r)); err != nil {
		respondServiceError(w, h.log, err, "DELETE", "/payees/{id}")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int64{"id": id}, "DELETE", "/payees/{id}")
}
