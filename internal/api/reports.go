package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ecashph/ecash/internal/report"
)

// GenerateSPV streams the monthly Summary of Paid Vouchers workbook
// for one fund.
func (h *Handler) GenerateSPV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, _ := strconv.Atoi(q.Get("year"))
	month, _ := strconv.Atoi(q.Get("month"))
	fundID, _ := strconv.ParseInt(q.Get("fund_id"), 10, 64)
	if year == 0 || month == 0 || fundID == 0 {
		respondWithError(w, http.StatusBadRequest, "Year, Month, and Fund ID are required.", "GET", "/reports/spv")
		return
	}

	fund, vouchers, start, end, err := h.reports.PaidVouchers(r.Context(), fundID, year, time.Month(month))
	if err != nil {
		respondServiceError(w, h.log, err, "GET", "/reports/spv")
		return
	}

	workbook, err := report.RenderSPV(fund, vouchers, start, end)
	if err != nil {
		respondServiceError(w, h.log, err, "GET", "/reports/spv")
		return
	}

	httpRequestsTotal.WithLabelValues("GET", "/reports/spv", "200").Inc()
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=SPV-%d-%02d-%s.xlsx", year, month, fund.Code))
	w.Write(workbook)
}
