package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecashph/ecash/internal/domain"
	"github.com/ecashph/ecash/internal/service"
)

// Handler wires the HTTP surface to the services.
type Handler struct {
	disbursements *service.DisbursementService
	payees        *service.PayeeService
	funds         *service.FundService
	logs          *service.LogService
	auth          *service.AuthService
	reports       *service.ReportService
	log           *slog.Logger
}

func NewHandler(
	disbursements *service.DisbursementService,
	payees *service.PayeeService,
	funds *service.FundService,
	logs *service.LogService,
	authSvc *service.AuthService,
	reports *service.ReportService,
	log *slog.Logger,
) *Handler {
	return &Handler{
		disbursements: disbursements,
		payees:        payees,
		funds:         funds,
		logs:          logs,
		auth:          authSvc,
		reports:       reports,
		log:           log,
	}
}

// Router assembles the full route table.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.RequestID)
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	authR := r.PathPrefix("/api/auth").Subrouter()
	authR.HandleFunc("/signup", h.Signup).Methods("POST")
	authR.HandleFunc("/login", h.Login).Methods("POST")
	authR.HandleFunc("/forgot-password", h.ForgotPassword).Methods("POST")
	authR.HandleFunc("/reset-password", h.ResetPassword).Methods("POST")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.Use(h.Authenticate)

	apiV1.HandleFunc("/payees", h.CreatePayee).Methods("POST")
	apiV1.HandleFunc("/payees", h.ListPayees).Methods("GET")
	apiV1.HandleFunc("/payees/{id}", h.GetPayee).Methods("GET")
	apiV1.HandleFunc("/payees/{id}", h.EditPayee).Methods("PATCH")
	apiV1.HandleFunc("/payees/{id}", h.RemovePayee).Methods("DELETE")

	apiV1.HandleFunc("/funds", h.CreateFund).Methods("POST")
	apiV1.HandleFunc("/funds", h.ListFunds).Methods("GET")
	apiV1.HandleFunc("/funds/dashboard", h.FundDashboard).Methods("GET")
	apiV1.HandleFunc("/funds/{id}", h.GetFund).Methods("GET")
	apiV1.HandleFunc("/funds/{id}", h.EditFund).Methods("PATCH")
	apiV1.HandleFunc("/funds/{id}", h.DeactivateFund).Methods("DELETE")
	apiV1.HandleFunc("/funds/{id}/entries", h.AddFundEntry).Methods("POST")

	apiV1.HandleFunc("/disbursements", h.CreateDisbursement).Methods("POST")
	apiV1.HandleFunc("/disbursements", h.ListDisbursements).Methods("GET")
	apiV1.HandleFunc("/disbursements/{id}", h.GetDisbursement).Methods("GET")
	apiV1.HandleFunc("/disbursements/{id}", h.EditDisbursement).Methods("PATCH")
	apiV1.HandleFunc("/disbursements/{id}", h.RemoveDisbursement).Methods("DELETE")
	apiV1.Handle("/disbursements/{id}/approve",
		h.RequireRole(domain.RoleStaff, domain.RoleAdmin)(http.HandlerFunc(h.ApproveDisbursement))).Methods("POST")

	apiV1.Handle("/logs",
		h.RequireRole(domain.RoleAdmin)(http.HandlerFunc(h.ListLogs))).Methods("GET")
	apiV1.HandleFunc("/reports/spv", h.GenerateSPV).Methods("GET")

	return r
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func pageFrom(r *http.Request) domain.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return domain.Page{Number: page, Limit: limit}
}

func dateParam(r *http.Request, key string) *time.Time {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}

type listResponse struct {
	Data       any        `json:"data"`
	Pagination pagination `json:"pagination"`
}

type pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
}

func listPayload(data any, total int, page domain.Page, totalPages int) listResponse {
	number := page.Number
	if number < 1 {
		number = 1
	}
	return listResponse{
		Data:       data,
		Pagination: pagination{Total: total, Page: number, TotalPages: totalPages},
	}
}
