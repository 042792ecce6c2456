package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ecashph/ecash/internal/apperr"
	"github.com/ecashph/ecash/internal/clock"
	"github.com/ecashph/ecash/internal/domain"
)

// codeRetries bounds the regenerate-and-retry loop when two concurrent
// creates compute the same LDDAP series. The unique index on the code
// turns the loser's insert into a Conflict, which we retry with a
// fresh series.
const codeRetries = 3

// DefaultPageLimit applies when a caller omits pagination.
const DefaultPageLimit = 20

// DisbursementStore is the persistence the ledger needs. *store.Store
// implements it; tests use an in-memory fake.
type DisbursementStore interface {
	CreateDisbursement(ctx context.Context, d *domain.Disbursement, actorID *int64, logMsg string) (*domain.Disbursement, error)
	UpdateDisbursement(ctx context.Context, d *domain.Disbursement, replaceItems, replaceDeductions, replaceRefs bool, actorID *int64, logMsg string) (*domain.Disbursement, error)
	ApproveDisbursement(ctx context.Context, id int64, approvedAt time.Time, remarks *string, actorID *int64, logMsg string) error
	SoftDeleteDisbursement(ctx context.Context, id int64, deletedAt time.Time, actorID *int64, logMsg string) error
	GetDisbursement(ctx context.Context, id int64) (*domain.Disbursement, error)
	ListDisbursements(ctx context.Context, filter domain.DisbursementFilter, page domain.Page) ([]domain.Disbursement, int, error)
	LatestLddapNum(ctx context.Context) (string, error)
	GetActivePayee(ctx context.Context, id int64) (*domain.Payee, error)
	GetActiveFund(ctx context.Context, id int64) (*domain.FundSource, error)
}

// DisbursementService owns the ledger: voucher creation, edits,
// approval, soft deletion and listing readings.
type DisbursementService struct {
	store DisbursementStore
	clock clock.Clock
	log   *slog.Logger
}

func NewDisbursementService(store DisbursementStore, clk clock.Clock, log *slog.Logger) *DisbursementService {
	return &DisbursementService{store: store, clock: clk, log: log}
}

// Create validates references, derives the financial totals from the
// submitted items and deductions, issues the document code for LDDAP
// vouchers, and persists the whole graph with its audit entry.
func (s *DisbursementService) Create(ctx context.Context, req domain.CreateDisbursementRequest, actorID *int64) (*domain.Disbursement, error) {
	switch req.Method {
	case domain.MethodLDDAP, domain.MethodCheck:
	default:
		return nil, apperr.New(apperr.Validation, "unsupported payment method %q", req.Method)
	}
	if req.DateReceived.IsZero() {
		return nil, apperr.New(apperr.Validation, "date received is required")
	}
	if len(req.Items) == 0 {
		return nil, apperr.New(apperr.Validation, "at least one line item is required")
	}
	if req.Method == domain.MethodCheck && (req.CheckNum == nil || *req.CheckNum == "") {
		return nil, apperr.New(apperr.Validation, "check number is required for check disbursements")
	}

	payee, err := s.store.GetActivePayee(ctx, req.PayeeID)
	if err != nil {
		return nil, err
	}
	fund, err := s.store.GetActiveFund(ctx, req.FundSourceID)
	if err != nil {
		return nil, err
	}

	deductions := domain.ValidDeductions(req.Deductions)
	gross, deducted, net := domain.Totals(req.Items, req.Deductions)

	d := &domain.Disbursement{
		PayeeID:         req.PayeeID,
		FundSourceID:    req.FundSourceID,
		Method:          req.Method,
		LddapType:       req.LddapType,
		CheckNum:        req.CheckNum,
		Status:          domain.StatusPending,
		DateReceived:    req.DateReceived,
		Particulars:     req.Particulars,
		GrossAmount:     gross,
		TotalDeductions: deducted,
		NetAmount:       net,
		Items:           itemsFromInput(req.Items),
		Deductions:      deductionsFromInput(deductions),
		References:      refsFromInput(req.References),
	}

	logMsg := fmt.Sprintf("Created %s disbursement for %s with net amount %s",
		req.Method, payee.Name, net.StringFixed(2))

	var created *domain.Disbursement
	if req.Method == domain.MethodLDDAP {
		created, err = s.createWithCode(ctx, d, actorID, logMsg)
	} else {
		created, err = s.store.CreateDisbursement(ctx, d, actorID, logMsg)
	}
	if err != nil {
		return nil, err
	}
	created.Payee = payee
	created.Fund = fund
	return created, nil
}

// createWithCode issues the next sequential LDDAP number and inserts.
// On a duplicate-code conflict it recomputes the series and tries
// again, up to codeRetries attempts.
func (s *DisbursementService) createWithCode(ctx context.Context, d *domain.Disbursement, actorID *int64, logMsg string) (*domain.Disbursement, error) {
	now := s.clock.Now()
	var lastErr error
	for attempt := 0; attempt < codeRetries; attempt++ {
		last, err := s.store.LatestLddapNum(ctx)
		if err != nil {
			return nil, err
		}
		code := domain.FormatLddapCode(now, domain.NextSeries(last, now.Year()))
		d.LddapNum = &code

		created, err := s.store.CreateDisbursement(ctx, d, actorID, logMsg)
		if err == nil {
			return created, nil
		}
		if !apperr.IsKind(err, apperr.Conflict) {
			return nil, err
		}
		s.log.Warn("document code collision, retrying", "code", code, "attempt", attempt+1)
		lastErr = err
	}
	return nil, lastErr
}

// Edit patches a pending voucher. A supplied items, deductions or
// references array replaces the prior set wholesale; omitted scalar
// fields keep their value. Totals are recomputed whenever items or
// deductions changed.
func (s *DisbursementService) Edit(ctx context.Context, id int64, patch domain.EditDisbursementRequest, actorID *int64) (*domain.Disbursement, error) {
	current, err := s.store.GetDisbursement(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Deleted() {
		return nil, apperr.New(apperr.NotFound, "disbursement %d not found", id)
	}
	if current.Status != domain.StatusPending {
		return nil, apperr.New(apperr.StateConflict, "disbursement %d is %s and can no longer be edited", id, current.Status)
	}

	if patch.PayeeID != nil && *patch.PayeeID != current.PayeeID {
		if _, err := s.store.GetActivePayee(ctx, *patch.PayeeID); err != nil {
			return nil, err
		}
		current.PayeeID = *patch.PayeeID
	}
	if patch.FundSourceID != nil && *patch.FundSourceID != current.FundSourceID {
		if _, err := s.store.GetActiveFund(ctx, *patch.FundSourceID); err != nil {
			return nil, err
		}
		current.FundSourceID = *patch.FundSourceID
	}
	if patch.LddapType != nil {
		current.LddapType = patch.LddapType
	}
	if patch.CheckNum != nil {
		current.CheckNum = patch.CheckNum
	}
	if patch.DateReceived != nil {
		current.DateReceived = *patch.DateReceived
	}
	if patch.Particulars != nil {
		current.Particulars = *patch.Particulars
	}

	replaceItems := patch.Items != nil
	replaceDeductions := patch.Deductions != nil
	replaceRefs := patch.References != nil

	if replaceItems {
		if len(*patch.Items) == 0 {
			return nil, apperr.New(apperr.Validation, "at least one line item is required")
		}
		current.Items = itemsFromInput(*patch.Items)
	}
	if replaceDeductions {
		current.Deductions = deductionsFromInput(domain.ValidDeductions(*patch.Deductions))
	}
	if replaceRefs {
		current.References = refsFromInput(*patch.References)
		current.References.ID = 0
	}

	totalsChanged := false
	if replaceItems || replaceDeductions {
		gross := domain.Gross(itemInputs(current.Items))
		deducted := domain.DeductionTotal(deductionInputs(current.Deductions))
		net := gross.Sub(deducted)
		totalsChanged = !gross.Equal(current.GrossAmount) || !deducted.Equal(current.TotalDeductions)
		current.GrossAmount = gross
		current.TotalDeductions = deducted
		current.NetAmount = net
	}

	logMsg := fmt.Sprintf("Edited disbursement #%d", id)
	if totalsChanged {
		logMsg = fmt.Sprintf("Edited disbursement #%d, net amount now %s", id, current.NetAmount.StringFixed(2))
	}

	updated, err := s.store.UpdateDisbursement(ctx, current, replaceItems, replaceDeductions, replaceRefs, actorID, logMsg)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Approve flips a pending voucher to approved and stamps approvedAt.
// A second approval is a Conflict, never a silent success.
func (s *DisbursementService) Approve(ctx context.Context, id int64, remarks *string, actorID *int64) (*domain.Disbursement, error) {
	current, err := s.store.GetDisbursement(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Deleted() {
		return nil, apperr.New(apperr.NotFound, "disbursement %d not found", id)
	}
	if current.Status == domain.StatusApproved {
		return nil, apperr.New(apperr.Conflict, "disbursement %d is already approved", id)
	}

	payeeName, fundCode := "", ""
	if current.Payee != nil {
		payeeName = current.Payee.Name
	}
	if current.Fund != nil {
		fundCode = current.Fund.Code
	}
	logMsg := fmt.Sprintf("Approved disbursement #%d for %s against %s, net amount %s",
		id, payeeName, fundCode, current.NetAmount.StringFixed(2))
	if remarks != nil && *remarks != "" {
		logMsg += fmt.Sprintf(" (remarks: %s)", *remarks)
	}

	if err := s.store.ApproveDisbursement(ctx, id, s.clock.Now(), remarks, actorID, logMsg); err != nil {
		return nil, err
	}
	return s.store.GetDisbursement(ctx, id)
}

// SoftDelete stamps the deletion timestamp. The record stays
// retrievable by id but disappears from listings and aggregates.
func (s *DisbursementService) SoftDelete(ctx context.Context, id int64, actorID *int64) (int64, error) {
	current, err := s.store.GetDisbursement(ctx, id)
	if err != nil {
		return 0, err
	}
	if current.Deleted() {
		return 0, apperr.New(apperr.Conflict, "disbursement %d already removed", id)
	}

	logMsg := fmt.Sprintf("Removed disbursement #%d", id)
	if current.Payee != nil {
		logMsg = fmt.Sprintf("Removed disbursement #%d for %s", id, current.Payee.Name)
	}
	if err := s.store.SoftDeleteDisbursement(ctx, id, s.clock.Now(), actorID, logMsg); err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns the full record graph, soft-deleted included.
func (s *DisbursementService) Get(ctx context.Context, id int64) (*domain.Disbursement, error) {
	return s.store.GetDisbursement(ctx, id)
}

// List pages through live records. With no date range the filter
// defaults to the current calendar month.
func (s *DisbursementService) List(ctx context.Context, filter domain.DisbursementFilter, page domain.Page) ([]domain.Disbursement, int, int, error) {
	if filter.StartDate == nil && filter.EndDate == nil {
		start, end := domain.MonthRange(s.clock.Now())
		filter.StartDate = &start
		filter.EndDate = &end
	} else if filter.EndDate != nil {
		// A caller-supplied end date is inclusive: records received any
		// time on that day stay in range.
		end := filter.EndDate.Truncate(24 * time.Hour).Add(24 * time.Hour)
		filter.EndDate = &end
	}
	page = normalizePage(page)

	records, total, err := s.store.ListDisbursements(ctx, filter, page)
	if err != nil {
		return nil, 0, 0, err
	}
	return records, total, pageCount(total, page.Limit), nil
}

func normalizePage(page domain.Page) domain.Page {
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Limit < 1 {
		page.Limit = DefaultPageLimit
	}
	return page
}

func pageCount(total, limit int) int {
	if limit < 1 {
		return 0
	}
	return (total + limit - 1) / limit
}

func itemsFromInput(items []domain.ItemInput) []domain.DisbursementItem {
	out := make([]domain.DisbursementItem, len(items))
	for i, item := range items {
		out[i] = domain.DisbursementItem{
			Description: item.Description,
			AccountCode: item.AccountCode,
			Amount:      item.Amount,
		}
	}
	return out
}

func deductionsFromInput(deductions []domain.DeductionInput) []domain.Deduction {
	out := make([]domain.Deduction, len(deductions))
	for i, d := range deductions {
		out[i] = domain.Deduction{Type: d.Type, Amount: *d.Amount}
	}
	return out
}

func refsFromInput(r domain.ReferenceInput) domain.ReferenceSet {
	return domain.ReferenceSet{
		CertCode:  r.CertCode,
		OrsNum:    r.OrsNum,
		DvNum:     r.DvNum,
		ClassCode: r.ClassCode,
		RespCode:  r.RespCode,
	}
}

func itemInputs(items []domain.DisbursementItem) []domain.ItemInput {
	out := make([]domain.ItemInput, len(items))
	for i, item := range items {
		out[i] = domain.ItemInput{Description: item.Description, AccountCode: item.AccountCode, Amount: item.Amount}
	}
	return out
}

func deductionInputs(deductions []domain.Deduction) []domain.DeductionInput {
	out := make([]domain.DeductionInput, len(deductions))
	for i := range deductions {
		amount := deductions[i].Amount
		out[i] = domain.DeductionInput{Type: deductions[i].Type, Amount: &amount}
	}
	return out
}
