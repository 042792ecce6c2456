package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ecashph/ecash/internal/apperr"
	"github.com/ecashph/ecash/internal/clock"
	"github.com/ecashph/ecash/internal/domain"
)

// FundStore is the persistence the fund registry and the utilization
// aggregator need.
type FundStore interface {
	CreateFund(ctx context.Context, f *domain.FundSource, actorID *int64, logMsg string) (*domain.FundSource, error)
	UpdateFund(ctx context.Context, f *domain.FundSource, actorID *int64, logMsg string) (*domain.FundSource, error)
	SoftDeleteFund(ctx context.Context, id int64, deletedAt time.Time, actorID *int64, logMsg string) error
	AddFundEntry(ctx context.Context, e *domain.FundEntry, actorID *int64, logMsg string) (*domain.FundEntry, error)
	GetFund(ctx context.Context, id int64) (*domain.FundSource, error)
	ListActiveFunds(ctx context.Context) ([]domain.FundSource, error)
	TotalSpent(ctx context.Context, fundID int64) (decimal.Decimal, error)
	AllocationsInRange(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
	DisbursedInRange(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
}

// FundService manages budget accounts and computes the utilization
// and cash-flow figures read off the ledger.
type FundService struct {
	store FundStore
	clock clock.Clock
	log   *slog.Logger
}

func NewFundService(store FundStore, clk clock.Clock, log *slog.Logger) *FundService {
	return &FundService{store: store, clock: clk, log: log}
}

func validCadence(r domain.ResetCadence) bool {
	switch r {
	case domain.ResetNone, domain.ResetMonthly, domain.ResetQuarterly, domain.ResetYearly:
		return true
	}
	return false
}

// Create opens a budget account. The fund code must be unique among
// live funds.
func (s *FundService) Create(ctx context.Context, req domain.CreateFundRequest, actorID *int64) (*domain.FundSource, error) {
	if req.Code == "" || req.Name == "" {
		return nil, apperr.New(apperr.Validation, "fund code and name are required")
	}
	if req.InitialBalance.Sign() < 0 {
		return nil, apperr.New(apperr.Validation, "initial balance must not be negative")
	}
	if req.Reset == "" {
		req.Reset = domain.ResetNone
	}
	if !validCadence(req.Reset) {
		return nil, apperr.New(apperr.Validation, "unsupported reset cadence %q", req.Reset)
	}

	f := &domain.FundSource{
		Code:           req.Code,
		Name:           req.Name,
		Description:    req.Description,
		InitialBalance: req.InitialBalance,
		Reset:          req.Reset,
	}
	logMsg := fmt.Sprintf("Created fund source %s (%s) with initial balance %s",
		req.Code, req.Name, req.InitialBalance.StringFixed(2))
	return s.store.CreateFund(ctx, f, actorID, logMsg)
}

// Edit patches a live fund. Code uniqueness is re-enforced when the
// code changes.
func (s *FundService) Edit(ctx context.Context, id int64, patch domain.EditFundRequest, actorID *int64) (*domain.FundSource, error) {
	current, err := s.store.GetFund(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.DeletedAt != nil {
		return nil, apperr.New(apperr.NotFound, "fund %d not found", id)
	}

	if patch.Code != nil {
		if *patch.Code == "" {
			return nil, apperr.New(apperr.Validation, "fund code must not be empty")
		}
		current.Code = *patch.Code
	}
	if patch.Name != nil {
		current.Name = *patch.Name
	}
	if patch.Description != nil {
		current.Description = *patch.Description
	}
	if patch.InitialBalance != nil {
		if patch.InitialBalance.Sign() < 0 {
			return nil, apperr.New(apperr.Validation, "initial balance must not be negative")
		}
		current.InitialBalance = *patch.InitialBalance
	}
	if patch.Reset != nil {
		if !validCadence(*patch.Reset) {
			return nil, apperr.New(apperr.Validation, "unsupported reset cadence %q", *patch.Reset)
		}
		current.Reset = *patch.Reset
	}

	logMsg := fmt.Sprintf("Edited fund source %s", current.Code)
	return s.store.UpdateFund(ctx, current, actorID, logMsg)
}

// Deactivate soft-deletes a fund.
func (s *FundService) Deactivate(ctx context.Context, id int64, actorID *int64) error {
	current, err := s.store.GetFund(ctx, id)
	if err != nil {
		return err
	}
	if current.DeletedAt != nil {
		return apperr.New(apperr.Conflict, "fund %d already deactivated", id)
	}
	logMsg := fmt.Sprintf("Deactivated fund source %s", current.Code)
	return s.store.SoftDeleteFund(ctx, id, s.clock.Now(), actorID, logMsg)
}

// AddEntry credits a manual allocation to a fund. Entries are
// immutable once created.
func (s *FundService) AddEntry(ctx context.Context, fundID int64, req domain.FundEntryRequest, actorID *int64) (*domain.FundEntry, error) {
	if req.Name == "" {
		return nil, apperr.New(apperr.Validation, "entry name is required")
	}
	if req.Amount.Sign() <= 0 {
		return nil, apperr.New(apperr.Validation, "entry amount must be positive")
	}
	e := &domain.FundEntry{FundSourceID: fundID, Name: req.Name, Amount: req.Amount}
	logMsg := fmt.Sprintf("Added fund entry %s of %s to fund #%d", req.Name, req.Amount.StringFixed(2), fundID)
	return s.store.AddFundEntry(ctx, e, actorID, logMsg)
}

// Get returns one fund with its allocation entries.
func (s *FundService) Get(ctx context.Context, id int64) (*domain.FundSource, error) {
	return s.store.GetFund(ctx, id)
}

// List returns the live funds with their entries.
func (s *FundService) List(ctx context.Context) ([]domain.FundSource, error) {
	return s.store.ListActiveFunds(ctx)
}

// Stats computes spend, remaining balance and utilization for one
// live fund.
func (s *FundService) Stats(ctx context.Context, fund *domain.FundSource) (domain.FundStats, error) {
	spent, err := s.store.TotalSpent(ctx, fund.ID)
	if err != nil {
		return domain.FundStats{}, err
	}
	return domain.FundStats{
		FundID:         fund.ID,
		Code:           fund.Code,
		Name:           fund.Name,
		InitialBalance: fund.InitialBalance,
		TotalSpent:     spent,
		Remaining:      domain.RemainingBalance(fund.InitialBalance, spent),
		Utilization:    domain.UtilizationRate(spent, fund.InitialBalance),
	}, nil
}

// Dashboard aggregates the current month's cash flow (allocations
// received versus amounts disbursed) and global utilization
// across all live funds. Soft-deleted funds and disbursements never
// count.
func (s *FundService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	now := s.clock.Now()
	start, end := domain.MonthRange(now)

	allocated, err := s.store.AllocationsInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	disbursed, err := s.store.DisbursedInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	funds, err := s.store.ListActiveFunds(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.DashboardStats{
		Year:            now.Year(),
		Month:           now.Month(),
		TotalNCA:        allocated,
		TotalDisbursed:  disbursed,
		MonthBalance:    allocated.Sub(disbursed),
		CashUtilization: domain.UtilizationRate(disbursed, allocated),
		TotalAllocation: domain.TotalAllocation(funds),
		TotalSpent:      decimal.Zero,
		TotalRemaining:  decimal.Zero,
	}

	for i := range funds {
		fs, err := s.Stats(ctx, &funds[i])
		if err != nil {
			return nil, err
		}
		stats.Funds = append(stats.Funds, fs)
		stats.TotalSpent = stats.TotalSpent.Add(fs.TotalSpent)
		stats.TotalRemaining = stats.TotalRemaining.Add(fs.Remaining)
	}
	return stats, nil
}
