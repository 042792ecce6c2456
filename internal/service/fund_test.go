package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ecashph/ecash/internal/apperr"
	"github.com/ecashph/ecash/internal/clock"
	"github.com/ecashph/ecash/internal/domain"
)

type fundFixture struct {
	store *fakeStore
	clock *clock.FakeClock
	svc   *FundService
	actor *int64
}

func newFundFixture(t *testing.T) *fundFixture {
	t.Helper()
	fs := newFakeStore(testNow)
	clk := clock.Fake(testNow)
	return &fundFixture{
		store: fs,
		clock: clk,
		svc:   NewFundService(fs, clk, testLogger()),
		actor: int64Ptr(7),
	}
}

func TestFundCreate(t *testing.T) {
	fx := newFundFixture(t)
	f, err := fx.svc.Create(context.Background(), domain.CreateFundRequest{
		Code:           "GF-101",
		Name:           "General Fund",
		InitialBalance: dec(t, "1000000.00"),
	}, fx.actor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if f.Reset != domain.ResetNone {
		t.Fatalf("reset cadence = %s, want NONE default", f.Reset)
	}
	if !f.Active {
		t.Fatal("new fund should be active")
	}
}

func TestFundCreateValidation(t *testing.T) {
	fx := newFundFixture(t)

	_, err := fx.svc.Create(context.Background(), domain.CreateFundRequest{Name: "No code"}, fx.actor)
	if !apperr.IsKind(err, apperr.Validation) {
		t.Fatalf("missing code: err = %v, want Validation", err)
	}

	_, err = fx.svc.Create(context.Background(), domain.CreateFundRequest{
		Code: "GF-101", Name: "General Fund", InitialBalance: dec(t, "-5"),
	}, fx.actor)
	if !apperr.IsKind(err, apperr.Validation) {
		t.Fatalf("negative balance: err = %v, want Validation", err)
	}

	_, err = fx.svc.Create(context.Background(), domain.CreateFundRequest{
		Code: "GF-101", Name: "General Fund", Reset: "WEEKLY",
	}, fx.actor)
	if !apperr.IsKind(err, apperr.Validation) {
		t.Fatalf("bad cadence: err = %v, want Validation", err)
	}
}

func TestFundDuplicateCodeIsConflict(t *testing.T) {
	fx := newFundFixture(t)
	req := domain.CreateFundRequest{Code: "GF-101", Name: "General Fund"}
	if _, err := fx.svc.Create(context.Background(), req, fx.actor); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	_, err := fx.svc.Create(context.Background(), req, fx.actor)
	if !apperr.IsKind(err, apperr.Conflict) {
		t.Fatalf("duplicate code err = %v, want Conflict", err)
	}
}

func TestFundCodeReusableAfterDeactivation(t *testing.T) {
	fx := newFundFixture(t)
	req := domain.CreateFundRequest{Code: "GF-101", Name: "General Fund"}
	first, err := fx.svc.Create(context.Background(), req, fx.actor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := fx.svc.Deactivate(context.Background(), first.ID, fx.actor); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	if _, err := fx.svc.Create(context.Background(), req, fx.actor); err != nil {
		t.Fatalf("code should be reusable once the holder is deactivated: %v", err)
	}
}

func TestFundDeactivateTwiceIsConflict(t *testing.T) {
	fx := newFundFixture(t)
	f, err := fx.svc.Create(context.Background(), domain.CreateFundRequest{Code: "GF-101", Name: "General Fund"}, fx.actor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := fx.svc.Deactivate(context.Background(), f.ID, fx.actor); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	err = fx.svc.Deactivate(context.Background(), f.ID, fx.actor)
	if !apperr.IsKind(err, apperr.Conflict) {
		t.Fatalf("second Deactivate err = %v, want Conflict", err)
	}
}

func TestFundAddEntryValidation(t *testing.T) {
	fx := newFundFixture(t)
	f, err := fx.svc.Create(context.Background(), domain.CreateFundRequest{Code: "GF-101", Name: "General Fund"}, fx.actor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = fx.svc.AddEntry(context.Background(), f.ID, domain.FundEntryRequest{Amount: dec(t, "100")}, fx.actor)
	if !apperr.IsKind(err, apperr.Validation) {
		t.Fatalf("missing name: err = %v, want Validation", err)
	}

	_, err = fx.svc.AddEntry(context.Background(), f.ID, domain.FundEntryRequest{Name: "NCA June", Amount: dec(t, "0")}, fx.actor)
	if !apperr.IsKind(err, apperr.Validation) {
		t.Fatalf("zero amount: err = %v, want Validation", err)
	}

	e, err := fx.svc.AddEntry(context.Background(), f.ID, domain.FundEntryRequest{Name: "NCA June", Amount: dec(t, "50000")}, fx.actor)
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if e.ID == 0 {
		t.Fatal("entry was not assigned an id")
	}
}

func TestFundStats(t *testing.T) {
	fx := newFundFixture(t)
	fund := fx.store.seedFund("GF-101", dec(t, "1000000.00"))
	payee := fx.store.seedPayee("Acme Trading")

	d := &domain.Disbursement{
		PayeeID:      payee.ID,
		FundSourceID: fund.ID,
		Method:       domain.MethodCheck,
		Status:       domain.StatusApproved,
		DateReceived: testNow,
		NetAmount:    dec(t, "250000.00"),
	}
	if _, err := fx.store.CreateDisbursement(context.Background(), d, fx.actor, "seed"); err != nil {
		t.Fatalf("seed disbursement: %v", err)
	}

	stats, err := fx.svc.Stats(context.Background(), fund)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if !stats.TotalSpent.Equal(dec(t, "250000.00")) {
		t.Fatalf("spent = %s, want 250000.00", stats.TotalSpent)
	}
	if !stats.Remaining.Equal(dec(t, "750000.00")) {
		t.Fatalf("remaining = %s, want 750000.00", stats.Remaining)
	}
	if stats.Utilization != 25.0 {
		t.Fatalf("utilization = %v, want 25.0", stats.Utilization)
	}
}

func TestDashboard(t *testing.T) {
	fx := newFundFixture(t)
	fund := fx.store.seedFund("GF-101", dec(t, "1000000.00"))
	payee := fx.store.seedPayee("Acme Trading")

	d := &domain.Disbursement{
		PayeeID:      payee.ID,
		FundSourceID: fund.ID,
		Method:       domain.MethodCheck,
		Status:       domain.StatusApproved,
		DateReceived: testNow,
		NetAmount:    dec(t, "250000.00"),
	}
	if _, err := fx.store.CreateDisbursement(context.Background(), d, fx.actor, "seed"); err != nil {
		t.Fatalf("seed disbursement: %v", err)
	}

	stats, err := fx.svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if stats.Year != testNow.Year() || stats.Month != testNow.Month() {
		t.Fatalf("period = %d-%s", stats.Year, stats.Month)
	}
	// The fund was opened this month, so its initial balance counts as
	// this month's allocation.
	if !stats.TotalNCA.Equal(dec(t, "1000000.00")) {
		t.Fatalf("total NCA = %s, want 1000000.00", stats.TotalNCA)
	}
	if !stats.TotalDisbursed.Equal(dec(t, "250000.00")) {
		t.Fatalf("disbursed = %s, want 250000.00", stats.TotalDisbursed)
	}
	if !stats.MonthBalance.Equal(dec(t, "750000.00")) {
		t.Fatalf("month balance = %s, want 750000.00", stats.MonthBalance)
	}
	if stats.CashUtilization != 25.0 {
		t.Fatalf("cash utilization = %v, want 25.0", stats.CashUtilization)
	}
	if len(stats.Funds) != 1 || !stats.Funds[0].Remaining.Equal(dec(t, "750000.00")) {
		t.Fatalf("per-fund stats = %+v", stats.Funds)
	}
}

func TestDashboardIgnoresDeactivatedFunds(t *testing.T) {
	fx := newFundFixture(t)
	fund := fx.store.seedFund("GF-101", dec(t, "1000000.00"))
	if _, err := fx.svc.AddEntry(context.Background(), fund.ID, domain.FundEntryRequest{
		Name:   "NCA release",
		Amount: dec(t, "50000.00"),
	}, fx.actor); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if err := fx.svc.Deactivate(context.Background(), fund.ID, fx.actor); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	stats, err := fx.svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(stats.Funds) != 0 {
		t.Fatalf("deactivated fund still in dashboard: %+v", stats.Funds)
	}
	if !stats.TotalNCA.IsZero() {
		t.Fatalf("deactivated fund's allocations still counted: %s", stats.TotalNCA)
	}
}

func TestUtilizationZeroBalanceFund(t *testing.T) {
	fx := newFundFixture(t)
	fund := fx.store.seedFund("TF-103", decimal.Zero)

	stats, err := fx.svc.Stats(context.Background(), fund)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Utilization != 0 {
		t.Fatalf("utilization for zero-balance fund = %v, want 0", stats.Utilization)
	}
}
