package service

import (
	"context"
	"time"

	"github.com/ecashph/ecash/internal/apperr"
	"github.com/ecashph/ecash/internal/domain"
)

// ReportStore is the read query the spreadsheet renderer consumes.
type ReportStore interface {
	GetFund(ctx context.Context, id int64) (*domain.FundSource, error)
	PaidVouchers(ctx context.Context, fundID int64, start, end time.Time) ([]domain.Disbursement, error)
}

// ReportService reads approved vouchers for a fund and month. The
// workbook itself is rendered by the report package; this is only the
// ledger's read obligation to it.
type ReportService struct {
	store ReportStore
}

func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store}
}

// PaidVouchers returns the fund plus its approved disbursements
// received in the given month, oldest first.
func (s *ReportService) PaidVouchers(ctx context.Context, fundID int64, year int, month time.Month) (*domain.FundSource, []domain.Disbursement, time.Time, time.Time, error) {
	if year < 1 || month < time.January || month > time.December {
		return nil, nil, time.Time{}, time.Time{}, apperr.New(apperr.Validation, "year and month are required")
	}

	fund, err := s.store.GetFund(ctx, fundID)
	if err != nil {
		return nil, nil, time.Time{}, time.Time{}, err
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	vouchers, err := s.store.PaidVouchers(ctx, fundID, start, end)
	if err != nil {
		return nil, nil, time.Time{}, time.Time{}, err
	}
	return fund, vouchers, start, end, nil
}
