package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ecashph/ecash/internal/apperr"
	"github.com/ecashph/ecash/internal/domain"
)

// CreateFund inserts a fund source and its audit entry atomically.
// A code collision among live funds surfaces as a Conflict.
func (s *Store) CreateFund(ctx context.Context, f *domain.FundSource, actorID *int64, logMsg string) (*domain.FundSource, error) {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO fund_sources (code, name, description, initial_balance, reset)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, active, created_at`,
			f.Code, f.Name, f.Description, f.InitialBalance, f.Reset,
		).Scan(&f.ID, &f.Active, &f.CreatedAt)
		if err != nil {
			if isUniqueViolation(err, "uq_fund_sources_code") {
				return apperr.New(apperr.Conflict, "fund code %q already exists", f.Code)
			}
			return internalErr(err, "fund insert")
		}
		return s.appendLog(ctx, tx, actorID, logMsg)
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// UpdateFund rewrites a live fund's fields plus its audit entry.
func (s *Store) UpdateFund(ctx context.Context, f *domain.FundSource, actorID *int64, logMsg string) (*domain.FundSource, error) {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE fund_sources SET code=$1, name=$2, description=$3,
				initial_balance=$4, reset=$5
			WHERE id=$6 AND deleted_at IS NULL`,
			f.Code, f.Name, f.Description, f.InitialBalance, f.Reset, f.ID)
		if err != nil {
			if isUniqueViolation(err, "uq_fund_sources_code") {
				return apperr.New(apperr.Conflict, "fund code %q already exists", f.Code)
			}
			return internalErr(err, "fund update")
		}
		if tag.RowsAffected() == 0 {
			return apperr.New(apperr.NotFound, "fund %d not found", f.ID)
		}
		return s.appendLog(ctx, tx, actorID, logMsg)
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// SoftDeleteFund deactivates a fund and logs it atomically.
func (s *Store) SoftDeleteFund(ctx context.Context, id int64, deletedAt time.Time, actorID *int64, logMsg string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"UPDATE fund_sources SET active=FALSE, deleted_at=$1 WHERE id=$2 AND deleted_at IS NULL",
			deletedAt, id)
		if err != nil {
			return internalErr(err, "fund soft delete")
		}
		if tag.RowsAffected() == 0 {
			return apperr.New(apperr.Conflict, "fund %d already deactivated", id)
		}
		return s.appendLog(ctx, tx, actorID, logMsg)
	})
}

// AddFundEntry appends an allocation to a live fund and logs it.
func (s *Store) AddFundEntry(ctx context.Context, e *domain.FundEntry, actorID *int64, logMsg string) (*domain.FundEntry, error) {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM fund_sources WHERE id=$1 AND deleted_at IS NULL)",
			e.FundSourceID).Scan(&exists)
		if err != nil {
			return internalErr(err, "fund lookup")
		}
		if !exists {
			return apperr.New(apperr.NotFound, "fund %d not found", e.FundSourceID)
		}

		err = tx.QueryRow(ctx,
			"INSERT INTO fund_entries (fund_source_id, name, amount) VALUES ($1, $2, $3) RETURNING id, created_at",
			e.FundSourceID, e.Name, e.Amount).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			return internalErr(err, "fund entry insert")
		}
		return s.appendLog(ctx, tx, actorID, logMsg)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

const fundColumns = `id, code, name, description, initial_balance,
	reset, active, created_at, deleted_at`

func scanFund(row pgx.Row) (*domain.FundSource, error) {
	var f domain.FundSource
	err := row.Scan(&f.ID, &f.Code, &f.Name, &f.Description,
		&f.InitialBalance, &f.Reset, &f.Active, &f.CreatedAt, &f.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetFund returns a fund with its allocation entries, soft-deleted
// included (direct lookups serve the audit trail).
func (s *Store) GetFund(ctx context.Context, id int64) (*domain.FundSource, error) {
	f, err := scanFund(s.db.QueryRow(ctx,
		"SELECT "+fundColumns+" FROM fund_sources WHERE id=$1", id))
	if err == pgx.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "fund %d not found", id)
	}
	if err != nil {
		return nil, internalErr(err, "fund query")
	}

	entries, err := s.fundEntries(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Entries = entries
	return f, nil
}

// GetActiveFund returns a fund only when it is live.
func (s *Store) GetActiveFund(ctx context.Context, id int64) (*domain.FundSource, error) {
	f, err := scanFund(s.db.QueryRow(ctx,
		"SELECT "+fundColumns+" FROM fund_sources WHERE id=$1 AND deleted_at IS NULL", id))
	if err == pgx.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "fund %d not found", id)
	}
	if err != nil {
		return nil, internalErr(err, "fund query")
	}
	return f, nil
}

func (s *Store) fundEntries(ctx context.Context, fundID int64) ([]domain.FundEntry, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, fund_source_id, name, amount, created_at FROM fund_entries WHERE fund_source_id=$1 ORDER BY created_at DESC",
		fundID)
	if err != nil {
		return nil, internalErr(err, "fund entry query")
	}
	defer rows.Close()

	var entries []domain.FundEntry
	for rows.Next() {
		var e domain.FundEntry
		if err := rows.Scan(&e.ID, &e.FundSourceID, &e.Name, &e.Amount, &e.CreatedAt); err != nil {
			return nil, internalErr(err, "fund entry scan")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListActiveFunds returns all live funds with their entries, oldest
// first.
func (s *Store) ListActiveFunds(ctx context.Context) ([]domain.FundSource, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+fundColumns+" FROM fund_sources WHERE deleted_at IS NULL ORDER BY created_at ASC")
	if err != nil {
		return nil, internalErr(err, "fund query")
	}
	defer rows.Close()

	var funds []domain.FundSource
	for rows.Next() {
		f, err := scanFund(rows)
		if err != nil {
			return nil, internalErr(err, "fund scan")
		}
		funds = append(funds, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, internalErr(err, "fund rows")
	}

	for i := range funds {
		entries, err := s.fundEntries(ctx, funds[i].ID)
		if err != nil {
			return nil, err
		}
		funds[i].Entries = entries
	}
	return funds, nil
}

// TotalSpent sums the net amounts of approved, live disbursements
// drawing on the fund.
func (s *Store) TotalSpent(ctx context.Context, fundID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(net_amount), 0) FROM disbursements
		WHERE fund_source_id=$1 AND status=$2 AND deleted_at IS NULL`,
		fundID, domain.StatusApproved).Scan(&total)
	if err != nil {
		return decimal.Zero, internalErr(err, "total spent query")
	}
	return total, nil
}

// AllocationsInRange sums fund-entry amounts of live funds created
// inside [start, end) plus initial balances of live funds created in
// the same window. This is the month's "total NCA".
func (s *Store) AllocationsInRange(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var entrySum, fundSum decimal.Decimal
	err := s.inReadTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(e.amount), 0) FROM fund_entries e
			JOIN fund_sources f ON f.id = e.fund_source_id
			WHERE e.created_at >= $1 AND e.created_at < $2 AND f.deleted_at IS NULL`,
			start, end).Scan(&entrySum)
		if err != nil {
			return internalErr(err, "allocation entry sum")
		}
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(initial_balance), 0) FROM fund_sources
			WHERE created_at >= $1 AND created_at < $2 AND deleted_at IS NULL`,
			start, end).Scan(&fundSum)
		if err != nil {
			return internalErr(err, "allocation fund sum")
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return entrySum.Add(fundSum), nil
}

// DisbursedInRange sums net amounts of approved, live disbursements
// received inside [start, end).
func (s *Store) DisbursedInRange(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(net_amount), 0) FROM disbursements
		WHERE status=$1 AND deleted_at IS NULL AND date_received >= $2 AND date_received < $3`,
		domain.StatusApproved, start, end).Scan(&total)
	if err != nil {
		return decimal.Zero, internalErr(err, "disbursed sum query")
	}
	return total, nil
}
