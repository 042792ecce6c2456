package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ecashph/ecash/internal/apperr"
	"github.com/ecashph/ecash/internal/domain"
)

// querier is the subset of pgx shared by the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const disbursementColumns = `d.id, d.payee_id, d.fund_source_id, d.method,
	d.lddap_type, d.lddap_num, d.check_num, d.status, d.date_received,
	d.particulars, d.gross_amount, d.total_deductions, d.net_amount,
	d.remarks, d.approved_at, d.created_at, d.deleted_at`

func scanDisbursement(row pgx.Row) (*domain.Disbursement, error) {
	var d domain.Disbursement
	err := row.Scan(&d.ID, &d.PayeeID, &d.FundSourceID, &d.Method,
		&d.LddapType, &d.LddapNum, &d.CheckNum, &d.Status, &d.DateReceived,
		&d.Particulars, &d.GrossAmount, &d.TotalDeductions, &d.NetAmount,
		&d.Remarks, &d.ApprovedAt, &d.CreatedAt, &d.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDisbursement persists the record graph (row, items,
// deductions, reference set) and its audit entry in one transaction.
// A duplicate LDDAP number is a Conflict; the service layer retries it
// with a regenerated code.
func (s *Store) CreateDisbursement(ctx context.Context, d *domain.Disbursement, actorID *int64, logMsg string) (*domain.Disbursement, error) {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO disbursements (payee_id, fund_source_id, method, lddap_type,
				lddap_num, check_num, status, date_received, particulars,
				gross_amount, total_deductions, net_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, created_at`,
			d.PayeeID, d.FundSourceID, d.Method, d.LddapType, d.LddapNum,
			d.CheckNum, d.Status, d.DateReceived, d.Particulars,
			d.GrossAmount, d.TotalDeductions, d.NetAmount,
		).Scan(&d.ID, &d.CreatedAt)
		if err != nil {
			if isUniqueViolation(err, "uq_disbursements_lddap_num") {
				return apperr.New(apperr.Conflict, "document code %s already issued", *d.LddapNum)
			}
			return internalErr(err, "disbursement insert")
		}

		if err := insertChildren(ctx, tx, d); err != nil {
			return err
		}
		return s.appendLog(ctx, tx, actorID, logMsg)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func insertChildren(ctx context.Context, tx pgx.Tx, d *domain.Disbursement) error {
	for i := range d.Items {
		item := &d.Items[i]
		item.DisbursementID = d.ID
		err := tx.QueryRow(ctx,
			"INSERT INTO disbursement_items (disbursement_id, description, account_code, amount) VALUES ($1, $2, $3, $4) RETURNING id",
			d.ID, item.Description, item.AccountCode, item.Amount).Scan(&item.ID)
		if err != nil {
			return internalErr(err, "item insert")
		}
	}
	for i := range d.Deductions {
		ded := &d.Deductions[i]
		ded.DisbursementID = d.ID
		err := tx.QueryRow(ctx,
			"INSERT INTO deductions (disbursement_id, type, amount) VALUES ($1, $2, $3) RETURNING id",
			d.ID, ded.Type, ded.Amount).Scan(&ded.ID)
		if err != nil {
			return internalErr(err, "deduction insert")
		}
	}
	d.References.DisbursementID = d.ID
	err := tx.QueryRow(ctx,
		`INSERT INTO reference_sets (disbursement_id, cert_code, ors_num, dv_num, class_code, resp_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (disbursement_id) DO UPDATE SET cert_code=EXCLUDED.cert_code,
			ors_num=EXCLUDED.ors_num, dv_num=EXCLUDED.dv_num,
			class_code=EXCLUDED.class_code, resp_code=EXCLUDED.resp_code
		RETURNING id`,
		d.ID, d.References.CertCode, d.References.OrsNum, d.References.DvNum,
		d.References.ClassCode, d.References.RespCode).Scan(&d.References.ID)
	if err != nil {
		return internalErr(err, "reference set upsert")
	}
	return nil
}

// UpdateDisbursement rewrites a pending, live record plus whichever
// child sets the edit replaced, and its audit entry, in one
// transaction. Children are replaced wholesale, never merged.
func (s *Store) UpdateDisbursement(ctx context.Context, d *domain.Disbursement, replaceItems, replaceDeductions, replaceRefs bool, actorID *int64, logMsg string) (*domain.Disbursement, error) {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE disbursements SET payee_id=$1, fund_source_id=$2, lddap_type=$3,
				check_num=$4, date_received=$5, particulars=$6,
				gross_amount=$7, total_deductions=$8, net_amount=$9
			WHERE id=$10 AND deleted_at IS NULL AND status=$11`,
			d.PayeeID, d.FundSourceID, d.LddapType, d.CheckNum,
			d.DateReceived, d.Particulars, d.GrossAmount,
			d.TotalDeductions, d.NetAmount, d.ID, domain.StatusPending)
		if err != nil {
			return internalErr(err, "disbursement update")
		}
		if tag.RowsAffected() == 0 {
			return apperr.New(apperr.StateConflict, "disbursement %d is not editable", d.ID)
		}

		if replaceItems {
			if _, err := tx.Exec(ctx, "DELETE FROM disbursement_items WHERE disbursement_id=$1", d.ID); err != nil {
				return internalErr(err, "item delete")
			}
			for i := range d.Items {
				item := &d.Items[i]
				item.DisbursementID = d.ID
				err := tx.QueryRow(ctx,
					"INSERT INTO disbursement_items (disbursement_id, description, account_code, amount) VALUES ($1, $2, $3, $4) RETURNING id",
					d.ID, item.Description, item.AccountCode, item.Amount).Scan(&item.ID)
				if err != nil {
					return internalErr(err, "item insert")
				}
			}
		}
		if replaceDeductions {
			if _, err := tx.Exec(ctx, "DELETE FROM deductions WHERE disbursement_id=$1", d.ID); err != nil {
				return internalErr(err, "deduction delete")
			}
			for i := range d.Deductions {
				ded := &d.Deductions[i]
				ded.DisbursementID = d.ID
				err := tx.QueryRow(ctx,
					"INSERT INTO deductions (disbursement_id, type, amount) VALUES ($1, $2, $3) RETURNING id",
					d.ID, ded.Type, ded.Amount).Scan(&ded.ID)
				if err != nil {
					return internalErr(err, "deduction insert")
				}
			}
		}
		if replaceRefs {
			_, err := tx.Exec(ctx,
				`UPDATE reference_sets SET cert_code=$1, ors_num=$2, dv_num=$3,
					class_code=$4, resp_code=$5 WHERE disbursement_id=$6`,
				d.References.CertCode, d.References.OrsNum, d.References.DvNum,
				d.References.ClassCode, d.References.RespCode, d.ID)
			if err != nil {
				return internalErr(err, "reference set update")
			}
		}
		return s.appendLog(ctx, tx, actorID, logMsg)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ApproveDisbursement flips a pending, live record to approved and
// logs it atomically. Zero rows means the pending precondition no
// longer held by commit time.
func (s *Store) ApproveDisbursement(ctx context.Context, id int64, approvedAt time.Time, remarks *string, actorID *int64, logMsg string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE disbursements SET status=$1, approved_at=$2, remarks=COALESCE($3, remarks)
			WHERE id=$4 AND deleted_at IS NULL AND status=$5`,
			domain.StatusApproved, approvedAt, remarks, id, domain.StatusPending)
		if err != nil {
			return internalErr(err, "disbursement approve")
		}
		if tag.RowsAffected() == 0 {
			return apperr.New(apperr.Conflict, "disbursement %d already approved", id)
		}
		return s.appendLog(ctx, tx, actorID, logMsg)
	})
}

// SoftDeleteDisbursement stamps deleted_at and logs it atomically.
func (s *Store) SoftDeleteDisbursement(ctx context.Context, id int64, deletedAt time.Time, actorID *int64, logMsg string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"UPDATE disbursements SET deleted_at=$1 WHERE id=$2 AND deleted_at IS NULL",
			deletedAt, id)
		if err != nil {
			return internalErr(err, "disbursement soft delete")
		}
		if tag.RowsAffected() == 0 {
			return apperr.New(apperr.Conflict, "disbursement %d already removed", id)
		}
		return s.appendLog(ctx, tx, actorID, logMsg)
	})
}

func (s *Store) loadChildren(ctx context.Context, q querier, d *domain.Disbursement) error {
	rows, err := q.Query(ctx,
		"SELECT id, disbursement_id, description, account_code, amount FROM disbursement_items WHERE disbursement_id=$1 ORDER BY id ASC",
		d.ID)
	if err != nil {
		return internalErr(err, "item query")
	}
	defer rows.Close()
	d.Items = []domain.DisbursementItem{}
	for rows.Next() {
		var item domain.DisbursementItem
		if err := rows.Scan(&item.ID, &item.DisbursementID, &item.Description, &item.AccountCode, &item.Amount); err != nil {
			return internalErr(err, "item scan")
		}
		d.Items = append(d.Items, item)
	}
	if err := rows.Err(); err != nil {
		return internalErr(err, "item rows")
	}

	rows, err = q.Query(ctx,
		"SELECT id, disbursement_id, type, amount FROM deductions WHERE disbursement_id=$1 ORDER BY id ASC",
		d.ID)
	if err != nil {
		return internalErr(err, "deduction query")
	}
	defer rows.Close()
	d.Deductions = []domain.Deduction{}
	for rows.Next() {
		var ded domain.Deduction
		if err := rows.Scan(&ded.ID, &ded.DisbursementID, &ded.Type, &ded.Amount); err != nil {
			return internalErr(err, "deduction scan")
		}
		d.Deductions = append(d.Deductions, ded)
	}
	if err := rows.Err(); err != nil {
		return internalErr(err, "deduction rows")
	}

	err = q.QueryRow(ctx,
		"SELECT id, disbursement_id, cert_code, ors_num, dv_num, class_code, resp_code FROM reference_sets WHERE disbursement_id=$1",
		d.ID).Scan(&d.References.ID, &d.References.DisbursementID,
		&d.References.CertCode, &d.References.OrsNum, &d.References.DvNum,
		&d.References.ClassCode, &d.References.RespCode)
	if err != nil && err != pgx.ErrNoRows {
		return internalErr(err, "reference set query")
	}
	return nil
}

// GetDisbursement returns the full record graph including its payee
// and fund. Soft-deleted records are still retrievable by id.
func (s *Store) GetDisbursement(ctx context.Context, id int64) (*domain.Disbursement, error) {
	d, err := scanDisbursement(s.db.QueryRow(ctx,
		"SELECT "+disbursementColumns+" FROM disbursements d WHERE d.id=$1", id))
	if err == pgx.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "disbursement %d not found", id)
	}
	if err != nil {
		return nil, internalErr(err, "disbursement query")
	}

	if err := s.loadChildren(ctx, s.db, d); err != nil {
		return nil, err
	}
	if d.Payee, err = s.GetPayee(ctx, d.PayeeID); err != nil {
		return nil, err
	}
	if d.Fund, err = s.GetFund(ctx, d.FundSourceID); err != nil {
		return nil, err
	}
	return d, nil
}

// ListDisbursements returns live records matching the filter, newest
// dateReceived first, with the total count taken from the same
// snapshot as the page.
func (s *Store) ListDisbursements(ctx context.Context, filter domain.DisbursementFilter, page domain.Page) ([]domain.Disbursement, int, error) {
	where := []string{"d.deleted_at IS NULL"}
	args := []any{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("d.status = $%d", len(args)))
	}
	if filter.Method != "" {
		args = append(args, filter.Method)
		where = append(where, fmt.Sprintf("d.method = $%d", len(args)))
	}
	if filter.FundID != 0 {
		args = append(args, filter.FundID)
		where = append(where, fmt.Sprintf("d.fund_source_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			`(p.name ILIKE $%d OR d.lddap_num ILIKE $%d OR d.check_num ILIKE $%d
			OR EXISTS (SELECT 1 FROM reference_sets r WHERE r.disbursement_id = d.id AND r.dv_num ILIKE $%d))`,
			n, n, n, n))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where = append(where, fmt.Sprintf("d.date_received >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where = append(where, fmt.Sprintf("d.date_received < $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var records []domain.Disbursement
	var total int
	err := s.inReadTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			"SELECT COUNT(*) FROM disbursements d JOIN payees p ON p.id = d.payee_id WHERE "+cond,
			args...).Scan(&total)
		if err != nil {
			return internalErr(err, "disbursement count")
		}

		pageArgs := append(args, page.Limit, page.Offset())
		rows, err := tx.Query(ctx, fmt.Sprintf(
			`SELECT %s FROM disbursements d JOIN payees p ON p.id = d.payee_id
			WHERE %s ORDER BY d.date_received DESC, d.id DESC LIMIT $%d OFFSET $%d`,
			disbursementColumns, cond, len(args)+1, len(args)+2), pageArgs...)
		if err != nil {
			return internalErr(err, "disbursement query")
		}
		defer rows.Close()

		for rows.Next() {
			d, err := scanDisbursement(rows)
			if err != nil {
				return internalErr(err, "disbursement scan")
			}
			records = append(records, *d)
		}
		if err := rows.Err(); err != nil {
			return internalErr(err, "disbursement rows")
		}

		for i := range records {
			if err := s.loadChildren(ctx, tx, &records[i]); err != nil {
				return err
			}
			p, err := scanPayee(tx.QueryRow(ctx,
				"SELECT "+payeeColumns+" FROM payees WHERE id=$1", records[i].PayeeID))
			if err != nil {
				return internalErr(err, "payee query")
			}
			records[i].Payee = p
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// LatestLddapNum returns the most recently created sequential code,
// or "" when none has been issued yet.
func (s *Store) LatestLddapNum(ctx context.Context) (string, error) {
	var num string
	err := s.db.QueryRow(ctx,
		"SELECT lddap_num FROM disbursements WHERE lddap_num IS NOT NULL ORDER BY created_at DESC, id DESC LIMIT 1",
	).Scan(&num)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", internalErr(err, "latest code query")
	}
	return num, nil
}

// PaidVouchers returns the approved, live disbursements for a fund
// inside [start, end), oldest first, with payee and items populated.
// This is the read the spreadsheet renderer consumes.
func (s *Store) PaidVouchers(ctx context.Context, fundID int64, start, end time.Time) ([]domain.Disbursement, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM disbursements d
		WHERE d.fund_source_id=$1 AND d.status=$2 AND d.deleted_at IS NULL
			AND d.date_received >= $3 AND d.date_received < $4
		ORDER BY d.date_received ASC, d.id ASC`, disbursementColumns),
		fundID, domain.StatusApproved, start, end)
	if err != nil {
		return nil, internalErr(err, "paid voucher query")
	}
	defer rows.Close()

	var vouchers []domain.Disbursement
	for rows.Next() {
		d, err := scanDisbursement(rows)
		if err != nil {
			return nil, internalErr(err, "paid voucher scan")
		}
		vouchers = append(vouchers, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, internalErr(err, "paid voucher rows")
	}

	for i := range vouchers {
		if err := s.loadChildren(ctx, s.db, &vouchers[i]); err != nil {
			return nil, err
		}
		p, err := s.GetPayee(ctx, vouchers[i].PayeeID)
		if err != nil {
			return nil, err
		}
		vouchers[i].Payee = p
	}
	return vouchers, nil
}
