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

// CreatePayee inserts a payee and its audit entry atomically. A name
// collision among live payees surfaces as a Conflict.
func (s *Store) CreatePayee(ctx context.Context, p *domain.Payee, actorID *int64, logMsg string) (*domain.Payee, error) {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO payees (name, type, contact_number, email, address, bank_name, account_number)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, active, created_at`,
			p.Name, p.Type, p.ContactNumber, p.Email, p.Address, p.BankName, p.AccountNumber,
		).Scan(&p.ID, &p.Active, &p.CreatedAt)
		if err != nil {
			if isUniqueViolation(err, "uq_payees_name") {
				return apperr.New(apperr.Conflict, "payee %q already exists", p.Name)
			}
			return internalErr(err, "payee insert")
		}
		return s.appendLog(ctx, tx, actorID, logMsg)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePayee rewrites the mutable fields of a live payee plus its
// audit entry atomically.
func (s *Store) UpdatePayee(ctx context.Context, p *domain.Payee, actorID *int64, logMsg string) (*domain.Payee, error) {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE payees SET name=$1, type=$2, contact_number=$3, email=$4,
				address=$5, bank_name=$6, account_number=$7
			WHERE id=$8 AND deleted_at IS NULL`,
			p.Name, p.Type, p.ContactNumber, p.Email, p.Address,
			p.BankName, p.AccountNumber, p.ID)
		if err != nil {
			if isUniqueViolation(err, "uq_payees_name") {
				return apperr.New(apperr.Conflict, "payee %q already exists", p.Name)
			}
			return internalErr(err, "payee update")
		}
		if tag.RowsAffected() == 0 {
			return apperr.New(apperr.NotFound, "payee %d not found", p.ID)
		}
		return s.appendLog(ctx, tx, actorID, logMsg)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SoftDeletePayee marks the payee inactive and logs it atomically.
func (s *Store) SoftDeletePayee(ctx context.Context, id int64, deletedAt time.Time, actorID *int64, logMsg string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"UPDATE payees SET active=FALSE, deleted_at=$1 WHERE id=$2 AND deleted_at IS NULL",
			deletedAt, id)
		if err != nil {
			return internalErr(err, "payee soft delete")
		}
		if tag.RowsAffected() == 0 {
			return apperr.New(apperr.Conflict, "payee %d already removed", id)
		}
		return s.appendLog(ctx, tx, actorID, logMsg)
	})
}

const payeeColumns = `id, name, type, contact_number, email, address,
	bank_name, account_number, active, created_at, deleted_at`

func scanPayee(row pgx.Row) (*domain.Payee, error) {
	var p domain.Payee
	err := row.Scan(&p.ID, &p.Name, &p.Type, &p.ContactNumber, &p.Email,
		&p.Address, &p.BankName, &p.AccountNumber, &p.Active,
		&p.CreatedAt, &p.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPayee returns a payee by id. Soft-deleted payees are still
// retrievable here for audit purposes.
func (s *Store) GetPayee(ctx context.Context, id int64) (*domain.Payee, error) {
	p, err := scanPayee(s.db.QueryRow(ctx,
		"SELECT "+payeeColumns+" FROM payees WHERE id=$1", id))
	if err == pgx.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "payee %d not found", id)
	}
	if err != nil {
		return nil, internalErr(err, "payee query")
	}
	return p, nil
}

// GetActivePayee returns a payee only when it is live.
func (s *Store) GetActivePayee(ctx context.Context, id int64) (*domain.Payee, error) {
	p, err := scanPayee(s.db.QueryRow(ctx,
		"SELECT "+payeeColumns+" FROM payees WHERE id=$1 AND deleted_at IS NULL", id))
	if err == pgx.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "payee %d not found", id)
	}
	if err != nil {
		return nil, internalErr(err, "payee query")
	}
	return p, nil
}

// ListPayees returns live payees with optional name search and type
// filter, alphabetically, count and page from one snapshot.
func (s *Store) ListPayees(ctx context.Context, search string, ptype domain.PayeeType, page domain.Page) ([]domain.Payee, int, error) {
	where := []string{"deleted_at IS NULL"}
	args := []any{}

	if search != "" {
		args = append(args, "%"+search+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if ptype != "" {
		args = append(args, ptype)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var payees []domain.Payee
	var total int
	err := s.inReadTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			"SELECT COUNT(*) FROM payees WHERE "+cond, args...).Scan(&total); err != nil {
			return internalErr(err, "payee count")
		}

		pageArgs := append(args, page.Limit, page.Offset())
		rows, err := tx.Query(ctx, fmt.Sprintf(
			"SELECT %s FROM payees WHERE %s ORDER BY name ASC LIMIT $%d OFFSET $%d",
			payeeColumns, cond, len(args)+1, len(args)+2), pageArgs...)
		if err != nil {
			return internalErr(err, "payee query")
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanPayee(rows)
			if err != nil {
				return internalErr(err, "payee scan")
			}
			payees = append(payees, *p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return payees, total, nil
}
