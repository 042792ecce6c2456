package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ecashph/ecash/internal/domain"
)

// appendLog writes one audit entry inside the caller's transaction.
// With no actor the mutation proceeds unlogged: the call warns and
// writes nothing rather than failing the enclosing transaction.
func (s *Store) appendLog(ctx context.Context, tx pgx.Tx, actorID *int64, message string) error {
	if actorID == nil {
		s.log.Warn("audit log skipped: no acting user", "message", message)
		return nil
	}
	_, err := tx.Exec(ctx,
		"INSERT INTO logs (user_id, log) VALUES ($1, $2)",
		*actorID, message)
	if err != nil {
		return internalErr(err, "audit log insert")
	}
	return nil
}

// ListLogs returns audit entries newest first with their acting user,
// filtered by free text across the message and user identity fields
// and an optional date range. Count and page come from one snapshot.
func (s *Store) ListLogs(ctx context.Context, filter domain.LogFilter, page domain.Page) ([]domain.LogEntry, int, error) {
	where := []string{"TRUE"}
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(l.log ILIKE $%d OR u.username ILIKE $%d OR u.email ILIKE $%d OR u.first_name ILIKE $%d OR u.last_name ILIKE $%d)",
			n, n, n, n, n))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where = append(where, fmt.Sprintf("l.created_at >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		// End date is inclusive to the end of that day.
		end := filter.EndDate.Truncate(24 * time.Hour).Add(24*time.Hour - time.Nanosecond)
		if filter.EndDate.After(end) {
			end = *filter.EndDate
		}
		args = append(args, end)
		where = append(where, fmt.Sprintf("l.created_at <= $%d", len(args)))
	}

	cond := strings.Join(where, " AND ")
	var entries []domain.LogEntry
	var total int

	err := s.inReadTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			"SELECT COUNT(*) FROM logs l JOIN users u ON u.id = l.user_id WHERE "+cond,
			args...).Scan(&total)
		if err != nil {
			return internalErr(err, "log count")
		}

		pageArgs := append(args, page.Limit, page.Offset())
		rows, err := tx.Query(ctx, fmt.Sprintf(
			`SELECT l.id, l.user_id, l.log, l.created_at,
				u.username, u.email, u.role, u.first_name, u.last_name
			FROM logs l JOIN users u ON u.id = l.user_id
			WHERE %s ORDER BY l.created_at DESC LIMIT $%d OFFSET $%d`,
			cond, len(args)+1, len(args)+2), pageArgs...)
		if err != nil {
			return internalErr(err, "log query")
		}
		defer rows.Close()

		for rows.Next() {
			var e domain.LogEntry
			e.User = &domain.User{}
			if err := rows.Scan(&e.ID, &e.UserID, &e.Message, &e.CreatedAt,
				&e.User.Username, &e.User.Email, &e.User.Role,
				&e.User.FirstName, &e.User.LastName); err != nil {
				return internalErr(err, "log scan")
			}
			e.User.ID = e.UserID
			entries = append(entries, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
