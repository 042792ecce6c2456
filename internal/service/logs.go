package service

import (
	"context"

	"github.com/ecashph/ecash/internal/domain"
)

// LogStore is the read side of the audit trail. Entries are only ever
// appended inside other mutations' transactions; there is no direct
// write path here.
type LogStore interface {
	ListLogs(ctx context.Context, filter domain.LogFilter, page domain.Page) ([]domain.LogEntry, int, error)
}

// LogService lists the audit trail for the admin dashboard.
type LogService struct {
	store LogStore
}

func NewLogService(store LogStore) *LogService {
	return &LogService{store: store}
}

// List pages through audit entries newest first.
func (s *LogService) List(ctx context.Context, filter domain.LogFilter, page domain.Page) ([]domain.LogEntry, int, int, error) {
	page = normalizePage(page)
	entries, total, err := s.store.ListLogs(ctx, filter, page)
	if err != nil {
		return nil, 0, 0, err
	}
	return entries, total, pageCount(total, page.Limit), nil
}
