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

// PayeeStore is the persistence the payee registry needs.
type PayeeStore interface {
	CreatePayee(ctx context.Context, p *domain.Payee, actorID *int64, logMsg string) (*domain.Payee, error)
	UpdatePayee(ctx context.Context, p *domain.Payee, actorID *int64, logMsg string) (*domain.Payee, error)
	SoftDeletePayee(ctx context.Context, id int64, deletedAt time.Time, actorID *int64, logMsg string) error
	GetPayee(ctx context.Context, id int64) (*domain.Payee, error)
	ListPayees(ctx context.Context, search string, ptype domain.PayeeType, page domain.Page) ([]domain.Payee, int, error)
}

// PayeeService manages the directory of payment recipients.
type PayeeService struct {
	store PayeeStore
	clock clock.Clock
	log   *slog.Logger
}

func NewPayeeService(store PayeeStore, clk clock.Clock, log *slog.Logger) *PayeeService {
	return &PayeeService{store: store, clock: clk, log: log}
}

func validPayeeType(t domain.PayeeType) bool {
	switch t {
	case domain.PayeeSupplier, domain.PayeeEmployee, domain.PayeeContractor, domain.PayeeUtility:
		return true
	}
	return false
}

// Create registers a payee. The name must be unique among live payees.
func (s *PayeeService) Create(ctx context.Context, req domain.CreatePayeeRequest, actorID *int64) (*domain.Payee, error) {
	if req.Name == "" || req.ContactNumber == "" {
		return nil, apperr.New(apperr.Validation, "payee name and contact number are required")
	}
	if !validPayeeType(req.Type) {
		return nil, apperr.New(apperr.Validation, "unsupported payee type %q", req.Type)
	}

	p := &domain.Payee{
		Name:          req.Name,
		Type:          req.Type,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Address:       req.Address,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
	}
	logMsg := fmt.Sprintf("Created payee %s (%s)", req.Name, req.Type)
	return s.store.CreatePayee(ctx, p, actorID, logMsg)
}

// Edit patches a live payee. Name uniqueness is re-enforced only when
// the name actually changes (the unique index sees no change
// otherwise).
func (s *PayeeService) Edit(ctx context.Context, id int64, patch domain.EditPayeeRequest, actorID *int64) (*domain.Payee, error) {
	current, err := s.store.GetPayee(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.DeletedAt != nil {
		return nil, apperr.New(apperr.NotFound, "payee %d not found", id)
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, apperr.New(apperr.Validation, "payee name must not be empty")
		}
		current.Name = *patch.Name
	}
	if patch.Type != nil {
		if !validPayeeType(*patch.Type) {
			return nil, apperr.New(apperr.Validation, "unsupported payee type %q", *patch.Type)
		}
		current.Type = *patch.Type
	}
	if patch.ContactNumber != nil {
		if *patch.ContactNumber == "" {
			return nil, apperr.New(apperr.Validation, "contact number must not be empty")
		}
		current.ContactNumber = *patch.ContactNumber
	}
	if patch.Email != nil {
		current.Email = *patch.Email
	}
	if patch.Address != nil {
		current.Address = *patch.Address
	}
	if patch.BankName != nil {
		current.BankName = *patch.BankName
	}
	if patch.AccountNumber != nil {
		current.AccountNumber = *patch.AccountNumber
	}

	logMsg := fmt.Sprintf("Edited payee %s", current.Name)
	return s.store.UpdatePayee(ctx, current, actorID, logMsg)
}

// Remove soft-deletes a payee; removing twice is a Conflict.
func (s *PayeeService) Remove(ctx context.Context, id int64, actorID *int64) error {
	current, err := s.store.GetPayee(ctx, id)
	if err != nil {
		return err
	}
	if current.DeletedAt != nil {
		return apperr.New(apperr.Conflict, "payee %d already removed", id)
	}
	logMsg := fmt.Sprintf("Removed payee %s", current.Name)
	return s.store.SoftDeletePayee(ctx, id, s.clock.Now(), actorID, logMsg)
}

// Get returns one payee, soft-deleted included.
func (s *PayeeService) Get(ctx context.Context, id int64) (*domain.Payee, error) {
	return s.store.GetPayee(ctx, id)
}

// List pages through live payees.
func (s *PayeeService) List(ctx context.Context, search string, ptype domain.PayeeType, page domain.Page) ([]domain.Payee, int, int, error) {
	page = normalizePage(page)
	payees, total, err := s.store.ListPayees(ctx, search, ptype, page)
	if err != nil {
		return nil, 0, 0, err
	}
	return payees, total, pageCount(total, page.Limit), nil
}
