package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecashph/ecash/internal/apperr"
	"github.com/ecashph/ecash/internal/domain"
)

// fakeStore is an in-memory stand-in for *store.Store. It mirrors the
// persistence semantics the services rely on: soft deletes, the unique
// index on live document codes, and the audit append that skips when
// no actor is attributed.
type fakeStore struct {
	now time.Time

	nextID        int64
	payees        map[int64]*domain.Payee
	funds         map[int64]*domain.FundSource
	disbursements map[int64]*domain.Disbursement
	entries       []domain.FundEntry
	users         map[int64]*domain.User
	otps          []*domain.OtpChallenge
	logs          []domain.LogEntry

	// failCreates forces the next N disbursement inserts to collide,
	// simulating a concurrent writer winning the code race.
	failCreates int
}

func newFakeStore(now time.Time) *fakeStore {
	return &fakeStore{
		now:           now,
		payees:        make(map[int64]*domain.Payee),
		funds:         make(map[int64]*domain.FundSource),
		disbursements: make(map[int64]*domain.Disbursement),
		users:         make(map[int64]*domain.User),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) appendLog(actorID *int64, msg string) {
	if actorID == nil {
		return
	}
	f.logs = append(f.logs, domain.LogEntry{
		ID:        f.id(),
		UserID:    *actorID,
		Message:   msg,
		CreatedAt: f.now,
	})
}

// seedPayee and seedFund install live reference rows without touching
// the audit trail.
func (f *fakeStore) seedPayee(name string) *domain.Payee {
	p := &domain.Payee{
		ID:            f.id(),
		Name:          name,
		Type:          domain.PayeeSupplier,
		ContactNumber: "0917-000-0000",
		Active:        true,
		CreatedAt:     f.now,
	}
	f.payees[p.ID] = p
	return p
}

func (f *fakeStore) seedFund(code string, initial decimal.Decimal) *domain.FundSource {
	fund := &domain.FundSource{
		ID:             f.id(),
		Code:           code,
		Name:           "Fund " + code,
		InitialBalance: initial,
		Reset:          domain.ResetNone,
		Active:         true,
		CreatedAt:      f.now,
	}
	f.funds[fund.ID] = fund
	return fund
}

// --- DisbursementStore ---

func (f *fakeStore) CreateDisbursement(ctx context.Context, d *domain.Disbursement, actorID *int64, logMsg string) (*domain.Disbursement, error) {
	if f.failCreates > 0 {
		f.failCreates--
		return nil, apperr.New(apperr.Conflict, "document code %s already issued", *d.LddapNum)
	}
	if d.LddapNum != nil {
		for _, existing := range f.disbursements {
			if existing.DeletedAt == nil && existing.LddapNum != nil && *existing.LddapNum == *d.LddapNum {
				return nil, apperr.New(apperr.Conflict, "document code %s already issued", *d.LddapNum)
			}
		}
	}
	cp := *d
	cp.ID = f.id()
	cp.CreatedAt = f.now
	f.disbursements[cp.ID] = &cp
	f.appendLog(actorID, logMsg)
	out := cp
	return &out, nil
}

func (f *fakeStore) UpdateDisbursement(ctx context.Context, d *domain.Disbursement, replaceItems, replaceDeductions, replaceRefs bool, actorID *int64, logMsg string) (*domain.Disbursement, error) {
	existing, ok := f.disbursements[d.ID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "disbursement %d not found", d.ID)
	}
	if existing.DeletedAt != nil || existing.Status != domain.StatusPending {
		return nil, apperr.New(apperr.StateConflict, "disbursement %d can no longer be edited", d.ID)
	}
	cp := *d
	f.disbursements[d.ID] = &cp
	f.appendLog(actorID, logMsg)
	out := cp
	return &out, nil
}

func (f *fakeStore) ApproveDisbursement(ctx context.Context, id int64, approvedAt time.Time, remarks *string, actorID *int64, logMsg string) error {
	d, ok := f.disbursements[id]
	if !ok {
		return apperr.New(apperr.NotFound, "disbursement %d not found", id)
	}
	if d.DeletedAt != nil || d.Status != domain.StatusPending {
		return apperr.New(apperr.Conflict, "disbursement %d is not pending", id)
	}
	d.Status = domain.StatusApproved
	d.ApprovedAt = &approvedAt
	if remarks != nil {
		d.Remarks = remarks
	}
	f.appendLog(actorID, logMsg)
	return nil
}

func (f *fakeStore) SoftDeleteDisbursement(ctx context.Context, id int64, deletedAt time.Time, actorID *int64, logMsg string) error {
	d, ok := f.disbursements[id]
	if !ok {
		return apperr.New(apperr.NotFound, "disbursement %d not found", id)
	}
	if d.DeletedAt != nil {
		return apperr.New(apperr.Conflict, "disbursement %d already removed", id)
	}
	d.DeletedAt = &deletedAt
	f.appendLog(actorID, logMsg)
	return nil
}

func (f *fakeStore) GetDisbursement(ctx context.Context, id int64) (*domain.Disbursement, error) {
	d, ok := f.disbursements[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "disbursement %d not found", id)
	}
	cp := *d
	if p, ok := f.payees[d.PayeeID]; ok {
		pc := *p
		cp.Payee = &pc
	}
	if fund, ok := f.funds[d.FundSourceID]; ok {
		fc := *fund
		cp.Fund = &fc
	}
	return &cp, nil
}

func (f *fakeStore) ListDisbursements(ctx context.Context, filter domain.DisbursementFilter, page domain.Page) ([]domain.Disbursement, int, error) {
	var matched []domain.Disbursement
	for _, d := range f.disbursements {
		if d.DeletedAt != nil {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if filter.Method != "" && d.Method != filter.Method {
			continue
		}
		if filter.FundID != 0 && d.FundSourceID != filter.FundID {
			continue
		}
		if filter.StartDate != nil && d.DateReceived.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && !d.DateReceived.Before(*filter.EndDate) {
			continue
		}
		if filter.Search != "" {
			payeeName := ""
			if p, ok := f.payees[d.PayeeID]; ok {
				payeeName = p.Name
			}
			code := ""
			if d.LddapNum != nil {
				code = *d.LddapNum
			}
			check := ""
			if d.CheckNum != nil {
				check = *d.CheckNum
			}
			hay := strings.ToLower(payeeName + " " + code + " " + check + " " + d.References.DvNum)
			if !strings.Contains(hay, strings.ToLower(filter.Search)) {
				continue
			}
		}
		matched = append(matched, *d)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].DateReceived.Equal(matched[j].DateReceived) {
			return matched[i].DateReceived.After(matched[j].DateReceived)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	offset := page.Offset()
	if offset >= total {
		return nil, total, nil
	}
	end := offset + page.Limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (f *fakeStore) LatestLddapNum(ctx context.Context) (string, error) {
	var latest string
	var latestID int64
	for _, d := range f.disbursements {
		if d.LddapNum != nil && d.ID > latestID {
			latestID = d.ID
			latest = *d.LddapNum
		}
	}
	return latest, nil
}

func (f *fakeStore) GetActivePayee(ctx context.Context, id int64) (*domain.Payee, error) {
	p, ok := f.payees[id]
	if !ok || p.DeletedAt != nil {
		return nil, apperr.New(apperr.NotFound, "payee %d not found", id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) GetActiveFund(ctx context.Context, id int64) (*domain.FundSource, error) {
	fund, ok := f.funds[id]
	if !ok || fund.DeletedAt != nil {
		return nil, apperr.New(apperr.NotFound, "fund %d not found", id)
	}
	cp := *fund
	return &cp, nil
}

// --- FundStore ---

func (f *fakeStore) CreateFund(ctx context.Context, fund *domain.FundSource, actorID *int64, logMsg string) (*domain.FundSource, error) {
	for _, existing := range f.funds {
		if existing.DeletedAt == nil && existing.Code == fund.Code {
			return nil, apperr.New(apperr.Conflict, "fund code %s already in use", fund.Code)
		}
	}
	cp := *fund
	cp.ID = f.id()
	cp.Active = true
	cp.CreatedAt = f.now
	f.funds[cp.ID] = &cp
	f.appendLog(actorID, logMsg)
	out := cp
	return &out, nil
}

func (f *fakeStore) UpdateFund(ctx context.Context, fund *domain.FundSource, actorID *int64, logMsg string) (*domain.FundSource, error) {
	if _, ok := f.funds[fund.ID]; !ok {
		return nil, apperr.New(apperr.NotFound, "fund %d not found", fund.ID)
	}
	for _, existing := range f.funds {
		if existing.ID != fund.ID && existing.DeletedAt == nil && existing.Code == fund.Code {
			return nil, apperr.New(apperr.Conflict, "fund code %s already in use", fund.Code)
		}
	}
	cp := *fund
	f.funds[fund.ID] = &cp
	f.appendLog(actorID, logMsg)
	out := cp
	return &out, nil
}

func (f *fakeStore) SoftDeleteFund(ctx context.Context, id int64, deletedAt time.Time, actorID *int64, logMsg string) error {
	fund, ok := f.funds[id]
	if !ok {
		return apperr.New(apperr.NotFound, "fund %d not found", id)
	}
	if fund.DeletedAt != nil {
		return apperr.New(apperr.Conflict, "fund %d already deactivated", id)
	}
	fund.DeletedAt = &deletedAt
	fund.Active = false
	f.appendLog(actorID, logMsg)
	return nil
}

func (f *fakeStore) AddFundEntry(ctx context.Context, e *domain.FundEntry, actorID *int64, logMsg string) (*domain.FundEntry, error) {
	if _, ok := f.funds[e.FundSourceID]; !ok {
		return nil, apperr.New(apperr.NotFound, "fund %d not found", e.FundSourceID)
	}
	cp := *e
	cp.ID = f.id()
	cp.CreatedAt = f.now
	f.entries = append(f.entries, cp)
	f.appendLog(actorID, logMsg)
	out := cp
	return &out, nil
}

func (f *fakeStore) GetFund(ctx context.Context, id int64) (*domain.FundSource, error) {
	fund, ok := f.funds[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "fund %d not found", id)
	}
	cp := *fund
	for _, e := range f.entries {
		if e.FundSourceID == id {
			cp.Entries = append(cp.Entries, e)
		}
	}
	return &cp, nil
}

func (f *fakeStore) ListActiveFunds(ctx context.Context) ([]domain.FundSource, error) {
	var out []domain.FundSource
	for _, fund := range f.funds {
		if fund.DeletedAt == nil {
			out = append(out, *fund)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) TotalSpent(ctx context.Context, fundID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, d := range f.disbursements {
		if d.FundSourceID == fundID && d.Status == domain.StatusApproved && d.DeletedAt == nil {
			total = total.Add(d.NetAmount)
		}
	}
	return total, nil
}

func (f *fakeStore) AllocationsInRange(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range f.entries {
		fund, ok := f.funds[e.FundSourceID]
		if !ok || fund.DeletedAt != nil {
			continue
		}
		if !e.CreatedAt.Before(start) && e.CreatedAt.Before(end) {
			total = total.Add(e.Amount)
		}
	}
	for _, fund := range f.funds {
		if fund.DeletedAt == nil && !fund.CreatedAt.Before(start) && fund.CreatedAt.Before(end) {
			total = total.Add(fund.InitialBalance)
		}
	}
	return total, nil
}

func (f *fakeStore) DisbursedInRange(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, d := range f.disbursements {
		if d.Status != domain.StatusApproved || d.DeletedAt != nil {
			continue
		}
		if !d.DateReceived.Before(start) && d.DateReceived.Before(end) {
			total = total.Add(d.NetAmount)
		}
	}
	return total, nil
}

func (f *fakeStore) PaidVouchers(ctx context.Context, fundID int64, start, end time.Time) ([]domain.Disbursement, error) {
	var out []domain.Disbursement
	for _, d := range f.disbursements {
		if d.FundSourceID != fundID || d.Status != domain.StatusApproved || d.DeletedAt != nil {
			continue
		}
		if d.DateReceived.Before(start) || !d.DateReceived.Before(end) {
			continue
		}
		cp := *d
		if p, ok := f.payees[d.PayeeID]; ok {
			pc := *p
			cp.Payee = &pc
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateReceived.Equal(out[j].DateReceived) {
			return out[i].DateReceived.Before(out[j].DateReceived)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// --- PayeeStore ---

func (f *fakeStore) CreatePayee(ctx context.Context, p *domain.Payee, actorID *int64, logMsg string) (*domain.Payee, error) {
	for _, existing := range f.payees {
		if existing.DeletedAt == nil && strings.EqualFold(existing.Name, p.Name) {
			return nil, apperr.New(apperr.Conflict, "payee %s already registered", p.Name)
		}
	}
	cp := *p
	cp.ID = f.id()
	cp.Active = true
	cp.CreatedAt = f.now
	f.payees[cp.ID] = &cp
	f.appendLog(actorID, logMsg)
	out := cp
	return &out, nil
}

func (f *fakeStore) UpdatePayee(ctx context.Context, p *domain.Payee, actorID *int64, logMsg string) (*domain.Payee, error) {
	if _, ok := f.payees[p.ID]; !ok {
		return nil, apperr.New(apperr.NotFound, "payee %d not found", p.ID)
	}
	for _, existing := range f.payees {
		if existing.ID != p.ID && existing.DeletedAt == nil && strings.EqualFold(existing.Name, p.Name) {
			return nil, apperr.New(apperr.Conflict, "payee %s already registered", p.Name)
		}
	}
	cp := *p
	f.payees[p.ID] = &cp
	f.appendLog(actorID, logMsg)
	out := cp
	return &out, nil
}

func (f *fakeStore) SoftDeletePayee(ctx context.Context, id int64, deletedAt time.Time, actorID *int64, logMsg string) error {
	p, ok := f.payees[id]
	if !ok {
		return apperr.New(apperr.NotFound, "payee %d not found", id)
	}
	if p.DeletedAt != nil {
		return apperr.New(apperr.Conflict, "payee %d already removed", id)
	}
	p.DeletedAt = &deletedAt
	p.Active = false
	f.appendLog(actorID, logMsg)
	return nil
}

func (f *fakeStore) GetPayee(ctx context.Context, id int64) (*domain.Payee, error) {
	p, ok := f.payees[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "payee %d not found", id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListPayees(ctx context.Context, search string, ptype domain.PayeeType, page domain.Page) ([]domain.Payee, int, error) {
	var matched []domain.Payee
	for _, p := range f.payees {
		if p.DeletedAt != nil {
			continue
		}
		if ptype != "" && p.Type != ptype {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := len(matched)
	offset := page.Offset()
	if offset >= total {
		return nil, total, nil
	}
	end := offset + page.Limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// --- LogStore ---

func (f *fakeStore) ListLogs(ctx context.Context, filter domain.LogFilter, page domain.Page) ([]domain.LogEntry, int, error) {
	var matched []domain.LogEntry
	for _, l := range f.logs {
		if filter.Search != "" && !strings.Contains(strings.ToLower(l.Message), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, l)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	offset := page.Offset()
	if offset >= total {
		return nil, total, nil
	}
	end := offset + page.Limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// --- UserStore ---

func (f *fakeStore) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range f.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return nil, apperr.New(apperr.Conflict, "account already exists")
		}
	}
	cp := *u
	cp.ID = f.id()
	cp.CreatedAt = f.now
	f.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "user not found")
}

func (f *fakeStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user %d not found", id)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	for _, u := range f.users {
		if u.Email == email {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return apperr.New(apperr.NotFound, "user not found")
}

func (f *fakeStore) CreateOtp(ctx context.Context, otp *domain.OtpChallenge) error {
	cp := *otp
	cp.CreatedAt = f.now
	f.otps = append(f.otps, &cp)
	return nil
}

func (f *fakeStore) LatestOtp(ctx context.Context, email string) (*domain.OtpChallenge, error) {
	for i := len(f.otps) - 1; i >= 0; i-- {
		if f.otps[i].Email == email && !f.otps[i].Consumed {
			cp := *f.otps[i]
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "no reset code issued")
}

func (f *fakeStore) ConsumeOtp(ctx context.Context, id uuid.UUID) error {
	for _, otp := range f.otps {
		if otp.ID == id {
			if otp.Consumed {
				return apperr.New(apperr.Conflict, "reset code already used")
			}
			otp.Consumed = true
			return nil
		}
	}
	return apperr.New(apperr.NotFound, "reset code not found")
}
