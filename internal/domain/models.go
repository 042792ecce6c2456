package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Method is the payment channel of a disbursement.
type Method string

const (
	MethodLDDAP Method = "LDDAP"
	MethodCheck Method = "CHECK"
)

// LddapType distinguishes how an LDDAP disbursement was lodged.
type LddapType string

const (
	LddapOnline LddapType = "ONLINE"
	LddapManual LddapType = "MANUAL"
)

// Status is the lifecycle state of a disbursement. The historical
// PAID/PENDING and pending/approved spellings are collapsed into this
// single enumeration.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
)

// PayeeType classifies a payment recipient.
type PayeeType string

const (
	PayeeSupplier   PayeeType = "SUPPLIER"
	PayeeEmployee   PayeeType = "EMPLOYEE"
	PayeeContractor PayeeType = "CONTRACTOR"
	PayeeUtility    PayeeType = "UTILITY"
)

// ResetCadence is how often a fund's available balance resets.
type ResetCadence string

const (
	ResetNone      ResetCadence = "NONE"
	ResetMonthly   ResetCadence = "MONTHLY"
	ResetQuarterly ResetCadence = "QUARTERLY"
	ResetYearly    ResetCadence = "YEARLY"
)

// Role is a user's authorization level.
type Role string

const (
	RoleUser  Role = "USER"
	RoleStaff Role = "STAFF"
	RoleAdmin Role = "ADMIN"
)

// Payee is a registered payment recipient. Removal is a soft delete:
// Active flips to false and DeletedAt is set, the row stays.
type Payee struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Type          PayeeType  `json:"type"`
	ContactNumber string     `json:"contact_number"`
	Email         string     `json:"email,omitempty"`
	Address       string     `json:"address,omitempty"`
	BankName      string     `json:"bank_name,omitempty"`
	AccountNumber string     `json:"account_number,omitempty"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// FundSource is a budget account disbursements draw against.
type FundSource struct {
	ID             int64           `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Reset          ResetCadence    `json:"reset"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	DeletedAt      *time.Time      `json:"deleted_at,omitempty"`
	Entries        []FundEntry     `json:"entries,omitempty"`
}

// FundEntry is one manual allocation credited to a fund source.
// Immutable once created.
type FundEntry struct {
	ID           int64           `json:"id"`
	FundSourceID int64           `json:"fund_source_id"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Disbursement is the ledger record. GrossAmount, TotalDeductions and
// NetAmount are derived from Items and Deductions and never accepted
// from a caller.
type Disbursement struct {
	ID           int64      `json:"id"`
	PayeeID      int64      `json:"payee_id"`
	FundSourceID int64      `json:"fund_source_id"`
	Method       Method     `json:"method"`
	LddapType    *LddapType `json:"lddap_type,omitempty"`
	LddapNum     *string    `json:"lddap_num,omitempty"`
	CheckNum     *string    `json:"check_num,omitempty"`
	Status       Status     `json:"status"`
	DateReceived time.Time  `json:"date_received"`
	Particulars  string     `json:"particulars,omitempty"`

	GrossAmount     decimal.Decimal `json:"gross_amount"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetAmount       decimal.Decimal `json:"net_amount"`

	Remarks    *string    `json:"remarks,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`

	Items      []DisbursementItem `json:"items"`
	Deductions []Deduction        `json:"deductions"`
	References ReferenceSet       `json:"references"`

	Payee *Payee      `json:"payee,omitempty"`
	Fund  *FundSource `json:"fund,omitempty"`
}

// Deleted reports whether the record has been soft-deleted.
func (d *Disbursement) Deleted() bool { return d.DeletedAt != nil }

// DisbursementItem is one line item of a voucher. Item sets are always
// replaced wholesale on edit.
type DisbursementItem struct {
	ID             int64           `json:"id"`
	DisbursementID int64           `json:"disbursement_id"`
	Description    string          `json:"description"`
	AccountCode    string          `json:"account_code"`
	Amount         decimal.Decimal `json:"amount"`
}

// Deduction is a named amount withheld from the gross.
type Deduction struct {
	ID             int64           `json:"id"`
	DisbursementID int64           `json:"disbursement_id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
}

// ReferenceSet carries the auxiliary document references attached 1:1
// to a disbursement.
type ReferenceSet struct {
	ID             int64  `json:"id,omitempty"`
	DisbursementID int64  `json:"disbursement_id,omitempty"`
	CertCode       string `json:"cert_code,omitempty"`
	OrsNum         string `json:"ors_num,omitempty"`
	DvNum          string `json:"dv_num,omitempty"`
	ClassCode      string `json:"class_code,omitempty"`
	RespCode       string `json:"resp_code,omitempty"`
}

// LogEntry is one immutable audit record.
type LogEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `json:"user,omitempty"`
}

// User is a system account. Authentication lives at the edge; the core
// only needs the identity for audit attribution.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// OtpChallenge is a one-time password-reset code. Valid until
// ExpiresAt and consumable exactly once.
type OtpChallenge struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Consumed  bool      `json:"consumed"`
	CreatedAt time.Time `json:"created_at"`
}

// OtpWindow is how long a password-reset code stays valid.
const OtpWindow = 5 * time.Minute

// FundStats are the derived utilization figures for one fund.
type FundStats struct {
	FundID         int64           `json:"fund_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	Remaining      decimal.Decimal `json:"remaining"`
	Utilization    float64         `json:"utilization"`
}

// DashboardStats are the month-scoped cash-flow figures plus global
// totals across active funds.
type DashboardStats struct {
	Year            int             `json:"year"`
	Month           time.Month      `json:"month"`
	TotalNCA        decimal.Decimal `json:"total_nca"`
	TotalDisbursed  decimal.Decimal `json:"total_disbursed"`
	MonthBalance    decimal.Decimal `json:"month_balance"`
	CashUtilization float64         `json:"cash_utilization"`

	TotalAllocation decimal.Decimal `json:"total_allocation"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	TotalRemaining  decimal.Decimal `json:"total_remaining"`
	Funds           []FundStats     `json:"funds"`
}
