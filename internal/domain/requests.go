package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemInput is a caller-supplied line item.
type ItemInput struct {
	Description string          `json:"description"`
	AccountCode string          `json:"account_code"`
	Amount      decimal.Decimal `json:"amount"`
}

// DeductionInput is a caller-supplied deduction. Amount is a pointer
// because callers routinely send blank rows; entries with an empty
// type or a nil amount are dropped, not rejected.
type DeductionInput struct {
	Type   string           `json:"type"`
	Amount *decimal.Decimal `json:"amount"`
}

// ReferenceInput is the caller-supplied reference set.
type ReferenceInput struct {
	CertCode  string `json:"cert_code"`
	OrsNum    string `json:"ors_num"`
	DvNum     string `json:"dv_num"`
	ClassCode string `json:"class_code"`
	RespCode  string `json:"resp_code"`
}

// CreateDisbursementRequest is the payload for a new voucher.
type CreateDisbursementRequest struct {
	PayeeID      int64            `json:"payee_id"`
	FundSourceID int64            `json:"fund_source_id"`
	Method       Method           `json:"method"`
	LddapType    *LddapType       `json:"lddap_type,omitempty"`
	CheckNum     *string          `json:"check_num,omitempty"`
	DateReceived time.Time        `json:"date_received"`
	Particulars  string           `json:"particulars"`
	Items        []ItemInput      `json:"items"`
	Deductions   []DeductionInput `json:"deductions"`
	References   ReferenceInput   `json:"references"`
}

// EditDisbursementRequest patches a pending voucher. Nil scalar fields
// keep their current value; a non-nil Items, Deductions or References
// replaces the prior set wholesale.
type EditDisbursementRequest struct {
	PayeeID      *int64            `json:"payee_id,omitempty"`
	FundSourceID *int64            `json:"fund_source_id,omitempty"`
	LddapType    *LddapType        `json:"lddap_type,omitempty"`
	CheckNum     *string           `json:"check_num,omitempty"`
	DateReceived *time.Time        `json:"date_received,omitempty"`
	Particulars  *string           `json:"particulars,omitempty"`
	Items        *[]ItemInput      `json:"items,omitempty"`
	Deductions   *[]DeductionInput `json:"deductions,omitempty"`
	References   *ReferenceInput   `json:"references,omitempty"`
}

// DisbursementFilter narrows a ledger listing. A nil date range
// defaults to the current calendar month.
type DisbursementFilter struct {
	Status    Status     `json:"status,omitempty"`
	Method    Method     `json:"method,omitempty"`
	FundID    int64      `json:"fund_id,omitempty"`
	Search    string     `json:"search,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Page is offset/limit pagination. Zero values fall back to the
// defaults applied by the service.
type Page struct {
	Number int `json:"page"`
	Limit  int `json:"limit"`
}

// Offset converts the 1-based page number to a row offset.
func (p Page) Offset() int { return (p.Number - 1) * p.Limit }

// CreatePayeeRequest registers a payment recipient.
type CreatePayeeRequest struct {
	Name          string    `json:"name"`
	Type          PayeeType `json:"type"`
	ContactNumber string    `json:"contact_number"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
}

// EditPayeeRequest patches a payee; nil fields keep their value.
type EditPayeeRequest struct {
	Name          *string    `json:"name,omitempty"`
	Type          *PayeeType `json:"type,omitempty"`
	ContactNumber *string    `json:"contact_number,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Address       *string    `json:"address,omitempty"`
	BankName      *string    `json:"bank_name,omitempty"`
	AccountNumber *string    `json:"account_number,omitempty"`
}

// CreateFundRequest opens a budget account.
type CreateFundRequest struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Reset          ResetCadence    `json:"reset"`
}

// EditFundRequest patches a fund; nil fields keep their value.
type EditFundRequest struct {
	Code           *string          `json:"code,omitempty"`
	Name           *string          `json:"name,omitempty"`
	Description    *string          `json:"description,omitempty"`
	InitialBalance *decimal.Decimal `json:"initial_balance,omitempty"`
	Reset          *ResetCadence    `json:"reset,omitempty"`
}

// FundEntryRequest credits an allocation to a fund.
type FundEntryRequest struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// LogFilter narrows the audit-trail listing. Search matches the log
// message and the acting user's identity fields.
type LogFilter struct {
	Search    string     `json:"search,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}
