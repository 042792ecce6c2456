package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ecashph/ecash/internal/domain"
)

func sampleVoucher(serial string, net string, received time.Time) domain.Disbursement {
	code := serial
	return domain.Disbursement{
		ID:           1,
		Method:       domain.MethodLDDAP,
		LddapNum:     &code,
		Status:       domain.StatusApproved,
		DateReceived: received,
		Particulars:  "Payment for office supplies",
		NetAmount:    decimal.RequireFromString(net),
		Items: []domain.DisbursementItem{
			{Description: "Bond paper", AccountCode: "5020301000", Amount: decimal.RequireFromString(net)},
		},
		References: domain.ReferenceSet{DvNum: "DV-2026-03-044", OrsNum: "ORS-2026-03-102"},
		Payee:      &domain.Payee{Name: "Acme Trading"},
	}
}

func TestRenderSPV(t *testing.T) {
	fund := &domain.FundSource{Code: "GF-101", Name: "General Fund", Description: "LBP 0012-3456-78"}
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	vouchers := []domain.Disbursement{
		sampleVoucher("01101101-03-0001-2026", "14250.00", start.AddDate(0, 0, 4)),
		sampleVoucher("01101101-03-0002-2026", "5750.00", start.AddDate(0, 0, 9)),
	}

	raw, err := RenderSPV(fund, vouchers, start, end)
	if err != nil {
		t.Fatalf("RenderSPV: %v", err)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer wb.Close()

	if idx, _ := wb.GetSheetIndex(sheetName); idx < 0 {
		t.Fatalf("sheet %q missing", sheetName)
	}

	title, err := wb.GetCellValue(sheetName, "A3")
	if err != nil {
		t.Fatalf("read title: %v", err)
	}
	if title != "SUMMARY OF PAID VOUCHERS" {
		t.Fatalf("title = %q", title)
	}

	cluster, _ := wb.GetCellValue(sheetName, "A7")
	if cluster != "Fund Cluster : GF-101 - General Fund" {
		t.Fatalf("fund cluster = %q", cluster)
	}

	// First voucher row sits directly under the header row.
	serial, _ := wb.GetCellValue(sheetName, "B11")
	if serial != "01101101-03-0001-2026" {
		t.Fatalf("first serial = %q", serial)
	}
	payee, _ := wb.GetCellValue(sheetName, "F11")
	if payee != "Acme Trading" {
		t.Fatalf("first payee = %q", payee)
	}

	// Grand total follows the last data row.
	label, _ := wb.GetCellValue(sheetName, "H13")
	if label != "GRAND TOTAL" {
		t.Fatalf("total label = %q", label)
	}
	total, _ := wb.GetCellValue(sheetName, "I13")
	if total != "20,000.00" && total != "20000" {
		t.Fatalf("grand total = %q", total)
	}
}

func TestRenderSPVEmptyMonth(t *testing.T) {
	fund := &domain.FundSource{Code: "SF-102", Name: "Special Fund"}
	start := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	raw, err := RenderSPV(fund, nil, start, start.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("RenderSPV with no vouchers: %v", err)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer wb.Close()

	bank, _ := wb.GetCellValue(sheetName, "A8")
	if bank != "Bank Name/Account No. : N/A" {
		t.Fatalf("bank line = %q", bank)
	}
	label, _ := wb.GetCellValue(sheetName, "H11")
	if label != "GRAND TOTAL" {
		t.Fatalf("total label = %q", label)
	}
}
