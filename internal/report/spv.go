// Package report renders the "Summary of Paid Vouchers" workbook from
// the ledger's approved-voucher read query.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ecashph/ecash/internal/domain"
)

const sheetName = "Summary of Paid Vouchers"

const headerRowIdx = 10

var tableHeaders = []string{
	"Date",
	"ADA/Check\nSerial No.",
	"DV/Payroll No.",
	"ORS/BURS No.",
	"Responsibility\nCenter Code",
	"Payee",
	"UACS Object\nCode",
	"Nature of Payment",
	"Amount",
	"Remarks",
}

// RenderSPV builds the monthly Summary of Paid Vouchers workbook for
// one fund and returns the xlsx bytes.
func RenderSPV(fund *domain.FundSource, vouchers []domain.Disbursement, start, end time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("spv sheet setup: %w", err)
	}

	widths := []float64{12, 15, 15, 15, 15, 30, 15, 30, 15, 15}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, w); err != nil {
			return nil, fmt.Errorf("spv column width: %w", err)
		}
	}

	italic, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true}})
	if err != nil {
		return nil, err
	}
	title, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	boldCenter, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorder(),
	})
	if err != nil {
		return nil, err
	}
	bordered, err := f.NewStyle(&excelize.Style{Border: thinBorder()})
	if err != nil {
		return nil, err
	}
	amountFmt := "#,##0.00"
	amountStyle, err := f.NewStyle(&excelize.Style{Border: thinBorder(), CustomNumFmt: &amountFmt})
	if err != nil {
		return nil, err
	}

	f.MergeCell(sheetName, "J1", "K1")
	f.SetCellValue(sheetName, "J1", "Appendix 13")
	f.SetCellStyle(sheetName, "J1", "J1", italic)

	f.MergeCell(sheetName, "A3", "J3")
	f.SetCellValue(sheetName, "A3", "SUMMARY OF PAID VOUCHERS")
	f.SetCellStyle(sheetName, "A3", "A3", title)

	f.MergeCell(sheetName, "A4", "J4")
	f.SetCellValue(sheetName, "A4", fmt.Sprintf("Period Covered: %s to %s",
		start.Format("January 02"), end.Add(-time.Nanosecond).Format("January 02, 2006")))
	f.SetCellStyle(sheetName, "A4", "A4", boldCenter)

	f.SetCellValue(sheetName, "A6", "Entity Name : Department of Science and Technology")
	f.SetCellValue(sheetName, "A7", fmt.Sprintf("Fund Cluster : %s - %s", fund.Code, fund.Name))
	bank := fund.Description
	if bank == "" {
		bank = "N/A"
	}
	f.SetCellValue(sheetName, "A8", "Bank Name/Account No. : "+bank)
	f.SetCellValue(sheetName, "H7", fmt.Sprintf("Report No.: %d-%02d-001", start.Year(), int(start.Month())))
	f.SetCellValue(sheetName, "H8", "Sheet No.:")

	for i, h := range tableHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRowIdx)
		f.SetCellValue(sheetName, cell, h)
	}
	f.SetRowHeight(sheetName, headerRowIdx, 30)
	firstHeader, _ := excelize.CoordinatesToCellName(1, headerRowIdx)
	lastHeader, _ := excelize.CoordinatesToCellName(len(tableHeaders), headerRowIdx)
	f.SetCellStyle(sheetName, firstHeader, lastHeader, header)

	rowIdx := headerRowIdx + 1
	total := 0.0
	for _, d := range vouchers {
		codes := make([]string, 0, len(d.Items))
		for _, item := range d.Items {
			codes = append(codes, item.AccountCode)
		}

		serial := ""
		if d.LddapNum != nil {
			serial = *d.LddapNum
		} else if d.CheckNum != nil {
			serial = *d.CheckNum
		}
		payee := ""
		if d.Payee != nil {
			payee = d.Payee.Name
		}
		amount, _ := d.NetAmount.Float64()
		total += amount

		values := []any{
			d.DateReceived.Format("01/02/2006"),
			serial,
			d.References.DvNum,
			d.References.OrsNum,
			d.References.RespCode,
			payee,
			strings.Join(codes, ", "),
			d.Particulars,
			amount,
			"",
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowIdx)
			f.SetCellValue(sheetName, cell, v)
		}
		firstCell, _ := excelize.CoordinatesToCellName(1, rowIdx)
		lastCell, _ := excelize.CoordinatesToCellName(len(values), rowIdx)
		f.SetCellStyle(sheetName, firstCell, lastCell, bordered)
		amountCell, _ := excelize.CoordinatesToCellName(9, rowIdx)
		f.SetCellStyle(sheetName, amountCell, amountCell, amountStyle)
		rowIdx++
	}

	labelCell, _ := excelize.CoordinatesToCellName(8, rowIdx)
	f.SetCellValue(sheetName, labelCell, "GRAND TOTAL")
	labelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, err
	}
	f.SetCellStyle(sheetName, labelCell, labelCell, labelStyle)

	totalCell, _ := excelize.CoordinatesToCellName(9, rowIdx)
	f.SetCellValue(sheetName, totalCell, total)
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		CustomNumFmt: &amountFmt,
		Border: []excelize.Border{
			{Type: "top", Style: 6},
			{Type: "bottom", Style: 6},
		},
	})
	if err != nil {
		return nil, err
	}
	f.SetCellStyle(sheetName, totalCell, totalCell, totalStyle)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("spv workbook write: %w", err)
	}
	return buf.Bytes(), nil
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "top", Style: 1},
		{Type: "left", Style: 1},
		{Type: "bottom", Style: 1},
		{Type: "right", Style: 1},
	}
}
