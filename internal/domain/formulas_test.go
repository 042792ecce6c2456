package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestTotals(t *testing.T) {
	items := []ItemInput{
		{Description: "Consulting services", Amount: dec("10000.00")},
		{Description: "Training materials", Amount: dec("5000.00")},
	}
	deductions := []DeductionInput{
		{Type: "Withholding tax", Amount: decPtr("500.00")},
		{Type: "Retention", Amount: decPtr("250.00")},
	}

	gross, deducted, net := Totals(items, deductions)
	if !gross.Equal(dec("15000.00")) {
		t.Fatalf("gross = %s, want 15000.00", gross)
	}
	if !deducted.Equal(dec("750.00")) {
		t.Fatalf("deducted = %s, want 750.00", deducted)
	}
	if !net.Equal(dec("14250.00")) {
		t.Fatalf("net = %s, want 14250.00", net)
	}
}

func TestTotalsIgnoresBlankDeductions(t *testing.T) {
	items := []ItemInput{{Description: "Rent", Amount: dec("1000")}}
	deductions := []DeductionInput{
		{Type: "", Amount: decPtr("100")},
		{Type: "Tax", Amount: nil},
		{Type: "Tax", Amount: decPtr("50")},
	}

	_, deducted, net := Totals(items, deductions)
	if !deducted.Equal(dec("50")) {
		t.Fatalf("deducted = %s, want 50", deducted)
	}
	if !net.Equal(dec("950")) {
		t.Fatalf("net = %s, want 950", net)
	}
}

func TestTotalsNoDeductions(t *testing.T) {
	items := []ItemInput{{Description: "Rent", Amount: dec("1000")}}

	gross, deducted, net := Totals(items, nil)
	if !gross.Equal(net) {
		t.Fatalf("net %s should equal gross %s with no deductions", net, gross)
	}
	if !deducted.IsZero() {
		t.Fatalf("deducted = %s, want 0", deducted)
	}
}

func TestValidDeductions(t *testing.T) {
	in := []DeductionInput{
		{Type: "Tax", Amount: decPtr("10")},
		{Type: "", Amount: decPtr("10")},
		{Type: "Fee", Amount: nil},
	}
	got := ValidDeductions(in)
	if len(got) != 1 {
		t.Fatalf("ValidDeductions kept %d entries, want 1", len(got))
	}
	if got[0].Type != "Tax" {
		t.Fatalf("kept deduction type = %q, want Tax", got[0].Type)
	}
}

func TestUtilizationRate(t *testing.T) {
	tests := []struct {
		name    string
		spent   string
		initial string
		want    float64
	}{
		{"quarter spent", "250000", "1000000", 25.0},
		{"all spent", "1000000", "1000000", 100.0},
		{"nothing spent", "0", "1000000", 0},
		{"zero balance", "500", "0", 0},
		{"negative balance", "500", "-100", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UtilizationRate(dec(tt.spent), dec(tt.initial))
			if got != tt.want {
				t.Fatalf("UtilizationRate(%s, %s) = %v, want %v", tt.spent, tt.initial, got, tt.want)
			}
		})
	}
}

func TestRemainingBalance(t *testing.T) {
	got := RemainingBalance(dec("1000000.00"), dec("250000.00"))
	if !got.Equal(dec("750000.00")) {
		t.Fatalf("RemainingBalance = %s, want 750000.00", got)
	}
}

func TestTotalAllocation(t *testing.T) {
	funds := []FundSource{
		{InitialBalance: dec("1000000")},
		{InitialBalance: dec("500000")},
	}
	if got := TotalAllocation(funds); !got.Equal(dec("1500000")) {
		t.Fatalf("TotalAllocation = %s, want 1500000", got)
	}
}
