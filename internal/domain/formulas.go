package domain

import "github.com/shopspring/decimal"

// Gross sums the line-item amounts of a voucher.
func Gross(items []ItemInput) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}

// ValidDeductions drops entries with a blank type or a missing amount.
// Callers submit blank deduction rows as a matter of course; they are
// filtered here rather than rejected.
func ValidDeductions(deductions []DeductionInput) []DeductionInput {
	valid := make([]DeductionInput, 0, len(deductions))
	for _, d := range deductions {
		if d.Type == "" || d.Amount == nil {
			continue
		}
		valid = append(valid, d)
	}
	return valid
}

// DeductionTotal sums the amounts of already-filtered deductions.
func DeductionTotal(deductions []DeductionInput) decimal.Decimal {
	total := decimal.Zero
	for _, d := range deductions {
		if d.Amount == nil {
			continue
		}
		total = total.Add(*d.Amount)
	}
	return total
}

// Totals computes the derived financial fields of a voucher from its
// raw inputs: gross, total of valid deductions, and net.
func Totals(items []ItemInput, deductions []DeductionInput) (gross, deducted, net decimal.Decimal) {
	gross = Gross(items)
	deducted = DeductionTotal(ValidDeductions(deductions))
	net = gross.Sub(deducted)
	return gross, deducted, net
}

// RemainingBalance is what is left of a fund after spending.
func RemainingBalance(initialBalance, totalSpent decimal.Decimal) decimal.Decimal {
	return initialBalance.Sub(totalSpent)
}

// UtilizationRate is spend as a percentage of the initial balance.
// Returns 0 when the initial balance is zero or negative.
func UtilizationRate(totalSpent, initialBalance decimal.Decimal) float64 {
	if initialBalance.Sign() <= 0 {
		return 0
	}
	rate, _ := totalSpent.Div(initialBalance).Mul(decimal.NewFromInt(100)).Float64()
	return rate
}

// TotalAllocation sums initial balances across funds.
func TotalAllocation(funds []FundSource) decimal.Decimal {
	total := decimal.Zero
	for _, f := range funds {
		total = total.Add(f.InitialBalance)
	}
	return total
}
