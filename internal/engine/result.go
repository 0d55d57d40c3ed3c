package engine

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Detail sources distinguish employee-sourced inputs from formula outputs in
// the audit trail.
const (
	DetailSourceFixed      = "employee_fixed"
	DetailSourceCalculated = "formula"
)

// Detail is one audited concept amount inside a result.
type Detail struct {
	ConceptCode string          `json:"concept_code" db:"concept_code"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Source      string          `json:"source" db:"source"`
}

// Result is the outcome of one employee's calculation for one period. The
// totals are snapshots; DeriveTotals reproduces them from Details alone.
type Result struct {
	PeriodID        string          `json:"period_id" db:"period_id"`
	EmployeeID      int64           `json:"employee_id" db:"employee_id"`
	TotalEarnings   decimal.Decimal `json:"total_earnings" db:"total_earnings"`
	TotalDeductions decimal.Decimal `json:"total_deductions" db:"total_deductions"`
	NetPay          decimal.Decimal `json:"net_pay" db:"net_pay"`
	Details         []Detail        `json:"details"`
}

// DeriveTotals recomputes earnings, deductions and net pay from a detail
// list. Codes outside the P/D prefixes contribute to neither total.
func DeriveTotals(details []Detail) (earnings, deductions, net decimal.Decimal) {
	earnings = decimal.Zero
	deductions = decimal.Zero
	for _, d := range details {
		switch {
		case strings.HasPrefix(d.ConceptCode, EarningsPrefix):
			earnings = earnings.Add(d.Amount)
		case strings.HasPrefix(d.ConceptCode, DeductionsPrefix):
			deductions = deductions.Add(d.Amount)
		}
	}
	return earnings, deductions, earnings.Sub(deductions)
}

// buildResult assembles the audit trail from a finished context: fixed
// entries restricted to pay-relevant prefixes (indicators stay out), then
// every calculated entry. Details are ordered by code within each source for
// stable output.
func buildResult(pc *PayrollContext) Result {
	fixed := pc.FixedValues()
	calculated := pc.CalculatedValues()

	details := make([]Detail, 0, len(fixed)+len(calculated))
	for _, code := range sortedCodes(fixed) {
		if !strings.HasPrefix(code, EarningsPrefix) && !strings.HasPrefix(code, DeductionsPrefix) {
			continue
		}
		details = append(details, Detail{ConceptCode: code, Amount: fixed[code], Source: DetailSourceFixed})
	}
	for _, code := range sortedCodes(calculated) {
		details = append(details, Detail{ConceptCode: code, Amount: calculated[code], Source: DetailSourceCalculated})
	}

	earnings, deductions, net := DeriveTotals(details)
	return Result{
		EmployeeID:      pc.EmployeeID(),
		TotalEarnings:   earnings,
		TotalDeductions: deductions,
		NetPay:          net,
		Details:         details,
	}
}

func sortedCodes(m map[string]decimal.Decimal) []string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
