package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// orderedRule records its execution position so phase ordering is observable.
type orderedRule struct {
	code  string
	order int
	fn    func(pc *PayrollContext) error
	log   *[]string
}

func (r *orderedRule) Code() string { return r.code }
func (r *orderedRule) Order() int   { return r.order }

func (r *orderedRule) Execute(_ context.Context, pc *PayrollContext) error {
	if r.log != nil {
		*r.log = append(*r.log, r.code)
	}
	if r.fn != nil {
		return r.fn(pc)
	}
	return nil
}

func detailAmount(t *testing.T, res Result, code, source string) decimal.Decimal {
	t.Helper()
	for _, d := range res.Details {
		if d.ConceptCode == code && d.Source == source {
			return d.Amount
		}
	}
	t.Fatalf("no detail for %s (%s) in %+v", code, source, res.Details)
	return decimal.Zero
}

func TestCalculateFixedAndPercentageRules(t *testing.T) {
	pc := NewContext(testEmployee(), time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	pc.SetFixed("SALARY_BASE", decimal.RequireFromString("10000.00"))

	rules := []Rule{
		NewFixedIncomeRule("SALARY_BASE", 1),
		NewPercentageDeductionRule("TAX_RET", "SALARY_BASE", decimal.RequireFromString("0.10"), 2),
		NewPercentageDeductionRule("SS_DED", "SALARY_BASE", decimal.RequireFromString("0.05"), 3),
	}

	res, err := New(nil).Calculate(context.Background(), pc, rules)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	for code, want := range map[string]string{
		"SALARY_BASE": "10000.00",
		"TAX_RET":     "1000.00",
		"SS_DED":      "500.00",
	} {
		got := detailAmount(t, res, code, DetailSourceCalculated)
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("%s = %s, want %s", code, got, want)
		}
	}
}

func TestCalculatePhaseBoundary(t *testing.T) {
	var executed []string
	pc := NewContext(testEmployee(), time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	pc.SetFixed("P_SALARY", decimal.NewFromInt(12000))

	var seenTotal decimal.Decimal
	rules := []Rule{
		// Deduction listed first to prove ordering comes from Order, not
		// slice position.
		&orderedRule{code: "D_TAX", order: 200, log: &executed, fn: func(pc *PayrollContext) error {
			seenTotal = pc.Lookup(TotalEarningsCode)
			pc.AddCalculated("D_TAX", seenTotal.Mul(decimal.RequireFromString("0.1")))
			return nil
		}},
		&orderedRule{code: "P_BONUS", order: 10, log: &executed, fn: func(pc *PayrollContext) error {
			pc.AddCalculated("P_BONUS", decimal.NewFromInt(3000))
			return nil
		}},
	}

	res, err := New(nil).Calculate(context.Background(), pc, rules)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if len(executed) != 2 || executed[0] != "P_BONUS" || executed[1] != "D_TAX" {
		t.Errorf("execution order = %v, want [P_BONUS D_TAX]", executed)
	}
	// Earnings total spans both maps: the fixed salary plus the calculated
	// bonus, snapshotted before any deduction runs.
	if !seenTotal.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("deduction saw total earnings %s, want 15000", seenTotal)
	}
	if !res.TotalEarnings.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("TotalEarnings = %s, want 15000", res.TotalEarnings)
	}
	if !res.TotalDeductions.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("TotalDeductions = %s, want 1500", res.TotalDeductions)
	}
	if !res.NetPay.Equal(decimal.NewFromInt(13500)) {
		t.Errorf("NetPay = %s, want 13500", res.NetPay)
	}
}

func TestCalculateStableSortOnEqualOrder(t *testing.T) {
	var executed []string
	pc := NewContext(testEmployee(), time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))

	rules := []Rule{
		&orderedRule{code: "P_A", order: 5, log: &executed},
		&orderedRule{code: "P_B", order: 5, log: &executed},
		&orderedRule{code: "P_C", order: 5, log: &executed},
	}

	if _, err := New(nil).Calculate(context.Background(), pc, rules); err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	want := []string{"P_A", "P_B", "P_C"}
	for i, code := range want {
		if executed[i] != code {
			t.Fatalf("tied-order execution = %v, want %v", executed, want)
		}
	}
}

func TestCalculateRuleFailureAborts(t *testing.T) {
	boom := errors.New("evaluation failed")
	pc := NewContext(testEmployee(), time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))

	rules := []Rule{
		&orderedRule{code: "P_OK", order: 1, fn: func(pc *PayrollContext) error {
			pc.AddCalculated("P_OK", decimal.NewFromInt(1))
			return nil
		}},
		&orderedRule{code: "P_BAD", order: 2, fn: func(*PayrollContext) error { return boom }},
	}

	_, err := New(nil).Calculate(context.Background(), pc, rules)
	if !errors.Is(err, boom) {
		t.Fatalf("Calculate error = %v, want %v", err, boom)
	}
}

func TestResultFiltersNonPayFixedCodes(t *testing.T) {
	pc := NewContext(testEmployee(), time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	pc.SetFixed("P_SALARY", decimal.NewFromInt(8000))
	pc.SetFixed("UMA", decimal.RequireFromString("108.57"))

	res, err := New(nil).Calculate(context.Background(), pc, nil)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	for _, d := range res.Details {
		if d.ConceptCode == "UMA" || d.ConceptCode == TotalEarningsCode {
			t.Errorf("detail list leaked non-pay code %s", d.ConceptCode)
		}
	}
	if got := detailAmount(t, res, "P_SALARY", DetailSourceFixed); !got.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("P_SALARY detail = %s, want 8000", got)
	}
	if !res.TotalEarnings.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("TotalEarnings = %s, want 8000", res.TotalEarnings)
	}
}

func TestDeriveTotalsMatchesSnapshots(t *testing.T) {
	details := []Detail{
		{ConceptCode: "P_SALARY", Amount: decimal.RequireFromString("8000.00"), Source: DetailSourceFixed},
		{ConceptCode: "P_BONUS", Amount: decimal.RequireFromString("1200.50"), Source: DetailSourceCalculated},
		{ConceptCode: "D_ISR", Amount: decimal.RequireFromString("950.25"), Source: DetailSourceCalculated},
		{ConceptCode: "SALARY_BASE", Amount: decimal.RequireFromString("8000.00"), Source: DetailSourceCalculated},
	}

	earnings, deductions, net := DeriveTotals(details)
	if !earnings.Equal(decimal.RequireFromString("9200.50")) {
		t.Errorf("earnings = %s, want 9200.50", earnings)
	}
	if !deductions.Equal(decimal.RequireFromString("950.25")) {
		t.Errorf("deductions = %s, want 950.25", deductions)
	}
	if !net.Equal(decimal.RequireFromString("8250.25")) {
		t.Errorf("net = %s, want 8250.25", net)
	}
}
