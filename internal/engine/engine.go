package engine

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Engine executes rules in two phases split at DeductionOrderBoundary, with
// the earnings total injected into the context between phases.
type Engine struct {
	logger *slog.Logger
}

// New constructs the phased engine.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Calculate runs rules against pc in ascending order and emits the result.
// The sort is stable: ties keep their original relative order. Any rule
// failure aborts this employee's calculation.
func (e *Engine) Calculate(ctx context.Context, pc *PayrollContext, rules []Rule) (Result, error) {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order() < sorted[j].Order()
	})

	for _, rule := range sorted {
		if rule.Order() >= DeductionOrderBoundary {
			break
		}
		if err := rule.Execute(ctx, pc); err != nil {
			return Result{}, err
		}
	}

	totalEarnings := earningsAcross(pc)
	pc.SetFixed(TotalEarningsCode, totalEarnings)
	e.logger.Debug("earnings phase done",
		slog.Int64("employee_id", pc.EmployeeID()),
		slog.String("total_earnings", totalEarnings.String()))

	for _, rule := range sorted {
		if rule.Order() < DeductionOrderBoundary {
			continue
		}
		if err := rule.Execute(ctx, pc); err != nil {
			return Result{}, err
		}
	}

	return buildResult(pc), nil
}

// earningsAcross sums every earnings-prefixed entry in both maps. A code
// present in both maps counts once per map, mirroring the detail list which
// also carries one entry per map.
func earningsAcross(pc *PayrollContext) decimal.Decimal {
	total := decimal.Zero
	for code, v := range pc.FixedValues() {
		if strings.HasPrefix(code, EarningsPrefix) {
			total = total.Add(v)
		}
	}
	for code, v := range pc.CalculatedValues() {
		if strings.HasPrefix(code, EarningsPrefix) {
			total = total.Add(v)
		}
	}
	return total
}
