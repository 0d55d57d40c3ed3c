package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Rule is one calculation step. The variant set is closed: fixed-value
// passthrough, percentage-of-target deduction, and formula-driven.
type Rule interface {
	Code() string
	Order() int
	Execute(ctx context.Context, pc *PayrollContext) error
}

// Evaluator abstracts the formula engine for FormulaRule.
type Evaluator interface {
	Evaluate(ctx context.Context, expression string, pctx *PayrollContext) (decimal.Decimal, error)
}

// FixedIncomeRule promotes a raw input value into the audited calculated set
// under the same code.
type FixedIncomeRule struct {
	code  string
	order int
}

// NewFixedIncomeRule constructs a fixed-value passthrough rule.
func NewFixedIncomeRule(code string, order int) *FixedIncomeRule {
	return &FixedIncomeRule{code: code, order: order}
}

func (r *FixedIncomeRule) Code() string { return r.code }
func (r *FixedIncomeRule) Order() int   { return r.order }

func (r *FixedIncomeRule) Execute(_ context.Context, pc *PayrollContext) error {
	pc.AddCalculated(r.code, pc.Lookup(r.code))
	return nil
}

// PercentageDeductionRule writes percentage × fixed-priority(targetCode)
// under its own code.
type PercentageDeductionRule struct {
	code       string
	targetCode string
	percentage decimal.Decimal
	order      int
}

// NewPercentageDeductionRule constructs a percentage-of-target rule.
func NewPercentageDeductionRule(code, targetCode string, percentage decimal.Decimal, order int) *PercentageDeductionRule {
	return &PercentageDeductionRule{code: code, targetCode: targetCode, percentage: percentage, order: order}
}

func (r *PercentageDeductionRule) Code() string { return r.code }
func (r *PercentageDeductionRule) Order() int   { return r.order }

func (r *PercentageDeductionRule) Execute(_ context.Context, pc *PayrollContext) error {
	pc.AddCalculated(r.code, pc.Lookup(r.targetCode).Mul(r.percentage))
	return nil
}

// FormulaRule evaluates a stored expression against the live context. An
// evaluation failure stops this employee's calculation; the error carries the
// failing concept and employee so the batch log is actionable.
type FormulaRule struct {
	code       string
	order      int
	expression string
	eval       Evaluator
}

// NewFormulaRule constructs a formula-driven rule.
func NewFormulaRule(code string, order int, expression string, eval Evaluator) *FormulaRule {
	return &FormulaRule{code: code, order: order, expression: expression, eval: eval}
}

func (r *FormulaRule) Code() string { return r.code }
func (r *FormulaRule) Order() int   { return r.order }

func (r *FormulaRule) Execute(ctx context.Context, pc *PayrollContext) error {
	result, err := r.eval.Evaluate(ctx, r.expression, pc)
	if err != nil {
		return fmt.Errorf("concept %s (employee %d): %w", r.code, pc.EmployeeID(), err)
	}
	pc.AddCalculated(r.code, result)
	return nil
}
