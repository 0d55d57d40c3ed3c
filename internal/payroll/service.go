package payroll

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/nomina-erp/nomina-erp/internal/employees"
	"github.com/nomina-erp/nomina-erp/internal/engine"
	"github.com/nomina-erp/nomina-erp/internal/formula"
)

// formulaEvaluator narrows the formula engine to the rule contract.
type formulaEvaluator struct {
	eng *formula.Engine
}

func (f formulaEvaluator) Evaluate(ctx context.Context, expression string, pc *engine.PayrollContext) (decimal.Decimal, error) {
	return f.eng.Evaluate(ctx, expression, pc)
}

// Calculator runs the full per-employee calculation: context initialization
// from overrides and indicators, rule construction from stored formulas, and
// phased engine execution.
type Calculator struct {
	repo        Repository
	engine      *engine.Engine
	formulas    *formula.Engine
	staticRules []engine.Rule
	logger      *slog.Logger
}

// NewCalculator wires the calculator. staticRules are applied on top of the
// period's stored formulas on every run; they are optional.
func NewCalculator(repo Repository, formulas *formula.Engine, staticRules []engine.Rule, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{
		repo:        repo,
		engine:      engine.New(logger),
		formulas:    formulas,
		staticRules: staticRules,
		logger:      logger,
	}
}

// CalculateForEmployee computes one employee's result for the period.
// globalFormulas are loaded once per chunk by the caller and shared across
// the batch; indicator and override lookups stay per employee.
func (c *Calculator) CalculateForEmployee(ctx context.Context, emp employees.Employee, period Period, globalFormulas []Formula) (engine.Result, error) {
	pc := engine.NewContext(emp, period.EndDate)

	overrides, err := c.repo.ConceptValues(ctx, emp.ID, period.EndDate)
	if err != nil {
		return engine.Result{}, fmt.Errorf("load overrides for employee %d: %w", emp.ID, err)
	}
	for _, v := range overrides {
		pc.SetFixed(v.ConceptCode, v.Amount)
	}

	indicators, err := c.repo.EffectiveIndicators(ctx, period.EndDate)
	if err != nil {
		return engine.Result{}, fmt.Errorf("load indicators: %w", err)
	}
	for _, ind := range indicators {
		pc.SetFixed(ind.Code, ind.Value)
	}

	rules := make([]engine.Rule, 0, len(globalFormulas)+len(c.staticRules))
	eval := formulaEvaluator{eng: c.formulas}
	for _, f := range globalFormulas {
		rules = append(rules, engine.NewFormulaRule(f.ConceptCode, f.ExecOrder, f.Expression, eval))
	}
	rules = append(rules, c.staticRules...)

	result, err := c.engine.Calculate(ctx, pc, rules)
	if err != nil {
		return engine.Result{}, err
	}
	result.PeriodID = period.PeriodIdentifier
	return result, nil
}
