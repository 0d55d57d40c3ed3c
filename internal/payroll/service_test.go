package payroll

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomina-erp/nomina-erp/internal/employees"
	"github.com/nomina-erp/nomina-erp/internal/engine"
	"github.com/nomina-erp/nomina-erp/internal/formula"
)

func TestCalculateForEmployee(t *testing.T) {
	repo := &stubRepo{
		period: testPeriod(),
		overrides: map[int64][]ConceptValue{
			1: salaryOverride(1),
		},
		indicators: []Indicator{
			{Code: "UMA", Value: decimal.RequireFromString("108.57")},
		},
	}
	globalFormulas := []Formula{
		{ConceptCode: "P_SALARY", Expression: "#SALARY_BASE", ExecOrder: 10},
		{ConceptCode: "D_ISR", Expression: "P_SALARY * 0.10", ExecOrder: 110},
	}

	calc := newTestCalculator(repo)
	emp := employees.Employee{ID: 1, Active: true}

	result, err := calc.CalculateForEmployee(context.Background(), emp, repo.period, globalFormulas)
	require.NoError(t, err)

	assert.Equal(t, "2025-06", result.PeriodID)
	assert.Equal(t, int64(1), result.EmployeeID)
	assert.True(t, result.TotalEarnings.Equal(decimal.NewFromInt(10000)), "earnings %s", result.TotalEarnings)
	assert.True(t, result.TotalDeductions.Equal(decimal.NewFromInt(1000)), "deductions %s", result.TotalDeductions)
	assert.True(t, result.NetPay.Equal(decimal.NewFromInt(9000)), "net %s", result.NetPay)

	// The indicator participated as a variable but must not surface as a
	// pay detail.
	for _, d := range result.Details {
		assert.NotEqual(t, "UMA", d.ConceptCode)
	}
}

func TestCalculateForEmployeeStaticRules(t *testing.T) {
	repo := &stubRepo{
		period: testPeriod(),
		overrides: map[int64][]ConceptValue{
			1: salaryOverride(1),
		},
	}
	globalFormulas := []Formula{
		{ConceptCode: "P_SALARY", Expression: "#SALARY_BASE", ExecOrder: 10},
	}
	static := []engine.Rule{
		engine.NewPercentageDeductionRule("D_SS", "P_SALARY", decimal.RequireFromString("0.05"), 120),
	}

	eng := formula.NewEngine(formula.NewLibrary(nil), nil, formula.EngineConfig{})
	calc := NewCalculator(repo, eng, static, nil)

	result, err := calc.CalculateForEmployee(context.Background(), employees.Employee{ID: 1}, repo.period, globalFormulas)
	require.NoError(t, err)
	assert.True(t, result.TotalDeductions.Equal(decimal.NewFromInt(500)), "deductions %s", result.TotalDeductions)
	assert.True(t, result.NetPay.Equal(decimal.NewFromInt(9500)), "net %s", result.NetPay)
}

func TestCalculateForEmployeeFormulaFailure(t *testing.T) {
	repo := &stubRepo{period: testPeriod()}
	globalFormulas := []Formula{
		{ConceptCode: "P_SALARY", Expression: "#SALARY_BASE", ExecOrder: 10},
	}

	calc := newTestCalculator(repo)
	_, err := calc.CalculateForEmployee(context.Background(), employees.Employee{ID: 9}, repo.period, globalFormulas)
	require.Error(t, err)
	assert.ErrorIs(t, err, formula.ErrUnknownVariable)
	assert.Contains(t, err.Error(), "P_SALARY")
	assert.Contains(t, err.Error(), "employee 9")
}

func TestDeductionFormulaSeesInjectedTotal(t *testing.T) {
	repo := &stubRepo{
		period: testPeriod(),
		overrides: map[int64][]ConceptValue{
			1: {
				{EmployeeID: 1, ConceptCode: "SALARY_BASE", Amount: decimal.NewFromInt(8000)},
			},
		},
	}
	globalFormulas := []Formula{
		{ConceptCode: "P_SALARY", Expression: "#SALARY_BASE", ExecOrder: 10},
		{ConceptCode: "P_BONUS", Expression: "1500", ExecOrder: 20},
		{ConceptCode: "D_FLAT", Expression: "TOTAL_EARNINGS * 0.02", ExecOrder: 150},
	}

	calc := newTestCalculator(repo)
	result, err := calc.CalculateForEmployee(context.Background(), employees.Employee{ID: 1}, repo.period, globalFormulas)
	require.NoError(t, err)

	assert.True(t, result.TotalEarnings.Equal(decimal.NewFromInt(9500)), "earnings %s", result.TotalEarnings)
	assert.True(t, result.TotalDeductions.Equal(decimal.NewFromInt(190)), "deductions %s", result.TotalDeductions)
}
