// Package engine runs the per-employee payroll calculation: a context of
// fixed and calculated values, a closed set of rule variants, and a phased
// execution order (earnings before deductions).
package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nomina-erp/nomina-erp/internal/employees"
)

// Concept code conventions. Codes outside both prefixes (economic indicators,
// the injected total) never count toward pay totals.
const (
	EarningsPrefix   = "P"
	DeductionsPrefix = "D"

	// TotalEarningsCode is the reserved fixed-map key injected between the
	// earnings and deductions phases so deduction formulas can reference it.
	TotalEarningsCode = "TOTAL_EARNINGS"

	// DeductionOrderBoundary splits rule execution into phases: rules with
	// a smaller order are earnings, the rest deductions.
	DeductionOrderBoundary = 100
)

// PayrollContext holds one employee's calculation state for one run. It is
// not safe for concurrent use; each employee gets a fresh instance.
//
// Two read paths exist on purpose and disagree on purpose: Lookup prefers
// fixed values (an explicit employee override short-circuits a global
// formula), while Variables prefers calculated values so a formula sees the
// freshest derivation of every concept it references.
type PayrollContext struct {
	employee   employees.Employee
	refDate    time.Time
	fixed      map[string]decimal.Decimal
	calculated map[string]decimal.Decimal
}

// NewContext builds an empty context for one employee. refDate is the period
// end date; it anchors tenure functions and fiscal-year resolution.
func NewContext(emp employees.Employee, refDate time.Time) *PayrollContext {
	return &PayrollContext{
		employee:   emp,
		refDate:    refDate,
		fixed:      make(map[string]decimal.Decimal),
		calculated: make(map[string]decimal.Decimal),
	}
}

// EmployeeID returns the owning employee's id.
func (c *PayrollContext) EmployeeID() int64 {
	return c.employee.ID
}

// HireDate returns the employee's hire date.
func (c *PayrollContext) HireDate() time.Time {
	return c.employee.HireDate
}

// ReferenceDate returns the calculation reference date.
func (c *PayrollContext) ReferenceDate() time.Time {
	return c.refDate
}

// SetFixed records an input value: an employee override or an indicator.
func (c *PayrollContext) SetFixed(code string, value decimal.Decimal) {
	c.fixed[code] = value
}

// AddCalculated records a rule output.
func (c *PayrollContext) AddCalculated(code string, value decimal.Decimal) {
	c.calculated[code] = value
}

// Lookup is the fixed-priority read: a fixed value wins over a calculated
// one, and an absent code reads as zero.
func (c *PayrollContext) Lookup(code string) decimal.Decimal {
	if v, ok := c.fixed[code]; ok {
		return v
	}
	if v, ok := c.calculated[code]; ok {
		return v
	}
	return decimal.Zero
}

// Variables is the merged read used as the formula evaluation environment:
// calculated values override fixed ones. The returned map is a copy.
func (c *PayrollContext) Variables() map[string]decimal.Decimal {
	merged := make(map[string]decimal.Decimal, len(c.fixed)+len(c.calculated))
	for code, v := range c.fixed {
		merged[code] = v
	}
	for code, v := range c.calculated {
		merged[code] = v
	}
	return merged
}

// FixedValues returns a copy of the fixed map.
func (c *PayrollContext) FixedValues() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(c.fixed))
	for code, v := range c.fixed {
		out[code] = v
	}
	return out
}

// CalculatedValues returns a copy of the calculated map.
func (c *PayrollContext) CalculatedValues() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(c.calculated))
	for code, v := range c.calculated {
		out[code] = v
	}
	return out
}
