package formula

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Function names callable from stored formulas.
const (
	FuncDaysWorkedYear = "daysWorkedYear"
	FuncVacationDays   = "vacationDays"
	FuncSocialSecurity = "socialSecurity"
	FuncIncomeTax      = "incomeTax"
)

// DefaultTaxTableType selects the bracket table income-tax resolution uses.
const DefaultTaxTableType = "MONTHLY"

// socialSecurityRate is the flat employee contribution rate.
var socialSecurityRate = decimal.NewFromFloat(0.027)

// TaxResolver computes progressive income tax for a taxable base.
type TaxResolver interface {
	ResolveISR(ctx context.Context, base decimal.Decimal, fiscalYear int, tableType string) (decimal.Decimal, error)
}

type funcSpec struct {
	arity int
}

// Library is the fixed, whitelisted function surface available to formulas.
// Tenure functions read the hire date bound into the evaluation environment
// rather than taking a date argument: the expression language has no date
// type, only decimals.
type Library struct {
	taxes TaxResolver
}

// NewLibrary builds the function library. taxes may be nil, in which case
// incomeTax fails at evaluation time.
func NewLibrary(taxes TaxResolver) *Library {
	return &Library{taxes: taxes}
}

var funcTable = map[string]funcSpec{
	FuncDaysWorkedYear: {arity: 0},
	FuncVacationDays:   {arity: 0},
	FuncSocialSecurity: {arity: 2},
	FuncIncomeTax:      {arity: 1},
}

func (l *Library) lookup(name string) (funcSpec, bool) {
	spec, ok := funcTable[name]
	return spec, ok
}

func (l *Library) call(e *env, name string, args []decimal.Decimal) (decimal.Decimal, error) {
	switch name {
	case FuncDaysWorkedYear:
		return daysWorkedYear(e.hireDate), nil
	case FuncVacationDays:
		return vacationDays(e.hireDate, e.refDate), nil
	case FuncSocialSecurity:
		return socialSecurity(args[0], args[1]), nil
	case FuncIncomeTax:
		if l.taxes == nil {
			return decimal.Zero, fmt.Errorf("%w: incomeTax requires a tax resolver", ErrUnsafeExpression)
		}
		return l.taxes.ResolveISR(e.ctx, args[0], e.refDate.Year(), DefaultTaxTableType)
	default:
		return decimal.Zero, unsafeErrorf("unknown function %q", name)
	}
}

func daysWorkedYear(hireDate time.Time) decimal.Decimal {
	if hireDate.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(365)
}

// vacationDays follows the tiered entitlement: nothing before the first
// anniversary, 12 days at one year, two more per completed year after that.
func vacationDays(hireDate, ref time.Time) decimal.Decimal {
	if hireDate.IsZero() {
		return decimal.Zero
	}
	years := wholeYearsBetween(hireDate, ref)
	switch {
	case years < 1:
		return decimal.Zero
	case years == 1:
		return decimal.NewFromInt(12)
	default:
		return decimal.NewFromInt(12 + (years-1)*2)
	}
}

func socialSecurity(salary, _ decimal.Decimal) decimal.Decimal {
	return salary.Mul(socialSecurityRate)
}

func wholeYearsBetween(from, to time.Time) int64 {
	if to.Before(from) {
		return 0
	}
	years := int64(to.Year() - from.Year())
	anniversary := from.AddDate(int(years), 0, 0)
	if anniversary.After(to) {
		years--
	}
	return years
}
