// Package formula compiles and evaluates stored payroll expressions against a
// per-employee variable set. The expression language is a closed surface:
// decimal literals, variable references, the four arithmetic operators,
// parentheses and a whitelisted function library. Anything else is rejected
// at compile time.
package formula

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyExpression rejects blank or missing formula text.
	ErrEmptyExpression = errors.New("formula: expression is empty")
	// ErrNilContext rejects evaluation without a payroll context.
	ErrNilContext = errors.New("formula: context is nil")
	// ErrInvalidSyntax marks expressions the parser cannot understand.
	ErrInvalidSyntax = errors.New("formula: invalid syntax")
	// ErrUnsafeExpression marks attempts to reach outside the sandboxed
	// surface: unknown operators, property access, unknown functions.
	ErrUnsafeExpression = errors.New("formula: expression outside sandboxed surface")
	// ErrUnknownVariable marks a reference to a variable absent from the
	// evaluation environment. Intentionally fatal: an unconfigured formula
	// must surface as an error, not a wrong number.
	ErrUnknownVariable = errors.New("formula: unknown variable")
	// ErrNonNumericResult marks a value that cannot be represented as a
	// decimal amount.
	ErrNonNumericResult = errors.New("formula: non-numeric result")
	// ErrDivisionByZero marks a division whose divisor evaluated to zero.
	ErrDivisionByZero = errors.New("formula: division by zero")
)

func syntaxErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSyntax, fmt.Sprintf(format, args...))
}

func unsafeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsafeExpression, fmt.Sprintf(format, args...))
}
