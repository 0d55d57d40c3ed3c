package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrPeriodNotFound indicates an unknown payroll period identifier.
	ErrPeriodNotFound = errors.New("payroll period not found")
)
