package employees

import "time"

// Employee is the calculation-relevant slice of an employee record.
type Employee struct {
	ID       int64     `json:"id" db:"id"`
	FullName string    `json:"full_name" db:"full_name"`
	HireDate time.Time `json:"hire_date" db:"hire_date"`
	Active   bool      `json:"active" db:"active"`
}
