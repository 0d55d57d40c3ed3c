// Package payroll orchestrates periodic pay runs: period management, chunked
// dispatch over the active population, batch calculation workers and progress
// monitoring.
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period statuses. Once COMPLETED is reached the status never moves back.
const (
	StatusCreated    = "CREATED"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
)

// DefaultChunkSize is how many employees one queue job covers.
const DefaultChunkSize = 100

// Period is one pay cycle for the whole population.
type Period struct {
	ID               int64     `json:"id" db:"id"`
	PeriodIdentifier string    `json:"period_identifier" db:"period_identifier"`
	StartDate        time.Time `json:"start_date" db:"start_date"`
	EndDate          time.Time `json:"end_date" db:"end_date"`
	Status           string    `json:"status" db:"status"`
	TotalExpected    int       `json:"total_expected" db:"total_expected"`
}

// Formula is a stored, dated, ordered expression computing one concept.
// ExecOrder below the deduction boundary marks an earnings formula.
type Formula struct {
	ConceptCode   string     `json:"concept_code" db:"concept_code"`
	Expression    string     `json:"expression" db:"expression"`
	EffectiveDate time.Time  `json:"effective_date" db:"effective_date"`
	EndDate       *time.Time `json:"end_date,omitempty" db:"end_date"`
	ExecOrder     int        `json:"exec_order" db:"exec_order"`
}

// ConceptValue is a per-employee fixed override active inside its date window.
type ConceptValue struct {
	EmployeeID    int64           `json:"employee_id" db:"employee_id"`
	ConceptCode   string          `json:"concept_code" db:"concept_code"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	EffectiveDate time.Time       `json:"effective_date" db:"effective_date"`
	EndDate       *time.Time      `json:"end_date,omitempty" db:"end_date"`
}

// Indicator is a globally versioned economic scalar. The current value for a
// code is the most recent record effective on or before the reference date.
type Indicator struct {
	Code          string          `json:"code" db:"code"`
	Value         decimal.Decimal `json:"value" db:"value"`
	EffectiveDate time.Time       `json:"effective_date" db:"effective_date"`
}

// ChunkJob addresses one slice of the active-employee ordering.
type ChunkJob struct {
	PeriodID string `json:"periodId"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// ProgressReport is the monitoring shape for one period.
type ProgressReport struct {
	PeriodID   int64  `json:"periodId"`
	Total      int    `json:"total"`
	Processed  int    `json:"processed"`
	Percentage int    `json:"percentage"`
	Status     string `json:"status"`
}
