package payroll

import "time"

// CreatePeriodRequest opens a new pay period.
type CreatePeriodRequest struct {
	PeriodIdentifier string    `json:"period_identifier" validate:"required,max=40"`
	StartDate        time.Time `json:"start_date" validate:"required"`
	EndDate          time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
}

// ResultsPage is the paged result listing response.
type ResultsPage struct {
	PeriodIdentifier string `json:"period_identifier"`
	Page             int    `json:"page"`
	PerPage          int    `json:"per_page"`
	Total            int    `json:"total"`
	Results          any    `json:"results"`
}
