package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/nomina-erp/nomina-erp/internal/employees"
	"github.com/nomina-erp/nomina-erp/internal/engine"
	"github.com/nomina-erp/nomina-erp/internal/shared"
)

// stubRepo is an in-memory Repository for a single period. Tests that care
// about call ordering hand it a shared events slice.
type stubRepo struct {
	period      Period
	periodErr   error
	formulas    []Formula
	formulasErr error
	overrides   map[int64][]ConceptValue
	indicators  []Indicator

	saved       [][]engine.Result
	saveErr     error
	resultCount int
	countErr    error

	statusWrites []string
	events       *[]string
}

func (s *stubRepo) record(event string) {
	if s.events != nil {
		*s.events = append(*s.events, event)
	}
}

func (s *stubRepo) CreatePeriod(_ context.Context, p Period) (Period, error) {
	p.ID = 1
	p.Status = StatusCreated
	return p, nil
}

func (s *stubRepo) GetPeriod(_ context.Context, id int64) (Period, error) {
	if s.periodErr != nil {
		return Period{}, s.periodErr
	}
	if id != s.period.ID {
		return Period{}, shared.ErrPeriodNotFound
	}
	return s.period, nil
}

func (s *stubRepo) GetPeriodByIdentifier(_ context.Context, identifier string) (Period, error) {
	if s.periodErr != nil {
		return Period{}, s.periodErr
	}
	if identifier != s.period.PeriodIdentifier {
		return Period{}, shared.ErrPeriodNotFound
	}
	return s.period, nil
}

func (s *stubRepo) ListPeriods(_ context.Context) ([]Period, error) {
	return []Period{s.period}, nil
}

func (s *stubRepo) ListPeriodsByStatus(_ context.Context, status string) ([]Period, error) {
	if s.period.Status == status {
		return []Period{s.period}, nil
	}
	return nil, nil
}

func (s *stubRepo) UpdatePeriodExpected(_ context.Context, id int64, totalExpected int, status string) error {
	s.record(fmt.Sprintf("expected:%d", totalExpected))
	if id != s.period.ID {
		return shared.ErrPeriodNotFound
	}
	s.period.TotalExpected = totalExpected
	s.period.Status = status
	return nil
}

func (s *stubRepo) UpdatePeriodStatus(_ context.Context, id int64, status string) error {
	if id != s.period.ID {
		return shared.ErrPeriodNotFound
	}
	s.statusWrites = append(s.statusWrites, status)
	s.period.Status = status
	return nil
}

func (s *stubRepo) ActiveFormulas(_ context.Context, _ time.Time) ([]Formula, error) {
	return s.formulas, s.formulasErr
}

func (s *stubRepo) ConceptValues(_ context.Context, employeeID int64, _ time.Time) ([]ConceptValue, error) {
	return s.overrides[employeeID], nil
}

func (s *stubRepo) EffectiveIndicators(_ context.Context, _ time.Time) ([]Indicator, error) {
	return s.indicators, nil
}

func (s *stubRepo) SaveResults(_ context.Context, results []engine.Result) error {
	s.record("save")
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, results)
	return nil
}

func (s *stubRepo) CountResults(_ context.Context, _ string) (int, error) {
	s.record("count")
	return s.resultCount, s.countErr
}

func (s *stubRepo) ListResults(_ context.Context, _ string, _, _ int) ([]engine.Result, int, error) {
	var out []engine.Result
	for _, batch := range s.saved {
		out = append(out, batch...)
	}
	return out, len(out), nil
}

// stubEmployeeRepo serves a fixed population split into pre-built pages.
type stubEmployeeRepo struct {
	total    int
	countErr error
	pages    map[int][]employees.Employee
}

func (s *stubEmployeeRepo) CountActive(_ context.Context) (int, error) {
	return s.total, s.countErr
}

func (s *stubEmployeeRepo) ListActivePage(_ context.Context, page, _ int) ([]employees.Employee, error) {
	return s.pages[page], nil
}

func (s *stubEmployeeRepo) Get(_ context.Context, id int64) (employees.Employee, error) {
	for _, batch := range s.pages {
		for _, e := range batch {
			if e.ID == id {
				return e, nil
			}
		}
	}
	return employees.Employee{}, shared.ErrNotFound
}
