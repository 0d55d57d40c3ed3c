// Package tax resolves progressive income tax (ISR) from bracket tables.
package tax

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/nomina-erp/nomina-erp/internal/shared"
)

// BracketSource looks up the applicable bracket for a taxable base. It
// returns shared.ErrNotFound when no bracket covers the base.
type BracketSource interface {
	ApplicableBracket(ctx context.Context, fiscalYear int, tableType string, base decimal.Decimal) (Bracket, error)
}

// Resolver computes ISR amounts from bracket tables.
type Resolver struct {
	source BracketSource
	logger *slog.Logger
}

// NewResolver wires the resolver to its bracket source.
func NewResolver(source BracketSource, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{source: source, logger: logger}
}

// ResolveISR computes the tax owed on base for the given fiscal year and
// table type. A non-positive base owes no tax. A missing bracket is a
// data-completeness gap, not a calculation failure: it resolves to zero and
// is logged so the table can be backfilled.
func (r *Resolver) ResolveISR(ctx context.Context, base decimal.Decimal, fiscalYear int, tableType string) (decimal.Decimal, error) {
	if base.Sign() <= 0 {
		return decimal.Zero, nil
	}

	bracket, err := r.source.ApplicableBracket(ctx, fiscalYear, tableType, base)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			r.logger.Warn("no tax bracket for base",
				slog.String("base", base.String()),
				slog.Int("fiscal_year", fiscalYear),
				slog.String("table_type", tableType))
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("tax: bracket lookup: %w", err)
	}

	excess := base.Sub(bracket.LowerLimit).Mul(bracket.PercentExcess).RoundBank(2)
	return bracket.FixedFee.Add(excess).RoundBank(2), nil
}
