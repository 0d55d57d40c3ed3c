package tax

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nomina-erp/nomina-erp/internal/shared"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a BracketSource backed by Postgres.
func NewRepository(pool *pgxpool.Pool) BracketSource {
	return &repository{pool: pool}
}

func (r *repository) ApplicableBracket(ctx context.Context, fiscalYear int, tableType string, base decimal.Decimal) (Bracket, error) {
	const q = `
		SELECT fiscal_year, table_type, lower_limit, fixed_fee, percent_excess
		FROM tax_brackets
		WHERE fiscal_year = $1 AND table_type = $2 AND lower_limit <= $3
		ORDER BY lower_limit DESC
		LIMIT 1`

	var b Bracket
	err := r.pool.QueryRow(ctx, q, fiscalYear, tableType, base).Scan(
		&b.FiscalYear, &b.TableType, &b.LowerLimit, &b.FixedFee, &b.PercentExcess,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Bracket{}, shared.ErrNotFound
		}
		return Bracket{}, fmt.Errorf("tax: query bracket: %w", err)
	}
	return b, nil
}
