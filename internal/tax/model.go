package tax

import "github.com/shopspring/decimal"

// Bracket is one row of a progressive tax table. The applicable bracket for a
// base amount is the one with the greatest LowerLimit not exceeding the base.
type Bracket struct {
	FiscalYear    int             `json:"fiscal_year" db:"fiscal_year"`
	TableType     string          `json:"table_type" db:"table_type"`
	LowerLimit    decimal.Decimal `json:"lower_limit" db:"lower_limit"`
	FixedFee      decimal.Decimal `json:"fixed_fee" db:"fixed_fee"`
	PercentExcess decimal.Decimal `json:"percent_excess" db:"percent_excess"`
}
