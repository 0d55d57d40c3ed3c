package formula

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCacheSize bounds the compiled-expression cache.
const DefaultCacheSize = 1000

// Context supplies the evaluation environment for one employee. Variables
// must return the merged view where calculated values override fixed ones.
type Context interface {
	Variables() map[string]decimal.Decimal
	HireDate() time.Time
	ReferenceDate() time.Time
}

// Engine compiles formula text once per distinct literal and evaluates the
// compiled program against per-employee contexts. Safe for concurrent use.
type Engine struct {
	cache  *lruCache
	lib    *Library
	logger *slog.Logger
}

// EngineConfig configures optional engine behaviour.
type EngineConfig struct {
	CacheSize int
}

// NewEngine constructs a formula engine with its own compile cache.
func NewEngine(lib *Library, logger *slog.Logger, cfg EngineConfig) *Engine {
	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	if lib == nil {
		lib = NewLibrary(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cache:  newLRUCache(size),
		lib:    lib,
		logger: logger,
	}
}

// Evaluate compiles (or reuses) the expression and evaluates it against pctx.
// Results are rounded to 2 fractional digits using banker's rounding.
func (e *Engine) Evaluate(ctx context.Context, expression string, pctx Context) (decimal.Decimal, error) {
	if strings.TrimSpace(expression) == "" {
		return decimal.Zero, ErrEmptyExpression
	}
	if pctx == nil {
		return decimal.Zero, ErrNilContext
	}

	program, err := e.cache.getOrCompile(expression, func() (node, error) {
		return parse(expression, e.lib)
	})
	if err != nil {
		return decimal.Zero, err
	}

	result, err := program.eval(&env{
		ctx:      ctx,
		vars:     pctx.Variables(),
		hireDate: pctx.HireDate(),
		refDate:  pctx.ReferenceDate(),
		lib:      e.lib,
	})
	if err != nil {
		return decimal.Zero, err
	}
	return result.RoundBank(2), nil
}

// CacheSize reports how many compiled programs are currently cached.
func (e *Engine) CacheSize() int {
	return e.cache.len()
}

// ClearCache drops all compiled programs.
func (e *Engine) ClearCache() {
	e.cache.clear()
}
