package formula

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type testContext struct {
	vars     map[string]decimal.Decimal
	hireDate time.Time
	refDate  time.Time
}

func (c *testContext) Variables() map[string]decimal.Decimal { return c.vars }
func (c *testContext) HireDate() time.Time                   { return c.hireDate }
func (c *testContext) ReferenceDate() time.Time              { return c.refDate }

func newTestContext(vars map[string]string) *testContext {
	out := make(map[string]decimal.Decimal, len(vars))
	for k, v := range vars {
		out[k] = decimal.RequireFromString(v)
	}
	return &testContext{
		vars:    out,
		refDate: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(NewLibrary(nil), nil, EngineConfig{})
}

func evalOK(t *testing.T, eng *Engine, expr string, ctx Context) decimal.Decimal {
	t.Helper()
	got, err := eng.Evaluate(context.Background(), expr, ctx)
	if err != nil {
		t.Fatalf("Evaluate(%q): %v", expr, err)
	}
	return got
}

func TestEvaluateArithmetic(t *testing.T) {
	eng := newTestEngine(t)
	ctx := newTestContext(map[string]string{"P001": "3000", "P002": "1500"})

	cases := []struct {
		expr string
		want string
	}{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"P001 + P002", "4500"},
		{"#P001 + #P002", "4500"},
		{"(P001 + P002) * 0.05", "225"},
		{"-P002 + P001", "1500"},
		{"10 / 4", "2.5"},
	}
	for _, tc := range cases {
		got := evalOK(t, eng, tc.expr, ctx)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("Evaluate(%q) = %s, want %s", tc.expr, got, tc.want)
		}
	}
}

func TestEvaluateBankersRounding(t *testing.T) {
	eng := newTestEngine(t)
	ctx := newTestContext(nil)

	if got := evalOK(t, eng, "2.225", ctx); got.String() != "2.22" {
		t.Errorf("Evaluate(2.225) = %s, want 2.22", got)
	}
	if got := evalOK(t, eng, "2.235", ctx); got.String() != "2.24" {
		t.Errorf("Evaluate(2.235) = %s, want 2.24", got)
	}
}

func TestEvaluateValidation(t *testing.T) {
	eng := newTestEngine(t)
	ctx := newTestContext(nil)

	if _, err := eng.Evaluate(context.Background(), "", ctx); !errors.Is(err, ErrEmptyExpression) {
		t.Errorf("empty expression: got %v, want ErrEmptyExpression", err)
	}
	if _, err := eng.Evaluate(context.Background(), "   ", ctx); !errors.Is(err, ErrEmptyExpression) {
		t.Errorf("blank expression: got %v, want ErrEmptyExpression", err)
	}
	if _, err := eng.Evaluate(context.Background(), "1 + 1", nil); !errors.Is(err, ErrNilContext) {
		t.Errorf("nil context: got %v, want ErrNilContext", err)
	}
}

func TestEvaluateUnknownVariableFails(t *testing.T) {
	eng := newTestEngine(t)
	ctx := newTestContext(map[string]string{"P001": "100"})

	_, err := eng.Evaluate(context.Background(), "P001 + MISSING", ctx)
	if !errors.Is(err, ErrUnknownVariable) {
		t.Fatalf("got %v, want ErrUnknownVariable", err)
	}
}

func TestEvaluateRejectsUnsafeSurface(t *testing.T) {
	eng := newTestEngine(t)
	ctx := newTestContext(map[string]string{"P001": "1", "a": "1", "x": "1"})

	unsafe := []string{
		"exec()",
		"T(java.lang.Runtime)",
		"a.b",
		`"text"`,
		"1 > 2",
		"P001 = 5",
		"x[0]",
	}
	for _, expr := range unsafe {
		_, err := eng.Evaluate(context.Background(), expr, ctx)
		if !errors.Is(err, ErrUnsafeExpression) && !errors.Is(err, ErrInvalidSyntax) {
			t.Errorf("Evaluate(%q): got %v, want unsafe or syntax error", expr, err)
		}
	}
}

func TestEvaluateSyntaxErrors(t *testing.T) {
	eng := newTestEngine(t)
	ctx := newTestContext(nil)

	bad := []string{"1 +", "(1 + 2", "1 2", "1..5", "#"}
	for _, expr := range bad {
		if _, err := eng.Evaluate(context.Background(), expr, ctx); !errors.Is(err, ErrInvalidSyntax) {
			t.Errorf("Evaluate(%q): got %v, want ErrInvalidSyntax", expr, err)
		}
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	eng := newTestEngine(t)
	if _, err := eng.Evaluate(context.Background(), "1 / 0", newTestContext(nil)); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("got %v, want ErrDivisionByZero", err)
	}
}

func TestEvaluateCacheIdempotence(t *testing.T) {
	eng := newTestEngine(t)
	ctx := newTestContext(map[string]string{"P001": "1000"})

	first := evalOK(t, eng, "P001 * 0.10", ctx)
	if eng.CacheSize() != 1 {
		t.Fatalf("cache size after first eval = %d, want 1", eng.CacheSize())
	}
	second := evalOK(t, eng, "P001 * 0.10", ctx)
	if !first.Equal(second) {
		t.Errorf("repeat evaluation differs: %s vs %s", first, second)
	}
	if eng.CacheSize() != 1 {
		t.Errorf("cache size after repeat eval = %d, want 1", eng.CacheSize())
	}
}

func TestEvaluateCacheEviction(t *testing.T) {
	eng := NewEngine(NewLibrary(nil), nil, EngineConfig{CacheSize: 2})
	ctx := newTestContext(nil)

	evalOK(t, eng, "1", ctx)
	evalOK(t, eng, "2", ctx)
	evalOK(t, eng, "3", ctx)
	if eng.CacheSize() != 2 {
		t.Fatalf("cache size = %d, want 2", eng.CacheSize())
	}
	// "1" was evicted as least recently used; recompiling it evicts "2".
	evalOK(t, eng, "1", ctx)
	evalOK(t, eng, "3", ctx)
	if eng.CacheSize() != 2 {
		t.Errorf("cache size = %d, want 2", eng.CacheSize())
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	eng := newTestEngine(t)
	ctx := newTestContext(map[string]string{"P001": "250"})

	done := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func() {
			got, err := eng.Evaluate(context.Background(), "P001 * 4", ctx)
			if err == nil && !got.Equal(decimal.NewFromInt(1000)) {
				err = errors.New("unexpected result " + got.String())
			}
			done <- err
		}()
	}
	for i := 0; i < 16; i++ {
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	}
	if eng.CacheSize() != 1 {
		t.Errorf("cache size = %d, want 1", eng.CacheSize())
	}
}

func TestEvaluateClearCache(t *testing.T) {
	eng := newTestEngine(t)
	evalOK(t, eng, "1 + 1", newTestContext(nil))
	eng.ClearCache()
	if eng.CacheSize() != 0 {
		t.Errorf("cache size after clear = %d, want 0", eng.CacheSize())
	}
}
