package formula

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// env carries everything a compiled expression may touch during evaluation.
type env struct {
	ctx      context.Context
	vars     map[string]decimal.Decimal
	hireDate time.Time
	refDate  time.Time
	lib      *Library
}

type node interface {
	eval(e *env) (decimal.Decimal, error)
}

type literalNode struct {
	value decimal.Decimal
}

func (n *literalNode) eval(_ *env) (decimal.Decimal, error) {
	return n.value, nil
}

type varNode struct {
	name string
}

func (n *varNode) eval(e *env) (decimal.Decimal, error) {
	val, ok := e.vars[n.name]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownVariable, n.name)
	}
	return val, nil
}

type negateNode struct {
	operand node
}

func (n *negateNode) eval(e *env) (decimal.Decimal, error) {
	val, err := n.operand.eval(e)
	if err != nil {
		return decimal.Zero, err
	}
	return val.Neg(), nil
}

type binaryNode struct {
	op    tokenKind
	left  node
	right node
}

func (n *binaryNode) eval(e *env) (decimal.Decimal, error) {
	left, err := n.left.eval(e)
	if err != nil {
		return decimal.Zero, err
	}
	right, err := n.right.eval(e)
	if err != nil {
		return decimal.Zero, err
	}
	switch n.op {
	case tokPlus:
		return left.Add(right), nil
	case tokMinus:
		return left.Sub(right), nil
	case tokStar:
		return left.Mul(right), nil
	case tokSlash:
		if right.IsZero() {
			return decimal.Zero, ErrDivisionByZero
		}
		return left.Div(right), nil
	default:
		return decimal.Zero, unsafeErrorf("operator %d", n.op)
	}
}

type callNode struct {
	name string
	args []node
}

func (n *callNode) eval(e *env) (decimal.Decimal, error) {
	args := make([]decimal.Decimal, len(n.args))
	for i, arg := range n.args {
		val, err := arg.eval(e)
		if err != nil {
			return decimal.Zero, err
		}
		args[i] = val
	}
	return e.lib.call(e, n.name, args)
}
