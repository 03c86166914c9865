package sheet

import (
	"fmt"
	"math"
	"strings"

	"formulaSheet/contracts"
)

// Function is a pluggable spreadsheet function. Arguments are evaluated
// before the call; the first argument error wins and the function never runs.
type Function func(args ...float64) (float64, error)

// Evaluator reduces expression trees to scalars. Cell references go through
// the supplied resolver, so evaluation itself is side-effect free.
type Evaluator struct {
	functions map[string]Function
}

func NewEvaluator() *Evaluator {
	evaluator := &Evaluator{functions: map[string]Function{}}
	evaluator.Register("min", calculateMin)
	evaluator.Register("max", calculateMax)
	evaluator.Register("sum", calculateSum)
	evaluator.Register("avg", calculateAvg)
	return evaluator
}

// Register installs a function under a case-insensitive name.
func (e *Evaluator) Register(name string, fn Function) {
	e.functions[strings.ToLower(name)] = fn
}

func (e *Evaluator) Evaluate(expr *contracts.Expr, resolve contracts.Resolver) (float64, error) {
	switch expr.Kind {
	case contracts.ExprLiteral:
		return expr.Number, nil

	case contracts.ExprReference:
		return resolve(expr.Ref)

	case contracts.ExprUnaryOp:
		operand, err := e.Evaluate(expr.Left, resolve)
		if err != nil {
			return 0, err
		}
		if expr.Op == '-' {
			return -operand, nil
		}
		return operand, nil

	case contracts.ExprBinaryOp:
		left, err := e.Evaluate(expr.Left, resolve)
		if err != nil {
			return 0, err
		}
		right, err := e.Evaluate(expr.Right, resolve)
		if err != nil {
			return 0, err
		}
		return applyBinaryOp(expr.Op, left, right)

	case contracts.ExprCall:
		fn, ok := e.functions[expr.Func]
		if !ok {
			return 0, fmt.Errorf("%s: %w", expr.Func, contracts.UnknownFunctionError)
		}
		args := make([]float64, len(expr.Args))
		for index, arg := range expr.Args {
			value, err := e.Evaluate(arg, resolve)
			if err != nil {
				return 0, err
			}
			args[index] = value
		}
		return fn(args...)
	}

	return 0, fmt.Errorf("%w: unknown node kind %d", contracts.ExpressionError, expr.Kind)
}

func applyBinaryOp(op byte, left, right float64) (float64, error) {
	switch op {
	case '+':
		return left + right, nil
	case '-':
		return left - right, nil
	case '*':
		return left * right, nil
	case '/':
		if right == 0 {
			return 0, contracts.DivisionByZeroError
		}
		return left / right, nil
	case '%':
		if right == 0 {
			return 0, contracts.DivisionByZeroError
		}
		return math.Mod(left, right), nil
	case '^':
		return math.Pow(left, right), nil
	}
	return 0, fmt.Errorf("%w: unknown operator %q", contracts.ExpressionError, op)
}
