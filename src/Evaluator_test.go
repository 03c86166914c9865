package sheet

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formulaSheet/contracts"
)

func TestEvaluator_DivisionByZero(t *testing.T) {
	for _, formula := range []string{"1/0", "10/(2-2)", "7%0", "A1/B1"} {
		t.Run(formula, func(t *testing.T) {
			_, err := evalFormula(t, formula, map[string]float64{"A1": 10, "B1": 0})
			assert.ErrorIs(t, err, contracts.DivisionByZeroError)
		})
	}
}

func TestEvaluator_Functions(t *testing.T) {
	t.Run("builtins", func(t *testing.T) {
		assert.Equal(t, 1.0, mustEval(t, "min(3, 1, 2)"))
		assert.Equal(t, 3.0, mustEval(t, "max(3, 1, 2)"))
		assert.Equal(t, 6.0, mustEval(t, "sum(1, 2, 3)"))
		assert.Equal(t, 2.0, mustEval(t, "avg(1, 2, 3)"))
		assert.Equal(t, 4.0, mustEval(t, "MAX(1, 2^2)"))
	})

	t.Run("nested", func(t *testing.T) {
		assert.Equal(t, 5.0, mustEval(t, "sum(min(1, 2), max(3, 4))"))
	})

	t.Run("unknown function", func(t *testing.T) {
		_, err := evalFormula(t, "median(1, 2)", nil)
		assert.ErrorIs(t, err, contracts.UnknownFunctionError)
	})

	t.Run("registered function", func(t *testing.T) {
		expr, err := NewExpressionParser().Parse("double(21)")
		require.NoError(t, err)

		evaluator := NewEvaluator()
		evaluator.Register("double", func(args ...float64) (float64, error) {
			return args[0] * 2, nil
		})

		value, err := evaluator.Evaluate(expr, nil)
		assert.NoError(t, err)
		assert.Equal(t, 42.0, value)
	})
}

func TestEvaluator_FirstErrorWins(t *testing.T) {
	boom := errors.New("boom")

	expr, err := NewExpressionParser().Parse("A1+B1")
	require.NoError(t, err)

	resolved := make([]string, 0, 2)
	resolve := func(addr contracts.Address) (float64, error) {
		resolved = append(resolved, addr.Label())
		if addr.Label() == "A1" {
			return 0, fmt.Errorf("A1: %w", boom)
		}
		return 1, nil
	}

	_, err = NewEvaluator().Evaluate(expr, resolve)
	assert.ErrorIs(t, err, boom)
	// the right operand is never resolved
	assert.Equal(t, []string{"A1"}, resolved)
}
