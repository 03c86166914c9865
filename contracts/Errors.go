package contracts

import (
	"errors"
	"fmt"
	"strings"
)

// ExpressionError classifies every error a formula can compute to; the more
// specific kinds below all unwrap to it.
var ExpressionError = errors.New("expression error")

var DivisionByZeroError = fmt.Errorf("%w: division by zero", ExpressionError)

var ValueNotNumericError = fmt.Errorf("%w: value is not numeric", ExpressionError)

var UnknownFunctionError = fmt.Errorf("%w: unknown function", ExpressionError)

// UnresolvedError signals that a resolver does not hold a value for the
// requested address and the next resolver in the chain should be consulted.
var UnresolvedError = errors.New("reference not materialized")

// ParseError reports a malformed formula. Position is the zero-based offset
// into the formula body (after the stripped `=`).
type ParseError struct {
	Position int
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Position, e.Message)
}

func (e *ParseError) Unwrap() error { return ExpressionError }

// CircularReferenceError reports a dependency cycle. Cycle holds the members
// in traversal order, starting from the first repeated cell.
type CircularReferenceError struct {
	Cycle []Address
}

func (e *CircularReferenceError) Error() string {
	labels := make([]string, 0, len(e.Cycle)+1)
	for _, member := range e.Cycle {
		labels = append(labels, member.Label())
	}
	if len(e.Cycle) > 0 {
		labels = append(labels, e.Cycle[0].Label())
	}
	return "circular reference detected: " + strings.Join(labels, " -> ")
}

func (e *CircularReferenceError) Unwrap() error { return ExpressionError }

// BadReferenceError reports a formula reference pointing outside the sheet's
// current bounds.
type BadReferenceError struct {
	Ref Address
}

func (e *BadReferenceError) Error() string {
	return fmt.Sprintf("bad reference: %s is out of sheet bounds", e.Ref.Label())
}

func (e *BadReferenceError) Unwrap() error { return ExpressionError }
