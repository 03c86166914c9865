package contracts

// ExprKind tags the variants of an expression node.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprReference
	ExprBinaryOp
	ExprUnaryOp
	ExprCall
)

// Expr is a parsed formula node. It is a tagged union: Kind selects which of
// the remaining fields are meaningful.
//
//   - ExprLiteral:   Number
//   - ExprReference: Ref
//   - ExprBinaryOp:  Op, Left, Right
//   - ExprUnaryOp:   Op, Left
//   - ExprCall:      Func, Args
type Expr struct {
	Kind   ExprKind
	Number float64
	Ref    Address
	Op     byte
	Left   *Expr
	Right  *Expr
	Func   string
	Args   []*Expr
}

type ExpressionParser interface {
	// Parse compiles a formula body (the leading `=` already stripped) into
	// an expression tree. Failures are reported as *ParseError.
	Parse(formula string) (*Expr, error)

	// ExtractReferences returns the cell addresses the tree reads,
	// deduplicated, in source order.
	ExtractReferences(expr *Expr) []Address
}
