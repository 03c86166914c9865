package sheet

import (
	"strconv"
	"strings"

	"formulaSheet/contracts"
)

type tokenKind uint8

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenCellRef
	tokenIdent
	tokenOperator
	tokenLeftParen
	tokenRightParen
	tokenComma
)

type token struct {
	kind   tokenKind
	pos    int
	text   string
	number float64
	ref    contracts.Address
	op     byte
}

// ExpressionParser compiles formula bodies into expression trees.
//
// Grammar:
//
//	expr    := term (('+' | '-') term)*
//	term    := factor (('*' | '/' | '%') factor)*
//	factor  := ('-' | '+') factor | power
//	power   := atom (('^' | '**') factor)?
//	atom    := number | cellRef | call | '(' expr ')'
//	call    := funcName '(' expr (',' expr)* ')'
//	cellRef := columnLetters rowDigits
type ExpressionParser struct{}

func NewExpressionParser() *ExpressionParser {
	return &ExpressionParser{}
}

func (p *ExpressionParser) Parse(formula string) (*contracts.Expr, error) {
	tokens, err := tokenize(formula)
	if err != nil {
		return nil, err
	}

	state := &parserState{tokens: tokens}
	expr, err := state.parseExpr()
	if err != nil {
		return nil, err
	}

	if trailing := state.peek(); trailing.kind != tokenEOF {
		return nil, &contracts.ParseError{Position: trailing.pos, Message: "unexpected trailing input"}
	}

	return expr, nil
}

func (p *ExpressionParser) ExtractReferences(expr *contracts.Expr) []contracts.Address {
	refs := make([]contracts.Address, 0)
	seen := map[contracts.Address]bool{}
	collectReferences(expr, &refs, seen)
	return refs
}

func collectReferences(expr *contracts.Expr, refs *[]contracts.Address, seen map[contracts.Address]bool) {
	if expr == nil {
		return
	}

	switch expr.Kind {
	case contracts.ExprReference:
		if !seen[expr.Ref] {
			seen[expr.Ref] = true
			*refs = append(*refs, expr.Ref)
		}
	case contracts.ExprBinaryOp:
		collectReferences(expr.Left, refs, seen)
		collectReferences(expr.Right, refs, seen)
	case contracts.ExprUnaryOp:
		collectReferences(expr.Left, refs, seen)
	case contracts.ExprCall:
		for _, arg := range expr.Args {
			collectReferences(arg, refs, seen)
		}
	}
}

func tokenize(formula string) ([]token, error) {
	tokens := make([]token, 0, 8)

	pos := 0
	for pos < len(formula) {
		c := formula[pos]

		switch {
		case c == ' ' || c == '\t':
			pos++

		case c >= '0' && c <= '9' || c == '.':
			start := pos
			for pos < len(formula) && (formula[pos] >= '0' && formula[pos] <= '9' || formula[pos] == '.') {
				pos++
			}
			if pos < len(formula) && (formula[pos] == 'e' || formula[pos] == 'E') {
				next := pos + 1
				if next < len(formula) && (formula[next] == '+' || formula[next] == '-') {
					next++
				}
				if next < len(formula) && formula[next] >= '0' && formula[next] <= '9' {
					pos = next
					for pos < len(formula) && formula[pos] >= '0' && formula[pos] <= '9' {
						pos++
					}
				}
			}
			text := formula[start:pos]
			number, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &contracts.ParseError{Position: start, Message: "malformed number literal `" + text + "`"}
			}
			tokens = append(tokens, token{kind: tokenNumber, pos: start, text: text, number: number})

		case isAlpha(c):
			start := pos
			for pos < len(formula) && isAlpha(formula[pos]) {
				pos++
			}
			digitsStart := pos
			for pos < len(formula) && formula[pos] >= '0' && formula[pos] <= '9' {
				pos++
			}
			text := formula[start:pos]
			if pos == digitsStart {
				// no trailing digits: a function name
				tokens = append(tokens, token{kind: tokenIdent, pos: start, text: text})
				continue
			}
			ref, err := contracts.ParseAddress(text)
			if err != nil {
				return nil, &contracts.ParseError{Position: start, Message: "invalid cell reference `" + text + "`"}
			}
			tokens = append(tokens, token{kind: tokenCellRef, pos: start, text: text, ref: ref})

		case c == '*' && pos+1 < len(formula) && formula[pos+1] == '*':
			// `**` is the power operator's second spelling
			tokens = append(tokens, token{kind: tokenOperator, pos: pos, text: "**", op: '^'})
			pos += 2

		case c == '+' || c == '-' || c == '*' || c == '/' || c == '%' || c == '^':
			tokens = append(tokens, token{kind: tokenOperator, pos: pos, text: string(c), op: c})
			pos++

		case c == '(':
			tokens = append(tokens, token{kind: tokenLeftParen, pos: pos, text: "("})
			pos++

		case c == ')':
			tokens = append(tokens, token{kind: tokenRightParen, pos: pos, text: ")"})
			pos++

		case c == ',':
			tokens = append(tokens, token{kind: tokenComma, pos: pos, text: ","})
			pos++

		default:
			return nil, &contracts.ParseError{Position: pos, Message: "unexpected character `" + string(c) + "`"}
		}
	}

	tokens = append(tokens, token{kind: tokenEOF, pos: len(formula)})
	return tokens, nil
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

type parserState struct {
	tokens []token
	index  int
}

func (s *parserState) peek() token {
	return s.tokens[s.index]
}

func (s *parserState) next() token {
	tok := s.tokens[s.index]
	if tok.kind != tokenEOF {
		s.index++
	}
	return tok
}

func (s *parserState) peekOperator(ops ...byte) (byte, bool) {
	tok := s.peek()
	if tok.kind != tokenOperator {
		return 0, false
	}
	for _, op := range ops {
		if tok.op == op {
			return op, true
		}
	}
	return 0, false
}

func (s *parserState) parseExpr() (*contracts.Expr, error) {
	left, err := s.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := s.peekOperator('+', '-')
		if !ok {
			return left, nil
		}
		s.next()

		right, err := s.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &contracts.Expr{Kind: contracts.ExprBinaryOp, Op: op, Left: left, Right: right}
	}
}

func (s *parserState) parseTerm() (*contracts.Expr, error) {
	left, err := s.parseFactor()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := s.peekOperator('*', '/', '%')
		if !ok {
			return left, nil
		}
		s.next()

		right, err := s.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &contracts.Expr{Kind: contracts.ExprBinaryOp, Op: op, Left: left, Right: right}
	}
}

func (s *parserState) parseFactor() (*contracts.Expr, error) {
	if op, ok := s.peekOperator('+', '-'); ok {
		s.next()
		operand, err := s.parseFactor()
		if err != nil {
			return nil, err
		}
		return &contracts.Expr{Kind: contracts.ExprUnaryOp, Op: op, Left: operand}, nil
	}
	return s.parsePower()
}

func (s *parserState) parsePower() (*contracts.Expr, error) {
	base, err := s.parseAtom()
	if err != nil {
		return nil, err
	}

	if _, ok := s.peekOperator('^'); !ok {
		return base, nil
	}
	s.next()

	// right-associative; the right side admits a leading unary sign
	exponent, err := s.parseFactor()
	if err != nil {
		return nil, err
	}
	return &contracts.Expr{Kind: contracts.ExprBinaryOp, Op: '^', Left: base, Right: exponent}, nil
}

func (s *parserState) parseAtom() (*contracts.Expr, error) {
	tok := s.next()

	switch tok.kind {
	case tokenNumber:
		return &contracts.Expr{Kind: contracts.ExprLiteral, Number: tok.number}, nil

	case tokenCellRef:
		return &contracts.Expr{Kind: contracts.ExprReference, Ref: tok.ref}, nil

	case tokenIdent:
		return s.parseCall(tok)

	case tokenLeftParen:
		expr, err := s.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := s.next(); closing.kind != tokenRightParen {
			return nil, &contracts.ParseError{Position: closing.pos, Message: "unbalanced parentheses"}
		}
		return expr, nil

	case tokenEOF:
		return nil, &contracts.ParseError{Position: tok.pos, Message: "unexpected end of formula"}
	}

	return nil, &contracts.ParseError{Position: tok.pos, Message: "unexpected token `" + tok.text + "`"}
}

func (s *parserState) parseCall(name token) (*contracts.Expr, error) {
	if opening := s.next(); opening.kind != tokenLeftParen {
		return nil, &contracts.ParseError{Position: name.pos, Message: "`" + name.text + "` is not a cell reference; function calls need arguments in parentheses"}
	}

	if s.peek().kind == tokenRightParen {
		return nil, &contracts.ParseError{Position: s.peek().pos, Message: "function `" + name.text + "` needs at least one argument"}
	}

	args := make([]*contracts.Expr, 0, 2)
	for {
		arg, err := s.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		separator := s.next()
		if separator.kind == tokenComma {
			continue
		}
		if separator.kind == tokenRightParen {
			return &contracts.Expr{Kind: contracts.ExprCall, Func: strings.ToLower(name.text), Args: args}, nil
		}
		return nil, &contracts.ParseError{Position: separator.pos, Message: "unbalanced parentheses"}
	}
}
