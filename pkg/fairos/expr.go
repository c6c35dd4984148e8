package fairos

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnsupportedExpression is returned by Compile for expression shapes the
// server's find endpoint cannot evaluate yet.
var ErrUnsupportedExpression = errors.New("fairos: unsupported expression")

// ExprValue is a literal operand in a find expression.
type ExprValue struct {
	str    string
	num    uint32
	isStr  bool
	fields map[string]ExprValue
}

// Str makes a string operand. It compiles wrapped in %22 quotes so the
// server treats it as a string literal.
func Str(s string) ExprValue { return ExprValue{str: s, isStr: true} }

// Number makes a numeric operand.
func Number(n uint32) ExprValue { return ExprValue{num: n} }

// MapValue makes a map operand for nested-field expressions.
func MapValue(fields map[string]ExprValue) ExprValue { return ExprValue{fields: fields} }

func (v ExprValue) compile() (string, error) {
	if v.fields != nil {
		return "", fmt.Errorf("%w: map values", ErrUnsupportedExpression)
	}
	if v.isStr {
		return "%22" + v.str + "%22", nil
	}
	return strconv.FormatUint(uint64(v.num), 10), nil
}

type exprKind int

const (
	exprAll exprKind = iota
	exprEq
	exprGt
	exprGte
	exprLt
	exprLte
	exprAnd
	exprOr
)

// Expr is a document find expression. Build one with the constructors and
// pass it to FindDocuments; Compile renders the server's query syntax.
type Expr struct {
	kind  exprKind
	field string
	value ExprValue
	left  *Expr
	right *Expr
}

// All matches every document in the database.
func All() Expr { return Expr{kind: exprAll} }

// Eq matches documents whose field equals value.
func Eq(field string, value ExprValue) Expr {
	return Expr{kind: exprEq, field: field, value: value}
}

// Gt matches documents whose field is strictly greater than value.
func Gt(field string, value ExprValue) Expr {
	return Expr{kind: exprGt, field: field, value: value}
}

// Gte matches documents whose field is greater than or equal to value.
func Gte(field string, value ExprValue) Expr {
	return Expr{kind: exprGte, field: field, value: value}
}

// Lt matches documents whose field is strictly less than value.
func Lt(field string, value ExprValue) Expr {
	return Expr{kind: exprLt, field: field, value: value}
}

// Lte matches documents whose field is less than or equal to value.
func Lte(field string, value ExprValue) Expr {
	return Expr{kind: exprLte, field: field, value: value}
}

// And combines two expressions conjunctively. The server does not evaluate
// it yet; Compile reports ErrUnsupportedExpression.
func And(left, right Expr) Expr {
	return Expr{kind: exprAnd, left: &left, right: &right}
}

// Or combines two expressions disjunctively. The server does not evaluate
// it yet; Compile reports ErrUnsupportedExpression.
func Or(left, right Expr) Expr {
	return Expr{kind: exprOr, left: &left, right: &right}
}

// Compile renders the expression in the query syntax the find endpoint
// expects. Comparison operators use the escaped form %3e; less-than
// comparisons are emitted with the operands swapped because the server only
// parses greater-than forms.
func (e Expr) Compile() (string, error) {
	switch e.kind {
	case exprAll:
		return "", nil
	case exprEq:
		value, err := e.value.compile()
		if err != nil {
			return "", err
		}
		return e.field + "=" + value, nil
	case exprGt:
		value, err := e.value.compile()
		if err != nil {
			return "", err
		}
		return e.field + "%3e" + value, nil
	case exprGte:
		value, err := e.value.compile()
		if err != nil {
			return "", err
		}
		return e.field + "%3e=" + value, nil
	case exprLt:
		value, err := e.value.compile()
		if err != nil {
			return "", err
		}
		return value + "%3e" + e.field, nil
	case exprLte:
		value, err := e.value.compile()
		if err != nil {
			return "", err
		}
		return value + "%3e=" + e.field, nil
	case exprAnd:
		return "", fmt.Errorf("%w: and", ErrUnsupportedExpression)
	case exprOr:
		return "", fmt.Errorf("%w: or", ErrUnsupportedExpression)
	default:
		return "", fmt.Errorf("%w: unknown", ErrUnsupportedExpression)
	}
}
