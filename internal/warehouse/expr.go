package warehouse

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Expr is a column expression rendered into SQL when a Frame is built.
type Expr interface {
	render(r *renderer) (string, error)
}

type renderer struct {
	args    []any
	renames map[string]string
}

func (r *renderer) bind(value any) string {
	r.args = append(r.args, value)
	return fmt.Sprintf("$%d", len(r.args))
}

type column struct {
	name string
}

func Col(name string) Expr {
	return column{name: name}
}

func (c column) render(r *renderer) (string, error) {
	if strings.TrimSpace(c.name) == "" {
		return "", fmt.Errorf("column name is required")
	}
	if source, ok := r.renames[c.name]; ok {
		return quoteIdent(source), nil
	}
	return quoteIdent(c.name), nil
}

type literal struct {
	value any
	cast  string
}

func Lit(value any) Expr {
	return literal{value: value}
}

// DateLit binds an ISO date string and casts it to DATE on the warehouse side.
func DateLit(isoDate string) Expr {
	return literal{value: isoDate, cast: "DATE"}
}

// Integer literals are inlined: a bound parameter inside CASE branches has no
// type Postgres can infer.
func (l literal) render(r *renderer) (string, error) {
	if l.cast == "" {
		switch typed := l.value.(type) {
		case int:
			return strconv.Itoa(typed), nil
		case int64:
			return strconv.FormatInt(typed, 10), nil
		}
	}
	placeholder := r.bind(l.value)
	if l.cast != "" {
		return fmt.Sprintf("CAST(%s AS %s)", placeholder, l.cast), nil
	}
	return placeholder, nil
}

type binary struct {
	op    string
	left  Expr
	right Expr
}

func Eq(left, right Expr) Expr  { return binary{op: "=", left: left, right: right} }
func Gte(left, right Expr) Expr { return binary{op: ">=", left: left, right: right} }
func Lte(left, right Expr) Expr { return binary{op: "<=", left: left, right: right} }

func And(left, right Expr) Expr {
	return binary{op: "AND", left: left, right: right}
}

func (b binary) render(r *renderer) (string, error) {
	left, err := b.left.render(r)
	if err != nil {
		return "", err
	}
	right, err := b.right.render(r)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s %s %s)", left, b.op, right), nil
}

type inList struct {
	expr   Expr
	values []any
}

func IsIn(expr Expr, values ...any) Expr {
	return inList{expr: expr, values: values}
}

func (in inList) render(r *renderer) (string, error) {
	if len(in.values) == 0 {
		return "", fmt.Errorf("IN list requires at least one value")
	}
	target, err := in.expr.render(r)
	if err != nil {
		return "", err
	}
	placeholders := make([]string, 0, len(in.values))
	for _, value := range in.values {
		placeholders = append(placeholders, r.bind(value))
	}
	return fmt.Sprintf("%s IN (%s)", target, strings.Join(placeholders, ", ")), nil
}

// CaseBuilder is returned by When and completed with Otherwise.
type CaseBuilder struct {
	cond Expr
	then Expr
}

func When(cond, then Expr) CaseBuilder {
	return CaseBuilder{cond: cond, then: then}
}

func (c CaseBuilder) Otherwise(value Expr) Expr {
	return caseWhen{cond: c.cond, then: c.then, otherwise: value}
}

type caseWhen struct {
	cond      Expr
	then      Expr
	otherwise Expr
}

func (c caseWhen) render(r *renderer) (string, error) {
	cond, err := c.cond.render(r)
	if err != nil {
		return "", err
	}
	then, err := c.then.render(r)
	if err != nil {
		return "", err
	}
	otherwise, err := c.otherwise.render(r)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CASE WHEN %s THEN %s ELSE %s END", cond, then, otherwise), nil
}

type function struct {
	name string
	arg  Expr
}

func Count(arg Expr) Expr { return function{name: "COUNT", arg: arg} }
func Sum(arg Expr) Expr   { return function{name: "SUM", arg: arg} }

func (f function) render(r *renderer) (string, error) {
	arg, err := f.arg.render(r)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s)", f.name, arg), nil
}

type cast struct {
	expr     Expr
	typeName string
}

// Cast converts expr to a warehouse type. Used to pin SUM results to BIGINT,
// which both DuckDB (HUGEINT) and Postgres (NUMERIC) would otherwise widen.
func Cast(expr Expr, typeName string) Expr {
	return cast{expr: expr, typeName: typeName}
}

func (c cast) render(r *renderer) (string, error) {
	inner, err := c.expr.render(r)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CAST(%s AS %s)", inner, c.typeName), nil
}

// Aliased names an aggregate or projected expression in the result set.
type Aliased struct {
	Expr  Expr
	Alias string
}

func As(expr Expr, alias string) Aliased {
	return Aliased{Expr: expr, Alias: alias}
}

type Order struct {
	Expr Expr
	Desc bool
}

func Asc(expr Expr) Order  { return Order{Expr: expr} }
func Desc(expr Expr) Order { return Order{Expr: expr, Desc: true} }

func quoteIdent(value string) string {
	parts := strings.Split(value, ".")
	for i, part := range parts {
		parts[i] = `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
