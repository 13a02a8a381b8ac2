// Package search builds query expressions for the asset store's search API.
//
// The expression grammar is deliberately small and textual so the rest of
// the system never manipulates store-specific syntax directly:
//
//	field="value"      exact match
//	field:"pattern"    contains / wildcard match (* matches any run)
//	field>="value"     lexicographic lower bound (inclusive)
//	field<"value"      lexicographic upper bound (exclusive)
//	NOT (expr)         negation
//	expr AND expr      conjunction
package search

import "strings"

// Expr is one node of a query expression.
type Expr interface {
	render(b *strings.Builder)
}

type binary struct {
	field, op, value string
}

func (e binary) render(b *strings.Builder) {
	b.WriteString(e.field)
	b.WriteString(e.op)
	b.WriteByte('"')
	b.WriteString(e.value)
	b.WriteByte('"')
}

type not struct{ inner Expr }

func (e not) render(b *strings.Builder) {
	b.WriteString("NOT (")
	e.inner.render(b)
	b.WriteByte(')')
}

type and struct{ exprs []Expr }

func (e and) render(b *strings.Builder) {
	for i, sub := range e.exprs {
		if i > 0 {
			b.WriteString(" AND ")
		}
		sub.render(b)
	}
}

// Eq matches field exactly.
func Eq(field, value string) Expr { return binary{field, "=", value} }

// Match matches field against a pattern; a bare pattern means "contains"
// and '*' inside it matches any run of characters.
func Match(field, pattern string) Expr { return binary{field, ":", pattern} }

// Gte is an inclusive lexicographic lower bound.
func Gte(field, value string) Expr { return binary{field, ">=", value} }

// Lt is an exclusive lexicographic upper bound.
func Lt(field, value string) Expr { return binary{field, "<", value} }

// Not negates an expression.
func Not(e Expr) Expr { return not{e} }

// And combines expressions into a conjunction.
func And(exprs ...Expr) Expr { return and{exprs} }

// Render turns an expression into its textual form.
func Render(e Expr) string {
	var b strings.Builder
	e.render(&b)
	return b.String()
}
