package hsql

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Expr is a node of a SQL expression tree. Nodes are immutable and render
// against a Renderer, which supplies the dialect quote strategy and the
// function renderers.
type Expr interface {
	ToSQL(r *Renderer) (string, []any, error)
}

type raw string

// Raw is SQL text emitted verbatim.
func Raw(sql string) Expr { return raw(sql) }

func (e raw) ToSQL(r *Renderer) (string, []any, error) { return r.Text(string(e)), nil, nil }

type keyword string

// Keyword is a bare, unquoted name such as a date unit or a type name.
func Keyword(name string) Expr { return keyword(name) }

func (e keyword) ToSQL(r *Renderer) (string, []any, error) { return r.Text(string(e)), nil, nil }

type param struct{ value any }

// Param binds v out of band as a placeholder argument.
func Param(v any) Expr { return param{value: v} }

func (e param) ToSQL(*Renderer) (string, []any, error) {
	return "?", []any{e.value}, nil
}

// Ident is a possibly qualified identifier. Its name is split on
// Separator into levels and every level is quoted on its own.
type Ident struct {
	name     string
	bareStar bool
}

// I returns the identifier for a dotted name like "schema.table.column".
// A "*" level is emitted unquoted, as in "t.*".
func I(name string) Ident { return Ident{name: name, bareStar: true} }

func (id Ident) Name() string { return id.name }

// Levels is the number of qualification levels the renderer sees.
func (id Ident) Levels() int {
	if id.name == "" {
		return 0
	}
	return strings.Count(id.name, Separator) + 1
}

func (id Ident) ToSQL(r *Renderer) (string, []any, error) {
	if id.name == "" {
		return "", nil, ErrEmptyIdent
	}
	parts := strings.Split(id.name, Separator)
	for i, p := range parts {
		if p == "" {
			return "", nil, fmt.Errorf("%w: empty level in %q", ErrEmptyIdent, id.name)
		}
		if p != "*" || !id.bareStar {
			parts[i] = r.Quote(p)
		}
	}
	return strings.Join(parts, Separator), nil, nil
}

type call struct {
	name string
	args []Expr
}

// Call applies a named function. Names with a registered renderer use it;
// any other name renders as name(arg, ...).
func Call(name string, args ...Expr) Expr {
	return call{name: name, args: append([]Expr(nil), args...)}
}

func (c call) ToSQL(r *Renderer) (string, []any, error) {
	if fn, ok := r.funcs.Lookup(c.name); ok {
		return fn(r, c.args)
	}
	parts, args, err := r.RenderAll(c.args)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", c.name, err)
	}
	return r.Text(c.name) + "(" + strings.Join(parts, ", ") + ")", args, nil
}

type alias struct {
	expr Expr
	name string
}

// As renders expr followed by a quoted column alias.
func As(expr Expr, name string) Expr { return alias{expr: expr, name: name} }

func (a alias) ToSQL(r *Renderer) (string, []any, error) {
	sql, args, err := r.Render(a.expr)
	if err != nil {
		return "", nil, err
	}
	if a.name == "" {
		return "", nil, fmt.Errorf("alias: %w", ErrEmptyIdent)
	}
	return sql + " AS " + r.Quote(a.name), args, nil
}

type sqlizer struct{ s sq.Sqlizer }

// Sql embeds a squirrel expression, e.g. a sub-select, in the tree.
// Squirrel statement builders are rendered with sq.Question whatever
// format they were given, so the outer builder numbers their parameters.
func Sql(s sq.Sqlizer) Expr { return sqlizer{s: s} }

func (e sqlizer) ToSQL(*Renderer) (string, []any, error) {
	switch b := e.s.(type) {
	case nil:
		return "", nil, ErrNilExpr
	case sq.SelectBuilder:
		return b.PlaceholderFormat(sq.Question).ToSql()
	case sq.InsertBuilder:
		return b.PlaceholderFormat(sq.Question).ToSql()
	case sq.UpdateBuilder:
		return b.PlaceholderFormat(sq.Question).ToSql()
	case sq.DeleteBuilder:
		return b.PlaceholderFormat(sq.Question).ToSql()
	default:
		return e.s.ToSql()
	}
}
