package query

import (
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/atlekbai/sqlrender/internal/dialect"
	"github.com/atlekbai/sqlrender/internal/hsql"
)

// ErrBoundGroupBy is returned for GROUP BY expressions that would bind
// parameters; a placeholder there never matches the SELECT expression.
var ErrBoundGroupBy = errors.New("group by expression binds parameters")

type OrderClause struct {
	Expr hsql.Expr
	Desc bool
}

// Document is a decoded SELECT request.
type Document struct {
	Dialect     dialect.Tag
	Placeholder sq.PlaceholderFormat
	Select      []hsql.Expr
	From        *hsql.Ident
	Where       hsql.Expr
	GroupBy     []hsql.Expr
	OrderBy     []OrderClause
	Limit       uint64
}

// Defaults fill in what a document leaves out.
type Defaults struct {
	Dialect     dialect.Tag
	Placeholder string
}

// ParsePlaceholder maps a placeholder style name to its squirrel format.
func ParsePlaceholder(name string) (sq.PlaceholderFormat, error) {
	switch dialect.LowerInvariant(strings.TrimSpace(name)) {
	case "", "question":
		return sq.Question, nil
	case "dollar":
		return sq.Dollar, nil
	case "colon":
		return sq.Colon, nil
	case "at":
		return sq.AtP, nil
	}
	return nil, fmt.Errorf("unknown placeholder format %q", name)
}

// ParseDocument decodes a SELECT document:
//
//	{"dialect": "h2", "placeholder": "dollar",
//	 "select": [...], "from": ["schema", "table"], "where": {...},
//	 "group_by": [...], "order_by": [{..., "desc": true}], "limit": 10}
func ParseDocument(raw map[string]any, def Defaults) (*Document, error) {
	doc := &Document{Dialect: def.Dialect}

	if v, ok := raw["dialect"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: dialect must be a string, got %T", ErrInvalidDocument, v)
		}
		tag, err := dialect.ParseTag(s)
		if err != nil {
			// Custom strategies are registered under their own tags.
			tag = dialect.Tag(s)
		}
		doc.Dialect = tag
	}

	placeholder := def.Placeholder
	if v, ok := raw["placeholder"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: placeholder must be a string, got %T", ErrInvalidDocument, v)
		}
		placeholder = s
	}
	ph, err := ParsePlaceholder(placeholder)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	doc.Placeholder = ph

	if doc.Select, err = exprList(raw, "select"); err != nil {
		return nil, err
	}
	if len(doc.Select) == 0 {
		return nil, fmt.Errorf("%w: select needs at least one expression", ErrInvalidDocument)
	}

	if v, ok := raw["from"]; ok {
		id, err := decodeIdent(v)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		doc.From = &id
	}

	if v, ok := raw["where"]; ok {
		if doc.Where, err = DecodeExpr(v); err != nil {
			return nil, fmt.Errorf("where: %w", err)
		}
	}

	if doc.GroupBy, err = exprList(raw, "group_by"); err != nil {
		return nil, err
	}

	if doc.OrderBy, err = orderList(raw); err != nil {
		return nil, err
	}

	if v, ok := raw["limit"]; ok {
		n, err := toInt("limit", v)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative limit %d", ErrInvalidDocument, n)
		}
		doc.Limit = uint64(n)
	}

	return doc, nil
}

func exprList(raw map[string]any, key string) ([]hsql.Expr, error) {
	v, ok := raw[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list", ErrInvalidDocument, key)
	}
	exprs := make([]hsql.Expr, 0, len(list))
	for i, item := range list {
		e, err := DecodeExpr(item)
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", key, i+1, err)
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func orderList(raw map[string]any) ([]OrderClause, error) {
	exprs, err := exprList(raw, "order_by")
	if err != nil {
		return nil, err
	}
	list, _ := raw["order_by"].([]any)
	clauses := make([]OrderClause, len(exprs))
	for i, e := range exprs {
		clauses[i] = OrderClause{Expr: e}
		if node, ok := list[i].(map[string]any); ok {
			desc, _ := node["desc"].(bool)
			clauses[i].Desc = desc
		}
	}
	return clauses, nil
}

// Select assembles the document into a squirrel SELECT and renders it.
// The returned text is already unescaped.
func Select(r *hsql.Renderer, doc *Document) (string, []any, error) {
	ph := doc.Placeholder
	if ph == nil {
		ph = sq.Question
	}
	r = r.ForPlaceholders(ph)
	qb := sq.Select().PlaceholderFormat(ph)
	for _, e := range doc.Select {
		qb = qb.Column(r.Sqlizer(e))
	}

	if doc.From != nil {
		from, _, err := r.Render(*doc.From)
		if err != nil {
			return "", nil, fmt.Errorf("from: %w", err)
		}
		qb = qb.From(from)
	}

	if doc.Where != nil {
		qb = qb.Where(r.Sqlizer(doc.Where))
	}

	for i, e := range doc.GroupBy {
		text, args, err := r.Render(e)
		if err != nil {
			return "", nil, fmt.Errorf("group_by %d: %w", i+1, err)
		}
		if len(args) > 0 {
			return "", nil, fmt.Errorf("group_by %d: %w", i+1, ErrBoundGroupBy)
		}
		qb = qb.GroupBy(text)
	}

	for i, o := range doc.OrderBy {
		text, args, err := r.Render(o.Expr)
		if err != nil {
			return "", nil, fmt.Errorf("order_by %d: %w", i+1, err)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		qb = qb.OrderByClause(text+" "+dir, args...)
	}

	if doc.Limit > 0 {
		qb = qb.Limit(doc.Limit)
	}

	return hsql.UnescapeSQL(qb.ToSql())
}

// Result is a rendered document.
type Result struct {
	Dialect dialect.Tag
	SQL     string
	Args    []any
}

// Builder renders query documents against one hsql configuration.
type Builder struct {
	cfg      *hsql.Config
	defaults Defaults
}

func NewBuilder(cfg *hsql.Config, defaults Defaults) *Builder {
	return &Builder{cfg: cfg, defaults: defaults}
}

// Build decodes and renders raw. Every failure is a problem with the
// document and wraps ErrInvalidDocument.
func (b *Builder) Build(raw map[string]any) (*Result, error) {
	doc, err := ParseDocument(raw, b.defaults)
	if err != nil {
		return nil, err
	}
	r, err := b.cfg.Renderer(doc.Dialect)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	sql, args, err := Select(r, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return &Result{Dialect: doc.Dialect, SQL: sql, Args: args}, nil
}
