package hsql

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/atlekbai/sqlrender/internal/dialect"
)

// Config holds the quote strategies and function renderers shared by
// every Renderer made from it. Several configs may coexist.
type Config struct {
	quotes *dialect.Registry
	funcs  *Functions
}

func NewConfig(quotes *dialect.Registry, funcs *Functions) *Config {
	if quotes == nil {
		quotes = dialect.NewRegistry()
	}
	if funcs == nil {
		funcs = NewFunctions()
	}
	return &Config{quotes: quotes, funcs: funcs}
}

// DefaultConfig has every built-in dialect and function renderer.
func DefaultConfig() *Config {
	return NewConfig(dialect.Defaults(), DefaultFunctions())
}

func (c *Config) Quotes() *dialect.Registry { return c.quotes }
func (c *Config) Functions() *Functions     { return c.funcs }

// Renderer binds the config to one dialect. Both registries are frozen
// here, so all registration has to happen before the first call.
func (c *Config) Renderer(tag dialect.Tag) (*Renderer, error) {
	c.quotes.Freeze()
	c.funcs.Freeze()

	quote, ok := c.quotes.Lookup(tag)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownDialect, tag)
	}
	return &Renderer{dialect: tag, quote: quote, funcs: c.funcs}, nil
}

// Renderer compiles expressions to SQL text for one dialect. It is safe
// for concurrent use.
type Renderer struct {
	dialect dialect.Tag
	quote   dialect.QuoteFunc
	funcs   *Functions

	// escapeMarks doubles every '?' that is not a bound parameter, for
	// placeholder formats that read "??" as a literal '?'.
	escapeMarks bool
}

// ForPlaceholders returns a renderer for text that a squirrel builder
// using ph will number. With any format other than sq.Question, a '?'
// in literals, identifiers, aliases or raw text is emitted as "??" so
// the builder leaves it alone and numbers only the bound parameters.
func (r *Renderer) ForPlaceholders(ph sq.PlaceholderFormat) *Renderer {
	c := *r
	c.escapeMarks = collapsesMarks(ph)
	return &c
}

// collapsesMarks reports whether ph rewrites "??" to "?".
func collapsesMarks(ph sq.PlaceholderFormat) bool {
	if ph == nil {
		return false
	}
	out, err := ph.ReplacePlaceholders("??")
	return err == nil && out == "?"
}

func (r *Renderer) Dialect() dialect.Tag { return r.dialect }

// Quote applies the dialect quote strategy to a single identifier level.
func (r *Renderer) Quote(name string) string { return r.Text(r.quote(name)) }

// Text prepares fixed SQL text that is not a bound parameter. Custom
// renderers pass their own text through it.
func (r *Renderer) Text(sql string) string {
	if !r.escapeMarks {
		return sql
	}
	return strings.ReplaceAll(sql, "?", "??")
}

// Render compiles e to SQL text and its bound arguments.
func (r *Renderer) Render(e Expr) (string, []any, error) {
	if e == nil {
		return "", nil, ErrNilExpr
	}
	return e.ToSQL(r)
}

// RenderAll renders each expression and concatenates their arguments in order.
func (r *Renderer) RenderAll(exprs []Expr) ([]string, []any, error) {
	parts := make([]string, len(exprs))
	var args []any
	for i, e := range exprs {
		sql, a, err := r.Render(e)
		if err != nil {
			return nil, nil, fmt.Errorf("arg %d: %w", i+1, err)
		}
		parts[i] = sql
		args = append(args, a...)
	}
	return parts, args, nil
}

func (r *Renderer) Statement(e Expr) (*Statement, error) {
	sql, args, err := r.Render(e)
	if err != nil {
		return nil, err
	}
	return &Statement{SQL: sql, Args: args}, nil
}

// Sqlizer exposes e to squirrel builders, e.g. SelectBuilder.Column.
// When the builder numbers its placeholders, take the Sqlizer from
// ForPlaceholders with the same format.
func (r *Renderer) Sqlizer(e Expr) sq.Sqlizer {
	return boundExpr{r: r, e: e}
}

type boundExpr struct {
	r *Renderer
	e Expr
}

func (b boundExpr) ToSql() (string, []any, error) {
	return b.r.Render(b.e)
}
