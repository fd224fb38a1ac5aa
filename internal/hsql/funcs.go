package hsql

import (
	"fmt"
	"strings"

	"github.com/atlekbai/sqlrender/internal/dialect"
)

// --- Renderers ---

func renderExtract(r *Renderer, args []Expr) (string, []any, error) {
	if len(args) != 2 {
		return "", nil, arityError("extract", "2", len(args))
	}
	parts, params, err := r.RenderAll(args)
	if err != nil {
		return "", nil, fmt.Errorf("extract: %w", err)
	}
	return fmt.Sprintf("extract(%s from %s)", parts[0], parts[1]), params, nil
}

func renderDistinctCount(r *Renderer, args []Expr) (string, []any, error) {
	if len(args) != 1 {
		return "", nil, arityError("distinct-count", "1", len(args))
	}
	sql, params, err := r.Render(args[0])
	if err != nil {
		return "", nil, fmt.Errorf("distinct-count: %w", err)
	}
	return fmt.Sprintf("count(distinct %s)", sql), params, nil
}

func renderCast(r *Renderer, args []Expr) (string, []any, error) {
	if len(args) != 2 {
		return "", nil, arityError("cast", "2", len(args))
	}
	parts, params, err := r.RenderAll(args)
	if err != nil {
		return "", nil, fmt.Errorf("cast: %w", err)
	}
	return fmt.Sprintf("cast(%s AS %s)", parts[0], parts[1]), params, nil
}

// Infix renders (a op b op c), parenthesized as a unit.
func Infix(op string) FuncRenderer {
	return func(r *Renderer, args []Expr) (string, []any, error) {
		if len(args) == 0 {
			return "", nil, arityError(op, "at least 1", 0)
		}
		parts, params, err := r.RenderAll(args)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", op, err)
		}
		return "(" + strings.Join(parts, " "+r.Text(op)+" ") + ")", params, nil
	}
}

// --- Builders ---

// Extract renders extract(unit from e); unit is emitted bare and lower-case.
func Extract(unit string, e Expr) Expr {
	return Call("extract", Keyword(dialect.LowerInvariant(unit)), e)
}

// DistinctCount renders count(distinct e).
func DistinctCount(e Expr) Expr { return Call("distinct-count", e) }

func Count(e Expr) Expr { return Call("count", e) }

func Add(x Expr, more ...Expr) Expr      { return Call("+", operands(x, more)...) }
func Subtract(x Expr, more ...Expr) Expr { return Call("-", operands(x, more)...) }
func Multiply(x Expr, more ...Expr) Expr { return Call("*", operands(x, more)...) }
func Divide(x Expr, more ...Expr) Expr   { return Call("/", operands(x, more)...) }
func Modulo(x Expr, more ...Expr) Expr   { return Call("%", operands(x, more)...) }

func Inc(x Expr) Expr { return Add(x, Num(1)) }
func Dec(x Expr) Expr { return Subtract(x, Num(1)) }

func operands(x Expr, more []Expr) []Expr {
	return append([]Expr{x}, more...)
}

// Cast renders cast(e AS typeName) with typeName emitted as given.
func Cast(typeName string, e Expr) Expr { return Call("cast", e, Keyword(typeName)) }

// QuotedCast quotes typeName as an identifier, for user-defined types
// such as Postgres enums whose names need quoting.
func QuotedCast(typeName string, e Expr) Expr { return Call("cast", e, I(typeName)) }

func ToDate(e Expr) Expr                  { return Cast("date", e) }
func ToDateTime(e Expr) Expr              { return Cast("datetime", e) }
func ToTimestamp(e Expr) Expr             { return Cast("timestamp", e) }
func ToTimestampWithTimeZone(e Expr) Expr { return Cast("timestamp with time zone", e) }
func ToInteger(e Expr) Expr               { return Cast("integer", e) }
func ToTime(e Expr) Expr                  { return Cast("time", e) }
func ToBoolean(e Expr) Expr               { return Cast("boolean", e) }

// Not every dialect has the functions below; callers check support.

func Floor(e Expr) Expr   { return Call("floor", e) }
func Hour(e Expr) Expr    { return Call("hour", e) }
func Minute(e Expr) Expr  { return Call("minute", e) }
func Week(e Expr) Expr    { return Call("week", e) }
func Month(e Expr) Expr   { return Call("month", e) }
func Quarter(e Expr) Expr { return Call("quarter", e) }
func Year(e Expr) Expr    { return Call("year", e) }

func Concat(x Expr, more ...Expr) Expr { return Call("concat", operands(x, more)...) }

// Round renders round(x, places).
func Round(x Expr, places int) Expr { return Call("round", x, Num(places)) }

// Format renders format(x, 'pattern').
func Format(pattern string, x Expr) Expr { return Call("format", x, Literal(pattern)) }
