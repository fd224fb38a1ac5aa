package query

import (
	"errors"
	"fmt"
	"math"

	"github.com/atlekbai/sqlrender/internal/hsql"
)

// ErrInvalidDocument marks malformed query documents.
var ErrInvalidDocument = errors.New("invalid query document")

// exprKinds are the keys that select an expression node; exactly one must be present.
var exprKinds = []string{"ident", "num", "ratio", "literal", "value", "param", "raw", "call"}

// callBuilder turns a decoded call node into an expression. Names without
// a builder become a plain hsql.Call.
type callBuilder func(node map[string]any, args []hsql.Expr) (hsql.Expr, error)

var callBuilders = map[string]callBuilder{
	"extract": func(node map[string]any, args []hsql.Expr) (hsql.Expr, error) {
		unit, err := stringField(node, "unit")
		if err != nil {
			return nil, err
		}
		if err := wantArgs("extract", args, 1); err != nil {
			return nil, err
		}
		return hsql.Extract(unit, args[0]), nil
	},
	"distinct-count": unary("distinct-count", hsql.DistinctCount),
	"count":          unary("count", hsql.Count),

	"+":        variadic("+", hsql.Add),
	"add":      variadic("add", hsql.Add),
	"-":        variadic("-", hsql.Subtract),
	"subtract": variadic("subtract", hsql.Subtract),
	"*":        variadic("*", hsql.Multiply),
	"multiply": variadic("multiply", hsql.Multiply),
	"/":        variadic("/", hsql.Divide),
	"divide":   variadic("divide", hsql.Divide),
	"%":        variadic("%", hsql.Modulo),
	"modulo":   variadic("modulo", hsql.Modulo),
	"inc":      unary("inc", hsql.Inc),
	"dec":      unary("dec", hsql.Dec),
	"concat":   variadic("concat", hsql.Concat),

	"cast":        cast("cast", hsql.Cast),
	"quoted-cast": cast("quoted-cast", hsql.QuotedCast),

	"to-date":        unary("to-date", hsql.ToDate),
	"to-datetime":    unary("to-datetime", hsql.ToDateTime),
	"to-timestamp":   unary("to-timestamp", hsql.ToTimestamp),
	"to-timestamptz": unary("to-timestamptz", hsql.ToTimestampWithTimeZone),
	"to-integer":     unary("to-integer", hsql.ToInteger),
	"to-time":        unary("to-time", hsql.ToTime),
	"to-boolean":     unary("to-boolean", hsql.ToBoolean),

	"floor":   unary("floor", hsql.Floor),
	"hour":    unary("hour", hsql.Hour),
	"minute":  unary("minute", hsql.Minute),
	"week":    unary("week", hsql.Week),
	"month":   unary("month", hsql.Month),
	"quarter": unary("quarter", hsql.Quarter),
	"year":    unary("year", hsql.Year),

	"round": func(node map[string]any, args []hsql.Expr) (hsql.Expr, error) {
		if err := wantArgs("round", args, 1); err != nil {
			return nil, err
		}
		places, err := intField(node, "places")
		if err != nil {
			return nil, err
		}
		return hsql.Round(args[0], int(places)), nil
	},
	"format": func(node map[string]any, args []hsql.Expr) (hsql.Expr, error) {
		pattern, err := stringField(node, "pattern")
		if err != nil {
			return nil, err
		}
		if err := wantArgs("format", args, 1); err != nil {
			return nil, err
		}
		return hsql.Format(pattern, args[0]), nil
	},
}

func unary(name string, fn func(hsql.Expr) hsql.Expr) callBuilder {
	return func(_ map[string]any, args []hsql.Expr) (hsql.Expr, error) {
		if err := wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		return fn(args[0]), nil
	}
}

func variadic(name string, fn func(hsql.Expr, ...hsql.Expr) hsql.Expr) callBuilder {
	return func(_ map[string]any, args []hsql.Expr) (hsql.Expr, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("%s: %w: want at least 1, got 0", name, hsql.ErrArity)
		}
		return fn(args[0], args[1:]...), nil
	}
}

func cast(name string, fn func(string, hsql.Expr) hsql.Expr) callBuilder {
	return func(node map[string]any, args []hsql.Expr) (hsql.Expr, error) {
		typeName, err := stringField(node, "type")
		if err != nil {
			return nil, err
		}
		if err := wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		return fn(typeName, args[0]), nil
	}
}

func wantArgs(name string, args []hsql.Expr, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: %w: want %d, got %d", name, hsql.ErrArity, n, len(args))
	}
	return nil
}

// DecodeExpr decodes one expression node, e.g.
//
//	{"call": "extract", "unit": "hour", "args": [{"ident": "t.created_at"}], "as": "h"}
func DecodeExpr(v any) (hsql.Expr, error) {
	node, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expression must be an object, got %T", ErrInvalidDocument, v)
	}

	kind := ""
	for _, k := range exprKinds {
		if _, ok := node[k]; !ok {
			continue
		}
		if kind != "" {
			return nil, fmt.Errorf("%w: expression has both %q and %q", ErrInvalidDocument, kind, k)
		}
		kind = k
	}

	e, err := decodeKind(kind, node)
	if err != nil {
		return nil, err
	}
	if alias, ok := node["as"]; ok {
		name, ok := alias.(string)
		if !ok {
			return nil, fmt.Errorf("%w: alias must be a string, got %T", ErrInvalidDocument, alias)
		}
		e = hsql.As(e, name)
	}
	return e, nil
}

func decodeKind(kind string, node map[string]any) (hsql.Expr, error) {
	v := node[kind]
	switch kind {
	case "ident":
		return decodeIdent(v)

	case "num":
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: num must be a number, got %T", ErrInvalidDocument, v)
		}
		if i, ok := asInt(f); ok {
			return hsql.Num(i), nil
		}
		return hsql.Num(f), nil

	case "ratio":
		pair, ok := v.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("%w: ratio must be [numerator, denominator]", ErrInvalidDocument)
		}
		num, err := toInt("ratio numerator", pair[0])
		if err != nil {
			return nil, err
		}
		den, err := toInt("ratio denominator", pair[1])
		if err != nil {
			return nil, err
		}
		e, err := hsql.Ratio(num, den)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		return e, nil

	case "literal":
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: literal must be a string, got %T", ErrInvalidDocument, v)
		}
		return hsql.Literal(s), nil

	case "value":
		if f, ok := v.(float64); ok {
			if i, ok := asInt(f); ok {
				return hsql.Val(i), nil
			}
		}
		return hsql.Val(v), nil

	case "param":
		return hsql.Param(v), nil

	case "raw":
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: raw must be a string, got %T", ErrInvalidDocument, v)
		}
		return hsql.Raw(s), nil

	case "call":
		return decodeCall(node)
	}
	return nil, fmt.Errorf("%w: expression needs one of %v", ErrInvalidDocument, exprKinds)
}

// decodeIdent accepts a dotted name or a list of components; list
// components may contain literal dots.
func decodeIdent(v any) (hsql.Ident, error) {
	switch v := v.(type) {
	case string:
		if v == "" {
			return hsql.Ident{}, fmt.Errorf("%w: %w", ErrInvalidDocument, hsql.ErrEmptyIdent)
		}
		return hsql.I(v), nil
	case []any:
		parts := make([]string, len(v))
		for i, p := range v {
			s, ok := p.(string)
			if !ok {
				return hsql.Ident{}, fmt.Errorf("%w: identifier component %d must be a string, got %T", ErrInvalidDocument, i+1, p)
			}
			parts[i] = s
		}
		id, err := hsql.QualifyAndEscape(parts...)
		if err != nil {
			return hsql.Ident{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		return id, nil
	}
	return hsql.Ident{}, fmt.Errorf("%w: identifier must be a string or list, got %T", ErrInvalidDocument, v)
}

func decodeCall(node map[string]any) (hsql.Expr, error) {
	name, ok := node["call"].(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: call needs a function name", ErrInvalidDocument)
	}

	var args []hsql.Expr
	if raw, ok := node["args"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s args must be a list", ErrInvalidDocument, name)
		}
		for i, a := range list {
			e, err := DecodeExpr(a)
			if err != nil {
				return nil, fmt.Errorf("%s arg %d: %w", name, i+1, err)
			}
			args = append(args, e)
		}
	}

	build, ok := callBuilders[name]
	if !ok {
		return hsql.Call(name, args...), nil
	}
	e, err := build(node, args)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return e, nil
}

func stringField(node map[string]any, key string) (string, error) {
	s, ok := node[key].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s needs a %q string", node["call"], key)
	}
	return s, nil
}

func intField(node map[string]any, key string) (int64, error) {
	v, ok := node[key]
	if !ok {
		return 0, fmt.Errorf("%s needs an integer %q", node["call"], key)
	}
	return toInt(key, v)
}

func toInt(what string, v any) (int64, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidDocument, what, v)
	}
	i, ok := asInt(f)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidDocument, what, f)
	}
	return i, nil
}

// asInt reports whether a JSON number is an integer that float64 holds exactly.
func asInt(f float64) (int64, bool) {
	const maxExact = 1 << 53
	if f != math.Trunc(f) || math.Abs(f) > maxExact {
		return 0, false
	}
	return int64(f), true
}
