package hsql

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
)

type numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

type number struct{ value any }

// Num inlines v as decimal text. Numbers are never bound as parameters:
// a placeholder in a SELECT expression keeps the database from matching
// it against the same expression in GROUP BY.
func Num[T numeric](v T) Expr { return number{value: v} }

func (n number) ToSQL(*Renderer) (string, []any, error) {
	s, err := formatNumber(reflect.ValueOf(n.value))
	return s, nil, err
}

func formatNumber(v reflect.Value) (string, error) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32:
		return formatFloat(v.Float(), 32)
	case reflect.Float64:
		return formatFloat(v.Float(), 64)
	}
	return "", fmt.Errorf("cannot render %s as a number", v.Kind())
}

func formatFloat(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: %v", ErrNonFinite, f)
	}
	return strconv.FormatFloat(f, 'f', -1, bits), nil
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

type rational struct{ r *big.Rat }

// Rat renders r as the decimal text of its nearest float64, not as a
// division of two literals.
func Rat(r *big.Rat) Expr {
	if r == nil {
		return rational{}
	}
	return rational{r: new(big.Rat).Set(r)}
}

// Ratio is Rat(num/den).
func Ratio(num, den int64) (Expr, error) {
	if den == 0 {
		return nil, fmt.Errorf("%w: %d/%d", ErrZeroDenominator, num, den)
	}
	return rational{r: big.NewRat(num, den)}, nil
}

func (q rational) ToSQL(*Renderer) (string, []any, error) {
	if q.r == nil {
		return "", nil, fmt.Errorf("rational: %w", ErrNilExpr)
	}
	f, _ := q.r.Float64()
	s, err := formatFloat(f, 64)
	if err != nil {
		return "", nil, fmt.Errorf("rational %s: %w", q.r.RatString(), err)
	}
	return s, nil, nil
}

type literal string

// Literal renders s in single quotes exactly as given. Embedded single
// quotes are not escaped.
func Literal(s string) Expr { return literal(s) }

func (l literal) ToSQL(r *Renderer) (string, []any, error) {
	return r.Text("'" + string(l) + "'"), nil, nil
}

// Val converts a Go value into an expression. Expressions pass through,
// nil is NULL, numbers and rationals are inlined and anything else is
// bound as a parameter.
func Val(v any) Expr {
	switch x := v.(type) {
	case nil:
		return Raw("NULL")
	case Expr:
		return x
	case *big.Rat:
		if x == nil {
			return Raw("NULL")
		}
		return Rat(x)
	case big.Rat:
		return Rat(&x)
	case *big.Int:
		if x == nil {
			return Raw("NULL")
		}
		return Raw(x.String())
	}
	if isNumberKind(reflect.TypeOf(v).Kind()) {
		return number{value: v}
	}
	return Param(v)
}
