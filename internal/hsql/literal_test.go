package hsql

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/sqlrender/internal/dialect"
)

type celsius float64

func TestNumbersRenderInline(t *testing.T) {
	r := testRenderer(t, dialect.ANSI)

	tests := []struct {
		expr Expr
		want string
	}{
		{Num(3), "3"},
		{Num(-42), "-42"},
		{Num(int64(math.MaxInt64)), "9223372036854775807"},
		{Num(uint64(math.MaxUint64)), "18446744073709551615"},
		{Num(2.5), "2.5"},
		{Num(float32(0.1)), "0.1"},
		{Num(1e21), "1000000000000000000000"},
		{Num(celsius(36.6)), "36.6"},
	}
	for _, tt := range tests {
		sql, args, err := r.Render(tt.expr)
		require.NoError(t, err)
		assert.Equal(t, tt.want, sql)
		assert.Empty(t, args, "numbers must not bind parameters")
	}
}

func TestNonFiniteNumbers(t *testing.T) {
	r := testRenderer(t, dialect.ANSI)
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, _, err := r.Render(Num(f))
		assert.True(t, errors.Is(err, ErrNonFinite), "%v", f)
	}
}

func TestRationalRendersDecimal(t *testing.T) {
	r := testRenderer(t, dialect.ANSI)

	third, err := Ratio(1, 3)
	require.NoError(t, err)
	sql, args, err := r.Render(third)
	require.NoError(t, err)
	assert.Equal(t, "0.3333333333333333", sql)
	assert.Empty(t, args)
	assert.NotContains(t, sql, "/")

	got, err := strconv.ParseFloat(sql, 64)
	require.NoError(t, err)
	assert.Equal(t, 1.0/3.0, got)

	sql, _, err = r.Render(Rat(big.NewRat(-7, 2)))
	require.NoError(t, err)
	assert.Equal(t, "-3.5", sql)

	sql, _, err = r.Render(Rat(big.NewRat(6, 3)))
	require.NoError(t, err)
	assert.Equal(t, "2", sql)
}

func TestRationalErrors(t *testing.T) {
	_, err := Ratio(1, 0)
	assert.True(t, errors.Is(err, ErrZeroDenominator))

	r := testRenderer(t, dialect.ANSI)
	_, _, err = r.Render(Rat(nil))
	assert.True(t, errors.Is(err, ErrNilExpr))

	huge := new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(400), nil))
	_, _, err = r.Render(Rat(huge))
	assert.True(t, errors.Is(err, ErrNonFinite))
}

func TestRatCopiesInput(t *testing.T) {
	r := testRenderer(t, dialect.ANSI)
	in := big.NewRat(1, 4)
	e := Rat(in)
	in.SetInt64(9)

	sql, _, err := r.Render(e)
	require.NoError(t, err)
	assert.Equal(t, "0.25", sql)
}

func TestLiteral(t *testing.T) {
	r := testRenderer(t, dialect.H2)
	sql, args, err := r.Render(Literal("2020-01-01"))
	require.NoError(t, err)
	assert.Equal(t, "'2020-01-01'", sql)
	assert.Empty(t, args)

	// Embedded quotes are the caller's concern.
	sql, _, err = r.Render(Literal("it's"))
	require.NoError(t, err)
	assert.Equal(t, "'it's'", sql)
}

func TestVal(t *testing.T) {
	r := testRenderer(t, dialect.ANSI)

	tests := []struct {
		name string
		in   any
		sql  string
		args []any
	}{
		{"int", 3, "3", nil},
		{"float", 0.5, "0.5", nil},
		{"named float", celsius(-1), "-1", nil},
		{"uint8", uint8(7), "7", nil},
		{"rat pointer", big.NewRat(1, 8), "0.125", nil},
		{"big int", big.NewInt(12345), "12345", nil},
		{"nil", nil, "NULL", nil},
		{"nil rat", (*big.Rat)(nil), "NULL", nil},
		{"string binds", "hello", "?", []any{"hello"}},
		{"bool binds", true, "?", []any{true}},
		{"expr passes through", I("t.c"), `"t"."c"`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := r.Render(Val(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.sql, sql)
			if tt.args == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.args, args)
			}
		})
	}
}
