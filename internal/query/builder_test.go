package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/sqlrender/internal/dialect"
	"github.com/atlekbai/sqlrender/internal/hsql"
)

func parseJSON(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func testBuilder() *Builder {
	return NewBuilder(hsql.DefaultConfig(), Defaults{Dialect: dialect.Postgres, Placeholder: "question"})
}

func TestBuildH2Document(t *testing.T) {
	doc := parseJSON(t, `{
		"dialect": "h2",
		"placeholder": "dollar",
		"select": [
			{"call": "extract", "unit": "HOUR", "args": [{"ident": ["created.at"]}], "as": "h"},
			{"call": "distinct-count", "args": [{"ident": "user_id"}], "as": "users"}
		],
		"from": ["analytics", "events"],
		"where": {"call": "=", "args": [{"ident": "kind"}, {"value": "click"}]},
		"group_by": [{"call": "extract", "unit": "hour", "args": [{"ident": ["created.at"]}]}],
		"order_by": [{"ident": "h", "desc": true}],
		"limit": 10
	}`)

	res, err := testBuilder().Build(doc)
	require.NoError(t, err)
	assert.Equal(t, dialect.H2, res.Dialect)
	assert.Equal(t,
		`SELECT extract(hour from "CREATED.AT") AS "H", count(distinct "USER_ID") AS "USERS" `+
			`FROM "ANALYTICS"."EVENTS" WHERE ("KIND" = $1) `+
			`GROUP BY extract(hour from "CREATED.AT") ORDER BY "H" DESC LIMIT 10`,
		res.SQL)
	assert.Equal(t, []any{"click"}, res.Args)
}

func TestBuildUsesDefaults(t *testing.T) {
	doc := parseJSON(t, `{
		"select": [
			{"call": "+", "args": [{"num": 3}, {"ratio": [1, 3]}, {"value": 2.5}, {"value": 7}], "as": "n"},
			{"literal": "2020-01-01"},
			{"call": "coalesce", "args": [{"param": "x"}, {"raw": "now()"}]}
		],
		"from": "public.t",
		"order_by": [{"num": 1}]
	}`)

	res, err := testBuilder().Build(doc)
	require.NoError(t, err)
	assert.Equal(t, dialect.Postgres, res.Dialect)
	assert.Equal(t,
		`SELECT (3 + 0.3333333333333333 + 2.5 + 7) AS "n", '2020-01-01', coalesce(?, now()) FROM "public"."t" ORDER BY 1 ASC`,
		res.SQL)
	assert.Equal(t, []any{"x"}, res.Args)
}

func TestBuildCastsAndDialectAliases(t *testing.T) {
	doc := parseJSON(t, `{
		"dialect": "MariaDB",
		"select": [
			{"call": "quoted-cast", "type": "my enum", "args": [{"ident": "mood"}]},
			{"call": "cast", "type": "date", "args": [{"ident": "t.ts"}]},
			{"call": "round", "places": 2, "args": [{"call": "inc", "args": [{"ident": "price"}]}]},
			{"call": "format", "pattern": "0.00", "args": [{"ident": "price"}]}
		]
	}`)

	res, err := testBuilder().Build(doc)
	require.NoError(t, err)
	assert.Equal(t, dialect.MySQL, res.Dialect)
	assert.Equal(t,
		"SELECT cast(`mood` AS `my enum`), cast(`t`.`ts` AS date), round((`price` + 1), 2), format(`price`, '0.00')",
		res.SQL)
	assert.Empty(t, res.Args)
}

func TestBuildOrderByArgsAndPlaceholders(t *testing.T) {
	doc := parseJSON(t, `{
		"placeholder": "colon",
		"select": [{"ident": "id"}],
		"from": "t",
		"where": {"call": ">", "args": [{"ident": "score"}, {"param": 10}]},
		"order_by": [{"call": "coalesce", "args": [{"ident": "rank"}, {"param": 0}]}]
	}`)

	res, err := testBuilder().Build(doc)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id" FROM "t" WHERE ("score" > :1) ORDER BY coalesce("rank", :2) ASC`, res.SQL)
	assert.Equal(t, []any{float64(10), float64(0)}, res.Args)
}

func TestBuildKeepsQuestionMarksInText(t *testing.T) {
	const doc = `{
		"placeholder": %q,
		"select": [{"literal": "why?"}, {"ident": ["what?"]}, {"ident": "t.?", "as": "huh?"}],
		"from": "t",
		"where": {"call": "=", "args": [{"ident": "id"}, {"param": 7}]},
		"group_by": [{"literal": "g?"}],
		"order_by": [{"call": "coalesce", "args": [{"raw": "'r?'"}, {"param": 0}]}]
	}`

	tests := []struct {
		placeholder string
		want        string
	}{
		{"dollar", `SELECT 'why?', "what?", "t"."?" AS "huh?" FROM "t" WHERE ("id" = $1) GROUP BY 'g?' ORDER BY coalesce('r?', $2) ASC`},
		{"colon", `SELECT 'why?', "what?", "t"."?" AS "huh?" FROM "t" WHERE ("id" = :1) GROUP BY 'g?' ORDER BY coalesce('r?', :2) ASC`},
		{"at", `SELECT 'why?', "what?", "t"."?" AS "huh?" FROM "t" WHERE ("id" = @p1) GROUP BY 'g?' ORDER BY coalesce('r?', @p2) ASC`},
		{"question", `SELECT 'why?', "what?", "t"."?" AS "huh?" FROM "t" WHERE ("id" = ?) GROUP BY 'g?' ORDER BY coalesce('r?', ?) ASC`},
	}
	for _, tt := range tests {
		t.Run(tt.placeholder, func(t *testing.T) {
			res, err := testBuilder().Build(parseJSON(t, fmt.Sprintf(doc, tt.placeholder)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.SQL)
			assert.Equal(t, []any{float64(7), float64(0)}, res.Args)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		is   error
	}{
		{"no select", `{"from": "t"}`, ErrInvalidDocument},
		{"select not a list", `{"select": {"ident": "a"}}`, ErrInvalidDocument},
		{"two kinds", `{"select": [{"ident": "a", "num": 1}]}`, ErrInvalidDocument},
		{"no kind", `{"select": [{"as": "a"}]}`, ErrInvalidDocument},
		{"not an object", `{"select": ["a"]}`, ErrInvalidDocument},
		{"zero denominator", `{"select": [{"ratio": [1, 0]}]}`, hsql.ErrZeroDenominator},
		{"fractional ratio", `{"select": [{"ratio": [1.5, 2]}]}`, ErrInvalidDocument},
		{"extract without unit", `{"select": [{"call": "extract", "args": [{"ident": "a"}]}]}`, ErrInvalidDocument},
		{"cast without type", `{"select": [{"call": "cast", "args": [{"ident": "a"}]}]}`, ErrInvalidDocument},
		{"add without operands", `{"select": [{"call": "+", "args": []}]}`, hsql.ErrArity},
		{"unary with two args", `{"select": [{"call": "floor", "args": [{"num": 1}, {"num": 2}]}]}`, hsql.ErrArity},
		{"bound group by", `{"select": [{"ident": "a"}], "group_by": [{"param": 1}]}`, ErrBoundGroupBy},
		{"unknown dialect", `{"dialect": "oracle", "select": [{"ident": "a"}]}`, hsql.ErrUnknownDialect},
		{"unknown placeholder", `{"placeholder": "percent", "select": [{"ident": "a"}]}`, ErrInvalidDocument},
		{"negative limit", `{"select": [{"ident": "a"}], "limit": -1}`, ErrInvalidDocument},
		{"sentinel in identifier", `{"select": [{"ident": ["t", "a⬨b"]}]}`, hsql.ErrSentinelInName},
		{"empty identifier", `{"select": [{"ident": ""}]}`, hsql.ErrEmptyIdent},
		{"bad alias", `{"select": [{"ident": "a", "as": 1}]}`, ErrInvalidDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testBuilder().Build(parseJSON(t, tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.is), "got %v", err)
			assert.True(t, errors.Is(err, ErrInvalidDocument), "got %v", err)
		})
	}
}

func TestParsePlaceholder(t *testing.T) {
	tests := []struct {
		in   string
		want sq.PlaceholderFormat
	}{
		{"", sq.Question},
		{"question", sq.Question},
		{"Dollar", sq.Dollar},
		{"colon", sq.Colon},
		{"at", sq.AtP},
	}
	for _, tt := range tests {
		got, err := ParsePlaceholder(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSelectWithoutPlaceholder(t *testing.T) {
	r, err := hsql.DefaultConfig().Renderer(dialect.ANSI)
	require.NoError(t, err)
	sql, args, err := Select(r, &Document{Select: []hsql.Expr{hsql.Val(1), hsql.Val("a")}})
	require.NoError(t, err)
	assert.Equal(t, `SELECT 1, ?`, sql)
	assert.Equal(t, []any{"a"}, args)
}
