package hsql

import (
	"fmt"
	"strings"
)

const (
	// Separator splits an identifier into qualification levels.
	Separator = "."
	// Sentinel stands in for a literal Separator inside one level until
	// the SQL text has been rendered.
	Sentinel = "⬨"
)

// Escape replaces every Separator in component with Sentinel. The result
// is only reversible when component does not already contain Sentinel.
func Escape(component string) string {
	return strings.ReplaceAll(component, Separator, Sentinel)
}

// Unescape restores every Sentinel in text to Separator.
func Unescape(text string) string {
	if text == "" {
		return text
	}
	return strings.ReplaceAll(text, Sentinel, Separator)
}

// QualifyAndEscape escapes each non-empty component and joins them into
// one identifier with a qualification level per component. A column
// literally named "a.b" in table "t" is QualifyAndEscape("t", "a.b").
// Every component is quoted, including one named "*"; use I("t.*") for
// a star selection.
func QualifyAndEscape(components ...string) (Ident, error) {
	escaped := make([]string, 0, len(components))
	for _, c := range components {
		if c == "" {
			continue
		}
		if strings.Contains(c, Sentinel) {
			return Ident{}, fmt.Errorf("%w: %q", ErrSentinelInName, c)
		}
		escaped = append(escaped, Escape(c))
	}
	if len(escaped) == 0 {
		return Ident{}, ErrNoComponents
	}
	return Ident{name: strings.Join(escaped, Separator)}, nil
}

// Statement is rendered SQL text with its bound parameters in order.
type Statement struct {
	SQL  string
	Args []any
}

// UnescapeStatement unescapes the SQL text only. Args are returned as the
// same slice and are never inspected.
func UnescapeStatement(st *Statement) *Statement {
	if st == nil {
		return nil
	}
	return &Statement{SQL: Unescape(st.SQL), Args: st.Args}
}

// UnescapeSQL accepts the result of a squirrel ToSql call directly:
//
//	sql, args, err := hsql.UnescapeSQL(qb.ToSql())
func UnescapeSQL(sql string, args []any, err error) (string, []any, error) {
	if err != nil {
		return sql, args, err
	}
	return Unescape(sql), args, nil
}
