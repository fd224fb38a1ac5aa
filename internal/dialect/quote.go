package dialect

import (
	"strings"

	"github.com/jackc/pgx/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// QuoteFunc wraps an identifier for safe inclusion in SQL text.
type QuoteFunc func(name string) string

// ANSIQuote quotes a SQL identifier with double quotes, escaping embedded double quotes.
func ANSIQuote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// H2Quote upper-cases name with the root locale before ANSI quoting.
// H2 folds unquoted identifiers to upper case, so catalog names are
// compared against the ASCII upper-case form.
func H2Quote(name string) string {
	return ANSIQuote(UpperInvariant(name))
}

// MySQLQuote quotes with backticks, doubling embedded backticks.
func MySQLQuote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// PostgresQuote quotes a single identifier level the way pgx does.
func PostgresQuote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// SQLServerQuote quotes with square brackets, doubling embedded closing brackets.
func SQLServerQuote(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// UpperInvariant upper-cases s with a fixed reference locale. The result
// does not depend on the process environment: "i" always becomes "I",
// never the Turkish dotted capital.
func UpperInvariant(s string) string {
	// Casers keep state and must not be shared between goroutines.
	return cases.Upper(language.Und).String(s)
}

// LowerInvariant is the lower-case counterpart of UpperInvariant.
func LowerInvariant(s string) string {
	return cases.Lower(language.Und).String(s)
}
