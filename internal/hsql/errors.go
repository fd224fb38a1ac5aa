package hsql

import (
	"errors"
	"fmt"

	"github.com/atlekbai/sqlrender/internal/dialect"
)

var (
	ErrSentinelInName  = errors.New("identifier component contains the escape sentinel")
	ErrNoComponents    = errors.New("identifier has no components")
	ErrEmptyIdent      = errors.New("empty identifier")
	ErrNilExpr         = errors.New("nil expression")
	ErrNonFinite       = errors.New("number is not finite")
	ErrZeroDenominator = errors.New("rational with zero denominator")
	ErrArity           = errors.New("wrong number of arguments")
	ErrUnknownDialect  = errors.New("no quote strategy registered for dialect")

	// ErrFrozen is shared with the quote registry so one errors.Is check covers both.
	ErrFrozen = dialect.ErrFrozen
)

func arityError(name string, want string, got int) error {
	return fmt.Errorf("%s: %w: want %s, got %d", name, ErrArity, want, got)
}
