package dialect

import (
	"fmt"
	"strings"
)

// Tag names a SQL dialect and selects its quote strategy.
type Tag string

const (
	ANSI      Tag = "ansi"
	H2        Tag = "h2"
	MySQL     Tag = "mysql"
	Postgres  Tag = "postgres"
	SQLite    Tag = "sqlite"
	SQLServer Tag = "sqlserver"
)

var aliases = map[string]Tag{
	"postgresql": Postgres,
	"pg":         Postgres,
	"mariadb":    MySQL,
	"mssql":      SQLServer,
	"sqlite3":    SQLite,
}

// ParseTag normalizes a dialect name such as "PostgreSQL" or "h2".
func ParseTag(s string) (Tag, error) {
	name := LowerInvariant(strings.TrimSpace(s))
	if name == "" {
		return "", fmt.Errorf("empty dialect name")
	}
	if t, ok := aliases[name]; ok {
		return t, nil
	}
	switch t := Tag(name); t {
	case ANSI, H2, MySQL, Postgres, SQLite, SQLServer:
		return t, nil
	}
	return "", fmt.Errorf("unknown dialect %q", s)
}

func (t Tag) String() string { return string(t) }
