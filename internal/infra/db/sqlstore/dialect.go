package sqlstore

import (
	"strconv"
	"strings"
)

// Dialect selects placeholder style and insert-id strategy for one SQL backend.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// Rebind rewrites `?` placeholders into `$1..$n` for PostgreSQL.
// Queries in this package never contain literal question marks.
func (d Dialect) Rebind(q string) string {
	if d != Postgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// returning reports whether INSERT ... RETURNING id is supported.
func (d Dialect) returning() bool {
	return d == SQLite || d == Postgres
}
