// Package postgres holds the pgx-backed repositories. Query building goes
// through squirrel, scanning through pgxscan; status transitions are
// conditional updates keyed on the current status so racing writers cannot
// both commit.
package postgres

import (
	"helplink/internal/utils"

	sq "github.com/Masterminds/squirrel"
)

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// writableColumns strips derived (read-only) columns from a column list.
func writableColumns(all []string, derived []string) []string {
	out := all
	for _, column := range derived {
		out = utils.FilterSliceString(out, column)
	}
	return out
}

// writableMap strips derived columns from an insert/update map.
func writableMap(m map[string]any, derived []string) map[string]any {
	for _, column := range derived {
		delete(m, column)
	}
	return m
}
