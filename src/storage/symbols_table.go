package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
)

var tableRefRegex = regexp.MustCompile(`^(\w+)\.(\w+)\.(\w+)$`)

// TableRef points at a column holding one symbol per row.
type TableRef struct {
	Schema string
	Table  string
	Field  string
}

// ParseTableRef parses "schema.table.field".
func ParseTableRef(ref string) (TableRef, error) {
	matches := tableRefRegex.FindStringSubmatch(ref)
	if len(matches) != 4 {
		return TableRef{}, fmt.Errorf("invalid table reference %q, expected schema.table.field", ref)
	}
	return TableRef{Schema: matches[1], Table: matches[2], Field: matches[3]}, nil
}

// -----------------------------------------------------------------------------

// querySymbols reads non-empty symbols in row order. Identifiers are
// restricted to \w+ by ParseTableRef and quoted.
func querySymbols(ctx context.Context, db *sql.DB, ref TableRef) ([]string, error) {
	query := fmt.Sprintf(`SELECT "%s" FROM "%s"."%s"`, ref.Field, ref.Schema, ref.Table)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s sql.NullString
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		if s.Valid && s.String != "" {
			symbols = append(symbols, s.String)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return symbols, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) GetSymbolsFromTable(ctx context.Context, ref TableRef) ([]string, error) {
	return querySymbols(ctx, d.DB, ref)
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) GetSymbolsFromTable(ctx context.Context, ref TableRef) ([]string, error) {
	return querySymbols(ctx, d.DB, ref)
}
