package consume

import (
	"database/sql"
	"fmt"

	"github.com/agentic-research/csvfeed/api"
	_ "modernc.org/sqlite"
)

// StreamRows reads back a table written by SQLiteLoader, calling fn once per
// row in rowid order. Only one row is held in memory at a time. NULL values
// are returned as empty strings.
func StreamRows(dbPath, table string, fn func(rec api.Record) error) error {
	if !api.ValidIdent(table) {
		return fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query(fmt.Sprintf("SELECT * FROM %s ORDER BY rowid", table))
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("columns: %w", err)
	}
	vals := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		rec := make(api.Record, len(cols))
		for i, c := range cols {
			rec[c] = vals[i].String
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}
	return nil
}
