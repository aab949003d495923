package consume

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/agentic-research/csvfeed/api"
	"github.com/agentic-research/csvfeed/internal/ingest"
	"github.com/agentic-research/csvfeed/internal/logger"
	_ "modernc.org/sqlite"
)

var _ ingest.Consumer[int64] = (*SQLiteLoader)(nil)

// ErrLoaderClosed is reported by a SQLiteLoader used after Close.
var ErrLoaderClosed = errors.New("sqlite: loader is closed")

// SQLiteLoader inserts every accepted line as a row of a SQLite table.
//
// The table is created from the schema when the loader is opened and all rows
// of a run are written in one transaction. DoneProcessing commits; Close rolls
// back an uncommitted transaction and must be called on every path. A loader
// may serve several runs: each Initialize starts a fresh transaction, rolling
// back whatever a failed previous run left behind.
type SQLiteLoader struct {
	Header bool // skip the first accepted line

	db     *sql.DB
	tx     *sql.Tx
	stmt   *sql.Stmt
	schema *api.Schema
	log    logger.Logger

	skipHeader bool
	runs       int
	rows       int64
	runErr     error // why the current run cannot write
	err        error // deferred commit error, reported by Close
}

// NewSQLiteLoader opens (or creates) the database at dbPath and prepares the
// schema's table. Existing rows are kept; rows with an existing primary key
// are replaced.
func NewSQLiteLoader(dbPath string, schema *api.Schema, log logger.Logger) (*SQLiteLoader, error) {
	if log == nil {
		log = logger.NopLogger
	}
	if schema == nil || schema.Table == "" {
		return nil, errors.New("sqlite loader: schema with a table name is required")
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("sqlite loader: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	db.SetMaxOpenConns(1)

	// Bulk load tuning, same as a one-shot import.
	for _, pragma := range []string{"PRAGMA synchronous = OFF", "PRAGMA journal_mode = MEMORY"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(createTableSQL(schema)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create table %s: %w", schema.Table, err)
	}

	l := &SQLiteLoader{db: db, schema: schema, log: log}
	if err := l.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

func createTableSQL(s *api.Schema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", s.Table)
	var keys []string
	for i, c := range s.Columns {
		typ := c.Type
		if typ == "" {
			typ = "TEXT"
		}
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "\t%s %s", c.Name, typ)
		if c.Key {
			keys = append(keys, c.Name)
		}
	}
	if len(keys) > 0 {
		fmt.Fprintf(&b, ",\n\tPRIMARY KEY (%s)", strings.Join(keys, ", "))
	}
	b.WriteString("\n)")
	return b.String()
}

func insertSQL(s *api.Schema) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(s.Columns)), ", ")
	return fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		s.Table, strings.Join(s.Names(), ", "), marks)
}

func (l *SQLiteLoader) beginTx() error {
	var err error
	l.tx, err = l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	l.stmt, err = l.tx.Prepare(insertSQL(l.schema))
	if err != nil {
		_ = l.tx.Rollback()
		l.tx = nil
		return fmt.Errorf("prepare insert: %w", err)
	}
	return nil
}

func (l *SQLiteLoader) rollbackTx() error {
	_ = l.stmt.Close()
	l.stmt = nil
	tx := l.tx
	l.tx = nil
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	l.log.Warnf("sqlite: rolled back %d rows for %s", l.rows, l.schema.Table)
	return nil
}

func (l *SQLiteLoader) Initialize() {
	l.runErr = nil
	switch {
	case l.db == nil:
		l.runErr = ErrLoaderClosed
	case l.tx != nil && l.runs > 0:
		// A previous run failed without Close; drop its rows.
		if err := l.rollbackTx(); err != nil {
			l.runErr = err
			break
		}
		l.runErr = l.beginTx()
	case l.tx == nil:
		l.runErr = l.beginTx()
	}
	l.runs++
	l.rows = 0
	l.skipHeader = l.Header
	l.log.Debugf("sqlite: loading into %s", l.schema.Table)
}

func (l *SQLiteLoader) ProcessLine(tokens []string) error {
	if l.runErr != nil {
		return l.runErr
	}
	if l.skipHeader {
		l.skipHeader = false
		return nil
	}
	if len(tokens) != len(l.schema.Columns) {
		return ingest.Malformed("want %d tokens, got %d", len(l.schema.Columns), len(tokens))
	}

	args := make([]any, len(tokens))
	for i, c := range l.schema.Columns {
		v, err := convert(c, tokens[i])
		if err != nil {
			return err
		}
		args[i] = v
	}
	if _, err := l.stmt.Exec(args...); err != nil {
		return fmt.Errorf("insert into %s: %w", l.schema.Table, err)
	}
	l.rows++
	return nil
}

func convert(c api.Column, tok string) (any, error) {
	switch c.Type {
	case "INTEGER":
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, ingest.Malformed("column %s: %q is not an integer", c.Name, tok)
		}
		return n, nil
	case "REAL":
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, ingest.Malformed("column %s: %q is not a number", c.Name, tok)
		}
		return f, nil
	}
	return tok, nil
}

// DoneProcessing commits the run and returns the number of rows inserted. A
// commit failure, or a run that never had a transaction, is logged and
// returned by Close.
func (l *SQLiteLoader) DoneProcessing() int64 {
	err := l.runErr
	if err == nil {
		err = l.commitTx()
	}
	if err != nil {
		l.log.Errorf("sqlite: commit %s failed: %v", l.schema.Table, err)
		if l.err == nil {
			l.err = err
		}
		return 0
	}
	l.log.Infof("sqlite: %d rows loaded into %s", l.rows, l.schema.Table)
	return l.rows
}

func (l *SQLiteLoader) commitTx() error {
	if l.tx == nil {
		return errors.New("no open transaction")
	}
	_ = l.stmt.Close()
	l.stmt = nil
	tx := l.tx
	l.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close rolls back any uncommitted rows, closes the database and returns the
// first deferred error.
func (l *SQLiteLoader) Close() error {
	if l.tx != nil {
		if err := l.rollbackTx(); err != nil && l.err == nil {
			l.err = err
		}
	}
	if l.db != nil {
		if err := l.db.Close(); err != nil && l.err == nil {
			l.err = fmt.Errorf("close: %w", err)
		}
		l.db = nil
	}
	return l.err
}
