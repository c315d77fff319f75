package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"chatterhub/internal/domain/repositories"
)

// Driver keeps every collection in a single SQLite file next to the client.
// Each table holds (seq, id, data) where data is the JSON document.
type Driver struct {
	db     *sql.DB
	path   string
	tables *repositories.TableNames
	logger *slog.Logger
}

// Open creates or opens the SQLite store at path. The special path ":memory:"
// gives a private in-memory database.
func Open(ctx context.Context, path string, tables *repositories.TableNames, logger *slog.Logger) (*Driver, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: writes are serialized and ":memory:" stays a single database
	db.SetMaxOpenConns(1)

	d := &Driver{
		db:     db,
		path:   path,
		tables: tables,
		logger: logger,
	}

	if err := d.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return d, nil
}

// Path returns the database file path
func (d *Driver) Path() string {
	return d.path
}

func (d *Driver) initSchema(ctx context.Context) error {
	for _, c := range repositories.AllCollections {
		table := d.tables.For(c)
		stmts := []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				seq  INTEGER PRIMARY KEY AUTOINCREMENT,
				id   TEXT NOT NULL UNIQUE,
				data TEXT NOT NULL
			)`, table),
		}
		for _, field := range repositories.IndexedFields[c] {
			stmts = append(stmts, fmt.Sprintf(
				`CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (json_extract(data, '$.%s'))`,
				table, field, table, field,
			))
		}
		for _, stmt := range stmts {
			if _, err := d.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("create %s: %w", table, err)
			}
		}
	}
	return nil
}

// Get retrieves a document by id
func (d *Driver) Get(ctx context.Context, c repositories.Collection, id string) ([]byte, bool, error) {
	query := fmt.Sprintf(`SELECT data FROM %s WHERE id = ?`, d.tables.For(c))

	var doc string
	if err := d.db.QueryRowContext(ctx, query, id).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s %s: %w", c, id, err)
	}
	return []byte(doc), true, nil
}

// List returns documents matching the filter in insertion order
func (d *Driver) List(ctx context.Context, c repositories.Collection, f repositories.Filter) ([][]byte, error) {
	if err := f.Validate(c); err != nil {
		return nil, err
	}

	table := d.tables.For(c)
	var query string
	var args []any

	switch v := f.Value.(type) {
	case nil:
		if f.IsZero() {
			query = fmt.Sprintf(`SELECT data FROM %s ORDER BY seq ASC`, table)
		} else {
			query = fmt.Sprintf(`SELECT data FROM %s WHERE json_extract(data, '$.%s') IS NULL ORDER BY seq ASC`, table, f.Field)
		}
	case bool:
		// json_extract yields 1/0 for JSON booleans
		n := 0
		if v {
			n = 1
		}
		query = fmt.Sprintf(`SELECT data FROM %s WHERE json_extract(data, '$.%s') = ? ORDER BY seq ASC`, table, f.Field)
		args = append(args, n)
	case string:
		query = fmt.Sprintf(`SELECT data FROM %s WHERE json_extract(data, '$.%s') = ? ORDER BY seq ASC`, table, f.Field)
		args = append(args, v)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c, err)
		}
		docs = append(docs, []byte(doc))
	}
	return docs, rows.Err()
}

// Put upserts a document. ON CONFLICT keeps the row, so seq (insertion order) survives updates.
func (d *Driver) Put(ctx context.Context, c repositories.Collection, id string, doc []byte) error {
	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, data) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data
	`, d.tables.For(c))

	if _, err := d.db.ExecContext(ctx, stmt, id, string(doc)); err != nil {
		return fmt.Errorf("put %s %s: %w", c, id, err)
	}
	return nil
}

// Delete removes a document; a missing id is not an error
func (d *Driver) Delete(ctx context.Context, c repositories.Collection, id string) error {
	stmt := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, d.tables.For(c))
	if _, err := d.db.ExecContext(ctx, stmt, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", c, id, err)
	}
	return nil
}

// Close closes the database connection
func (d *Driver) Close() error {
	return d.db.Close()
}
