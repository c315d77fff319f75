package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chatterhub/internal/domain/repositories"
)

// Driver stores every collection as a JSONB document table in PostgreSQL
type Driver struct {
	pool   *pgxpool.Pool
	db     DBTX
	tables *repositories.TableNames
	logger *slog.Logger
}

// NewDriver creates a postgres driver and ensures the schema exists
func NewDriver(ctx context.Context, config *RepositoryConfig) (*Driver, error) {
	d := &Driver{
		pool:   config.Pool,
		db:     config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
	if err := d.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// EnsureSchema creates the collection tables and their indexes in one transaction
func (d *Driver) EnsureSchema(ctx context.Context) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			d.logger.Warn("schema rollback failed", "error", err)
		}
	}()

	for _, c := range repositories.AllCollections {
		table := d.tables.For(c)
		stmts := []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				seq  BIGSERIAL NOT NULL,
				id   TEXT PRIMARY KEY,
				data JSONB NOT NULL
			)`, table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_seq_idx ON %s (seq)`, table, table),
		}
		for _, field := range repositories.IndexedFields[c] {
			stmts = append(stmts, fmt.Sprintf(
				`CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s ((data->>'%s'))`,
				table, field, table, field,
			))
		}
		for _, stmt := range stmts {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("create %s schema: %w", table, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Get retrieves a document by id
func (d *Driver) Get(ctx context.Context, c repositories.Collection, id string) ([]byte, bool, error) {
	query := fmt.Sprintf(`SELECT data FROM %s WHERE id = $1`, d.tables.For(c))

	var doc []byte
	err := d.db.QueryRow(ctx, query, id).Scan(&doc)
	if err != nil {
		if isPgNoRowsError(err) || isPgUndefinedTableError(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s %s: %w", c, id, err)
	}
	return doc, true, nil
}

// List returns documents matching the filter in insertion order
func (d *Driver) List(ctx context.Context, c repositories.Collection, f repositories.Filter) ([][]byte, error) {
	if err := f.Validate(c); err != nil {
		return nil, err
	}

	var query string
	var args []interface{}
	table := d.tables.For(c)

	switch text, ok := f.TextValue(); {
	case f.IsZero():
		query = fmt.Sprintf(`SELECT data FROM %s ORDER BY seq ASC`, table)
	case !ok:
		query = fmt.Sprintf(`SELECT data FROM %s WHERE data->>'%s' IS NULL ORDER BY seq ASC`, table, f.Field)
	default:
		query = fmt.Sprintf(`SELECT data FROM %s WHERE data->>'%s' = $1 ORDER BY seq ASC`, table, f.Field)
		args = append(args, text)
	}

	rows, err := d.db.Query(ctx, query, args...)
	if err != nil {
		if isPgUndefinedTableError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", c, err)
	}

	return docs, nil
}

// Put upserts a document, keeping its original seq on replace
func (d *Driver) Put(ctx context.Context, c repositories.Collection, id string, doc []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, data)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data
	`, d.tables.For(c))

	if _, err := d.db.Exec(ctx, query, id, string(doc)); err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("put %s %s: concurrent insert: %w", c, id, err)
		}
		return fmt.Errorf("put %s %s: %w", c, id, err)
	}
	return nil
}

// Delete removes a document; a missing id is not an error
func (d *Driver) Delete(ctx context.Context, c repositories.Collection, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, d.tables.For(c))
	if _, err := d.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", c, id, err)
	}
	return nil
}

// Close closes the connection pool
func (d *Driver) Close() error {
	d.pool.Close()
	return nil
}
