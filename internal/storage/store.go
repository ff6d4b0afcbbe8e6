package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"venuepipe/internal/config"
	"venuepipe/internal/model"
)

var (
	ErrCommit             = errors.New("commit failed")
	ErrUnknownDestination = errors.New("unknown destination")
)

type Store interface {
	Init(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
	Begin(ctx context.Context) (Tx, error)
	Reset(ctx context.Context) error
	Count(ctx context.Context, dest model.Destination) (int, error)
}

// Tx is one unit of work. Rows whose natural key already exists are ignored
// and report inserted == false.
type Tx interface {
	Insert(ctx context.Context, row model.Row) (inserted bool, err error)
	Commit() error
	Rollback() error
}

func NewStore(cfg config.StorageConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		return NewSQLite(cfg.DSN)
	case "postgres", "postgresql":
		return NewPostgres(cfg.PostgresDSN())
	default:
		return nil, errors.New("unsupported storage driver")
	}
}

var sinkColumns = map[model.Destination][]string{
	model.DestReviews:     {"at", "site_id", "rating_id"},
	model.DestEmergencies: {"at", "site_id"},
	model.DestAssistances: {"at", "site_id"},
}

type baseStore struct {
	db          *sql.DB
	placeholder func(i int) string
}

func (b *baseStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func (b *baseStore) Ping(ctx context.Context) error {
	if b.db == nil {
		return errors.New("storage not opened")
	}
	return b.db.PingContext(ctx)
}

func (b *baseStore) insertQuery(dest model.Destination, n int) (string, error) {
	cols, ok := sinkColumns[dest]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDestination, dest)
	}
	if n != len(cols) {
		return "", fmt.Errorf("%s expects %d values, got %d", dest, len(cols), n)
	}
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = b.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING",
		dest, strings.Join(cols, ", "), strings.Join(marks, ", ")), nil
}

func (b *baseStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &sqlTx{tx: tx, store: b}, nil
}

type sqlTx struct {
	tx    *sql.Tx
	store *baseStore
}

func (t *sqlTx) Insert(ctx context.Context, row model.Row) (bool, error) {
	query, err := t.store.insertQuery(row.Destination, len(row.Values))
	if err != nil {
		return false, err
	}
	res, err := t.tx.ExecContext(ctx, query, row.Values...)
	if err != nil {
		return false, fmt.Errorf("insert into %s: %w", row.Destination, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return true, nil
	}
	return affected > 0, nil
}

func (t *sqlTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommit, err)
	}
	return nil
}

func (t *sqlTx) Rollback() error {
	return t.tx.Rollback()
}

func (b *baseStore) Count(ctx context.Context, dest model.Destination) (int, error) {
	if _, ok := sinkColumns[dest]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDestination, dest)
	}
	var n int
	err := b.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+string(dest)).Scan(&n)
	return n, err
}

func (b *baseStore) exec(ctx context.Context, stmts []string) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
