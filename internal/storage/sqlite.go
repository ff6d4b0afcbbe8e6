package storage

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	baseStore
}

func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:venue.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return &sqliteStore{baseStore{
		db:          db,
		placeholder: func(int) string { return "?" },
	}}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	return s.exec(ctx, []string{
		`CREATE TABLE IF NOT EXISTS reviews (
			at TEXT NOT NULL,
			site_id INTEGER NOT NULL,
			rating_id INTEGER NOT NULL,
			UNIQUE (at, site_id, rating_id)
		)`,
		`CREATE TABLE IF NOT EXISTS emergencies (
			at TEXT NOT NULL,
			site_id INTEGER NOT NULL,
			UNIQUE (at, site_id)
		)`,
		`CREATE TABLE IF NOT EXISTS assistances (
			at TEXT NOT NULL,
			site_id INTEGER NOT NULL,
			UNIQUE (at, site_id)
		)`,
	})
}

func (s *sqliteStore) Reset(ctx context.Context) error {
	return s.exec(ctx, []string{
		`DELETE FROM reviews`,
		`DELETE FROM assistances`,
		`DELETE FROM emergencies`,
	})
}
