package storage

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type postgresStore struct {
	baseStore
}

func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/venue?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &postgresStore{baseStore{
		db:          db,
		placeholder: func(i int) string { return "$" + strconv.Itoa(i) },
	}}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	return s.exec(ctx, []string{
		`CREATE TABLE IF NOT EXISTS reviews (
			at TIMESTAMP NOT NULL,
			site_id SMALLINT NOT NULL,
			rating_id SMALLINT NOT NULL,
			UNIQUE (at, site_id, rating_id)
		)`,
		`CREATE TABLE IF NOT EXISTS emergencies (
			at TIMESTAMP NOT NULL,
			site_id SMALLINT NOT NULL,
			UNIQUE (at, site_id)
		)`,
		`CREATE TABLE IF NOT EXISTS assistances (
			at TIMESTAMP NOT NULL,
			site_id SMALLINT NOT NULL,
			UNIQUE (at, site_id)
		)`,
	})
}

func (s *postgresStore) Reset(ctx context.Context) error {
	return s.exec(ctx, []string{`TRUNCATE TABLE reviews, assistances, emergencies`})
}
