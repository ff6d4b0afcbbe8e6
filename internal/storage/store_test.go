package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"venuepipe/internal/config"
	"venuepipe/internal/model"
)

func openSQLite(t *testing.T) Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "venue.db")
	store, err := NewStore(config.StorageConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return store
}

func count(t *testing.T, store Store, dest model.Destination) int {
	t.Helper()
	n, err := store.Count(context.Background(), dest)
	if err != nil {
		t.Fatalf("count %s: %v", dest, err)
	}
	return n
}

func insert(t *testing.T, store Store, row model.Row) (bool, error) {
	t.Helper()
	ctx := context.Background()
	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	inserted, err := tx.Insert(ctx, row)
	if err != nil {
		_ = tx.Rollback()
		return false, err
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return inserted, nil
}

func seed(t *testing.T, store Store) {
	t.Helper()
	rows := []model.Row{
		{Destination: model.DestReviews, Values: []any{"2023-11-14T10:00:00", 4, 5}},
		{Destination: model.DestEmergencies, Values: []any{"2023-11-14T11:00:00", 2}},
		{Destination: model.DestAssistances, Values: []any{"2023-11-14T12:00:00", 1}},
	}
	for _, row := range rows {
		if _, err := insert(t, store, row); err != nil {
			t.Fatalf("insert %s: %v", row.Destination, err)
		}
	}
}

func TestInsertRoutesToTable(t *testing.T) {
	store := openSQLite(t)
	seed(t, store)
	for _, dest := range model.Destinations {
		if n := count(t, store, dest); n != 1 {
			t.Fatalf("%s: %d rows", dest, n)
		}
	}
}

func TestDuplicateInsertIsNoop(t *testing.T) {
	store := openSQLite(t)
	row := model.Row{Destination: model.DestReviews, Values: []any{"2023-11-14T10:00:00", 4, 5}}
	inserted, err := insert(t, store, row)
	if err != nil || !inserted {
		t.Fatalf("first insert: %v %v", inserted, err)
	}
	inserted, err = insert(t, store, row)
	if err != nil {
		t.Fatalf("duplicate insert should not fail: %v", err)
	}
	if inserted {
		t.Fatalf("duplicate insert reported as inserted")
	}
	if n := count(t, store, model.DestReviews); n != 1 {
		t.Fatalf("reviews: %d rows", n)
	}

	// a different rating at the same time and site is a new review
	other := model.Row{Destination: model.DestReviews, Values: []any{"2023-11-14T10:00:00", 4, 3}}
	if inserted, err := insert(t, store, other); err != nil || !inserted {
		t.Fatalf("distinct rating: %v %v", inserted, err)
	}
}

func TestRollbackDiscardsRow(t *testing.T) {
	store := openSQLite(t)
	ctx := context.Background()
	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	row := model.Row{Destination: model.DestEmergencies, Values: []any{"2023-11-14T11:00:00", 2}}
	if inserted, err := tx.Insert(ctx, row); err != nil || !inserted {
		t.Fatalf("insert: %v %v", inserted, err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if n := count(t, store, model.DestEmergencies); n != 0 {
		t.Fatalf("rolled back row visible: %d", n)
	}
}

func TestResetEmptiesAllSinks(t *testing.T) {
	store := openSQLite(t)
	seed(t, store)
	ctx := context.Background()
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("second reset: %v", err)
	}
	for _, dest := range model.Destinations {
		if n := count(t, store, dest); n != 0 {
			t.Fatalf("%s not empty after reset: %d", dest, n)
		}
	}
}

func TestUnknownDestination(t *testing.T) {
	store := openSQLite(t)
	_, err := insert(t, store, model.Row{Destination: "visitors", Values: []any{"x", 1}})
	if !errors.Is(err, ErrUnknownDestination) {
		t.Fatalf("expected ErrUnknownDestination, got %v", err)
	}
	if _, err := store.Count(context.Background(), "visitors; DROP TABLE reviews"); !errors.Is(err, ErrUnknownDestination) {
		t.Fatalf("expected ErrUnknownDestination for count, got %v", err)
	}
}

func TestArityMismatch(t *testing.T) {
	store := openSQLite(t)
	_, err := insert(t, store, model.Row{Destination: model.DestEmergencies, Values: []any{"x", 1, 2}})
	if err == nil {
		t.Fatalf("expected arity error")
	}
}

func TestPostgresPlaceholders(t *testing.T) {
	store, err := NewPostgres("postgres://localhost:5432/venue?sslmode=disable")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	q, err := store.(*postgresStore).insertQuery(model.DestReviews, 3)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	want := "INSERT INTO reviews (at, site_id, rating_id) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING"
	if q != want {
		t.Fatalf("query: %s", q)
	}
}

func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("VENUEPIPE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("VENUEPIPE_TEST_POSTGRES_DSN not set")
	}
	store, err := NewPostgres(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	seed(t, store)
	seed(t, store)
	for _, dest := range model.Destinations {
		if n := count(t, store, dest); n != 1 {
			t.Fatalf("%s: %d rows", dest, n)
		}
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
}
