package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/TokDenis/folio/config"
	_ "modernc.org/sqlite"
	"os"
	"path/filepath"
)

// ViewStore persists view counts keyed by page path ("/slug", "/archive/slug").
type ViewStore interface {
	Increment(ctx context.Context, page string, n int64) error
	Get(ctx context.Context, page string) (int64, error)
	// All returns every page starting with prefix.
	All(ctx context.Context, prefix string) (map[string]int64, error)
	Close() error
}

// OpenViewStore opens the store selected by cfg.Store.
func OpenViewStore(cfg config.Config) (ViewStore, error) {
	switch cfg.Store {
	case config.StoreFile:
		return NewFileViewStore(cfg.StatsDir)
	case config.StoreSQLite:
		return NewSQLiteViewStore(cfg.DBPath)
	}
	return nil, fmt.Errorf("%w: %q", config.ErrUnknownStore, cfg.Store)
}

type SQLiteViewStore struct {
	db *sql.DB
}

const pageViewsSchema = `CREATE TABLE IF NOT EXISTS page_views (
	page  TEXT PRIMARY KEY,
	views INTEGER NOT NULL DEFAULT 0
)`

func NewSQLiteViewStore(path string) (*SQLiteViewStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open views db: %w", err)
	}
	// sqlite allows one writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(pageViewsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create page_views: %w", err)
	}

	return &SQLiteViewStore{db: db}, nil
}

func (s *SQLiteViewStore) Increment(ctx context.Context, page string, n int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO page_views (page, views) VALUES (?, ?)
		 ON CONFLICT(page) DO UPDATE SET views = views + excluded.views`, page, n)
	return err
}

func (s *SQLiteViewStore) Get(ctx context.Context, page string) (int64, error) {
	var views int64
	err := s.db.QueryRowContext(ctx, `SELECT views FROM page_views WHERE page = ?`, page).Scan(&views)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return views, err
}

func (s *SQLiteViewStore) All(ctx context.Context, prefix string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT page, views FROM page_views WHERE substr(page, 1, ?) = ?`, len(prefix), prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[string]int64)
	for rows.Next() {
		var page string
		var views int64
		if err := rows.Scan(&page, &views); err != nil {
			return nil, err
		}
		res[page] = views
	}

	return res, rows.Err()
}

func (s *SQLiteViewStore) Close() error {
	return s.db.Close()
}
