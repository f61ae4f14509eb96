package repository

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"log/slog"
	"net/url"

	"entgo.io/ent/dialect"
	_ "modernc.org/sqlite"
)

// OpenSQLite opens the pure-Go SQLite database at path and creates the schema.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	dsn := "file:" + path + "?" + q.Encode()

	db, err := stdsql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := newSQLStore(db, dialect.SQLite, logger)
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("sqlite store opened", "path", path)
	return s, nil
}
