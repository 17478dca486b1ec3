package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteSource scans a table in a local SQLite database file
type SQLiteSource struct {
	Path  string
	Table string
}

// NewSQLiteSource creates a SQLite table source
func NewSQLiteSource(path, table string) *SQLiteSource {
	return &SQLiteSource{Path: path, Table: table}
}

func (s *SQLiteSource) Name() string {
	return "sqlite:" + s.Path + "#" + s.Table
}

func (s *SQLiteSource) fetch(ctx context.Context) (*frame, error) {
	if err := ctxErr(ctx, s.Name()); err != nil {
		return nil, err
	}

	// The driver would silently create a missing database file
	if _, err := os.Stat(s.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, unavailable(s.Name(), err)
		}
		return nil, loadFailure(s.Name(), err)
	}

	db, err := sql.Open("sqlite", "file:"+s.Path+"?mode=ro")
	if err != nil {
		return nil, unavailable(s.Name(), fmt.Errorf("failed to open SQLite database: %w", err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, unavailable(s.Name(), fmt.Errorf("failed to ping SQLite database: %w", err))
	}

	query := fmt.Sprintf(`SELECT * FROM "%s"`, strings.ReplaceAll(s.Table, `"`, `""`))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return nil, unavailable(s.Name(), err)
		}
		return nil, loadFailure(s.Name(), err)
	}
	defer rows.Close()

	f, err := readSQLFrame(rows)
	if err != nil {
		return nil, loadFailure(s.Name(), err)
	}
	return f, nil
}
