package source

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/chrissnell/powerspeed/internal/database"
)

// pgUndefinedTable is the SQLSTATE for a missing relation
const pgUndefinedTable = "42P01"

// PostgresSource scans a PostgreSQL/TimescaleDB table. The connection pool is
// opened on first use and shared by later loads; rows are re-read every time.
type PostgresSource struct {
	ConnectionString string
	Table            string

	mu sync.Mutex
	db *gorm.DB
}

// NewPostgresSource creates a table source
func NewPostgresSource(connectionString, table string) *PostgresSource {
	return &PostgresSource{ConnectionString: connectionString, Table: table}
}

func (p *PostgresSource) Name() string {
	return "postgres:" + p.Table
}

func (p *PostgresSource) conn(ctx context.Context) (*gorm.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db != nil {
		return p.db, nil
	}
	db, err := database.CreateConnection(ctx, p.ConnectionString)
	if err != nil {
		return nil, err
	}
	p.db = db
	return db, nil
}

func (p *PostgresSource) fetch(ctx context.Context) (*frame, error) {
	return p.fetchTable(ctx, p.Name(), p.Table)
}

func (p *PostgresSource) fetchTable(ctx context.Context, name, table string) (*frame, error) {
	if err := ctxErr(ctx, name); err != nil {
		return nil, err
	}

	db, err := p.conn(ctx)
	if err != nil {
		return nil, unavailable(name, err)
	}

	rows, err := db.WithContext(ctx).Table(table).Select("*").Rows()
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
			return nil, unavailable(name, err)
		}
		return nil, loadFailure(name, err)
	}
	defer rows.Close()

	f, err := readSQLFrame(rows)
	if err != nil {
		return nil, loadFailure(name, err)
	}
	return f, nil
}

// Close releases the connection pool
func (p *PostgresSource) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	database.Close(p.db)
	p.db = nil
	return nil
}

// sharedPostgresSource reads a second table through another source's pool
type sharedPostgresSource struct {
	*PostgresSource
	table string
}

func (s *sharedPostgresSource) Name() string {
	return "postgres:" + s.table
}

func (s *sharedPostgresSource) fetch(ctx context.Context) (*frame, error) {
	return s.fetchTable(ctx, s.Name(), s.table)
}

// Close is a no-op; the owning source closes the pool
func (s *sharedPostgresSource) Close() error {
	return nil
}
