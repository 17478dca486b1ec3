package config

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// Schema creates the configuration tables. Each of source, analysis and server holds at most one row.
const Schema = `
CREATE TABLE IF NOT EXISTS source (
	id                     INTEGER PRIMARY KEY CHECK (id = 1),
	type                   TEXT NOT NULL,
	path                   TEXT,
	secondary_path         TEXT,
	delimiter              TEXT,
	connection_string      TEXT,
	table_name             TEXT,
	secondary_table        TEXT,
	s3_endpoint            TEXT,
	s3_access_key_id       TEXT,
	s3_secret_access_key   TEXT,
	s3_bucket              TEXT,
	s3_object              TEXT,
	s3_secondary_object    TEXT,
	s3_use_ssl             BOOLEAN DEFAULT 0
);
CREATE TABLE IF NOT EXISTS analysis (
	id                     INTEGER PRIMARY KEY CHECK (id = 1),
	default_speed_metric   TEXT,
	apply_validity_filter  BOOLEAN DEFAULT 0,
	correct_foc            BOOLEAN DEFAULT 0,
	default_vessel_count   INTEGER DEFAULT 0
);
CREATE TABLE IF NOT EXISTS vessels (
	id                     INTEGER PRIMARY KEY,
	name                   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS server (
	id                     INTEGER PRIMARY KEY CHECK (id = 1),
	listen_addr            TEXT,
	port                   INTEGER DEFAULT 0,
	tls_cert               TEXT,
	tls_key                TEXT,
	enable_metrics         BOOLEAN DEFAULT 0
);
`

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// CreateSchema creates the configuration tables if they do not exist
func (s *SQLiteProvider) CreateSchema() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create configuration schema: %w", err)
	}
	return nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	source, err := s.GetSource()
	if err != nil {
		return nil, fmt.Errorf("failed to load source config: %w", err)
	}
	config.Source = *source

	analysis, err := s.GetAnalysis()
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis config: %w", err)
	}
	config.Analysis = *analysis

	vessels, err := s.GetVessels()
	if err != nil {
		return nil, fmt.Errorf("failed to load vessels: %w", err)
	}
	config.Vessels = vessels

	server, err := s.GetServer()
	if err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	config.Server = *server

	if err := config.prepare(); err != nil {
		return nil, err
	}
	return config, nil
}

// GetSource returns the data source configuration
func (s *SQLiteProvider) GetSource() (*SourceData, error) {
	query := `
		SELECT type, path, secondary_path, delimiter, connection_string, table_name, secondary_table,
		       s3_endpoint, s3_access_key_id, s3_secret_access_key, s3_bucket, s3_object,
		       s3_secondary_object, s3_use_ssl
		FROM source WHERE id = 1
	`

	var (
		src                                                    SourceData
		path, secondaryPath, delimiter, connStr, table, table2 sql.NullString
		endpoint, keyID, secret, bucket, object, object2       sql.NullString
		useSSL                                                 sql.NullBool
	)
	err := s.db.QueryRow(query).Scan(&src.Type, &path, &secondaryPath, &delimiter, &connStr, &table, &table2,
		&endpoint, &keyID, &secret, &bucket, &object, &object2, &useSSL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no data source configured")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query source: %w", err)
	}

	src.Path = path.String
	src.SecondaryPath = secondaryPath.String
	src.Delimiter = delimiter.String
	src.ConnectionString = connStr.String
	src.Table = table.String
	src.SecondaryTable = table2.String
	if endpoint.Valid && endpoint.String != "" {
		src.S3 = &S3Data{
			Endpoint:        endpoint.String,
			AccessKeyID:     keyID.String,
			SecretAccessKey: secret.String,
			Bucket:          bucket.String,
			Object:          object.String,
			SecondaryObject: object2.String,
			UseSSL:          useSSL.Bool,
		}
	}
	return &src, nil
}

// GetAnalysis returns the analysis defaults. A missing row yields zero values.
func (s *SQLiteProvider) GetAnalysis() (*AnalysisData, error) {
	var (
		a      AnalysisData
		metric sql.NullString
	)
	err := s.db.QueryRow(`SELECT default_speed_metric, apply_validity_filter, correct_foc, default_vessel_count FROM analysis WHERE id = 1`).
		Scan(&metric, &a.ApplyValidityFilter, &a.CorrectFOC, &a.DefaultVesselCount)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query analysis: %w", err)
	}
	a.DefaultSpeedMetric = metric.String
	return &a, nil
}

// GetVessels returns the vessel name table ordered by ID
func (s *SQLiteProvider) GetVessels() ([]VesselData, error) {
	rows, err := s.db.Query(`SELECT id, name FROM vessels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vessels: %w", err)
	}
	defer rows.Close()

	var vessels []VesselData
	for rows.Next() {
		var v VesselData
		if err := rows.Scan(&v.ID, &v.Name); err != nil {
			return nil, fmt.Errorf("failed to scan vessel: %w", err)
		}
		vessels = append(vessels, v)
	}
	return vessels, rows.Err()
}

// GetServer returns the HTTP server configuration. A missing row yields zero values.
func (s *SQLiteProvider) GetServer() (*ServerData, error) {
	var (
		srv             ServerData
		addr, cert, key sql.NullString
	)
	err := s.db.QueryRow(`SELECT listen_addr, port, tls_cert, tls_key, enable_metrics FROM server WHERE id = 1`).
		Scan(&addr, &srv.Port, &cert, &key, &srv.EnableMetrics)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query server: %w", err)
	}
	srv.ListenAddr = addr.String
	srv.TLSCert = cert.String
	srv.TLSKey = key.String
	return &srv, nil
}

// IsReadOnly returns false since SQLite supports read/write operations
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveConfig replaces the stored configuration with configData
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"source", "analysis", "vessels", "server"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	src := configData.Source
	s3 := src.S3
	if s3 == nil {
		s3 = &S3Data{}
	}
	_, err = tx.Exec(`
		INSERT INTO source (id, type, path, secondary_path, delimiter, connection_string, table_name, secondary_table,
		                    s3_endpoint, s3_access_key_id, s3_secret_access_key, s3_bucket, s3_object,
		                    s3_secondary_object, s3_use_ssl)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		src.Type, nullString(src.Path), nullString(src.SecondaryPath), nullString(src.Delimiter),
		nullString(src.ConnectionString), nullString(src.Table), nullString(src.SecondaryTable),
		nullString(s3.Endpoint), nullString(s3.AccessKeyID), nullString(s3.SecretAccessKey),
		nullString(s3.Bucket), nullString(s3.Object), nullString(s3.SecondaryObject), s3.UseSSL)
	if err != nil {
		return fmt.Errorf("failed to insert source: %w", err)
	}

	a := configData.Analysis
	_, err = tx.Exec(`INSERT INTO analysis (id, default_speed_metric, apply_validity_filter, correct_foc, default_vessel_count) VALUES (1, ?, ?, ?, ?)`,
		nullString(a.DefaultSpeedMetric), a.ApplyValidityFilter, a.CorrectFOC, a.DefaultVesselCount)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	for _, v := range configData.Vessels {
		if _, err := tx.Exec(`INSERT INTO vessels (id, name) VALUES (?, ?)`, v.ID, v.Name); err != nil {
			return fmt.Errorf("failed to insert vessel %d: %w", v.ID, err)
		}
	}

	srv := configData.Server
	_, err = tx.Exec(`INSERT INTO server (id, listen_addr, port, tls_cert, tls_key, enable_metrics) VALUES (1, ?, ?, ?, ?, ?)`,
		nullString(srv.ListenAddr), srv.Port, nullString(srv.TLSCert), nullString(srv.TLSKey), srv.EnableMetrics)
	if err != nil {
		return fmt.Errorf("failed to insert server: %w", err)
	}

	return tx.Commit()
}

// Helper functions for handling nullable fields
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
