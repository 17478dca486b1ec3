package source

import (
	"fmt"

	"github.com/chrissnell/powerspeed/pkg/config"
)

// NewLoaderFromConfig builds the primary and secondary sources described by the configuration
func NewLoaderFromConfig(sc config.SourceData) (*Loader, error) {
	delim := ','
	if sc.Delimiter != "" {
		delim = []rune(sc.Delimiter)[0]
	}

	switch sc.Type {
	case config.SourceCSV:
		primary := &CSVSource{Path: sc.Path, Delimiter: delim}
		var secondary Source
		if sc.SecondaryPath != "" {
			secondary = &CSVSource{Path: sc.SecondaryPath, Delimiter: delim}
		}
		return NewLoader(primary, secondary), nil

	case config.SourceSQLite:
		var secondary Source
		if sc.SecondaryTable != "" {
			secondary = NewSQLiteSource(sc.Path, sc.SecondaryTable)
		}
		return NewLoader(NewSQLiteSource(sc.Path, sc.Table), secondary), nil

	case config.SourcePostgres:
		// Both tables live in the same database and share one pool
		primary := NewPostgresSource(sc.ConnectionString, sc.Table)
		var secondary Source
		if sc.SecondaryTable != "" {
			secondary = &sharedPostgresSource{PostgresSource: primary, table: sc.SecondaryTable}
		}
		return NewLoader(primary, secondary), nil

	case config.SourceS3:
		if sc.S3 == nil {
			return nil, fmt.Errorf("s3 source requires an s3 section")
		}
		client, err := NewS3Client(S3Config{
			Endpoint:        sc.S3.Endpoint,
			AccessKeyID:     sc.S3.AccessKeyID,
			SecretAccessKey: sc.S3.SecretAccessKey,
			UseSSL:          sc.S3.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		primary := NewS3Source(client, sc.S3.Bucket, sc.S3.Object)
		primary.Delimiter = delim
		var secondary Source
		if sc.S3.SecondaryObject != "" {
			s := NewS3Source(client, sc.S3.Bucket, sc.S3.SecondaryObject)
			s.Delimiter = delim
			secondary = s
		}
		return NewLoader(primary, secondary), nil
	}

	return nil, fmt.Errorf("unsupported source type %q", sc.Type)
}
