package config

import (
	"fmt"
	"os"
	"strings"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetSource() (*SourceData, error)
	GetAnalysis() (*AnalysisData, error)
	GetVessels() ([]VesselData, error)
	GetServer() (*ServerData, error)

	IsReadOnly() bool
	Close() error
}

// Source types
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
	SourceS3       = "s3"
)

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Source   SourceData   `json:"source"`
	Analysis AnalysisData `json:"analysis"`
	Vessels  []VesselData `json:"vessels,omitempty"`
	Server   ServerData   `json:"server"`
}

// SourceData describes where telemetry is read from. A secondary table, file or
// object with the same schema may be appended to the primary one.
type SourceData struct {
	Type             string  `json:"type"`
	Path             string  `json:"path,omitempty"`
	SecondaryPath    string  `json:"secondary_path,omitempty"`
	Delimiter        string  `json:"delimiter,omitempty"`
	ConnectionString string  `json:"connection_string,omitempty"`
	Table            string  `json:"table,omitempty"`
	SecondaryTable   string  `json:"secondary_table,omitempty"`
	S3               *S3Data `json:"s3,omitempty"`
}

type S3Data struct {
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty"`
	Bucket          string `json:"bucket"`
	Object          string `json:"object"`
	SecondaryObject string `json:"secondary_object,omitempty"`
	UseSSL          bool   `json:"use_ssl,omitempty"`
}

// AnalysisData holds the defaults for requests that don't override them
type AnalysisData struct {
	DefaultSpeedMetric  string `json:"default_speed_metric,omitempty"`
	ApplyValidityFilter bool   `json:"apply_validity_filter"`
	CorrectFOC          bool   `json:"correct_foc"`
	DefaultVesselCount  int    `json:"default_vessel_count,omitempty"`
}

// VesselData maps a vessel ID to its display name
type VesselData struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ServerData struct {
	ListenAddr    string `json:"listen_addr,omitempty"`
	Port          int    `json:"port,omitempty"`
	TLSCert       string `json:"tls_cert,omitempty"`
	TLSKey        string `json:"tls_key,omitempty"`
	EnableMetrics bool   `json:"enable_metrics,omitempty"`
}

// VesselNames returns the vessel lookup as a map
func (c *ConfigData) VesselNames() map[int]string {
	names := make(map[int]string, len(c.Vessels))
	for _, v := range c.Vessels {
		names[v.ID] = v.Name
	}
	return names
}

// ApplyDefaults fills in unset values
func (c *ConfigData) ApplyDefaults() {
	c.Source.Type = strings.ToLower(strings.TrimSpace(c.Source.Type))
	if c.Source.Type == "" {
		c.Source.Type = SourceCSV
	}

	if c.Analysis.DefaultSpeedMetric == "" {
		c.Analysis.DefaultSpeedMetric = "SpeedOG"
	}
	if c.Analysis.DefaultVesselCount <= 0 {
		c.Analysis.DefaultVesselCount = 3
	}

	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
}

// ExpandSecrets replaces ${VAR} references in paths, connection strings and
// credentials with values from the environment.
func (c *ConfigData) ExpandSecrets() {
	c.Source.Path = os.ExpandEnv(c.Source.Path)
	c.Source.SecondaryPath = os.ExpandEnv(c.Source.SecondaryPath)
	c.Source.ConnectionString = os.ExpandEnv(c.Source.ConnectionString)
	if c.Source.S3 != nil {
		c.Source.S3.Endpoint = os.ExpandEnv(c.Source.S3.Endpoint)
		c.Source.S3.AccessKeyID = os.ExpandEnv(c.Source.S3.AccessKeyID)
		c.Source.S3.SecretAccessKey = os.ExpandEnv(c.Source.S3.SecretAccessKey)
	}
}

// prepare runs the steps every provider applies after reading raw configuration
func (c *ConfigData) prepare() error {
	c.ApplyDefaults()
	c.ExpandSecrets()
	return c.Validate()
}

// Validate checks that the configured source is usable
func (c *ConfigData) Validate() error {
	s := c.Source
	switch s.Type {
	case SourceCSV:
		if s.Path == "" {
			return fmt.Errorf("source.path is required for csv sources")
		}
	case SourceSQLite:
		if s.Path == "" || s.Table == "" {
			return fmt.Errorf("source.path and source.table are required for sqlite sources")
		}
	case SourcePostgres:
		if s.ConnectionString == "" || s.Table == "" {
			return fmt.Errorf("source.connection_string and source.table are required for postgres sources")
		}
	case SourceS3:
		if s.S3 == nil || s.S3.Endpoint == "" || s.S3.Bucket == "" || s.S3.Object == "" {
			return fmt.Errorf("source.s3.endpoint, bucket and object are required for s3 sources")
		}
	default:
		return fmt.Errorf("unsupported source type %q (want csv, postgres, sqlite or s3)", s.Type)
	}

	if len(s.Delimiter) > 1 {
		return fmt.Errorf("source.delimiter must be a single character")
	}

	for _, v := range c.Vessels {
		if v.Name == "" {
			return fmt.Errorf("vessel %d has no name", v.ID)
		}
	}
	return nil
}
