package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

type sourceYAML struct {
	Type             string  `yaml:"type"`
	Path             string  `yaml:"path,omitempty"`
	SecondaryPath    string  `yaml:"secondary-path,omitempty"`
	Delimiter        string  `yaml:"delimiter,omitempty"`
	ConnectionString string  `yaml:"connection-string,omitempty"`
	Table            string  `yaml:"table,omitempty"`
	SecondaryTable   string  `yaml:"secondary-table,omitempty"`
	S3               *s3YAML `yaml:"s3,omitempty"`
}

type s3YAML struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access-key-id,omitempty"`
	SecretAccessKey string `yaml:"secret-access-key,omitempty"`
	Bucket          string `yaml:"bucket"`
	Object          string `yaml:"object"`
	SecondaryObject string `yaml:"secondary-object,omitempty"`
	UseSSL          bool   `yaml:"use-ssl,omitempty"`
}

type analysisYAML struct {
	DefaultSpeedMetric  string `yaml:"default-speed-metric,omitempty"`
	ApplyValidityFilter bool   `yaml:"apply-validity-filter"`
	CorrectFOC          bool   `yaml:"correct-foc"`
	DefaultVesselCount  int    `yaml:"default-vessel-count,omitempty"`
}

type vesselYAML struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

type serverYAML struct {
	ListenAddr    string `yaml:"listen-addr,omitempty"`
	Port          int    `yaml:"port,omitempty"`
	TLSCert       string `yaml:"tls-cert,omitempty"`
	TLSKey        string `yaml:"tls-key,omitempty"`
	EnableMetrics bool   `yaml:"enable-metrics,omitempty"`
}

// LoadConfig loads the complete configuration from YAML file, with defaults
// applied and secrets expanded
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	if y.config != nil {
		return y.config, nil
	}

	config, err := y.LoadRawConfig()
	if err != nil {
		return nil, err
	}
	if err := config.prepare(); err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

// LoadRawConfig reads the YAML file as written, without defaults or
// environment expansion. Used when converting to another backend.
func (y *YAMLProvider) LoadRawConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Source   sourceYAML   `yaml:"source"`
		Analysis analysisYAML `yaml:"analysis,omitempty"`
		Vessels  []vesselYAML `yaml:"vessels,omitempty"`
		Server   serverYAML   `yaml:"server,omitempty"`
	}

	err = yaml.UnmarshalStrict(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Source: SourceData{
			Type:             yamlConfig.Source.Type,
			Path:             yamlConfig.Source.Path,
			SecondaryPath:    yamlConfig.Source.SecondaryPath,
			Delimiter:        yamlConfig.Source.Delimiter,
			ConnectionString: yamlConfig.Source.ConnectionString,
			Table:            yamlConfig.Source.Table,
			SecondaryTable:   yamlConfig.Source.SecondaryTable,
		},
		Analysis: AnalysisData{
			DefaultSpeedMetric:  yamlConfig.Analysis.DefaultSpeedMetric,
			ApplyValidityFilter: yamlConfig.Analysis.ApplyValidityFilter,
			CorrectFOC:          yamlConfig.Analysis.CorrectFOC,
			DefaultVesselCount:  yamlConfig.Analysis.DefaultVesselCount,
		},
		Vessels: make([]VesselData, len(yamlConfig.Vessels)),
		Server: ServerData{
			ListenAddr:    yamlConfig.Server.ListenAddr,
			Port:          yamlConfig.Server.Port,
			TLSCert:       yamlConfig.Server.TLSCert,
			TLSKey:        yamlConfig.Server.TLSKey,
			EnableMetrics: yamlConfig.Server.EnableMetrics,
		},
	}

	if s3 := yamlConfig.Source.S3; s3 != nil {
		config.Source.S3 = &S3Data{
			Endpoint:        s3.Endpoint,
			AccessKeyID:     s3.AccessKeyID,
			SecretAccessKey: s3.SecretAccessKey,
			Bucket:          s3.Bucket,
			Object:          s3.Object,
			SecondaryObject: s3.SecondaryObject,
			UseSSL:          s3.UseSSL,
		}
	}

	for i, v := range yamlConfig.Vessels {
		config.Vessels[i] = VesselData{ID: v.ID, Name: v.Name}
	}

	return config, nil
}

// GetSource returns the data source configuration
func (y *YAMLProvider) GetSource() (*SourceData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Source, nil
}

// GetAnalysis returns the analysis defaults
func (y *YAMLProvider) GetAnalysis() (*AnalysisData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Analysis, nil
}

// GetVessels returns the vessel name table
func (y *YAMLProvider) GetVessels() ([]VesselData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return config.Vessels, nil
}

// GetServer returns the HTTP server configuration
func (y *YAMLProvider) GetServer() (*ServerData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Server, nil
}

// IsReadOnly returns true since YAML files are read-only
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}
