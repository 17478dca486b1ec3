package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleYAML = `
source:
  type: postgres
  connection-string: postgres://fleet:${POWERSPEED_TEST_DB_PASSWORD}@db:5432/telemetry
  table: combined_output_merged_input_nanremoved
  secondary-table: extra_vessels
analysis:
  default-speed-metric: SpeedTW
  apply-validity-filter: true
  correct-foc: true
vessels:
  - id: 1023
    name: MH Perseus
  - id: 1005
    name: PISCES
server:
  port: 9090
  enable-metrics: true
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestYAMLProvider(t *testing.T) {
	t.Setenv("POWERSPEED_TEST_DB_PASSWORD", "s3cret")
	p := NewYAMLProvider(writeFile(t, "config.yaml", sampleYAML))

	cfg, err := p.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !strings.Contains(cfg.Source.ConnectionString, ":s3cret@") {
		t.Errorf("connection string not expanded: %q", cfg.Source.ConnectionString)
	}
	if cfg.Source.SecondaryTable != "extra_vessels" {
		t.Errorf("secondary table = %q", cfg.Source.SecondaryTable)
	}
	if cfg.Analysis.DefaultSpeedMetric != "SpeedTW" || !cfg.Analysis.ApplyValidityFilter || !cfg.Analysis.CorrectFOC {
		t.Errorf("analysis = %+v", cfg.Analysis)
	}
	// Defaults fill what the file leaves out
	if cfg.Analysis.DefaultVesselCount != 3 || cfg.Server.ListenAddr != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("defaults not applied: %+v %+v", cfg.Analysis, cfg.Server)
	}
	want := map[int]string{1023: "MH Perseus", 1005: "PISCES"}
	if got := cfg.VesselNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("VesselNames = %v", got)
	}

	raw, err := p.LoadRawConfig()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(raw.Source.ConnectionString, "${POWERSPEED_TEST_DB_PASSWORD}") {
		t.Errorf("raw config should keep the reference, got %q", raw.Source.ConnectionString)
	}

	if !p.IsReadOnly() {
		t.Error("YAML provider should be read-only")
	}
}

func TestYAMLProviderErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "source:\n  type: csv\n  path: a.csv\n  colour: red\n"},
		{"csv without path", "source:\n  type: csv\n"},
		{"unknown type", "source:\n  type: mongodb\n  path: x\n"},
		{"s3 without bucket", "source:\n  type: s3\n  s3:\n    endpoint: localhost:9000\n    object: data.csv\n"},
		{"long delimiter", "source:\n  type: csv\n  path: a.csv\n  delimiter: ';;'\n"},
		{"unnamed vessel", "source:\n  type: csv\n  path: a.csv\nvessels:\n  - id: 5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewYAMLProvider(writeFile(t, "config.yaml", tt.yaml))
			if _, err := p.LoadConfig(); err == nil {
				t.Error("expected an error")
			}
		})
	}

	if _, err := NewYAMLProvider(filepath.Join(t.TempDir(), "missing.yaml")).LoadConfig(); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestSQLiteProviderRoundTrip(t *testing.T) {
	t.Setenv("POWERSPEED_TEST_S3_SECRET", "hunter2")

	p, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if err := p.CreateSchema(); err != nil {
		t.Fatal(err)
	}

	// No source row yet
	if _, err := p.LoadConfig(); err == nil {
		t.Error("expected an error before any configuration is saved")
	}

	in := &ConfigData{
		Source: SourceData{
			Type:      SourceS3,
			Delimiter: ";",
			S3: &S3Data{
				Endpoint:        "minio:9000",
				AccessKeyID:     "fleet",
				SecretAccessKey: "${POWERSPEED_TEST_S3_SECRET}",
				Bucket:          "telemetry",
				Object:          "combined.csv",
				SecondaryObject: "extra.csv",
			},
		},
		Analysis: AnalysisData{DefaultSpeedMetric: "SpeedOG", ApplyValidityFilter: true, DefaultVesselCount: 2},
		Vessels:  []VesselData{{ID: 1017, Name: "CETUS"}, {ID: 1004, Name: "CASSIOPEIA*"}},
		Server:   ServerData{ListenAddr: "127.0.0.1", Port: 8181},
	}
	if err := p.SaveConfig(in); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	out, err := p.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if out.Source.Type != SourceS3 || out.Source.Delimiter != ";" || out.Source.S3 == nil {
		t.Fatalf("source = %+v", out.Source)
	}
	if out.Source.S3.SecretAccessKey != "hunter2" || out.Source.S3.SecondaryObject != "extra.csv" {
		t.Errorf("s3 = %+v", out.Source.S3)
	}
	if out.Analysis != in.Analysis {
		t.Errorf("analysis = %+v, want %+v", out.Analysis, in.Analysis)
	}
	// Ordered by ID
	if len(out.Vessels) != 2 || out.Vessels[0].ID != 1004 {
		t.Errorf("vessels = %+v", out.Vessels)
	}
	if out.Server.ListenAddr != "127.0.0.1" || out.Server.Port != 8181 {
		t.Errorf("server = %+v", out.Server)
	}

	// Saving again replaces rather than appends
	in.Vessels = in.Vessels[:1]
	if err := p.SaveConfig(in); err != nil {
		t.Fatal(err)
	}
	vessels, err := p.GetVessels()
	if err != nil || len(vessels) != 1 {
		t.Errorf("vessels after resave = %+v, %v", vessels, err)
	}

	if p.IsReadOnly() {
		t.Error("SQLite provider should be writable")
	}
}
