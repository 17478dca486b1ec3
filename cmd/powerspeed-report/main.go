// powerspeed-report runs a single analysis pass against the configured data
// source and writes the chart and per-bin tables to files.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/chrissnell/powerspeed/internal/analysis"
	"github.com/chrissnell/powerspeed/internal/chart"
	"github.com/chrissnell/powerspeed/internal/log"
	"github.com/chrissnell/powerspeed/internal/request"
	"github.com/chrissnell/powerspeed/internal/source"
	"github.com/chrissnell/powerspeed/internal/types"
	"github.com/chrissnell/powerspeed/pkg/config"
)

// queryFlags are forwarded to the request parser with dashes turned into underscores
var queryFlags = []string{
	"vessels", "speed", "validity", "correct-foc",
	"draft-min", "draft-max", "wind-min", "wind-max",
	"speed-min", "speed-max", "bf-min", "bf-max",
}

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to configuration source (YAML file or SQLite database)")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' or 'sqlite'")
	envFile := flag.String("env-file", ".env", "Optional dotenv file with secrets referenced as ${VAR} in the configuration")
	out := flag.String("out", "chart.png", "Path of the PNG chart to write (empty to skip)")
	tables := flag.String("tables", "tables.csv", "Path of the CSV bin tables to write (empty to skip)")
	width := flag.Int("width", chart.DefaultWidth, "Chart width in pixels")
	height := flag.Int("height", chart.DefaultHeight, "Chart height in pixels")
	debug := flag.Bool("debug", false, "Turn on debugging output")

	flag.String("vessels", "", "Comma-separated vessel IDs (default: the first vessels by ID)")
	flag.String("speed", "", "Speed metric: SpeedOG or SpeedTW")
	flag.String("validity", "", "Keep only rows whose validity flags are 1 (true/false, default from config)")
	flag.String("correct-foc", "", "Derive LCVCorrectedFOC from the raw fuel columns (true/false, default from config)")
	for _, name := range []string{"draft", "wind", "speed", "bf"} {
		flag.String(name+"-min", "", "Lower "+name+" bound (default: observed minimum)")
		flag.String(name+"-max", "", "Upper "+name+" bound (default: observed maximum)")
	}
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Warnf("could not read %s: %v", *envFile, err)
	}

	if err := run(*cfgFile, *cfgBackend, queryValues(), *out, *tables, chart.Options{Width: *width, Height: *height}); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

// queryValues collects the flags that were set on the command line
func queryValues() url.Values {
	q := url.Values{}
	flag.Visit(func(f *flag.Flag) {
		for _, name := range queryFlags {
			if f.Name == name {
				q.Set(strings.ReplaceAll(name, "-", "_"), f.Value.String())
			}
		}
	})
	return q
}

func run(cfgFile, cfgBackend string, q url.Values, out, tables string, opts chart.Options) error {
	cfg, err := loadConfig(cfgFile, cfgBackend)
	if err != nil {
		return err
	}

	loader, err := source.NewLoaderFromConfig(cfg.Source)
	if err != nil {
		return err
	}
	defer loader.Close()

	loadOpts, err := request.ParseOptions(q, cfg.Analysis)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ds, err := loader.Load(ctx, loadOpts)
	if err != nil {
		return err
	}

	criteria, err := request.ParseCriteria(q, ds, cfg.Analysis)
	if err != nil {
		return err
	}

	res := analysis.Run(ds, criteria, types.NewVesselDirectory(cfg.VesselNames()))
	if res.Status != analysis.StatusOK {
		fmt.Println(res.Message)
		return nil
	}
	for _, w := range res.Warnings {
		fmt.Println("warning:", w.Message)
	}

	if out != "" {
		if err := writeChart(out, res, opts); err != nil {
			return err
		}
		fmt.Printf("chart written to %s\n", out)
	}

	for _, b := range res.Bins {
		if b.Message != "" {
			fmt.Println(b.Message)
		}
	}
	if tables != "" {
		if err := writeTables(tables, res); err != nil {
			return err
		}
		fmt.Printf("tables written to %s\n", tables)
	}
	return nil
}

func loadConfig(cfgFile, cfgBackend string) (*config.ConfigData, error) {
	filename, _ := filepath.Abs(cfgFile)

	var provider config.ConfigProvider
	switch cfgBackend {
	case "yaml":
		provider = config.NewYAMLProvider(filename)
	case "sqlite":
		p, err := config.NewSQLiteProvider(filename)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
		provider = p
	default:
		return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", cfgBackend)
	}
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}
	return cfg, nil
}

func writeChart(path string, res *analysis.Result, opts chart.Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	if err := chart.Render(f, res, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeTables(path string, res *analysis.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	header, rows := res.Table()
	w := csv.NewWriter(f)
	w.Write(header)
	w.WriteAll(rows)
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return f.Close()
}
