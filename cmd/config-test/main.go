package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"

	"github.com/chrissnell/powerspeed/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite configuration file")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Comparison Test")
	fmt.Println("===========================")

	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	yamlProvider := config.NewYAMLProvider(*yamlFile)
	yamlConfig, err := yamlProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loading SQLite configuration: %s\n", *sqliteFile)
	sqliteProvider, err := config.NewSQLiteProvider(*sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SQLite provider: %v\n", err)
		os.Exit(1)
	}
	defer sqliteProvider.Close()

	sqliteConfig, err := sqliteProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading SQLite config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nComparison Results:")
	fmt.Println("==================")

	mismatches := compareSource(yamlConfig.Source, sqliteConfig.Source)

	if yamlConfig.Analysis == sqliteConfig.Analysis {
		fmt.Println("✓ Analysis defaults match")
	} else {
		fmt.Println("✗ Analysis defaults differ")
		fmt.Printf("  YAML:   %+v\n  SQLite: %+v\n", yamlConfig.Analysis, sqliteConfig.Analysis)
		mismatches++
	}

	mismatches += compareVessels(yamlConfig.VesselNames(), sqliteConfig.VesselNames())

	if yamlConfig.Server == sqliteConfig.Server {
		fmt.Println("✓ Server configuration matches")
	} else {
		fmt.Println("✗ Server configuration differs")
		mismatches++
	}

	if mismatches > 0 {
		fmt.Printf("\n%d section(s) differ\n", mismatches)
		os.Exit(2)
	}
	fmt.Println("\nTest completed!")
}

func compareSource(yaml, sqlite config.SourceData) int {
	mismatches := 0
	field := func(name, a, b string) {
		if a != b {
			fmt.Printf("  %s: YAML='%s', SQLite='%s'\n", name, a, b)
			mismatches++
		}
	}

	fmt.Printf("Source - YAML: %s, SQLite: %s\n", yaml.Type, sqlite.Type)
	field("Type", yaml.Type, sqlite.Type)
	field("Path", yaml.Path, sqlite.Path)
	field("SecondaryPath", yaml.SecondaryPath, sqlite.SecondaryPath)
	field("Delimiter", yaml.Delimiter, sqlite.Delimiter)
	field("Table", yaml.Table, sqlite.Table)
	field("SecondaryTable", yaml.SecondaryTable, sqlite.SecondaryTable)
	// Connection strings may embed credentials, so only presence is compared
	if (yaml.ConnectionString == "") != (sqlite.ConnectionString == "") {
		fmt.Println("  ConnectionString: set in only one backend")
		mismatches++
	}

	if (yaml.S3 == nil) != (sqlite.S3 == nil) {
		fmt.Println("✗ S3 configuration presence mismatch")
		mismatches++
	} else if yaml.S3 != nil && !reflect.DeepEqual(*yaml.S3, *sqlite.S3) {
		fmt.Println("✗ S3 configuration differs")
		mismatches++
	}

	if mismatches == 0 {
		fmt.Println("✓ Source configuration matches")
		return 0
	}
	return 1
}

func compareVessels(yaml, sqlite map[int]string) int {
	fmt.Printf("\nVessels - YAML: %d, SQLite: %d\n", len(yaml), len(sqlite))
	if reflect.DeepEqual(yaml, sqlite) {
		fmt.Println("✓ Vessel names match")
		return 0
	}
	for id, name := range yaml {
		if other, ok := sqlite[id]; !ok {
			fmt.Printf("✗ Vessel %d (%s) missing from SQLite\n", id, name)
		} else if other != name {
			fmt.Printf("✗ Vessel %d: YAML='%s', SQLite='%s'\n", id, name, other)
		}
	}
	for id, name := range sqlite {
		if _, ok := yaml[id]; !ok {
			fmt.Printf("✗ Vessel %d (%s) missing from YAML\n", id, name)
		}
	}
	return 1
}
