package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/project-samarth/samarth/internal/config"
	"github.com/project-samarth/samarth/internal/datagov"
	"github.com/project-samarth/samarth/internal/ingest"
	"github.com/project-samarth/samarth/internal/storage"
	"github.com/project-samarth/samarth/internal/storage/sqlite"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validateConfig := validateCmd.String("config", "config.yaml", "server config file")
	validateAliases := validateCmd.String("aliases", "aliases.yaml", "curated alias file")

	ingestCmd := flag.NewFlagSet("ingest", flag.ExitOnError)
	ingestConfig := ingestCmd.String("config", "config.yaml", "server config file")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		os.Exit(runValidate(*validateConfig, *validateAliases))
	case "ingest":
		ingestCmd.Parse(os.Args[2:])
		os.Exit(runIngest(*ingestConfig))
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: samarth <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  validate [--config <path>] [--aliases <path>]   Validate config and alias files")
	fmt.Println("  ingest [--config <path>]                        Fetch datasets and store a snapshot")
	fmt.Println()
}

// runValidate checks the config and alias YAML files against their JSON
// schemas
func runValidate(configPath, aliasPath string) int {
	checks := []struct {
		file   string
		schema string
	}{
		{configPath, "config_v1.json"},
		{aliasPath, "aliases_v1.json"},
	}

	total := 0
	for _, check := range checks {
		schemaPath := findSchemaFile(check.schema)
		if schemaPath == "" {
			fmt.Fprintf(os.Stderr, "Error: could not find schemas/%s\n", check.schema)
			return 1
		}

		validator, err := config.NewValidator(schemaPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to initialize validator: %v\n", err)
			return 1
		}

		for _, verr := range validator.ValidateFile(check.file) {
			total++
			if verr.Path != "" {
				fmt.Fprintf(os.Stderr, "%s: %s: %s\n", filepath.Base(verr.File), verr.Path, verr.Message)
			} else {
				fmt.Fprintf(os.Stderr, "%s: %s\n", filepath.Base(verr.File), verr.Message)
			}
		}
	}

	if total > 0 {
		fmt.Fprintf(os.Stderr, "✗ Validation failed with %d error(s)\n", total)
		return 1
	}

	fmt.Println("✓ Config and alias files are valid")
	return 0
}

// runIngest fetches both datasets and persists a snapshot, so the server
// has a local fallback before its first live fetch
func runIngest(configPath string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var client *datagov.Client
	if apiKey := cfg.APIKey(); apiKey != "" {
		client = datagov.NewClient(datagov.DefaultConfig(apiKey))
	} else {
		fmt.Fprintf(os.Stderr, "Warning: no API key in %s, only samples are reachable\n", cfg.Data.APIKeyEnv)
	}

	var snapStore storage.SnapshotStore
	if cfg.Data.SnapshotDB != "" {
		sqliteStore, err := sqlite.NewStore(cfg.Data.SnapshotDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open snapshot database: %v\n", err)
			return 1
		}
		defer sqliteStore.Close()
		snapStore = sqliteStore
	}

	loader := ingest.NewLoader(cfg, client, snapStore)
	snap, err := loader.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: ingest failed: %v\n", err)
		return 1
	}

	fmt.Printf("✓ Ingested %d production rows and %d rainfall rows\n",
		len(snap.Production), len(snap.Rainfall))
	for name, src := range snap.Sources {
		fmt.Printf("  %s: origin=%s snapshot=%s\n", name, src.Origin, src.SnapshotTime.Format("2006-01-02 15:04:05"))
	}
	return 0
}

// findSchemaFile looks for a schema file in common locations
func findSchemaFile(name string) string {
	candidates := []string{
		filepath.Join("schemas", name),
		filepath.Join("..", "schemas", name),
		filepath.Join("..", "..", "schemas", name),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
