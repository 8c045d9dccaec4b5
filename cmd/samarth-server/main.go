package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/project-samarth/samarth/internal/analytics"
	"github.com/project-samarth/samarth/internal/api"
	"github.com/project-samarth/samarth/internal/config"
	"github.com/project-samarth/samarth/internal/datagov"
	"github.com/project-samarth/samarth/internal/dataset"
	"github.com/project-samarth/samarth/internal/ingest"
	"github.com/project-samarth/samarth/internal/storage"
	"github.com/project-samarth/samarth/internal/storage/sqlite"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Starting Samarth server...")
	log.Printf("Config: port=%d, snapshot-db=%s, aliases=%s", cfg.Server.Port, cfg.Data.SnapshotDB, cfg.Data.AliasFile)

	// Live fetch needs a credential; without one the loader falls back
	// to stored snapshots and bundled samples.
	var client *datagov.Client
	if apiKey := cfg.APIKey(); apiKey != "" {
		client = datagov.NewClient(datagov.DefaultConfig(apiKey))
		log.Printf("Live fetch enabled via %s", cfg.Data.APIKeyEnv)
	} else {
		log.Printf("No API key in %s; serving from snapshots and samples", cfg.Data.APIKeyEnv)
	}

	var snapStore storage.SnapshotStore
	if cfg.Data.SnapshotDB != "" {
		sqliteStore, err := sqlite.NewStore(cfg.Data.SnapshotDB)
		if err != nil {
			log.Fatalf("Failed to open snapshot database: %v", err)
		}
		defer sqliteStore.Close()
		snapStore = sqliteStore
	}

	loader := ingest.NewLoader(cfg, client, snapStore)

	registry, err := analytics.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to build handler registry: %v", err)
	}
	for intent, name := range registry.Handlers() {
		log.Printf("Registered handler: %s -> %s", intent, name)
	}

	store := dataset.NewStore()

	// Initial load; the server still starts when it fails, /ask reports
	// the missing snapshot until a /refresh succeeds.
	if snap, err := loader.Load(context.Background()); err != nil {
		log.Printf("Warning: initial data load failed: %v", err)
	} else {
		store.Swap(snap)
		log.Printf("Initial snapshot loaded: %d production rows, %d rainfall rows",
			len(snap.Production), len(snap.Rainfall))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	apiServer := api.NewServer(store, registry, loader, addr)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- apiServer.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatalf("Server error: %v", err)

	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout.Std())
		defer cancel()

		if err := apiServer.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}

		log.Println("Shutdown complete")
	}
}
