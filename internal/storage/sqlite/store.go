package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/project-samarth/samarth/internal/datagov"
	"github.com/project-samarth/samarth/internal/storage"
)

// Store implements SnapshotStore using SQLite
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite snapshot store at the given database path
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveSnapshot stores a fetched snapshot
func (s *Store) SaveSnapshot(snap storage.RawSnapshot) error {
	recordsJSON, err := json.Marshal(snap.Records)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	query := `
		INSERT INTO snapshots (dataset, resource_id, fetched_at, records_json)
		VALUES (?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		snap.Dataset,
		snap.ResourceID,
		snap.FetchedAt.UTC().Format(time.RFC3339),
		string(recordsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	return nil
}

// LatestSnapshot returns the most recent snapshot for a dataset
func (s *Store) LatestSnapshot(dataset string) (*storage.RawSnapshot, error) {
	query := `
		SELECT resource_id, fetched_at, records_json
		FROM snapshots
		WHERE dataset = ?
		ORDER BY fetched_at DESC
		LIMIT 1
	`

	var resourceID, fetchedAt, recordsJSON string
	err := s.db.QueryRow(query, dataset).Scan(&resourceID, &fetchedAt, &recordsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot timestamp: %w", err)
	}

	var records []datagov.Record
	if err := json.Unmarshal([]byte(recordsJSON), &records); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot records: %w", err)
	}

	return &storage.RawSnapshot{
		Dataset:    dataset,
		ResourceID: resourceID,
		FetchedAt:  ts,
		Records:    records,
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
