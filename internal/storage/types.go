package storage

import (
	"time"

	"github.com/project-samarth/samarth/internal/datagov"
)

// RawSnapshot is a timestamped copy of one dataset's fetched records,
// kept both as a fallback source and as a citation anchor
type RawSnapshot struct {
	Dataset    string
	ResourceID string
	FetchedAt  time.Time
	Records    []datagov.Record
}

// SnapshotStore persists raw dataset snapshots
type SnapshotStore interface {
	// SaveSnapshot stores a fetched snapshot
	SaveSnapshot(snap RawSnapshot) error

	// LatestSnapshot returns the most recent snapshot for a dataset,
	// or nil when none has been stored
	LatestSnapshot(dataset string) (*RawSnapshot, error)

	// Close closes the storage connection
	Close() error
}
