// Package storage persists the durable subset of the application state as a
// single JSON document under a namespace key.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hissab/internal/core"
)

const (
	// DefaultNamespace is the key the state document is stored under.
	DefaultNamespace = "chai-hissab-storage"

	// SnapshotVersion is bumped whenever the document layout changes.
	SnapshotVersion = 1
)

var (
	// ErrNoSnapshot is returned by Load when nothing was saved yet.
	ErrNoSnapshot = errors.New("no saved state")
	// ErrUnsupportedVersion is returned for documents written by a newer build.
	ErrUnsupportedVersion = errors.New("unsupported state version")
)

// Snapshot is the persisted part of the application state. Loading flags,
// sync errors and connectivity are transient and never stored.
type Snapshot struct {
	Items          []core.Item        `json:"items"`
	Purchases      []core.Purchase    `json:"purchases"`
	SelectedPeriod core.Period        `json:"selectedPeriod"`
	SelectedDate   core.Date          `json:"selectedDate"`
	DarkMode       bool               `json:"darkMode"`
	PendingSyncs   []core.PendingSync `json:"pendingSyncs"`
	LastSyncAt     *time.Time         `json:"lastSyncAt"`
}

// StateStore saves and loads snapshots for one namespace.
type StateStore interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
	Close() error
}

type envelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// Encode wraps the snapshot in a versioned envelope.
func Encode(s Snapshot) ([]byte, error) {
	state, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	out, err := json.Marshal(envelope{Version: SnapshotVersion, State: state})
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return out, nil
}

// Decode unwraps a document produced by Encode.
func Decode(data []byte) (Snapshot, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Snapshot{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Version > SnapshotVersion || env.Version < 1 {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	var s Snapshot
	if err := json.Unmarshal(env.State, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode state: %w", err)
	}
	return s, nil
}
