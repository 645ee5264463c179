package storage

import (
	"fmt"

	"github.com/mitchellh/go-homedir"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config selects and locates the state store.
type Config struct {
	Backend    string
	SQLitePath string
	FilePath   string
	Namespace  string
}

// Open builds the configured state store. Paths may start with ~.
func Open(cfg Config) (StateStore, error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		path, err := homedir.Expand(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("expand sqlite path: %w", err)
		}
		return NewSQLiteStore(path, cfg.Namespace)
	case BackendFile:
		path, err := homedir.Expand(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("expand state file path: %w", err)
		}
		return NewFileStore(path, cfg.Namespace)
	default:
		return nil, fmt.Errorf("unsupported state backend: %s", cfg.Backend)
	}
}
