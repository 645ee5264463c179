package backend

import (
	"context"
	"time"

	"hissab/internal/amqp"
	"hissab/internal/remote"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the remote backend, the optional event publisher
// and a cleanup function releasing both
type BackendResult struct {
	Backend remote.Backend
	// Publisher is nil when AMQP is not configured or unreachable at startup
	Publisher *amqp.Client
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// Supabase specific
	SupabaseURL     string
	SupabaseAnonKey string
	Timeout         time.Duration
	RetryMax        int

	// Event publishing, optional
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

// BackendType represents the type of backend
type BackendType string

const (
	SupabaseBackend BackendType = "supabase"
	MemoryBackend   BackendType = "memory"
	// NoneBackend runs without a remote; every remote call reports unavailable
	NoneBackend BackendType = "none"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SupabaseBackend, MemoryBackend, NoneBackend:
		return true
	default:
		return false
	}
}
