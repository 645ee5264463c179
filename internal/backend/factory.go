package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hissab/internal/amqp"
	"hissab/internal/remote"
	"hissab/internal/remote/memory"
	"hissab/internal/remote/supabase"
	"hissab/internal/services"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	// dialAMQP is replaced in tests
	dialAMQP func(url, exchange, queue string) (*amqp.Client, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger:   logger,
		dialAMQP: amqp.NewClient,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		backend remote.Backend
		err     error
	)
	switch config.Type {
	case SupabaseBackend:
		backend, err = f.createSupabaseBackend(config)
	case MemoryBackend:
		backend = f.createMemoryBackend()
	case NoneBackend:
		f.logger.Info("Running without remote backend")
		backend = remote.Offline{}
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	publisher := f.createPublisher(config)

	return &BackendResult{
		Backend:   backend,
		Publisher: publisher,
		Cleanup: func() error {
			if publisher == nil {
				return nil
			}
			if err := publisher.Close(); err != nil {
				return fmt.Errorf("close amqp client: %w", err)
			}
			return nil
		},
	}, nil
}

func (f *DefaultFactory) createSupabaseBackend(config Config) (remote.Backend, error) {
	cli, err := supabase.New(supabase.Config{
		URL:      config.SupabaseURL,
		APIKey:   config.SupabaseAnonKey,
		Timeout:  config.Timeout,
		RetryMax: config.RetryMax,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Supabase client: %w", err)
	}

	f.logger.Info("Initialized Supabase backend",
		"url", config.SupabaseURL,
		"retry_max", config.RetryMax)

	return cli, nil
}

// createMemoryBackend starts the in-process backend with the seed catalog,
// so a fresh process has items to buy.
func (f *DefaultFactory) createMemoryBackend() remote.Backend {
	store := memory.New()
	store.SeedItems(services.SeedCatalog(time.Now().UTC())...)

	f.logger.Info("Initialized memory backend", "items", len(services.SeedItems))

	return store
}

// createPublisher connects the optional AMQP client. A broker that cannot be
// reached disables publishing instead of failing startup.
func (f *DefaultFactory) createPublisher(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := f.dialAMQP(config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"routing_key", config.AMQPRoutingKey)
	return client
}
