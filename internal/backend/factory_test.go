package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"hissab/internal/amqp"
	"hissab/internal/config"
	"hissab/internal/remote"
	"hissab/internal/remote/memory"
	"hissab/internal/remote/supabase"
)

func quietFactory() *DefaultFactory {
	return NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil))).(*DefaultFactory)
}

func TestBackendType_IsValid(t *testing.T) {
	tests := []struct {
		bt   BackendType
		want bool
	}{
		{SupabaseBackend, true},
		{MemoryBackend, true},
		{NoneBackend, true},
		{BackendType("sqlite"), false},
		{BackendType(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.bt.String(), func(t *testing.T) {
			if got := tt.bt.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	want := []string{"supabase", "memory", "none"}
	if len(got) != len(want) {
		t.Fatalf("GetBackendTypeStrings() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GetBackendTypeStrings()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("FromAppConfig(nil) error = nil, want error")
	}

	appCfg := &config.Config{
		RemoteBackend:   "supabase",
		SupabaseURL:     "https://project.supabase.co",
		SupabaseAnonKey: "anon",
		RemoteTimeout:   3 * time.Second,
		RemoteRetryMax:  4,
		AMQPURL:         "amqp://localhost:5672/",
		AMQPExchange:    "hissab",
		AMQPRoutingKey:  "hissab_events",
	}
	cfg, err := FromAppConfig(appCfg)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != SupabaseBackend || cfg.Timeout != 3*time.Second || cfg.RetryMax != 4 {
		t.Errorf("FromAppConfig() = %+v", cfg)
	}
	if cfg.AMQPRoutingKey != "hissab_events" {
		t.Errorf("AMQPRoutingKey = %q, want hissab_events", cfg.AMQPRoutingKey)
	}

	appCfg.RemoteBackend = "sheets"
	if _, err := FromAppConfig(appCfg); err == nil {
		t.Error("FromAppConfig() with unknown backend error = nil, want error")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"none", Config{Type: NoneBackend}, false},
		{"supabase", Config{Type: SupabaseBackend, SupabaseURL: "https://x.supabase.co", SupabaseAnonKey: "k"}, false},
		{"supabase without url", Config{Type: SupabaseBackend, SupabaseAnonKey: "k"}, true},
		{"supabase without key", Config{Type: SupabaseBackend, SupabaseURL: "https://x.supabase.co"}, true},
		{"amqp without exchange", Config{Type: MemoryBackend, AMQPURL: "amqp://localhost/", AMQPRoutingKey: "r"}, true},
		{"unknown type", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFactory_CreateBackend(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		check  func(t *testing.T, b remote.Backend)
	}{
		{
			name:   "memory",
			config: Config{Type: MemoryBackend},
			check: func(t *testing.T, b remote.Backend) {
				store, ok := b.(*memory.Store)
				if !ok {
					t.Fatalf("backend = %T, want *memory.Store", b)
				}
				if n := len(store.Items()); n != 4 {
					t.Errorf("memory backend has %d items, want the 4 seed items", n)
				}
			},
		},
		{
			name:   "none",
			config: Config{Type: NoneBackend},
			check: func(t *testing.T, b remote.Backend) {
				if err := b.Ping(context.Background()); !errors.Is(err, remote.ErrUnavailable) {
					t.Errorf("Ping() error = %v, want ErrUnavailable", err)
				}
			},
		},
		{
			name: "supabase",
			config: Config{
				Type:            SupabaseBackend,
				SupabaseURL:     "https://project.supabase.co",
				SupabaseAnonKey: "anon",
				Timeout:         time.Second,
			},
			check: func(t *testing.T, b remote.Backend) {
				if _, ok := b.(*supabase.Client); !ok {
					t.Errorf("backend = %T, want *supabase.Client", b)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := quietFactory().CreateBackend(context.Background(), tt.config)
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			tt.check(t, res.Backend)
			if res.Publisher != nil {
				t.Errorf("Publisher = %v, want nil without AMQP_URL", res.Publisher)
			}
			if err := res.Cleanup(); err != nil {
				t.Errorf("Cleanup() error = %v", err)
			}
		})
	}
}

func TestFactory_CreateBackendRejectsInvalidConfig(t *testing.T) {
	_, err := quietFactory().CreateBackend(context.Background(), Config{Type: SupabaseBackend})
	if err == nil {
		t.Fatal("CreateBackend() error = nil, want validation error")
	}
}

func TestFactory_UnreachableBrokerDisablesPublishing(t *testing.T) {
	f := quietFactory()
	var dialed string
	f.dialAMQP = func(url, exchange, queue string) (*amqp.Client, error) {
		dialed = url
		return nil, errors.New("connection refused")
	}

	res, err := f.CreateBackend(context.Background(), Config{
		Type:           MemoryBackend,
		AMQPURL:        "amqp://localhost:5672/",
		AMQPExchange:   "hissab",
		AMQPRoutingKey: "hissab_events",
	})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v, want nil when broker is down", err)
	}
	if dialed != "amqp://localhost:5672/" {
		t.Errorf("dialed %q, want the configured AMQP URL", dialed)
	}
	if res.Publisher != nil {
		t.Error("Publisher should be nil when the broker is unreachable")
	}
}
