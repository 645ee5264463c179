package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hissab/internal/app"
	"hissab/internal/backend"
	"hissab/internal/cli"
	"hissab/internal/config"
	"hissab/internal/log"
	"hissab/internal/remote"
	"hissab/internal/storage"
)

const (
	// annotationProbe set to "skip" keeps the startup connectivity probe off
	annotationProbe = "probe"
	shutdownTimeout = 15 * time.Second
)

var offline bool

// runtime is the wiring shared by every command of one invocation.
type runtime struct {
	cfg     *config.Config
	log     *log.Logger
	backend *backend.BackendResult
	app     *app.App
}

var rt *runtime

var rootCmd = &cobra.Command{
	Use:   "hissab",
	Short: "Track small recurring purchases, offline first.",
	Long: `hissab keeps a catalog of items with their current price, records purchases
against it and reports spending per day, week or month. Purchases are stored
locally and pushed to the remote backend whenever it is reachable.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		rt = r
		rt.start(cmd.Context(), !offline && cmd.Annotations[annotationProbe] != "skip")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "never contact the remote backend; writes stay queued until a later online run")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func execute() error {
	cli.LoadEnvFile()
	err := rootCmd.ExecuteContext(context.Background())
	if rt != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := rt.close(ctx); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	return err
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogJSON)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	useOffline(res, offline)

	state, err := storage.Open(storage.Config{
		Backend:    cfg.StateBackend,
		SQLitePath: cfg.SQLiteDBPath,
		FilePath:   cfg.StateFilePath,
		Namespace:  cfg.StateNamespace,
	})
	if err != nil {
		res.Cleanup()
		return nil, fmt.Errorf("open state store: %w", err)
	}

	deps := app.Deps{
		Remote:  res.Backend,
		State:   state,
		Logger:  log.ForComponent(log.ComponentApp),
		Timeout: cfg.RemoteTimeout,
	}
	if res.Publisher != nil {
		deps.Publisher = res.Publisher
	}
	a := app.New(deps)
	if err := a.Hydrate(ctx); err != nil {
		// Closing the app would overwrite the unreadable state
		state.Close()
		res.Cleanup()
		return nil, err
	}

	return &runtime{cfg: cfg, log: logger, backend: res, app: a}, nil
}

// useOffline replaces the configured backend with one that fails every
// call as unavailable. The event publisher is kept.
func useOffline(res *backend.BackendResult, offline bool) {
	if offline {
		res.Backend = remote.Offline{}
	}
}

// start pings the backend when tryRemote is set. A reachable backend
// refreshes the catalog; otherwise the catalog is loaded only when empty,
// so an offline run never resets known items to the seed ones.
func (r *runtime) start(ctx context.Context, tryRemote bool) {
	online := tryRemote && r.probe(ctx)
	if !online && len(r.app.Items()) == 0 {
		r.loadItems(ctx)
	}
}

// loadItems replaces the catalog with the remote one, or with the seed
// items when the backend fails.
func (r *runtime) loadItems(ctx context.Context) {
	if _, _, err := r.app.LoadItems(ctx); err != nil {
		r.log.WarnContext(ctx, "Failed to persist catalog", log.FieldError, err)
	}
}

// probe pings the backend once. When it answers the catalog is refreshed
// and the app goes online, which drains the pending queue.
func (r *runtime) probe(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, r.cfg.RemoteTimeout)
	err := r.backend.Backend.Ping(pctx)
	cancel()
	if err != nil {
		r.log.DebugContext(ctx, "Backend not reachable", log.FieldError, err)
		return false
	}
	r.loadItems(ctx)
	if _, err := r.app.GoOnline(ctx); err != nil {
		r.log.WarnContext(ctx, "Sync failed", log.FieldError, err)
	}
	return true
}

func (r *runtime) close(ctx context.Context) error {
	err := r.app.Close(ctx)
	if cerr := r.backend.Cleanup(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}
