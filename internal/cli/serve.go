package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/granulab/spherepack/internal/api"
	"github.com/granulab/spherepack/pkg/cache"
	"github.com/granulab/spherepack/pkg/pipeline"
	"github.com/granulab/spherepack/pkg/runstore"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string // listen address
	redis   string // redis host:port for the shared cache and run store
	mongo   string // mongodb URI for the durable run store
	workers int    // async run workers
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080", workers: api.DefaultWorkers}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the packing API over HTTP",
		Long: `Serve the packing pipeline as a JSON HTTP API.

Without backend flags the server keeps its cache and run records in
memory. With --redis the result cache and run store move to Redis so
multiple instances share them; with --mongo the run store moves to
MongoDB instead.

Examples:
  spherepack serve
  spherepack serve --addr :9090 --workers 4
  spherepack serve --redis localhost:6379 --mongo mongodb://localhost:27017`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "redis address for the shared cache and run store (host:port)")
	cmd.Flags().StringVar(&opts.mongo, "mongo", "", "mongodb URI for the durable run store")
	cmd.Flags().IntVar(&opts.workers, "workers", opts.workers, "async run workers")

	return cmd
}

// serve wires the configured backends into an api.Server and runs it until
// the context is cancelled, then shuts down gracefully.
func (c *CLI) serve(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	store, runs, err := serveBackends(ctx, opts)
	if err != nil {
		return err
	}

	srv := api.New(api.Config{
		Runner:  pipeline.NewRunner(store, nil, logger),
		Runs:    runs,
		Logger:  logger,
		Workers: opts.workers,
	})
	defer srv.Close()

	srv.Start(ctx)

	httpSrv := &http.Server{
		Addr:              opts.addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printInfo("Serving on %s", StyleLink.Render(serveURL(opts.addr)))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", opts.addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	srv.Wait()
	return nil
}

// serveURL renders a browsable URL for a listen address.
func serveURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// serveBackends builds the cache and run store from the backend flags.
// Redis serves both roles unless MongoDB is also given, in which case
// MongoDB takes the run store.
func serveBackends(ctx context.Context, opts serveOpts) (cache.Cache, runstore.Store, error) {
	store := cache.NewMemoryCache()
	if opts.redis != "" {
		s, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: opts.redis})
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		store = s
	}

	var runs runstore.Store
	switch {
	case opts.mongo != "":
		s, err := runstore.NewMongoStore(ctx, runstore.MongoConfig{URI: opts.mongo})
		if err != nil {
			return nil, nil, fmt.Errorf("mongo run store: %w", err)
		}
		runs = s
	case opts.redis != "":
		s, err := runstore.NewRedisStore(ctx, runstore.RedisConfig{Addr: opts.redis})
		if err != nil {
			return nil, nil, fmt.Errorf("redis run store: %w", err)
		}
		runs = s
	default:
		runs = runstore.NewMemoryStore()
	}

	return store, runs, nil
}
