package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhalvorsen/enrichmap/internal/api"
	"github.com/mhalvorsen/enrichmap/pkg/cache"
	"github.com/mhalvorsen/enrichmap/pkg/pipeline"
	"github.com/mhalvorsen/enrichmap/pkg/store"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisAddr string
		redisDB   int
		mongoURI  string
		mongoDB   string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Serve starts the enrichmap HTTP API. Runs are submitted as JSON documents
containing a node-link graph, a feature matrix, and pipeline options.

By default runs are kept in memory and analysis artifacts are cached on
disk. Pass --mongo to persist runs in MongoDB and --redis to use a shared
Redis cache instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			analysisCache, err := serveCache(ctx, redisAddr, redisDB, noCache)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(analysisCache, nil, c.Logger)
			defer runner.Close()

			var runs store.Store
			if mongoURI != "" {
				mongo, err := store.NewMongoStore(ctx, mongoURI, mongoDB)
				if err != nil {
					return err
				}
				runs = mongo
			} else {
				runs = store.NewMemoryStore()
			}
			defer runs.Close(context.Background())

			server := api.NewServer(runner, runs, c.Logger)
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- httpServer.ListenAndServe()
			}()

			printSuccess("Listening on %s", addr)
			printDetail("POST /runs to submit an analysis")

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				c.Logger.Info("Shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown: %w", err)
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for a shared analysis cache (e.g. localhost:6379)")
	cmd.Flags().IntVar(&redisDB, "redis-db", 0, "Redis database number")
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "MongoDB URI for persistent run storage")
	cmd.Flags().StringVar(&mongoDB, "mongo-db", "enrichmap", "MongoDB database name")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the analysis cache")

	return cmd
}

// serveCache selects the cache backend for the API server.
func serveCache(ctx context.Context, redisAddr string, redisDB int, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		return cache.NewRedisCache(ctx, redisAddr, "", redisDB)
	}
	return newCache(false)
}
