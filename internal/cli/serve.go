package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/mindweave/mindweave/internal/config"
	"github.com/mindweave/mindweave/internal/server"
	"github.com/mindweave/mindweave/pkg/errors"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cloud map store API server",
		Long: `Start the HTTP API that the CLI syncs against. Requires MongoDB for
users and maps and Redis for the session allow-list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if cfg.Server.JWTSecret == "" {
				return errors.New(errors.ErrCodeInvalidInput, "server.jwt_secret is not set, add it to the config file or MINDWEAVE_JWT_SECRET")
			}

			c.Logger.Info("connecting to mongodb", "uri", cfg.Server.MongoURI)
			stores, err := server.NewStores(ctx, cfg.Server.MongoURI, cfg.Server.Database)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if cerr := stores.Close(shutdownCtx); cerr != nil {
					c.Logger.Warn("mongodb close failed", "error", cerr)
				}
			}()

			rdb := redis.NewClient(&redis.Options{Addr: cfg.Server.RedisAddr})
			if err := rdb.Ping(ctx).Err(); err != nil {
				return errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis at %s", cfg.Server.RedisAddr)
			}
			defer rdb.Close()

			sessions := server.NewTokenService(cfg.Server.JWTSecret, rdb)
			api := server.New(stores.Users, stores.Maps, sessions, c.Logger)

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           api.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				c.Logger.Info("listening", "addr", cfg.Server.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			c.Logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return ctx.Err()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
