package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lvillar/docrender/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP rendering API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.config.Server.Addr = addr
			}
			return c.runServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context) error {
	logger := loggerFromContext(ctx)
	cfg := c.config

	r, err := newRenderer(cfg, logger)
	if err != nil {
		return err
	}

	store, closeStore, err := newUploader(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(context.Background()); err != nil {
			logger.Warn("closing storage", "err", err)
		}
	}()

	docs, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer docs.Close()

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithUploader(store),
		server.WithCache(docs, cfg.Cache.TTL.Duration, version, cfg.Render, cfg.Fields),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithUploadTimeout(cfg.Storage.Timeout.Duration),
	}
	for kind, folder := range folders(cfg.Storage) {
		opts = append(opts, server.WithFolder(kind, folder))
	}

	logger.Info("starting",
		"storage", cfg.Storage.Kind,
		"cache", cfg.Cache.Kind,
		"optional_fields", cfg.Render.OptionalFields)
	srv := server.New(r, opts...)
	return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ReadTimeout.Duration, cfg.Server.WriteTimeout.Duration)
}
