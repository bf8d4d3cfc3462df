package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/spotiverse/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the proxy and static server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if port := cmd.Int("port"); port > 0 {
		r.config.Server.Port = port
	}
	if dir := cmd.String("static-dir"); dir != "" {
		r.config.Server.StaticDir = dir
	}

	if err := r.config.Validate(); err != nil {
		return err
	}

	srv, err := server.New(r.config.Server, r.config.Credentials.Spotify, r.logger)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("starting server",
		"addr", r.config.Server.Addr(),
		"api_prefix", r.config.Server.APIPrefix,
		"upstream", r.config.Server.UpstreamURL,
	)
	return srv.Run(ctx)
}
