package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/spotiverse/internal/services"
	"github.com/desertthunder/spotiverse/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a raw authenticated GET and prints the answer.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	if err := r.requireAuth(); err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)

	ctx, cancel := r.session.Bind(ctx)
	defer cancel()

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return r.writeResponse(resp, !cmd.Bool("json"))
}

// APIPost makes a raw authenticated POST with a JSON body.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}

	var jsonTest any
	if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}

	if err := r.requireAuth(); err != nil {
		return err
	}

	r.logger.Info("POST request", "path", path)

	ctx, cancel := r.session.Bind(ctx)
	defer cancel()

	resp, err := r.api.Post(ctx, path, []byte(data))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return r.writeResponse(resp, true)
}

// writeResponse prints a raw answer. Rejected tokens end the session.
func (r *Runner) writeResponse(resp *services.APIResponse, pretty bool) error {
	if err := resp.Err(); err != nil {
		if services.IsAuthError(err) {
			r.logger.Warn("token rejected, logging out", "error", err)
			if ierr := r.session.Invalidate(); ierr != nil {
				r.logger.Error("failed to invalidate session", "error", ierr)
			}
		}
		return err
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}

	if _, err := r.output.Write(resp.Body); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return r.writePlain("\n")
}
