package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotiverse/internal/formatter"
	"github.com/desertthunder/spotiverse/internal/models"
	"github.com/desertthunder/spotiverse/internal/shared"
	"github.com/desertthunder/spotiverse/internal/tasks"
	"github.com/urfave/cli/v3"
)

// timeRangeFlag resolves --time-range, falling back to [client] time_range.
func (r *Runner) timeRangeFlag(cmd *cli.Command) (models.TimeRange, error) {
	raw := cmd.String("time-range")
	if raw == "" {
		raw = r.config.Client.TimeRange
	}
	tr, err := models.ParseTimeRange(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
	}
	return tr, nil
}

// Stats loads the dashboard for one time range and prints it.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	tr, err := r.timeRangeFlag(cmd)
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		format = formatter.JSON
	}

	if err := r.requireAuth(); err != nil {
		return err
	}

	progress, stop := r.trackProgress()
	dashboard, err := r.newLoader(cmd.Int("limit")).Load(ctx, progress, tr)
	stop()
	if err != nil {
		return err
	}

	if format == formatter.JSON {
		return r.writeJSON(dashboard, cmd.Bool("pretty"))
	}

	out, err := formatter.Render(dashboard, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Export writes dashboards for the selected time ranges and a manifest.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	var ranges []models.TimeRange
	for _, raw := range cmd.StringSlice("time-range") {
		tr, err := models.ParseTimeRange(raw)
		if err != nil {
			return fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
		}
		ranges = append(ranges, tr)
	}

	if err := r.requireAuth(); err != nil {
		return err
	}

	progress, stop := r.trackProgress()
	result, err := r.loader.BulkExport(ctx, progress, tasks.BulkExportOpts{
		Format:        format,
		OutputDir:     cmd.String("output"),
		TimeRanges:    ranges,
		NumWorkers:    cmd.Int("workers"),
		RateLimit:     cmd.Float("rate-limit"),
		IncludeImages: cmd.Bool("images"),
	})
	stop()
	if err != nil {
		return err
	}

	r.writePlainln("Export complete: %d/%d time ranges", result.SuccessfulExports, result.TotalRanges)
	for _, res := range result.Results {
		if res.Success {
			r.writePlain("✓ %s (%d files)\n", res.Label, len(res.Files))
		} else {
			r.writePlain("✗ %s: %s\n", res.Label, res.Message)
		}
	}
	r.writePlain("Output: %s\n", result.OutputDirectory)

	if result.FailedExports > 0 {
		return fmt.Errorf("%w: %d of %d exports failed", shared.ErrAPIRequest, result.FailedExports, result.TotalRanges)
	}
	return nil
}
