package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/spotiverse/internal/formatter"
	"github.com/desertthunder/spotiverse/internal/models"
	"github.com/desertthunder/spotiverse/internal/services"
	"github.com/desertthunder/spotiverse/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for multi-range dashboard exports.
type BulkExportOpts struct {
	Format        formatter.Format   // Export format: json, csv, markdown, text
	OutputDir     string             // Base output directory (default: spotiverse_export_{epoch})
	TimeRanges    []models.TimeRange // Ranges to export (default: all three)
	NumWorkers    int                // Concurrent workers (default: 3)
	RateLimit     float64            // Loads per second (default: 2)
	IncludeImages bool               // Download the profile image next to markdown exports
}

// DashboardExportResult is the outcome for one time range.
type DashboardExportResult struct {
	TimeRange models.TimeRange `json:"time_range"`
	Label     string           `json:"label"`
	Files     []string         `json:"files"`
	Success   bool             `json:"success"`
	Error     error            `json:"-"`
	Message   string           `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export and is written as the manifest.
type BulkExportResult struct {
	TotalRanges       int                     `json:"total_ranges"`
	SuccessfulExports int                     `json:"successful_exports"`
	FailedExports     int                     `json:"failed_exports"`
	OutputDirectory   string                  `json:"output_directory"`
	ManifestPath      string                  `json:"-"`
	Format            formatter.Format        `json:"format"`
	Results           []DashboardExportResult `json:"results"`
}

// BulkExport loads each requested time range and writes an export per range.
//
// Loads are spread over a worker pool and throttled by a rate limiter. Partial failures are recorded in the result;
// only setup and manifest errors are returned.
func (l *DashboardLoader) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, opts BulkExportOpts) (*BulkExportResult, error) {
	if l.svc == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Format == "" {
		opts.Format = formatter.JSON
	}
	if _, err := formatter.ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("spotiverse_export_%d", time.Now().Unix())
	}
	if len(opts.TimeRanges) == 0 {
		opts.TimeRanges = models.TimeRanges
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > len(opts.TimeRanges) {
		opts.NumWorkers = len(opts.TimeRanges)
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(opts.TimeRanges)
	result := &BulkExportResult{
		TotalRanges:     total,
		OutputDirectory: opts.OutputDir,
		Format:          opts.Format,
		Results:         make([]DashboardExportResult, 0, total),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan models.TimeRange, total)
	results := make(chan DashboardExportResult, total)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go l.exportWorker(ctx, &wg, limiter, jobs, results, opts)
	}

	for i, tr := range opts.TimeRanges {
		sendProgress(prog, exportingUpdate(i+1, total, tr))
		jobs <- tr
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, total, res.TimeRange, len(res.Files)))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, total, res.TimeRange, res.Error))
		}
	}

	order := func(tr models.TimeRange) int { return slices.Index(opts.TimeRanges, tr) }
	slices.SortFunc(result.Results, func(a, b DashboardExportResult) int {
		return order(a.TimeRange) - order(b.TimeRange)
	})

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

func failedExport(tr models.TimeRange, err error) DashboardExportResult {
	return DashboardExportResult{
		TimeRange: tr,
		Label:     tr.Label(),
		Files:     []string{},
		Error:     err,
		Message:   err.Error(),
	}
}

// exportWorker loads and writes the ranges it receives from jobs.
func (l *DashboardLoader) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan models.TimeRange,
	results chan<- DashboardExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for tr := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			results <- failedExport(tr, err)
			continue
		}
		results <- l.exportRange(ctx, tr, opts)
	}
}

// exportRange loads one range and writes it in the requested format.
func (l *DashboardLoader) exportRange(ctx context.Context, tr models.TimeRange, opts BulkExportOpts) DashboardExportResult {
	d, err := l.Load(ctx, nil, tr)
	if err != nil {
		return failedExport(tr, err)
	}

	var files []string
	if opts.Format == formatter.Markdown {
		imageURL := ""
		if opts.IncludeImages && d.Profile != nil {
			imageURL = services.ImageURL(d.Profile.Images, 0)
		}
		res, err := formatter.WriteMarkdownExport(ctx, d, filepath.Join(opts.OutputDir, string(tr)), imageURL)
		if err != nil {
			return failedExport(tr, fmt.Errorf("markdown export failed: %w", err))
		}
		files = res.Files
	} else {
		path := filepath.Join(opts.OutputDir, string(tr)+opts.Format.Extension())
		if err := formatter.WriteExport(d, opts.Format, path); err != nil {
			return failedExport(tr, fmt.Errorf("%s export failed: %w", opts.Format, err))
		}
		files = []string{path}
	}

	return DashboardExportResult{TimeRange: tr, Label: tr.Label(), Files: files, Success: true}
}
