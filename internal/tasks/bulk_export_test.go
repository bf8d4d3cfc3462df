package tasks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/spotiverse/internal/formatter"
	"github.com/desertthunder/spotiverse/internal/models"
	"github.com/desertthunder/spotiverse/internal/services"
	"github.com/desertthunder/spotiverse/internal/shared"
	th "github.com/desertthunder/spotiverse/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkExport(t *testing.T) {
	t.Run("All Ranges", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out")
		l := NewDashboardLoader(fullService())

		res, err := l.BulkExport(context.Background(), nil, BulkExportOpts{
			Format:    formatter.CSV,
			OutputDir: dir,
			RateLimit: 100,
		})
		require.NoError(t, err)

		assert.Equal(t, 3, res.TotalRanges)
		assert.Equal(t, 3, res.SuccessfulExports)
		assert.Zero(t, res.FailedExports)
		require.Len(t, res.Results, 3)
		for i, tr := range models.TimeRanges {
			assert.Equal(t, tr, res.Results[i].TimeRange)
			th.AssertFileExists(t, filepath.Join(dir, string(tr)+".csv"))
		}

		th.AssertFileExists(t, res.ManifestPath)
		var manifest map[string]any
		require.NoError(t, json.Unmarshal([]byte(th.MustReadFile(t, res.ManifestPath)), &manifest))
		assert.Equal(t, "csv", manifest["format"])
		assert.EqualValues(t, 3, manifest["successful_exports"])
	})

	t.Run("Markdown Per Range Directory", func(t *testing.T) {
		dir := t.TempDir()
		l := NewDashboardLoader(fullService())

		res, err := l.BulkExport(context.Background(), nil, BulkExportOpts{
			Format:     formatter.Markdown,
			OutputDir:  dir,
			TimeRanges: []models.TimeRange{models.ShortTerm},
			RateLimit:  100,
		})
		require.NoError(t, err)
		require.Len(t, res.Results, 1)
		th.AssertFileExists(t, filepath.Join(dir, "short_term", "README.md"))
	})

	t.Run("Partial Failures Are Recorded", func(t *testing.T) {
		svc := fullService()
		svc.profileErr = &services.APIError{StatusCode: 500, Message: "Server error"}
		dir := t.TempDir()

		res, err := NewDashboardLoader(svc).BulkExport(context.Background(), nil, BulkExportOpts{
			Format:     formatter.JSON,
			OutputDir:  dir,
			TimeRanges: []models.TimeRange{models.ShortTerm, models.LongTerm},
			RateLimit:  100,
		})
		require.NoError(t, err)

		assert.Equal(t, 2, res.FailedExports)
		for _, r := range res.Results {
			assert.False(t, r.Success)
			assert.Contains(t, r.Message, "Server error")
		}
		th.AssertFileExists(t, res.ManifestPath)
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := NewDashboardLoader(fullService()).BulkExport(ctx, nil, BulkExportOpts{
			Format:    formatter.Text,
			OutputDir: t.TempDir(),
		})
		require.NoError(t, err)
		assert.Equal(t, 3, res.FailedExports)
	})

	t.Run("Progress Updates", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 16)

		_, err := NewDashboardLoader(fullService()).BulkExport(context.Background(), progress, BulkExportOpts{
			Format:    formatter.Text,
			OutputDir: t.TempDir(),
			RateLimit: 100,
		})
		require.NoError(t, err)
		close(progress)

		count := 0
		for u := range progress {
			assert.Equal(t, ExportDashboard, u.Phase)
			count++
		}
		assert.Equal(t, 6, count)
	})

	t.Run("Unknown Format", func(t *testing.T) {
		_, err := NewDashboardLoader(fullService()).BulkExport(context.Background(), nil, BulkExportOpts{
			Format:    formatter.Format("yaml"),
			OutputDir: t.TempDir(),
		})
		assert.ErrorIs(t, err, shared.ErrInvalidFlag)
	})

	t.Run("Invalid Output Directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

		_, err := NewDashboardLoader(fullService()).BulkExport(context.Background(), nil, BulkExportOpts{
			OutputDir: filepath.Join(file, "sub"),
		})
		assert.Error(t, err)
	})

	t.Run("Nil Service", func(t *testing.T) {
		_, err := NewDashboardLoader(nil).BulkExport(context.Background(), nil, BulkExportOpts{})
		assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	})
}
