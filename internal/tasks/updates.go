package tasks

import (
	"fmt"

	"github.com/desertthunder/spotiverse/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchProfile Phase = iota
	FetchTopArtists
	FetchTopTracks
	FetchRecommendations
	ExportDashboard
)

func (p Phase) String() string {
	switch p {
	case FetchProfile:
		return "fetch_profile"
	case FetchTopArtists:
		return "fetch_top_artists"
	case FetchTopTracks:
		return "fetch_top_tracks"
	case FetchRecommendations:
		return "fetch_recommendations"
	case ExportDashboard:
		return "export_dashboard"
	default:
		return ""
	}
}

func (p Phase) noun() string {
	switch p {
	case FetchProfile:
		return "profile"
	case FetchTopArtists:
		return "top artists"
	case FetchTopTracks:
		return "top tracks"
	case FetchRecommendations:
		return "recommendations"
	default:
		return "data"
	}
}

func fetchUpdate(p Phase, tr models.TimeRange) ProgressUpdate {
	return ProgressUpdate{
		Phase:   p,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching %s (%s)...", p.noun(), tr.Label()),
	}
}

func fetchedUpdate(p Phase, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   p,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetched %s (%d)", p.noun(), count),
		Data:    count,
	}
}

func exportingUpdate(step, total int, tr models.TimeRange) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportDashboard,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, tr.Label()),
	}
}

func exportCompletedUpdate(step, total int, tr models.TimeRange, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportDashboard,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, tr.Label(), filesCount),
	}
}

func exportFailedUpdate(step, total int, tr models.TimeRange, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportDashboard,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, tr.Label(), err),
	}
}
