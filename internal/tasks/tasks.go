// package tasks implements the dashboard load and export operations.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotiverse/internal/models"
	"github.com/desertthunder/spotiverse/internal/services"
	"github.com/desertthunder/spotiverse/internal/session"
	"github.com/desertthunder/spotiverse/internal/shared"
	"golang.org/x/sync/errgroup"
)

const (
	defaultLimit               = 50
	defaultRecommendationLimit = 20
)

// Binder ties request lifetimes to a login session.
type Binder interface {
	Bind(ctx context.Context) (context.Context, context.CancelFunc)
	Invalidate() error
}

// DashboardLoader fetches a [services.Dashboard].
type DashboardLoader struct {
	svc      services.Service
	session  Binder
	logger   *log.Logger
	now      func() time.Time
	limit    int
	recLimit int
}

// LoaderOption configures a [DashboardLoader].
type LoaderOption func(*DashboardLoader)

// WithSession binds every load to b and invalidates it on authorization failures.
func WithSession(b Binder) LoaderOption {
	return func(l *DashboardLoader) { l.session = b }
}

// WithLimits sets the page size for top lists and the number of recommendations. Non-positive values keep the defaults.
func WithLimits(limit, recommendations int) LoaderOption {
	return func(l *DashboardLoader) {
		if limit > 0 {
			l.limit = limit
		}
		if recommendations > 0 {
			l.recLimit = recommendations
		}
	}
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(logger *log.Logger) LoaderOption {
	return func(l *DashboardLoader) { l.logger = logger }
}

// NewDashboardLoader creates a loader reading from svc.
func NewDashboardLoader(svc services.Service, opts ...LoaderOption) *DashboardLoader {
	l := &DashboardLoader{
		svc:      svc,
		now:      time.Now,
		limit:    defaultLimit,
		recLimit: defaultRecommendationLimit,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = shared.NewLogger(io.Discard)
	}
	return l
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Load fetches the dashboard for tr. An empty range means medium_term.
func (l *DashboardLoader) Load(ctx context.Context, progress chan<- ProgressUpdate, tr models.TimeRange) (*services.Dashboard, error) {
	if l.svc == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	tr, err := models.ParseTimeRange(string(tr))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}

	if l.session != nil {
		var cancel context.CancelFunc
		ctx, cancel = l.session.Bind(ctx)
		defer cancel()
	}

	d := &services.Dashboard{TimeRange: tr}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sendProgress(progress, fetchUpdate(FetchProfile, tr))
		profile, err := l.svc.Profile(gctx)
		if err != nil {
			return err
		}
		d.Profile = profile
		sendProgress(progress, fetchedUpdate(FetchProfile, 1))
		return nil
	})
	g.Go(func() error {
		sendProgress(progress, fetchUpdate(FetchTopArtists, tr))
		artists, err := l.svc.TopArtists(gctx, tr, l.limit)
		if err != nil {
			return err
		}
		d.TopArtists = artists
		sendProgress(progress, fetchedUpdate(FetchTopArtists, len(artists)))
		return nil
	})
	g.Go(func() error {
		sendProgress(progress, fetchUpdate(FetchTopTracks, tr))
		tracks, err := l.svc.TopTracks(gctx, tr, l.limit)
		if err != nil {
			return err
		}
		d.TopTracks = tracks
		sendProgress(progress, fetchedUpdate(FetchTopTracks, len(tracks)))
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, l.fail(ctx, err)
	}

	d.Seeds = services.SelectSeeds(d.TopArtists, d.TopTracks)
	d.Recommendations = []services.SpotifyTrack{}

	if len(d.Seeds.Tracks) > 0 {
		sendProgress(progress, fetchUpdate(FetchRecommendations, tr))
		recs, err := l.svc.Recommendations(ctx, d.Seeds, l.recLimit)
		switch {
		case err == nil:
			d.Recommendations = recs
			sendProgress(progress, fetchedUpdate(FetchRecommendations, len(recs)))
		case services.IsAuthError(err) || ctx.Err() != nil:
			return nil, l.fail(ctx, err)
		default:
			l.logger.Warn("recommendations unavailable", "error", err)
		}
	} else {
		l.logger.Debug("no top tracks, skipping recommendations")
	}

	d.FetchedAt = l.now()
	return d, nil
}

// fail wraps err for display and ends the session when the token was rejected.
func (l *DashboardLoader) fail(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); errors.Is(cause, session.ErrInvalidated) {
		return fmt.Errorf("failed to fetch data: %w", cause)
	}

	if services.IsAuthError(err) && l.session != nil {
		l.logger.Warn("authorization rejected, invalidating session", "error", err)
		if ierr := l.session.Invalidate(); ierr != nil {
			l.logger.Error("failed to invalidate session", "error", ierr)
		}
	}
	return fmt.Errorf("failed to fetch data: %w", err)
}
