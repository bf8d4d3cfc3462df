package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/spotiverse/internal/models"
	"github.com/desertthunder/spotiverse/internal/services"
	"github.com/desertthunder/spotiverse/internal/shared"
	"github.com/desertthunder/spotiverse/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ProfileView ViewState = iota
	TopTracksView
	TopArtistsView
	RecommendationsView
)

var views = []ViewState{ProfileView, TopTracksView, TopArtistsView, RecommendationsView}

func (v ViewState) String() string {
	switch v {
	case ProfileView:
		return "Profile"
	case TopTracksView:
		return "Top Tracks"
	case TopArtistsView:
		return "Top Artists"
	case RecommendationsView:
		return "Recommendations"
	default:
		return ""
	}
}

// Loader fetches the dashboard for a time range.
type Loader interface {
	Load(ctx context.Context, progress chan<- tasks.ProgressUpdate, tr models.TimeRange) (*services.Dashboard, error)
}

// Invalidator ends the login session.
type Invalidator interface {
	Invalidate() error
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	loader    Loader
	session   Invalidator
	view      ViewState
	timeRange models.TimeRange
	dashboard *services.Dashboard

	trackList  list.Model
	artistList list.Model
	recList    list.Model

	loading      bool
	loadID       int
	cancel       context.CancelFunc
	progressChan chan tasks.ProgressUpdate
	resultChan   chan Msg
	progress     tasks.ProgressUpdate
	spinner      spinner.Model

	loggedOut bool
	err       error
	width     int
	height    int
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, loader Loader, session Invalidator, tr models.TimeRange) *Model {
	if tr == "" {
		tr = models.MediumTerm
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.ok

	return &Model{
		ctx:        ctx,
		loader:     loader,
		session:    session,
		view:       ProfileView,
		timeRange:  tr,
		trackList:  newList("Top Tracks"),
		artistList: newList("Top Artists"),
		recList:    newList("Recommended Tracks"),
		spinner:    s,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}

// Init initializes the TUI by loading the dashboard for the selected range.
func (m *Model) Init() tea.Cmd {
	return m.load()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.trackList, &m.artistList, &m.recList} {
			l.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		if msg.id != m.loadID {
			return m, nil
		}
		switch msg.kind {
		case MsgProgressUpdate:
			m.progress = msg.data.(tasks.ProgressUpdate)
			return m, m.waitForProgress()
		case MsgDashboardLoaded:
			res := msg.data.(dashboardResult)
			return m, m.finishLoad(res.dashboard, res.err)
		}
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.loggedOut {
		text := "Logged out."
		if m.err != nil {
			text = fmt.Sprintf("Session ended: %v", m.err)
		}
		return styles.warn.Render(text+"\n\nRun `spotiverse auth login` to sign in again.") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(styles.help.Render("Press r to retry, q to quit"))
		return b.String()
	case m.loading:
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), m.progressMessage()))
		return b.String()
	case m.dashboard == nil:
		b.WriteString(styles.help.Render("No data loaded"))
	default:
		switch m.view {
		case ProfileView:
			b.WriteString(m.renderProfile())
		case TopTracksView:
			b.WriteString(m.trackList.View())
		case TopArtistsView:
			b.WriteString(m.artistList.View())
		case RecommendationsView:
			b.WriteString(m.renderRecommendations())
		}
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// TimeRange returns the selected range.
func (m *Model) TimeRange() models.TimeRange {
	return m.timeRange
}

// Err returns the last load error, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) activeList() *list.Model {
	switch m.view {
	case TopTracksView:
		return &m.trackList
	case TopArtistsView:
		return &m.artistList
	case RecommendationsView:
		return &m.recList
	default:
		return nil
	}
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if l := m.activeList(); l != nil && l.FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		m.stop()
		return m, tea.Quit
	case m.loggedOut:
		return m, nil
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	case key.Matches(msg, m.keys.nextTab):
		m.view = views[(int(m.view)+1)%len(views)]
		return m, nil
	case key.Matches(msg, m.keys.prevTab):
		m.view = views[(int(m.view)+len(views)-1)%len(views)]
		return m, nil
	case key.Matches(msg, m.keys.profile):
		m.view = ProfileView
		return m, nil
	case key.Matches(msg, m.keys.tracks):
		m.view = TopTracksView
		return m, nil
	case key.Matches(msg, m.keys.artists):
		m.view = TopArtistsView
		return m, nil
	case key.Matches(msg, m.keys.recs):
		m.view = RecommendationsView
		return m, nil
	case key.Matches(msg, m.keys.timeRange):
		m.timeRange = m.timeRange.Next()
		return m, m.load()
	case key.Matches(msg, m.keys.refresh):
		return m, m.load()
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	return m.updateList(msg)
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	l := m.activeList()
	if l == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*l, cmd = l.Update(msg)
	return m, cmd
}

// load starts a load for the selected range, superseding any load in flight.
func (m *Model) load() tea.Cmd {
	m.stop()

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.loadID++
	m.loading = true
	m.err = nil
	m.progress = tasks.ProgressUpdate{Message: fmt.Sprintf("Loading %s...", m.timeRange.Label())}
	m.progressChan = make(chan tasks.ProgressUpdate, 16)
	m.resultChan = make(chan Msg, 1)

	id, tr := m.loadID, m.timeRange
	progress, result := m.progressChan, m.resultChan
	go func() {
		d, err := m.loader.Load(ctx, progress, tr)
		close(progress)
		result <- dashboardLoadedMsg(id, d, err)
	}()

	return tea.Batch(m.spinner.Tick, m.waitForProgress())
}

func (m *Model) waitForProgress() tea.Cmd {
	id, progress, result := m.loadID, m.progressChan, m.resultChan
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressUpdateMsg(id, update)
		}
		return <-result
	}
}

func (m *Model) finishLoad(d *services.Dashboard, err error) tea.Cmd {
	m.loading = false
	m.stop()

	if err != nil {
		m.err = err
		if errors.Is(err, shared.ErrNotAuthenticated) || services.IsAuthError(err) {
			m.loggedOut = true
			return tea.Quit
		}
		return nil
	}

	m.dashboard = d
	m.trackList.SetItems(trackItems(d.TopTracks))
	m.artistList.SetItems(artistItems(d.TopArtists))
	m.recList.SetItems(trackItems(d.Recommendations))
	return nil
}

func (m *Model) logout() tea.Cmd {
	m.stop()
	m.loadID++
	m.loading = false
	m.loggedOut = true
	m.dashboard = nil
	if err := m.session.Invalidate(); err != nil {
		m.err = err
	}
	return tea.Quit
}

func (m *Model) stop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) progressMessage() string {
	if m.progress.Message == "" {
		return "Loading..."
	}
	return m.progress.Message
}

func (m *Model) renderHeader() string {
	title := styles.title.Render("spotiverse")

	tabs := make([]string, len(views))
	for i, v := range views {
		if v == m.view {
			tabs[i] = styles.activeTab.Render(v.String())
		} else {
			tabs[i] = styles.tab.Render(v.String())
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		styles.help.Render("Time range: "+m.timeRange.Label()),
	)
}

func (m *Model) renderProfile() string {
	p := m.dashboard.Profile
	if p == nil {
		return styles.help.Render("Profile unavailable")
	}

	name := p.DisplayName
	if name == "" {
		name = p.ID
	}

	rows := [][2]string{
		{"Email", p.Email},
		{"Country", p.Country},
		{"Plan", p.Product},
		{"Followers", shared.FormatCount(p.Followers.Total)},
		{"Avatar", services.ImageURL(p.Images, 0)},
		{"Profile", p.ExternalURLs.Spotify},
	}

	var b strings.Builder
	b.WriteString(styles.ok.Render(name))
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("\n%s %s", styles.label.Render(row[0]+":"), row[1]))
	}

	b.WriteString(fmt.Sprintf("\n\n%d top tracks • %d top artists • %d recommendations",
		len(m.dashboard.TopTracks), len(m.dashboard.TopArtists), len(m.dashboard.Recommendations)))
	return b.String()
}

func (m *Model) renderRecommendations() string {
	if len(m.dashboard.Recommendations) == 0 {
		return styles.help.Render("No recommendations for this time range")
	}
	return m.recList.View()
}
