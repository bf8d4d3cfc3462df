package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotiverse/internal/services"
	"github.com/desertthunder/spotiverse/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
//
// Every message carries the id of the load that produced it so results of a superseded load are dropped.
type Msg struct {
	kind MsgKind
	id   int
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgDashboardLoaded MsgKind = iota
	MsgProgressUpdate
)

type dashboardResult struct {
	dashboard *services.Dashboard
	err       error
}

// dashboardLoadedMsg is the constructor for [MsgDashboardLoaded]
func dashboardLoadedMsg(id int, d *services.Dashboard, err error) Msg {
	return Msg{kind: MsgDashboardLoaded, id: id, data: dashboardResult{d, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(id int, update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, id: id, data: update}
}
