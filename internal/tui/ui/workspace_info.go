package ui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/huddle/internal/status"
	"github.com/rivo/tview"
)

// WorkspaceData holds daemon and synchronizer information for the header.
type WorkspaceData struct {
	Workspace     string
	User          string
	State         string
	Degraded      bool
	Conversations int32
	Messages      int32
	Subscribers   int32
	Uptime        time.Duration
}

// WorkspaceInfo displays workspace metadata in the header.
type WorkspaceInfo struct {
	*tview.TextView
	theme *Theme
}

// NewWorkspaceInfo creates a new workspace info panel.
func NewWorkspaceInfo(theme *Theme) *WorkspaceInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &WorkspaceInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the workspace info.
func (wi *WorkspaceInfo) Update(data *WorkspaceData) {
	wi.Clear()
	if data == nil {
		return
	}

	fgColor := colorName(wi.theme.FgColor)
	counterColor := colorName(wi.theme.CounterColor)

	user := data.User
	if user == "" {
		user = "-"
	}
	state := data.State
	stateColor := colorName(wi.feedColor(data))
	if data.Degraded {
		state += " (degraded)"
	}

	text := fmt.Sprintf(
		"[%s::b]Workspace:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]User:[-:-:-]      [%s]%s[-]\n"+
			"[%s::b]Feed:[-:-:-]      [%s]%s[-]\n"+
			"[%s::b]Convs:[-:-:-]     [%s]%d[-]\n"+
			"[%s::b]Msgs:[-:-:-]      [%s]%d[-]\n"+
			"[%s::b]Uptime:[-:-:-]    [%s]%s[-]",
		fgColor, counterColor, data.Workspace,
		fgColor, counterColor, user,
		fgColor, stateColor, state,
		fgColor, counterColor, data.Conversations,
		fgColor, counterColor, data.Messages,
		fgColor, counterColor, formatDuration(data.Uptime),
	)

	_, _ = fmt.Fprint(wi, text)
}

func (wi *WorkspaceInfo) feedColor(data *WorkspaceData) tcell.Color {
	switch {
	case data.Degraded:
		return wi.theme.DegradedColor
	case data.State == string(status.Live):
		return wi.theme.LiveColor
	case data.State == string(status.Loading):
		return wi.theme.LoadingColor
	default:
		return wi.theme.CounterColor
	}
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
