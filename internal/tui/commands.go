package tui

import (
	"context"
	"fmt"
	"time"

	"brd-tui/internal/app"
	"brd-tui/internal/brd"
	"brd-tui/internal/suggest"

	tea "github.com/charmbracelet/bubbletea"
)

// pingInterval is the gap between background gateway probes.
const pingInterval = 30 * time.Second

func loadProjectsCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		list, err := a.ListProjects(context.Background())
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("load projects: %w", err)}
		}
		return ProjectsLoadedMsg{Projects: list}
	}
}

// openProjectCmd loads a project and navigates to it.
func openProjectCmd(a *app.App, id string) tea.Cmd {
	return func() tea.Msg {
		p, err := a.LoadProject(context.Background(), id)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("open project: %w", err)}
		}
		return NavigateMsg{Screen: ScreenProject, Data: p}
	}
}

func createProjectCmd(a *app.App, o brd.Overview, t brd.TemplateKind) tea.Cmd {
	return func() tea.Msg {
		p, err := a.CreateProject(context.Background(), o, t)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return ProjectCreatedMsg{Project: p}
	}
}

// saveProjectCmd stores a snapshot so the screen can keep editing while
// the write runs.
func saveProjectCmd(a *app.App, p *brd.Project, rev int) tea.Cmd {
	snap := p.Clone()
	return func() tea.Msg {
		if err := a.SaveProject(context.Background(), snap); err != nil {
			return ErrorMsg{Err: fmt.Errorf("save: %w", err)}
		}
		return ProjectSavedMsg{ID: snap.ID, Rev: rev, UpdatedAt: snap.UpdatedAt}
	}
}

func deleteProjectCmd(a *app.App, id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.DeleteProject(context.Background(), id); err != nil {
			return ErrorMsg{Err: fmt.Errorf("delete: %w", err)}
		}
		return ProjectDeletedMsg{ID: id}
	}
}

func exportProjectCmd(a *app.App, p *brd.Project) tea.Cmd {
	snap := p.Clone()
	return func() tea.Msg {
		path, err := a.ExportProject(context.Background(), snap, "")
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return ExportedMsg{Path: path}
	}
}

func pingGatewayCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		return GatewayStatusMsg{Status: a.Probe(context.Background())}
	}
}

func schedulePing() tea.Cmd {
	return tea.Tick(pingInterval, func(time.Time) tea.Msg { return pingDueMsg{} })
}

// suggestCmd runs a suggestion with the configured model and temperature.
func suggestCmd(a *app.App, seq int, k brd.Kind, hint string) tea.Cmd {
	return func() tea.Msg {
		s, err := a.Suggest(context.Background(), suggest.Request{Kind: k, Hint: hint, Temperature: -1})
		return SuggestionMsg{Seq: seq, Suggestion: s, Err: err}
	}
}
