package tui

import (
	"time"

	"brd-tui/internal/brd"
	"brd-tui/internal/db"
	"brd-tui/internal/suggest"
)

// Screen identifies which screen the TUI is currently showing.
type Screen int

const (
	ScreenHome Screen = iota
	ScreenNewProject
	ScreenProject
	ScreenRecordForm
	ScreenOverview
	ScreenConfigEditor
)

// ---------------------------------------------------------------------------
// Navigation
// ---------------------------------------------------------------------------

// NavigateMsg tells the main model to switch to a different screen.
// Data carries optional context for the target screen.
type NavigateMsg struct {
	Screen Screen
	Data   any
}

// NavigateBackMsg tells the main model to go back to the previous screen.
type NavigateBackMsg struct{}

// ---------------------------------------------------------------------------
// Status and errors
// ---------------------------------------------------------------------------

// ErrorMsg carries an error to be displayed in the status bar.
type ErrorMsg struct{ Err error }

// StatusMsg carries a status string to be displayed in the status bar.
type StatusMsg string

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

// ProjectsLoadedMsg carries a freshly loaded project list.
type ProjectsLoadedMsg struct{ Projects []db.ProjectSummary }

// ProjectCreatedMsg is sent after a new project has been stored.
type ProjectCreatedMsg struct{ Project *brd.Project }

// ProjectSavedMsg reports a completed save of revision Rev.
type ProjectSavedMsg struct {
	ID        string
	Rev       int
	UpdatedAt time.Time
}

// ProjectDeletedMsg is sent after a project has been removed.
type ProjectDeletedMsg struct{ ID string }

// ExportedMsg carries the path of a written spreadsheet.
type ExportedMsg struct{ Path string }

// RecordSubmittedMsg carries a validated record from the record form.
// Index is -1 for a new record.
type RecordSubmittedMsg struct {
	Kind   brd.Kind
	Index  int
	Record brd.Record
}

// OverviewSubmittedMsg carries a validated overview from the overview form.
type OverviewSubmittedMsg struct{ Overview brd.Overview }

// ---------------------------------------------------------------------------
// Gateway
// ---------------------------------------------------------------------------

// GatewayStatusMsg carries the result of a background probe.
type GatewayStatusMsg struct{ Status suggest.Status }

// pingDueMsg schedules the next probe.
type pingDueMsg struct{}

// SuggestionMsg carries the outcome of a suggestion request. Seq ties it
// to the form that asked; stale results are dropped.
type SuggestionMsg struct {
	Seq        int
	Suggestion suggest.Suggestion
	Err        error
}
