package tui

import (
	"errors"
	"fmt"

	"brd-tui/internal/app"
	"brd-tui/internal/brd"
	"brd-tui/internal/suggest"
	"brd-tui/internal/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the central Bubble Tea model that dispatches to screen models.
type Model struct {
	app    *app.App
	styles theme.Styles
	keys   KeyMap
	help   HelpModel

	screen      Screen
	screenStack []Screen
	width       int
	height      int
	err         error
	status      string
	gateway     *suggest.Status

	home         HomeScreen
	newProject   NewProjectScreen
	project      ProjectScreen
	recordForm   RecordFormScreen
	overview     OverviewScreen
	configEditor ConfigEditorScreen
}

// ---------------------------------------------------------------------------
// Model constructor
// ---------------------------------------------------------------------------

// NewModel creates the top-level TUI model with default styles and all screens.
func NewModel(a *app.App) Model {
	styles := theme.DefaultStyles()
	keys := DefaultKeyMap()

	return Model{
		app:    a,
		styles: styles,
		keys:   keys,
		help:   NewHelpModel(keys, styles),
		screen: ScreenHome,

		home:         NewHomeScreen(a, styles),
		newProject:   NewNewProjectScreen(a, styles),
		project:      NewProjectViewScreen(a, styles),
		recordForm:   NewRecordFormScreen(a, styles),
		overview:     NewOverviewScreen(styles),
		configEditor: NewConfigEditorScreen(a, styles),
	}
}

// ---------------------------------------------------------------------------
// tea.Model interface
// ---------------------------------------------------------------------------

// Init loads the project list and starts the gateway probe.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.home.init(),
		pingGatewayCmd(m.app),
	)
}

// Update handles all incoming messages by routing to the active screen
// and processing global keys and navigation messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.project.resize(msg.Width, msg.Height-1)
		m.recordForm.resize(msg.Width, msg.Height-1)
		return m, nil

	case tea.KeyMsg:
		if m.help.Visible() {
			m.help.Toggle()
			return m, nil
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// Text-entry screens take ? and q as input.
		if !m.capturesText() {
			if msg.String() == "?" {
				m.help.Toggle()
				return m, nil
			}
			if msg.String() == "q" && m.screen == ScreenHome && m.home.confirmDelete == "" {
				return m, tea.Quit
			}
		}

	case NavigateMsg:
		m.screenStack = append(m.screenStack, m.screen)
		m.screen = msg.Screen
		m.err = nil
		m.status = ""
		return m, m.initScreen(msg.Screen, msg.Data)

	case NavigateBackMsg:
		return m, m.back()

	case ErrorMsg:
		m.err = msg.Err
		m.status = ""
		// Screens with pending work need to hear about the failure.
		return m, m.updateActiveScreen(msg)

	case StatusMsg:
		m.status = string(msg)
		m.err = nil
		return m, nil

	case GatewayStatusMsg:
		st := msg.Status
		m.gateway = &st
		return m, schedulePing()

	case pingDueMsg:
		return m, pingGatewayCmd(m.app)

	case ProjectCreatedMsg:
		// The new project form is replaced rather than stacked.
		m.screen = ScreenProject
		m.project.open(msg.Project)
		m.status = fmt.Sprintf("Created %s project %q", msg.Project.Template, msg.Project.Overview.ProjectName)
		m.err = nil
		return m, nil

	case RecordSubmittedMsg:
		cmd := m.back()
		if err := m.project.apply(msg); err != nil {
			m.err = err
			return m, cmd
		}
		if msg.Index < 0 {
			m.status = fmt.Sprintf("Added %s record", msg.Kind.Label())
		} else {
			m.status = fmt.Sprintf("Updated %s record #%d", msg.Kind.Label(), msg.Index+1)
		}
		return m, cmd

	case OverviewSubmittedMsg:
		cmd := m.back()
		if err := m.project.setOverview(msg.Overview); err != nil {
			m.err = err
			return m, cmd
		}
		m.status = "Overview updated"
		return m, cmd
	}

	if cmd := m.updateActiveScreen(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View renders the active screen with an optional help overlay and status bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.help.Visible() {
		return m.help.View(m.width, m.height)
	}

	contentHeight := m.height - 1
	content := m.viewActiveScreen(m.width, contentHeight)
	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderStatusBar())
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

// capturesText reports whether the active screen is taking typed input.
func (m *Model) capturesText() bool {
	switch m.screen {
	case ScreenNewProject, ScreenRecordForm, ScreenOverview:
		return true
	case ScreenConfigEditor:
		return m.configEditor.Editing()
	}
	return false
}

// back pops the screen stack. The project screen keeps its state so
// unsaved edits survive a trip through a form.
func (m *Model) back() tea.Cmd {
	m.err = nil
	m.status = ""
	if len(m.screenStack) == 0 {
		m.screen = ScreenHome
		return m.home.init()
	}
	prev := m.screenStack[len(m.screenStack)-1]
	m.screenStack = m.screenStack[:len(m.screenStack)-1]
	m.screen = prev
	if prev == ScreenHome {
		return m.home.init()
	}
	return nil
}

// initScreen prepares a screen being navigated to.
func (m *Model) initScreen(screen Screen, data any) tea.Cmd {
	switch screen {
	case ScreenHome:
		return m.home.init()
	case ScreenNewProject:
		return m.newProject.reset()
	case ScreenProject:
		if p, ok := data.(*brd.Project); ok {
			m.project.open(p)
			return nil
		}
		m.err = errors.New("no project to show")
		return nil
	case ScreenRecordForm:
		if d, ok := data.(recordFormData); ok {
			return m.recordForm.open(d)
		}
		return nil
	case ScreenOverview:
		if o, ok := data.(brd.Overview); ok {
			return m.overview.open(o)
		}
		return nil
	case ScreenConfigEditor:
		m.configEditor.loadFields()
		return nil
	default:
		return nil
	}
}

// updateActiveScreen delegates Update to whichever screen is active.
func (m *Model) updateActiveScreen(msg tea.Msg) tea.Cmd {
	switch m.screen {
	case ScreenHome:
		return m.home.Update(msg)
	case ScreenNewProject:
		return m.newProject.Update(msg)
	case ScreenProject:
		return m.project.Update(msg)
	case ScreenRecordForm:
		return m.recordForm.Update(msg)
	case ScreenOverview:
		return m.overview.Update(msg)
	case ScreenConfigEditor:
		return m.configEditor.Update(msg)
	default:
		return nil
	}
}

// viewActiveScreen delegates View to whichever screen is active.
func (m *Model) viewActiveScreen(width, height int) string {
	switch m.screen {
	case ScreenHome:
		return m.home.View(width, height)
	case ScreenNewProject:
		return m.newProject.View(width, height)
	case ScreenProject:
		return m.project.View(width, height)
	case ScreenRecordForm:
		return m.recordForm.View(width, height)
	case ScreenOverview:
		return m.overview.View(width, height)
	case ScreenConfigEditor:
		return m.configEditor.View(width, height)
	default:
		return ""
	}
}

// renderStatusBar builds the single-line bar at the bottom of the viewport.
func (m *Model) renderStatusBar() string {
	var left string
	if m.err != nil {
		left = lipgloss.NewStyle().
			Foreground(theme.ColorAccent).
			Bold(true).
			Render(fmt.Sprintf(" Error: %s", m.err.Error()))
	} else if m.status != "" {
		left = lipgloss.NewStyle().
			Foreground(theme.ColorSuccess).
			Render(fmt.Sprintf(" %s", m.status))
	}

	right := m.renderGateway() + lipgloss.NewStyle().
		Foreground(theme.ColorTextSecondary).
		Render("  ? help ")

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	bar := lipgloss.JoinHorizontal(lipgloss.Top, left, spacer, right)

	return m.styles.StatusBar.Width(m.width).Render(bar)
}

func (m *Model) renderGateway() string {
	switch {
	case m.gateway == nil:
		return lipgloss.NewStyle().Foreground(theme.ColorTextSecondary).Render("ollama: checking")
	case m.gateway.Reachable:
		return m.styles.GatewayUp.Render(fmt.Sprintf("ollama: up (%d models)", len(m.gateway.Models)))
	default:
		return m.styles.GatewayDown.Render("ollama: down")
	}
}
