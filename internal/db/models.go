package db

import (
	"time"

	"brd-tui/internal/brd"
)

// ---------------------------------------------------------------------------
// Event constants
// ---------------------------------------------------------------------------

const (
	EventProjectCreated  = "project_created"
	EventProjectUpdated  = "project_updated"
	EventProjectDeleted  = "project_deleted"
	EventProjectExported = "project_exported"
	EventProjectImported = "project_imported"
	EventLLMCall         = "llm_call"
	EventError           = "error"
)

// validEventTypes is the set of allowed event type values.
var validEventTypes = map[string]bool{
	EventProjectCreated:  true,
	EventProjectUpdated:  true,
	EventProjectDeleted:  true,
	EventProjectExported: true,
	EventProjectImported: true,
	EventLLMCall:         true,
	EventError:           true,
}

// ValidEventType reports whether s is an allowed event type value.
func ValidEventType(s string) bool { return validEventTypes[s] }

const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var validLevels = map[string]bool{
	LevelInfo:  true,
	LevelWarn:  true,
	LevelError: true,
}

// ValidLevel reports whether s is an allowed event level.
func ValidLevel(s string) bool { return validLevels[s] }

// ---------------------------------------------------------------------------
// Row types
// ---------------------------------------------------------------------------

// ProjectSummary is one line of the project list.
type ProjectSummary struct {
	ID        string           `json:"project_id"`
	Name      string           `json:"project_name"`
	Template  brd.TemplateKind `json:"template_type"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Event is one entry of the append-only audit trail.
type Event struct {
	ID        int64     `json:"id"`
	Ts        time.Time `json:"ts"`
	Level     string    `json:"level"`
	EventType string    `json:"event_type"`
	ProjectID string    `json:"project_id,omitempty"`
	Message   string    `json:"message"`
}
