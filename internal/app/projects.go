package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brd-tui/internal/brd"
	"brd-tui/internal/config"
	"brd-tui/internal/db"
	"brd-tui/internal/export"
)

// Change kinds delivered to subscribers.
const (
	ChangeSaved   = "project_saved"
	ChangeDeleted = "project_deleted"
)

// Change describes a stored project that was written or removed.
type Change struct {
	Type        string    `json:"type"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name,omitempty"`
	At          time.Time `json:"at"`
}

// Subscribe registers fn to be called after every successful save and
// delete. fn runs on the caller's goroutine and must not block.
func (a *App) Subscribe(fn func(Change)) {
	a.mu.Lock()
	a.listeners = append(a.listeners, fn)
	a.mu.Unlock()
}

func (a *App) notify(c Change) {
	a.mu.RLock()
	ls := append([]func(Change){}, a.listeners...)
	a.mu.RUnlock()
	for _, fn := range ls {
		fn(c)
	}
}

// audit writes an entry to the event table and the audit log. Failures
// to record are logged and otherwise ignored.
func (a *App) audit(ctx context.Context, level, eventType, projectID, msg string) {
	switch level {
	case db.LevelError:
		a.logs.Audit.Error(msg, "event", eventType, "project", projectID)
	case db.LevelWarn:
		a.logs.Audit.Warn(msg, "event", eventType, "project", projectID)
	default:
		a.logs.Audit.Info(msg, "event", eventType, "project", projectID)
	}
	if err := a.db.RecordEvent(ctx, level, eventType, projectID, msg); err != nil {
		a.logs.System.Warn("app: record event failed", "event", eventType, "err", err)
	}
}

func (a *App) remember(fn func(*config.State)) {
	a.mu.Lock()
	fn(a.state)
	err := config.SaveState(a.state, a.statePath)
	a.mu.Unlock()
	if err != nil {
		a.logs.System.Warn("app: save state failed", "err", err)
	}
}

// CreateProject starts a project and stores it.
func (a *App) CreateProject(ctx context.Context, o brd.Overview, t brd.TemplateKind) (*brd.Project, error) {
	p, err := brd.Create(o, t)
	if err != nil {
		return nil, err
	}
	if err := a.db.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("app: create project: %w", err)
	}
	a.audit(ctx, db.LevelInfo, db.EventProjectCreated, p.ID,
		fmt.Sprintf("created %s project %q", p.Template, p.Overview.ProjectName))
	a.remember(func(s *config.State) { s.Opened(p.ID) })
	a.notify(Change{Type: ChangeSaved, ProjectID: p.ID, ProjectName: p.Overview.ProjectName, At: p.UpdatedAt})
	return p, nil
}

// LoadProject reads a project and marks it as the last opened one.
func (a *App) LoadProject(ctx context.Context, id string) (*brd.Project, error) {
	p, err := a.db.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	a.remember(func(s *config.State) { s.Opened(id) })
	return p, nil
}

// SaveProject stores p. On failure p is unchanged and the caller keeps
// working on it.
func (a *App) SaveProject(ctx context.Context, p *brd.Project) error {
	if err := a.db.Save(ctx, p); err != nil {
		var ve *brd.ValidationError
		if !errors.As(err, &ve) {
			a.audit(ctx, db.LevelError, db.EventError, p.ID, "save failed: "+err.Error())
		}
		return err
	}
	a.audit(ctx, db.LevelInfo, db.EventProjectUpdated, p.ID, fmt.Sprintf("saved project %q", p.Overview.ProjectName))
	a.notify(Change{Type: ChangeSaved, ProjectID: p.ID, ProjectName: p.Overview.ProjectName, At: p.UpdatedAt})
	return nil
}

// DeleteProject removes a project permanently.
func (a *App) DeleteProject(ctx context.Context, id string) error {
	if err := a.db.Delete(ctx, id); err != nil {
		return err
	}
	a.audit(ctx, db.LevelWarn, db.EventProjectDeleted, id, "deleted project")
	a.remember(func(s *config.State) { s.Forget(id) })
	a.notify(Change{Type: ChangeDeleted, ProjectID: id, At: time.Now().UTC()})
	return nil
}

// ListProjects returns every stored project, most recently updated first.
func (a *App) ListProjects(ctx context.Context) ([]db.ProjectSummary, error) {
	return a.db.List(ctx)
}

// Events returns the newest audit events for a project, or for all
// projects when id is empty.
func (a *App) Events(ctx context.Context, id string, limit int) ([]db.Event, error) {
	return a.db.ListEvents(ctx, id, limit)
}

// ExportProject writes p as a spreadsheet into dir, or into the
// configured export directory when dir is empty, and returns the path.
func (a *App) ExportProject(ctx context.Context, p *brd.Project, dir string) (string, error) {
	if dir == "" {
		dir = a.ExportDir()
	}
	path, err := export.WriteFile(dir, p)
	if err != nil {
		a.audit(ctx, db.LevelError, db.EventError, p.ID, "export failed: "+err.Error())
		return "", err
	}
	a.audit(ctx, db.LevelInfo, db.EventProjectExported, p.ID, "exported to "+path)
	return path, nil
}
