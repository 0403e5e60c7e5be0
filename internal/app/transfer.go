package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"brd-tui/internal/brd"
	"brd-tui/internal/db"
)

// DumpJSON returns the stored project as an indented JSON document.
func (a *App) DumpJSON(ctx context.Context, id string) ([]byte, error) {
	p, err := a.db.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("app: encode project: %w", err)
	}
	return append(out, '\n'), nil
}

// ImportJSON stores a project document under a fresh identifier, so an
// import never overwrites an existing project. created_at is kept when the
// document has one; updated_at becomes the import time.
func (a *App) ImportJSON(ctx context.Context, data []byte) (*brd.Project, error) {
	var p brd.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("app: decode project: %w", err)
	}
	p.Normalize()
	oldID := p.ID
	id, err := brd.NewID()
	if err != nil {
		return nil, err
	}
	p.ID = id
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.Before(p.CreatedAt) {
		p.UpdatedAt = p.CreatedAt
	}
	if err := a.db.Save(ctx, &p); err != nil {
		return nil, fmt.Errorf("app: import project: %w", err)
	}

	msg := fmt.Sprintf("imported project %q", p.Overview.ProjectName)
	if oldID != "" {
		msg += " from " + oldID
	}
	a.audit(ctx, db.LevelInfo, db.EventProjectImported, p.ID, msg)
	a.notify(Change{Type: ChangeSaved, ProjectID: p.ID, ProjectName: p.Overview.ProjectName, At: p.UpdatedAt})
	return &p, nil
}
