package app

import (
	"context"
	"fmt"

	"brd-tui/internal/brd"
	"brd-tui/internal/config"
	"brd-tui/internal/db"
	"brd-tui/internal/suggest"
)

// Suggest asks the gateway for a draft record. An empty model or a
// negative temperature falls back to the configured defaults.
func (a *App) Suggest(ctx context.Context, req suggest.Request) (suggest.Suggestion, error) {
	cfg := a.Config()
	if req.Model == "" {
		req.Model = brd.ModelName(cfg.LLM.DefaultModel)
	}
	if req.Temperature < 0 {
		req.Temperature = cfg.LLM.Temperature
	}

	s, err := a.Gateway().Suggest(ctx, req)
	if err != nil {
		a.audit(ctx, db.LevelWarn, db.EventLLMCall, "",
			fmt.Sprintf("suggestion for %s with %s failed: %v", req.Kind, req.Model, err))
		return suggest.Suggestion{}, err
	}
	a.audit(ctx, db.LevelInfo, db.EventLLMCall, "", fmt.Sprintf("suggestion for %s with %s", req.Kind, req.Model))
	a.remember(func(st *config.State) { st.LastModel = string(req.Model) })
	return s, nil
}

// Probe reports gateway reachability and the models it serves.
func (a *App) Probe(ctx context.Context) suggest.Status {
	return a.Gateway().Status(ctx)
}
