package prediction

import (
	"context"

	"inferd/internal/types"
)

// SyncGuard scopes one synchronous submit call (Init then Run) over the slot.
// Callers defer Close: after an ordinary completion it does nothing, but if
// the submit is abandoned before the run finishes, teardown cancels the
// engine and force-resets the slot so a vanished caller can never leave it
// stuck occupied.
type SyncGuard struct {
	prediction *Prediction
	owned      bool
	completed  bool
}

// NewSyncGuard wraps the slot for a single submit call.
func NewSyncGuard(p *Prediction) *SyncGuard {
	return &SyncGuard{prediction: p}
}

// Init claims the slot for this guard's submission.
func (g *SyncGuard) Init(id string, req types.Request) error {
	if err := g.prediction.Init(id, req); err != nil {
		return err
	}
	g.owned = true
	return nil
}

// Run drives the prediction to completion and consumes its result.
func (g *SyncGuard) Run(ctx context.Context) (types.Response, error) {
	resp, err := g.prediction.Run(ctx)
	if err == nil {
		g.completed = true
	}
	return resp, err
}

// Close releases the slot. A guard that claimed the slot but never reached a
// consumed result cancels and resets it; anything else is a no-op.
func (g *SyncGuard) Close() {
	if !g.owned || g.completed {
		return
	}
	g.prediction.abort()
}
