package service

import (
	"context"
	"sync"

	"github.com/tavolaapp/tavola-admin/internal/model"
)

// ConfirmationRequest is a pending delete awaiting explicit confirmation.
type ConfirmationRequest struct {
	Kind  model.Kind
	ID    string
	Label string
}

// Gate separates the intent to delete from its execution. The catalog's
// delete is unexported; this gate is the only path to it, so nothing is
// ever deleted without a confirmation step in between.
type Gate struct {
	mu      sync.Mutex
	pending *ConfirmationRequest
	catalog *CatalogService
}

func NewGate(catalog *CatalogService) *Gate {
	return &Gate{catalog: catalog}
}

// RequestDelete opens a confirmation request, discarding any prior one
// without side effects.
func (g *Gate) RequestDelete(kind model.Kind, id, label string) {
	g.mu.Lock()
	g.pending = &ConfirmationRequest{Kind: kind, ID: id, Label: label}
	g.mu.Unlock()
}

// Pending returns the open request, or nil.
func (g *Gate) Pending() *ConfirmationRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return nil
	}
	r := *g.pending
	return &r
}

// Confirm executes the pending delete and clears the request regardless of
// outcome. With no request open it does nothing.
func (g *Gate) Confirm(ctx context.Context) error {
	g.mu.Lock()
	req := g.pending
	g.pending = nil
	g.mu.Unlock()
	if req == nil {
		return nil
	}
	return g.catalog.delete(ctx, req.Kind, req.ID)
}

// Cancel clears the pending request without deleting anything.
func (g *Gate) Cancel() {
	g.mu.Lock()
	g.pending = nil
	g.mu.Unlock()
}
