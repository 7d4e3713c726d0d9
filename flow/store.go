package flow

import (
	"context"

	"github.com/andyoucreate/rilaykit/model"
)

// Store persists flow snapshots for external resumption. Implementations
// must be safe for concurrent use.
type Store interface {
	// Save upserts the snapshot keyed by its workflow id.
	Save(ctx context.Context, snap model.FlowSnapshot) error
	// Load returns the snapshot for a workflow id, or a NOT_FOUND error.
	Load(ctx context.Context, workflowID string) (model.FlowSnapshot, error)
	// Delete removes a snapshot. Deleting a missing snapshot is not an
	// error.
	Delete(ctx context.Context, workflowID string) error
	// List returns all snapshots, most recently saved first.
	List(ctx context.Context) ([]model.FlowSnapshot, error)
}
