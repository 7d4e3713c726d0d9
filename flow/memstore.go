package flow

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andyoucreate/rilaykit/model"
)

// MemoryStore is an in-memory Store for tests and single-process hosts.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]model.FlowSnapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]model.FlowSnapshot)}
}

// Save upserts the snapshot keyed by workflow id.
func (s *MemoryStore) Save(_ context.Context, snap model.FlowSnapshot) error {
	if snap.WorkflowID == "" {
		return model.NewConfigurationError("snapshot workflow id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.WorkflowID] = snap
	return nil
}

// Load retrieves the snapshot for a workflow id.
func (s *MemoryStore) Load(_ context.Context, workflowID string) (model.FlowSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[workflowID]
	if !ok {
		return model.FlowSnapshot{}, model.NewNotFoundError(
			fmt.Sprintf("snapshot for workflow %q not found", workflowID))
	}
	return snap, nil
}

// Delete removes a snapshot; missing snapshots are ignored.
func (s *MemoryStore) Delete(_ context.Context, workflowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, workflowID)
	return nil
}

// List returns all snapshots sorted by last-saved time descending.
func (s *MemoryStore) List(_ context.Context) ([]model.FlowSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.FlowSnapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		result = append(result, snap)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastSaved.After(result[j].LastSaved)
	})
	return result, nil
}

// Len returns the number of stored snapshots. For testing.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}
