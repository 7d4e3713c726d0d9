package validation

import (
	"fmt"
	"sort"
	"sync"

	"github.com/andyoucreate/rilaykit/model"
)

// LayerRegistry is a thread-safe collection of validation layers indexed by
// id and queryable by level.
type LayerRegistry struct {
	mu     sync.RWMutex
	layers map[string]model.ValidationLayer
}

// RegistryStats summarizes registry contents.
type RegistryStats struct {
	Total   int
	ByLevel map[model.Level]int
}

// NewLayerRegistry creates an empty registry.
func NewLayerRegistry() *LayerRegistry {
	return &LayerRegistry{layers: make(map[string]model.ValidationLayer)}
}

// Register adds a layer. Layers are immutable; replacing one requires
// Unregister followed by Register.
func (r *LayerRegistry) Register(layer model.ValidationLayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if layer.ID == "" {
		return model.NewConfigurationError("layer id is required")
	}
	if _, exists := r.layers[layer.ID]; exists {
		return model.NewConflictError(fmt.Sprintf("layer %q already registered", layer.ID))
	}
	r.layers[layer.ID] = layer
	return nil
}

// Unregister removes a layer by id, reporting whether it was present.
func (r *LayerRegistry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.layers[id]; !ok {
		return false
	}
	delete(r.layers, id)
	return true
}

// Get returns the layer with the given id.
func (r *LayerRegistry) Get(id string) (model.ValidationLayer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.layers[id]
	return l, ok
}

// GetByLevel returns all layers at a level, sorted by priority.
func (r *LayerRegistry) GetByLevel(level model.Level) []model.ValidationLayer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []model.ValidationLayer
	for _, l := range r.layers {
		if l.Level == level {
			result = append(result, l)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority < result[j].Priority
	})
	return result
}

// GetAll returns every layer, sorted by level then priority. This is the
// mandated whole-form iteration order: later levels assume earlier ones
// already ran.
func (r *LayerRegistry) GetAll() []model.ValidationLayer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]model.ValidationLayer, 0, len(r.layers))
	for _, l := range r.layers {
		result = append(result, l)
	}
	sortLayers(result)
	return result
}

// Stats returns layer counts, total and per level.
func (r *LayerRegistry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RegistryStats{Total: len(r.layers), ByLevel: make(map[model.Level]int)}
	for _, l := range r.layers {
		stats.ByLevel[l.Level]++
	}
	return stats
}

// sortLayers orders layers by (level asc, priority asc), keeping insertion
// order among equals.
func sortLayers(layers []model.ValidationLayer) {
	sort.SliceStable(layers, func(i, j int) bool {
		if layers[i].Level != layers[j].Level {
			return layers[i].Level < layers[j].Level
		}
		return layers[i].Priority < layers[j].Priority
	})
}
