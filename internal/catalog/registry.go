package catalog

import (
	"fmt"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

// Registry holds every purchasable item, in registration order.
type Registry struct {
	items  map[string]Item
	order  []string
	voices map[string]Voice
}

// NewRegistry creates a registry with the built-in voices and themes.
func NewRegistry() *Registry {
	r := newEmptyRegistry()
	for _, v := range Voices() {
		r.Register(v)
	}
	for _, t := range Themes() {
		r.Register(t)
	}
	return r
}

// NewRegistryWithItems creates a registry with custom items (for testing).
func NewRegistryWithItems(items ...Item) *Registry {
	r := newEmptyRegistry()
	for _, item := range items {
		r.Register(item)
	}
	return r
}

func newEmptyRegistry() *Registry {
	return &Registry{
		items:  make(map[string]Item),
		voices: make(map[string]Voice),
	}
}

// Register adds an item. Re-registering an id replaces the entry in place.
func (r *Registry) Register(item Item) {
	if _, exists := r.items[item.ID()]; !exists {
		r.order = append(r.order, item.ID())
	}
	r.items[item.ID()] = item
	if v, ok := item.(Voice); ok {
		r.voices[v.ID()] = v
	}
}

// Get returns an item by ID.
func (r *Registry) Get(id string) (Item, bool) {
	item, ok := r.items[id]
	return item, ok
}

// Lookup returns an item by ID or domain.ErrUnknownItem.
func (r *Registry) Lookup(id string) (Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownItem, id)
	}
	return item, nil
}

// GetAll returns all items in registration order.
func (r *Registry) GetAll() []Item {
	result := make([]Item, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.items[id])
	}
	return result
}

// ByKind returns the items of one catalog.
func (r *Registry) ByKind(kind Kind) []Item {
	var result []Item
	for _, item := range r.GetAll() {
		if item.Kind() == kind {
			result = append(result, item)
		}
	}
	return result
}

// Voice returns a voice style, falling back to the default for unknown ids.
func (r *Registry) Voice(id string) Voice {
	if v, ok := r.voices[id]; ok {
		return v
	}
	if v, ok := r.voices[DefaultVoiceID]; ok {
		return v
	}
	return Voices()[0]
}

// IsKind reports whether id names an item of the given kind.
func (r *Registry) IsKind(id string, kind Kind) bool {
	item, ok := r.items[id]
	return ok && item.Kind() == kind
}

// FreeIDs returns the ids that are always unlocked.
func (r *Registry) FreeIDs() []string {
	var ids []string
	for _, item := range r.GetAll() {
		if item.Price() == 0 {
			ids = append(ids, item.ID())
		}
	}
	return ids
}
