package catalog

import (
	"fmt"
	"sort"
	"sync"

	"gotimbre/domain/core"
	"gotimbre/ports"
)

// InMemoryCatalog is a constructed, injectable MethodCatalog. Categories are
// iterated in sorted order; methods within a category in registration order.
type InMemoryCatalog struct {
	methods    map[core.MethodID]ports.Method
	byCategory map[core.Category][]core.MethodID
	mu         sync.RWMutex
}

// New creates a catalog pre-loaded with methods
func New(methods ...ports.Method) (*InMemoryCatalog, error) {
	c := &InMemoryCatalog{
		methods:    make(map[core.MethodID]ports.Method),
		byCategory: make(map[core.Category][]core.MethodID),
	}
	for _, m := range methods {
		if err := c.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register adds a method. Duplicate ids are rejected; full compliance is
// checked separately by the generator's validation gate.
func (c *InMemoryCatalog) Register(m ports.Method) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m.ID == "" {
		return fmt.Errorf("method id cannot be empty")
	}
	if _, exists := c.methods[m.ID]; exists {
		return fmt.Errorf("method %s already registered", m.ID)
	}
	c.methods[m.ID] = m
	c.byCategory[m.Category] = append(c.byCategory[m.Category], m.ID)
	return nil
}

var _ ports.MethodCatalog = (*InMemoryCatalog)(nil)

// Categories returns every category with at least one registration, sorted
func (c *InMemoryCatalog) Categories() []core.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]core.Category, 0, len(c.byCategory))
	for cat := range c.byCategory {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MethodsFor returns the methods of category in registration order
func (c *InMemoryCatalog) MethodsFor(category core.Category) []core.MethodID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := c.byCategory[category]
	out := make([]core.MethodID, len(ids))
	copy(out, ids)
	return out
}

// Method looks up a method by id
func (c *InMemoryCatalog) Method(id core.MethodID) (ports.Method, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.methods[id]
	if !ok {
		return ports.Method{}, fmt.Errorf("%w: %s", core.ErrMethodNotFound, id)
	}
	return m, nil
}
