// Package catalog holds the node-type definitions shown in the palette.
// Definitions are loaded once from JSON and cached in memory; the editing
// core only ever copies TypeName and DefaultConfig out of them.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/markus41/flowcanvas/internal/canvas/core"
)

// Catalog is an in-memory, load-once index of node-type definitions.
type Catalog struct {
	mu     sync.RWMutex
	byType map[string]core.NodeTypeDefinition
	order  []string
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{byType: make(map[string]core.NodeTypeDefinition)}
}

// Load reads a JSON array of node-type definitions, replacing the
// current contents. Later entries with a duplicate type name win.
func (c *Catalog) Load(r io.Reader) error {
	var defs []core.NodeTypeDefinition
	if err := json.NewDecoder(r).Decode(&defs); err != nil {
		return fmt.Errorf("decoding catalog: %w", err)
	}

	byType := make(map[string]core.NodeTypeDefinition, len(defs))
	order := make([]string, 0, len(defs))
	for _, def := range defs {
		if _, seen := byType[def.TypeName]; !seen {
			order = append(order, def.TypeName)
		}
		byType[def.TypeName] = def
	}

	c.mu.Lock()
	c.byType = byType
	c.order = order
	c.mu.Unlock()
	return nil
}

// LoadFile loads the catalog from a JSON file on disk.
func (c *Catalog) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()
	return c.Load(f)
}

// Get returns the definition for a type name.
func (c *Catalog) Get(typeName string) (core.NodeTypeDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.byType[typeName]
	return def, ok
}

// Types returns all definitions in load order.
func (c *Catalog) Types() []core.NodeTypeDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.NodeTypeDefinition, 0, len(c.order))
	for _, typeName := range c.order {
		out = append(out, c.byType[typeName])
	}
	return out
}

// Categories returns the distinct category names in order of first
// appearance.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, typeName := range c.order {
		category := c.byType[typeName].Category
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		out = append(out, category)
	}
	return out
}

// Search returns definitions whose type name, display name, or
// description contains the query, case-insensitively. An empty query
// matches everything.
func (c *Catalog) Search(query string) []core.NodeTypeDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(query))
	var out []core.NodeTypeDefinition
	for _, typeName := range c.order {
		def := c.byType[typeName]
		if q == "" ||
			strings.Contains(strings.ToLower(def.TypeName), q) ||
			strings.Contains(strings.ToLower(def.DisplayName), q) ||
			strings.Contains(strings.ToLower(def.Description), q) {
			out = append(out, def)
		}
	}
	return out
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byType)
}
