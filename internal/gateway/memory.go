package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is an in-process Gateway for tests and for running without a
// database. Values are stored as their JSON encoding so behavior matches
// the Postgres mirror exactly.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]json.RawMessage)}
}

func (g *Memory) Get(_ context.Context, collection string, out any) error {
	g.mu.RLock()
	data, ok := g.collections[collection]
	g.mu.RUnlock()
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode collection %q: %w", collection, err)
	}
	return nil
}

func (g *Memory) Save(_ context.Context, collection string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode collection %q: %w", collection, err)
	}
	g.mu.Lock()
	g.collections[collection] = data
	g.mu.Unlock()
	return nil
}

func (g *Memory) ExportSnapshot(_ context.Context) (*Document, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	doc := &Document{Collections: make(map[string]json.RawMessage, len(g.collections))}
	for name, data := range g.collections {
		doc.Collections[name] = append(json.RawMessage(nil), data...)
	}
	return doc, nil
}

func (g *Memory) ImportSnapshot(_ context.Context, doc *Document) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.collections = make(map[string]json.RawMessage, len(doc.Collections))
	for name, data := range doc.Collections {
		g.collections[name] = append(json.RawMessage(nil), data...)
	}
	return nil
}
