package store

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-ledmerge/pkg/profile"
)

// Memory is an in-process ConfigurationStore. Documents are cloned on the way
// in and out so callers never share storage with the store.
type Memory struct {
	mu    sync.RWMutex
	docs  map[string]profile.Document
	loads map[string]int
}

var _ ConfigurationStore = (*Memory)(nil)

// NewMemory returns a store seeded with docs.
func NewMemory(docs map[string]profile.Document) *Memory {
	m := &Memory{
		docs:  make(map[string]profile.Document, len(docs)),
		loads: make(map[string]int),
	}
	for location, doc := range docs {
		m.docs[location] = doc.Clone()
	}
	return m
}

func (m *Memory) Load(ctx context.Context, location string) (profile.Document, error) {
	if err := ctx.Err(); err != nil {
		return profile.Document{}, NewError("load", location, KindRead, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads[location]++
	doc, ok := m.docs[location]
	if !ok {
		return profile.Document{}, NotFound("load", location, nil)
	}
	return doc.Clone(), nil
}

func (m *Memory) Save(ctx context.Context, doc profile.Document, location string) error {
	if err := ctx.Err(); err != nil {
		return NewError("save", location, KindWrite, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[location] = doc.Clone()
	return nil
}

// Loads reports how many times location was requested.
func (m *Memory) Loads(location string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loads[location]
}

// Locations lists stored locations in sorted order.
func (m *Memory) Locations() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.docs))
	for location := range m.docs {
		out = append(out, location)
	}
	sort.Strings(out)
	return out
}
