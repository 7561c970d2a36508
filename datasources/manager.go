/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package datasources

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/recordgrid/core/rows"
	"github.com/google/recordgrid/internal/log"
)

// Manager handles loading and caching of sources. Sources are registered
// eagerly; rows are loaded lazily on first use.
type Manager struct {
	mu sync.RWMutex

	loaders map[string]Loader
	sources map[string]Source
	// cached rows indexed by source name
	cache map[string][]rows.Row
}

// NewManager creates a manager without loaders.
func NewManager() *Manager {
	return &Manager{
		loaders: make(map[string]Loader),
		sources: make(map[string]Source),
		cache:   make(map[string][]rows.Row),
	}
}

// NewDefaultManager creates a manager with the built-in loaders.
func NewDefaultManager() *Manager {
	m := NewManager()
	m.RegisterLoader(NewYamlLoader())
	m.RegisterLoader(NewCsvLoader())
	m.RegisterLoader(NewProtoLoader())
	return m
}

// RegisterLoader registers a loader for its source type, replacing any
// loader registered for the same type.
func (m *Manager) RegisterLoader(l Loader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaders[l.SourceType()] = l
}

// Loader returns the loader registered for sourceType.
func (m *Manager) Loader(sourceType string) (Loader, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.loaders[sourceType]
	return l, ok
}

// AddSource registers src. The type is detected from the path when unset.
// Registering a name again replaces the source and drops its cached rows.
func (m *Manager) AddSource(src Source) error {
	if src.Type == "" {
		src.Type = DetectType(src.Path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loaders[src.Type]; !ok {
		return fmt.Errorf("source %q: %w %q", src.Name, ErrUnknownSourceType, src.Type)
	}
	m.sources[src.Name] = src
	delete(m.cache, src.Name)
	return nil
}

// SourceNames returns the registered source names in sorted order.
func (m *Manager) SourceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.sources))
	for name := range m.sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadRows returns the rows of the named source, loading them on first use.
// Callers get their own copy and may modify it.
func (m *Manager) LoadRows(ctx context.Context, name string) ([]rows.Row, error) {
	m.mu.RLock()
	if cached, ok := m.cache[name]; ok {
		m.mu.RUnlock()
		return rows.CloneAll(cached), nil
	}
	src, ok := m.sources[name]
	if !ok {
		m.mu.RUnlock()
		return nil, fmt.Errorf("%w %q", ErrUnknownSource, name)
	}
	loader := m.loaders[src.Type]
	m.mu.RUnlock()

	log.FromContext(ctx).Debug("loading source", "name", name, "type", src.Type, "path", src.Path)
	loaded, err := loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to load source %q: %w", name, err)
	}

	m.mu.Lock()
	m.cache[name] = loaded
	m.mu.Unlock()
	return rows.CloneAll(loaded), nil
}

// InvalidateCache removes a source from the cache, forcing a reload on next
// access.
func (m *Manager) InvalidateCache(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, name)
}

// IsLoaded reports whether the rows of a source are cached.
func (m *Manager) IsLoaded(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.cache[name]
	return ok
}
