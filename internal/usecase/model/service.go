package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/mapping"
	dommodel "github.com/kailas-cloud/searchsync/internal/domain/model"
)

// Registry binds model names to their index, type and installed mapping.
type Registry struct {
	installer MappingInstaller

	mu      sync.RWMutex
	byName  map[string]dommodel.Model
	order   []string
	byIndex map[string]map[string]struct{}
}

// New creates a Registry. installer may be nil, in which case mappings are generated but not installed.
func New(installer MappingInstaller) *Registry {
	return &Registry{
		installer: installer,
		byName:    make(map[string]dommodel.Model),
		byIndex:   make(map[string]map[string]struct{}),
	}
}

// Register generates the mapping for d, installs it and records the binding.
// Mapping generation failures are fatal and nothing is installed.
func (r *Registry) Register(ctx context.Context, d dommodel.Definition) (dommodel.Model, error) {
	m, err := mapping.Generate(d.Schema)
	if err != nil {
		return dommodel.Model{}, fmt.Errorf("generate mapping for %s: %w", d.Name, err)
	}
	mdl, err := dommodel.New(d, m)
	if err != nil {
		return dommodel.Model{}, fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[mdl.Name()]; ok {
		return dommodel.Model{}, fmt.Errorf("model %s: %w", mdl.Name(), domain.ErrAlreadyExists)
	}
	if types := r.byIndex[mdl.Index()]; types != nil {
		if _, ok := types[mdl.Type()]; ok {
			return dommodel.Model{}, fmt.Errorf("type %s in index %s: %w", mdl.Type(), mdl.Index(), domain.ErrAlreadyExists)
		}
	}

	if r.installer != nil {
		if err := r.installer.CreateMapping(ctx, mdl.Index(), mdl.Type(), mdl.Mapping()); err != nil {
			return dommodel.Model{}, fmt.Errorf("install mapping %s/%s: %w", mdl.Index(), mdl.Type(), err)
		}
	}

	r.byName[mdl.Name()] = mdl
	r.order = append(r.order, mdl.Name())
	if r.byIndex[mdl.Index()] == nil {
		r.byIndex[mdl.Index()] = make(map[string]struct{})
	}
	r.byIndex[mdl.Index()][mdl.Type()] = struct{}{}
	return mdl, nil
}

// Get returns a registered model by name.
func (r *Registry) Get(name string) (dommodel.Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byName[name]
	if !ok {
		return dommodel.Model{}, fmt.Errorf("%s: %w", name, domain.ErrModelNotFound)
	}
	return m, nil
}

// List returns registered models in registration order.
func (r *Registry) List() []dommodel.Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]dommodel.Model, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// IsShared reports whether more than one type is bound to index.
func (r *Registry) IsShared(index string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byIndex[index]) > 1
}
