// Package profile keeps the named pricing regimes a costing run can be
// evaluated under.
package profile

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bakeops/backend/internal/domain/costing"
	"github.com/bakeops/backend/internal/domain/shared"
	"github.com/bakeops/backend/internal/infrastructure/config"
)

// Registry manages pricing profile registrations. It is safe for
// concurrent use.
type Registry struct {
	mu          sync.RWMutex
	profiles    map[string]costing.Profile
	defaultName string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		profiles: make(map[string]costing.Profile),
	}
}

// NewRegistryFromProfiles registers every profile and makes defaultName the
// default. An empty defaultName selects the first profile.
func NewRegistryFromProfiles(profiles []costing.Profile, defaultName string) (*Registry, error) {
	r := NewRegistry()
	for _, p := range profiles {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	if defaultName == "" && len(profiles) > 0 {
		defaultName = profiles[0].Name
	}
	if defaultName != "" {
		if err := r.SetDefault(defaultName); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewRegistryFromConfig builds a registry from the costing section of the
// application config
func NewRegistryFromConfig(cfg config.CostingConfig) (*Registry, error) {
	profiles, err := cfg.BuildProfiles()
	if err != nil {
		return nil, err
	}
	return NewRegistryFromProfiles(profiles, cfg.DefaultProfile)
}

// Register adds a profile. Names are unique.
func (r *Registry) Register(p costing.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[p.Name]; exists {
		return fmt.Errorf("%w: profile '%s' already registered", shared.ErrAlreadyExists, p.Name)
	}
	r.profiles[p.Name] = p
	return nil
}

// Get returns a profile by name
func (r *Registry) Get(name string) (costing.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.profiles[name]
	if !exists {
		return costing.Profile{}, fmt.Errorf("%w: profile '%s' not found", shared.ErrNotFound, name)
	}
	return p, nil
}

// Resolve returns a profile by name, or the default if name is empty
func (r *Registry) Resolve(name string) (costing.Profile, error) {
	if name == "" {
		r.mu.RLock()
		name = r.defaultName
		r.mu.RUnlock()
		if name == "" {
			return costing.Profile{}, fmt.Errorf("%w: no default profile set", shared.ErrNotFound)
		}
	}
	return r.Get(name)
}

// List returns every profile sorted by name, the default first
func (r *Registry) List() []costing.Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]costing.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if (out[i].Name == r.defaultName) != (out[j].Name == r.defaultName) {
			return out[i].Name == r.defaultName
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Names returns the registered profile names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetDefault makes a registered profile the default
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[name]; !exists {
		return fmt.Errorf("%w: profile '%s' not found", shared.ErrNotFound, name)
	}
	r.defaultName = name
	return nil
}

// DefaultName returns the name of the default profile, or "" if none is set
func (r *Registry) DefaultName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultName
}

// Len returns the number of registered profiles
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}
