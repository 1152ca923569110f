package component

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
)

// ErrNotFound is returned when a component name is not registered.
var ErrNotFound = errors.New("component: not found")

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ContextFunc computes extra template context for a component render. It
// receives the resolved props and the caller's flattened context.
type ContextFunc func(props map[string]any, ctx map[string]any) (map[string]any, error)

// Prop declares a named argument the component consumes instead of passing
// it through as an HTML attribute.
type Prop struct {
	Name     string `json:"name" yaml:"name"`
	Required bool   `json:"required" yaml:"required"`
	Default  any    `json:"default,omitempty" yaml:"default,omitempty"`
}

// Descriptor bundles the component template with its props, context hook
// and asset dependencies.
type Descriptor struct {
	Name        string
	Template    string
	Block       bool
	Props       []Prop
	Context     ContextFunc
	Stylesheets []string
	Scripts     []string
}

// Validate checks the descriptor can back a template tag.
func (d Descriptor) Validate() error {
	if !IsIdentifier(d.Name) {
		return fmt.Errorf("component: invalid component name %q", d.Name)
	}
	if strings.TrimSpace(d.Template) == "" {
		return fmt.Errorf("component: template for %q is required", d.Name)
	}
	seen := make(map[string]struct{}, len(d.Props))
	for _, prop := range d.Props {
		if !IsIdentifier(prop.Name) {
			return fmt.Errorf("component: %q declares invalid prop name %q", d.Name, prop.Name)
		}
		if _, exists := seen[prop.Name]; exists {
			return fmt.Errorf("component: %q declares prop %q twice", d.Name, prop.Name)
		}
		seen[prop.Name] = struct{}{}
	}
	return nil
}

// IsIdentifier reports whether name can be used as a tag or context name.
func IsIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Registry tracks component descriptors keyed by name. Callers can register new
// components or override defaults.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		components: make(map[string]Descriptor),
	}
}

// Clone returns a deep copy of the registry to allow isolated mutations.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for name, descriptor := range r.components {
		cloned.components[name] = cloneDescriptor(descriptor)
	}
	return cloned
}

// Register stores the descriptor under its name. Existing entries are
// replaced.
func (r *Registry) Register(descriptor Descriptor) error {
	descriptor.Name = strings.TrimSpace(descriptor.Name)
	descriptor.Template = strings.TrimSpace(descriptor.Template)
	if err := descriptor.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.components[descriptor.Name] = cloneDescriptor(descriptor)
	return nil
}

// MustRegister mirrors Register but panics on error, simplifying default registry
// setup.
func (r *Registry) MustRegister(descriptor Descriptor) {
	if err := r.Register(descriptor); err != nil {
		panic(err)
	}
}

// Descriptor fetches a descriptor by name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.components[strings.TrimSpace(name)]
	if !ok {
		return Descriptor{}, false
	}
	return cloneDescriptor(descriptor), true
}

// Lookup mirrors Descriptor but returns ErrNotFound for unknown names.
func (r *Registry) Lookup(name string) (Descriptor, error) {
	descriptor, ok := r.Descriptor(name)
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return descriptor, nil
}

// Names returns a sorted slice of registered component names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Descriptors returns every descriptor sorted by name.
func (r *Registry) Descriptors() []Descriptor {
	names := r.Names()
	out := make([]Descriptor, 0, len(names))
	for _, name := range names {
		if descriptor, ok := r.Descriptor(name); ok {
			out = append(out, descriptor)
		}
	}
	return out
}

// Assets resolves dependency aggregates for the provided component names.
func (r *Registry) Assets(names []string) (stylesheets []string, scripts []string) {
	if len(names) == 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seenStyles := make(map[string]struct{})
	seenScripts := make(map[string]struct{})

	for _, name := range names {
		descriptor, ok := r.components[strings.TrimSpace(name)]
		if !ok {
			continue
		}
		for _, href := range descriptor.Stylesheets {
			if href == "" {
				continue
			}
			if _, exists := seenStyles[href]; exists {
				continue
			}
			seenStyles[href] = struct{}{}
			stylesheets = append(stylesheets, href)
		}
		for _, src := range descriptor.Scripts {
			if src == "" {
				continue
			}
			if _, exists := seenScripts[src]; exists {
				continue
			}
			seenScripts[src] = struct{}{}
			scripts = append(scripts, src)
		}
	}
	return stylesheets, scripts
}

func cloneDescriptor(src Descriptor) Descriptor {
	return Descriptor{
		Name:        src.Name,
		Template:    src.Template,
		Block:       src.Block,
		Props:       slices.Clone(src.Props),
		Context:     src.Context,
		Stylesheets: slices.Clone(src.Stylesheets),
		Scripts:     slices.Clone(src.Scripts),
	}
}
