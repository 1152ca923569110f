// Package assets collects the stylesheets and scripts components depend on.
package assets

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

const (
	stylesheetTag = `<link crossorigin="anonymous" href="%s" rel="stylesheet">`
	scriptTag     = `<script src="%s" defer></script>`
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	">", "&gt;",
	"<", "&lt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Resolver maps an asset reference to the URL written into the page.
type Resolver func(ref string) string

// Registry is an append-only, de-duplicated list of asset references. CSS
// renders before JS, each in registration order.
type Registry struct {
	mu       sync.RWMutex
	css      []string
	js       []string
	seen     map[string]struct{}
	owners   map[string]string
	resolver Resolver
}

// Option configures a Registry.
type Option func(*Registry)

// WithResolver rewrites references when rendering.
func WithResolver(fn Resolver) Option {
	return func(r *Registry) {
		r.resolver = fn
	}
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		seen:   make(map[string]struct{}),
		owners: make(map[string]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// SetResolver replaces the resolver used by Render.
func (r *Registry) SetResolver(fn Resolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolver = fn
}

// Register appends the references of component that are not present yet.
// Empty references are ignored. Registering the same reference twice is a
// no-op, so the first registration fixes its position.
func (r *Registry) Register(component string, css, js []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.css = r.appendNew(r.css, "css:", component, css)
	r.js = r.appendNew(r.js, "js:", component, js)
}

func (r *Registry) appendNew(dst []string, kind, component string, refs []string) []string {
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		key := kind + ref
		if _, exists := r.seen[key]; exists {
			continue
		}
		r.seen[key] = struct{}{}
		r.owners[key] = component
		dst = append(dst, ref)
	}
	return dst
}

// Stylesheets returns the registered CSS references.
func (r *Registry) Stylesheets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.css)
}

// Scripts returns the registered JS references.
func (r *Registry) Scripts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.js)
}

// Owner returns the component that first registered a CSS or JS reference.
func (r *Registry) Owner(ref string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if owner, ok := r.owners["css:"+ref]; ok {
		return owner, true
	}
	owner, ok := r.owners["js:"+ref]
	return owner, ok
}

// Render emits a stylesheet link per CSS reference followed by a deferred
// script tag per JS reference, one tag per line.
func (r *Registry) Render() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lines := make([]string, 0, len(r.css)+len(r.js))
	for _, ref := range r.css {
		lines = append(lines, fmt.Sprintf(stylesheetTag, r.url(ref)))
	}
	for _, ref := range r.js {
		lines = append(lines, fmt.Sprintf(scriptTag, r.url(ref)))
	}
	return strings.Join(lines, "\n")
}

func (r *Registry) url(ref string) string {
	if r.resolver != nil {
		if resolved := r.resolver(ref); resolved != "" {
			ref = resolved
		}
	}
	return escaper.Replace(ref)
}

// Reset empties the registry. It exists for development reload cycles.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.css = nil
	r.js = nil
	r.seen = make(map[string]struct{})
	r.owners = make(map[string]string)
}
