// Package slots models the named content regions of a block component.
package slots

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-component-kit/pkg/attrs"
)

// Children is the reserved slot holding content outside any slot marker.
const Children = "children"

// ErrMissingBinding is returned when a slot declaring :let is rendered
// without a value to bind.
var ErrMissingBinding = errors.New("slots: slot requires a binding argument")

// RenderFunc writes slot content. bound reports whether binding was supplied.
type RenderFunc func(w io.Writer, binding any, bound bool) error

// Slot is one collected region. Its content renders lazily so the component
// template decides where, and with which binding, it appears.
type Slot struct {
	Name       string
	Attributes *attrs.Set
	Let        string
	render     RenderFunc
}

// New returns a slot backed by render.
func New(name string, attributes *attrs.Set, let string, render RenderFunc) *Slot {
	if attributes == nil {
		attributes = attrs.New()
	}
	return &Slot{
		Name:       name,
		Attributes: attributes,
		Let:        let,
		render:     render,
	}
}

// Static returns a slot whose content is already rendered.
func Static(name string, content string) *Slot {
	return New(name, nil, "", func(w io.Writer, _ any, _ bool) error {
		_, err := io.WriteString(w, content)
		return err
	})
}

// Render writes the slot content. At most one binding is used; it is exposed
// under the name declared by :let.
func (s *Slot) Render(w io.Writer, binding ...any) error {
	if s == nil || s.render == nil {
		return nil
	}
	var (
		value any
		bound bool
	)
	if len(binding) > 0 {
		value, bound = binding[0], true
	}
	if s.Let != "" && !bound {
		return fmt.Errorf("%w: slot %q binds %q", ErrMissingBinding, s.Name, s.Let)
	}
	return s.render(w, value, bound)
}

// String renders the slot without a binding. A render error, such as
// ErrMissingBinding, is written as an HTML comment after any partial output.
func (s *Slot) String() string {
	var b strings.Builder
	if err := s.Render(&b); err != nil {
		b.WriteString(errorComment(err))
	}
	return b.String()
}

// List holds every slot collected under one name, in document order.
type List []*Slot

// Attributes returns the attributes of a single slot. Lists with zero or
// several entries have no attributes.
func (l List) Attributes() *attrs.Set {
	if len(l) == 1 && l[0] != nil {
		return l[0].Attributes
	}
	return attrs.New()
}

// Empty reports whether the list has no slots.
func (l List) Empty() bool {
	return len(l) == 0
}

// Render writes every slot in order with the same binding.
func (l List) Render(w io.Writer, binding ...any) error {
	for _, slot := range l {
		if err := slot.Render(w, binding...); err != nil {
			return err
		}
	}
	return nil
}

// String renders the list without a binding. Errors are reported the same
// way as Slot.String.
func (l List) String() string {
	var b strings.Builder
	if err := l.Render(&b); err != nil {
		b.WriteString(errorComment(err))
	}
	return b.String()
}

func errorComment(err error) string {
	return "<!-- " + strings.ReplaceAll(err.Error(), "--", "- -") + " -->"
}

// Map is the slot map of one block component invocation.
type Map map[string]List

// NewMap returns a map holding the reserved children entry.
func NewMap() Map {
	return Map{Children: List{}}
}

// Add appends slot under its name.
func (m Map) Add(slot *Slot) {
	m[slot.Name] = append(m[slot.Name], slot)
}

// Get returns the list stored under name. Missing names yield an empty list.
func (m Map) Get(name string) List {
	return m[name]
}

// Names returns the slot names with content, children excluded.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for name, list := range m {
		if name == Children || list.Empty() {
			continue
		}
		names = append(names, name)
	}
	return names
}
