package attrs

import (
	"slices"
	"strings"
)

// SpecialPrefix marks attributes that configure the tag itself, such as
// :let, instead of being rendered.
const SpecialPrefix = ":"

var escaper = strings.NewReplacer(
	"&", "&amp;",
	">", "&gt;",
	"<", "&lt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Set is an ordered attribute mapping. Keys are unique and keep the position
// of their first insertion.
type Set struct {
	keys   []string
	values map[string]Value
}

// New returns an empty set.
func New() *Set {
	return &Set{values: make(map[string]Value)}
}

// FromMap builds a set from a plain map. Keys are sorted because map order
// is not stable.
func FromMap(in map[string]any) *Set {
	set := New()
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		set.Set(key, Of(in[key]))
	}
	return set
}

// Set stores value under key. An existing key keeps its position.
func (s *Set) Set(key string, value Value) {
	if s.values == nil {
		s.values = make(map[string]Value)
	}
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Lookup returns the value stored under key.
func (s *Set) Lookup(key string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	value, ok := s.values[key]
	return value, ok
}

// Get returns the value stored under key, or the zero Value which renders
// nothing. It exists for templates, which cannot consume two results.
func (s *Set) Get(key string) Value {
	value, _ := s.Lookup(key)
	return value
}

// Has reports whether key is present.
func (s *Set) Has(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}

// Pop removes key and returns its value.
func (s *Set) Pop(key string) (Value, bool) {
	value, ok := s.Lookup(key)
	if !ok {
		return Value{}, false
	}
	delete(s.values, key)
	s.keys = slices.DeleteFunc(s.keys, func(k string) bool { return k == key })
	return value, true
}

// Delete removes key, reporting whether it was present.
func (s *Set) Delete(key string) bool {
	_, ok := s.Pop(key)
	return ok
}

// Keys returns the keys in order.
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.keys)
}

// Len returns the number of attributes.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Each calls fn for every attribute in order.
func (s *Set) Each(fn func(key string, value Value)) {
	if s == nil {
		return
	}
	for _, key := range s.keys {
		fn(key, s.values[key])
	}
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	out := New()
	s.Each(out.Set)
	return out
}

// Without returns a copy without the listed keys.
func (s *Set) Without(keys ...string) *Set {
	out := New()
	s.Each(func(key string, value Value) {
		if !slices.Contains(keys, key) {
			out.Set(key, value)
		}
	})
	return out
}

// Map unwraps the set into a plain map.
func (s *Set) Map() map[string]any {
	out := make(map[string]any, s.Len())
	s.Each(func(key string, value Value) {
		out[key] = value.Interface()
	})
	return out
}

// String renders the set as HTML attributes.
func (s *Set) String() string {
	return Render(s)
}

// Render formats attributes as `key="value"` pairs separated by a space.
// True booleans render as the bare key, false booleans and nil references
// are skipped, and values are HTML-escaped unless marked safe.
func Render(s *Set) string {
	var b strings.Builder
	s.Each(func(key string, value Value) {
		if value.Omitted() {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		if value.Flag() {
			return
		}
		text := textFor(key, value)
		if !value.IsSafe() {
			text = escaper.Replace(text)
		}
		b.WriteString(`="`)
		b.WriteString(text)
		b.WriteByte('"')
	})
	return b.String()
}

// SplitSpecial separates keys starting with SpecialPrefix from the rest.
func SplitSpecial(s *Set) (special, regular *Set) {
	special, regular = New(), New()
	s.Each(func(key string, value Value) {
		if strings.HasPrefix(key, SpecialPrefix) {
			special.Set(key, value)
			return
		}
		regular.Set(key, value)
	})
	return special, regular
}
