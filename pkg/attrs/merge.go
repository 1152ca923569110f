package attrs

import "strings"

// Mode selects how a merge spec entry combines with a caller value.
type Mode uint8

const (
	// ModeAuto resolves to ModeConcat for class and ModeOverwrite otherwise.
	ModeAuto Mode = iota
	// ModeOverwrite keeps the caller value; the default is only a fallback.
	ModeOverwrite
	// ModeConcat joins the default followed by the caller value.
	ModeConcat
	// ModeAppend joins the caller value followed by the default (`+=`).
	ModeAppend
)

func (m Mode) String() string {
	switch m {
	case ModeOverwrite:
		return "overwrite"
	case ModeConcat:
		return "concat"
	case ModeAppend:
		return "append"
	default:
		return "auto"
	}
}

type specEntry struct {
	key   string
	value Value
	mode  Mode
}

// MergeSpec holds the default attributes declared at a merge call site.
type MergeSpec struct {
	entries []specEntry
	index   map[string]int
}

// NewMergeSpec returns an empty spec.
func NewMergeSpec() *MergeSpec {
	return &MergeSpec{index: make(map[string]int)}
}

// Add declares a default for key. Declaring a key twice replaces the earlier
// entry in place.
func (s *MergeSpec) Add(key string, value Value, mode Mode) *MergeSpec {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if mode == ModeAuto {
		mode = ModeOverwrite
		if key == "class" {
			mode = ModeConcat
		}
	}
	entry := specEntry{key: key, value: value, mode: mode}
	if idx, ok := s.index[key]; ok {
		s.entries[idx] = entry
		return s
	}
	s.index[key] = len(s.entries)
	s.entries = append(s.entries, entry)
	return s
}

// Default declares key with the implicit mode for its name.
func (s *MergeSpec) Default(key string, value Value) *MergeSpec {
	return s.Add(key, value, ModeAuto)
}

// Append declares key in append mode.
func (s *MergeSpec) Append(key string, value Value) *MergeSpec {
	return s.Add(key, value, ModeAppend)
}

// Has reports whether key is declared.
func (s *MergeSpec) Has(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[key]
	return ok
}

// Mode returns the resolved mode of key.
func (s *MergeSpec) Mode(key string) Mode {
	if !s.Has(key) {
		return ModeAuto
	}
	return s.entries[s.index[key]].mode
}

// Keys returns the declared keys in order.
func (s *MergeSpec) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.entries))
	for _, entry := range s.entries {
		keys = append(keys, entry.key)
	}
	return keys
}

// Len returns the number of declared keys.
func (s *MergeSpec) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Merge combines the caller attributes in base with the defaults in spec and
// returns a fresh set. Spec keys come first in declared order, followed by
// the keys only present in base. Neither input is modified.
func Merge(base *Set, spec *MergeSpec) *Set {
	out := New()
	if spec != nil {
		for _, entry := range spec.entries {
			caller, ok := base.Lookup(entry.key)
			if !ok {
				out.Set(entry.key, entry.value)
				continue
			}
			switch entry.mode {
			case ModeConcat:
				out.Set(entry.key, join(entry.key, entry.value, caller, caller))
			case ModeAppend:
				out.Set(entry.key, join(entry.key, caller, entry.value, caller))
			default:
				out.Set(entry.key, caller)
			}
		}
	}
	base.Each(func(key string, value Value) {
		if !spec.Has(key) {
			out.Set(key, value)
		}
	})
	return out
}

// join concatenates the textual parts of head and tail with a single space.
// Flags and omitted values contribute nothing; when both sides are empty the
// fallback is kept.
func join(key string, head, tail, fallback Value) Value {
	parts := make([]string, 0, 2)
	safe := true
	for _, value := range []Value{head, tail} {
		if value.Omitted() || value.Flag() {
			continue
		}
		text := strings.TrimSpace(textFor(key, value))
		if text == "" {
			continue
		}
		parts = append(parts, text)
		safe = safe && value.IsSafe()
	}
	if len(parts) == 0 {
		return fallback
	}
	joined := strings.Join(parts, " ")
	if safe {
		return Safe(joined)
	}
	return String(joined)
}
