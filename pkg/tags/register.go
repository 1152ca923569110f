package tags

import (
	"fmt"
	"slices"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-component-kit/pkg/component"
)

var (
	builtinOnce sync.Once
	builtinErr  error

	componentsMu sync.Mutex
	// components records the kind of every component tag installed in
	// pongo2's tag table; true marks block components.
	components = make(map[string]bool)
)

// Register installs the slot, merge_attrs, partial, render_slot,
// render_partial and render_assets tags in pongo2. It is safe to call more
// than once.
func Register() error {
	builtinOnce.Do(func() {
		builtins := []struct {
			name   string
			parser pongo2.TagParser
		}{
			{"slot", tagSlotParser},
			{"render_slot", tagRenderSlotParser},
			{"merge_attrs", tagMergeAttrsParser},
			{"partial", tagPartialParser},
			{"render_partial", tagRenderPartialParser},
			{"render_assets", tagRenderAssetsParser},
		}
		for _, builtin := range builtins {
			if err := pongo2.RegisterTag(builtin.name, builtin.parser); err != nil {
				builtinErr = fmt.Errorf("tags: register %q: %w", builtin.name, err)
				return
			}
		}
	})
	return builtinErr
}

// RegisterComponent installs a tag named after the component. Block
// components wrap content up to `end<name>`; inline components take
// attributes only. Registering the same name and kind again is a no-op.
func RegisterComponent(name string, block bool) error {
	if !component.IsIdentifier(name) || slices.Contains(pongo2.TokenKeywords, name) {
		return fmt.Errorf("tags: invalid component tag name %q", name)
	}

	componentsMu.Lock()
	defer componentsMu.Unlock()

	if existing, ok := components[name]; ok {
		if existing != block {
			return fmt.Errorf("tags: component %q is already registered as %s", name, kindName(existing))
		}
		return nil
	}
	if err := pongo2.RegisterTag(name, componentParser(name, block)); err != nil {
		return fmt.Errorf("tags: register component %q: %w", name, err)
	}
	components[name] = block
	return nil
}

// IsComponent reports whether name was installed by RegisterComponent and
// whether it is a block component.
func IsComponent(name string) (registered bool, block bool) {
	componentsMu.Lock()
	defer componentsMu.Unlock()
	block, registered = components[name]
	return registered, block
}

func kindName(block bool) string {
	if block {
		return "a block component"
	}
	return "an inline component"
}
