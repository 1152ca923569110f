package componentkit

import (
	"maps"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-component-kit/pkg/assets"
)

// ThemeGlobal is the global context key holding the active theme.
const ThemeGlobal = "theme"

// componentTemplatePrefix marks theme template overrides for components:
// "components.card" replaces the card template.
const componentTemplatePrefix = "components."

// themeConfig flattens a selection into the renderer config shape: variant
// tokens and templates override the manifest ones.
func themeConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest

	tokens := maps.Clone(manifest.Tokens)
	partials := maps.Clone(manifest.Templates)
	if variant, ok := manifest.Variants[selection.Variant]; ok {
		tokens = mergeStrings(tokens, variant.Tokens)
		partials = mergeStrings(partials, variant.Templates)
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: assets.ThemeResolver(selection),
	}
}

// themeContext is the value exposed to templates under ThemeGlobal.
func themeContext(cfg *theme.RendererConfig) map[string]any {
	if cfg == nil {
		return nil
	}
	return map[string]any{
		"name":           cfg.Theme,
		"variant":        cfg.Variant,
		"tokens":         cfg.Tokens,
		"css_vars":       cfg.CSSVars,
		"css_vars_style": cssVarsStyle(cfg.CSSVars),
	}
}

// componentOverrides picks the "components.NAME" template overrides.
func componentOverrides(cfg *theme.RendererConfig) map[string]string {
	if cfg == nil {
		return nil
	}
	out := make(map[string]string)
	for key, tpl := range cfg.Partials {
		name, ok := strings.CutPrefix(key, componentTemplatePrefix)
		if !ok || name == "" || strings.TrimSpace(tpl) == "" {
			continue
		}
		out[name] = strings.TrimSpace(tpl)
	}
	return out
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

func mergeStrings(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
