package gotemplate

import (
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-component-kit/pkg/attrs"
)

var errAttrsInput = errors.New("gotemplate: attrs filter expects an attribute set or map")

var (
	ugcPolicyOnce sync.Once
	ugcPolicy     *bluemonday.Policy

	iconPolicyOnce sync.Once
	iconPolicy     *bluemonday.Policy
)

func registerDefaultFilters() {
	defaults := map[string]pongo2.FilterFunction{
		"trim":       filterTrim,
		"lowerfirst": filterLowerFirst,
		"sanitize":   filterSanitize,
		"icon":       filterIcon,
		"attrs":      filterAttrs,
	}
	for name, fn := range defaults {
		if !pongo2.FilterExists(name) {
			_ = pongo2.RegisterFilter(name, fn)
		}
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

func filterLowerFirst(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	t := in.String()

	var (
		firstNonWhitespaceIndex int
		firstRune               rune
		firstRuneSize           int
	)

	for i, r := range t {
		if !strings.ContainsRune(" \t\n\r", r) {
			firstNonWhitespaceIndex = i
			firstRune = r
			firstRuneSize = utf8.RuneLen(r)
			break
		}
	}

	if firstRune == 0 {
		return pongo2.AsValue(t), nil
	}

	prefix := t[:firstNonWhitespaceIndex]
	loweredRune := strings.ToLower(string(firstRune))
	rest := t[firstNonWhitespaceIndex+firstRuneSize:]

	return pongo2.AsValue(prefix + loweredRune + rest), nil
}

// filterSanitize strips markup outside bluemonday's UGC policy and marks the
// result safe.
func filterSanitize(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	raw := strings.TrimSpace(in.String())
	if raw == "" {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsSafeValue(ugcSanitizer().Sanitize(raw)), nil
}

// filterIcon keeps inline SVG icon markup and drops everything else.
func filterIcon(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	raw := strings.TrimSpace(in.String())
	if raw == "" {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsSafeValue(strings.TrimSpace(iconSanitizer().Sanitize(raw))), nil
}

// filterAttrs renders an attribute set or map as HTML attributes.
func filterAttrs(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	switch v := in.Interface().(type) {
	case nil:
		return pongo2.AsSafeValue(""), nil
	case *attrs.Set:
		return pongo2.AsSafeValue(v.String()), nil
	case map[string]any:
		return pongo2.AsSafeValue(attrs.FromMap(v).String()), nil
	case pongo2.Context:
		return pongo2.AsSafeValue(attrs.FromMap(v).String()), nil
	case map[string]string:
		converted := make(map[string]any, len(v))
		for key, value := range v {
			converted[key] = value
		}
		return pongo2.AsSafeValue(attrs.FromMap(converted).String()), nil
	default:
		return nil, &pongo2.Error{
			Sender:    "filter:attrs",
			OrigError: errAttrsInput,
		}
	}
}

func ugcSanitizer() *bluemonday.Policy {
	ugcPolicyOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
	})
	return ugcPolicy
}

func iconSanitizer() *bluemonday.Policy {
	iconPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		elements := []string{
			"svg", "g", "path", "circle", "rect", "line", "polyline", "polygon",
			"ellipse", "title", "desc", "defs", "use", "clipPath",
		}
		policy.AllowElements(elements...)

		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "stroke-linecap", "stroke-linejoin", "aria-hidden",
			"role", "focusable", "class",
		).OnElements("svg")

		policy.AllowAttrs(
			"href", "xlink:href", "clip-path",
		).OnElements("use")

		for _, el := range []string{"path", "circle", "rect", "line", "polyline", "polygon", "ellipse"} {
			policy.AllowAttrs(
				"d", "cx", "cy", "r", "x", "y", "x1", "y1", "x2", "y2",
				"points", "rx", "ry", "fill", "stroke", "stroke-width",
				"stroke-linecap", "stroke-linejoin", "class",
			).OnElements(el)
		}

		policy.AllowAttrs("id", "clipPathUnits").OnElements("clipPath")
		policy.AllowAttrs("id").OnElements("defs", "g")

		iconPolicy = policy
	})
	return iconPolicy
}
