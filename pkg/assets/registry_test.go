package assets_test

import (
	"testing"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-component-kit/pkg/assets"
)

func TestRegistry_DeduplicatesAcrossComponents(t *testing.T) {
	registry := assets.New()
	registry.Register("card", []string{"/static/base.css", "/static/card.css"}, []string{"/static/card.js"})
	registry.Register("alert", []string{"/static/base.css", "/static/alert.css"}, nil)

	want := `<link crossorigin="anonymous" href="/static/base.css" rel="stylesheet">
<link crossorigin="anonymous" href="/static/card.css" rel="stylesheet">
<link crossorigin="anonymous" href="/static/alert.css" rel="stylesheet">
<script src="/static/card.js" defer></script>`

	if got := registry.Render(); got != want {
		t.Fatalf("render mismatch\nwant:\n%s\n got:\n%s", want, got)
	}

	owner, ok := registry.Owner("/static/base.css")
	if !ok || owner != "card" {
		t.Fatalf("expected first registration to own base.css, got %q", owner)
	}
}

func TestRegistry_EscapesAndSkipsEmpty(t *testing.T) {
	registry := assets.New()
	registry.Register("x", []string{"", " /a.css?x=1&y=2 "}, []string{"  "})

	if diff := cmp.Diff([]string{"/a.css?x=1&y=2"}, registry.Stylesheets()); diff != "" {
		t.Fatalf("stylesheets mismatch (-want +got):\n%s", diff)
	}
	if len(registry.Scripts()) != 0 {
		t.Fatalf("expected no scripts, got %v", registry.Scripts())
	}
	want := `<link crossorigin="anonymous" href="/a.css?x=1&amp;y=2" rel="stylesheet">`
	if got := registry.Render(); got != want {
		t.Fatalf("render mismatch\nwant: %s\n got: %s", want, got)
	}
}

func TestRegistry_Reset(t *testing.T) {
	registry := assets.New()
	registry.Register("x", []string{"/a.css"}, nil)
	registry.Reset()
	if got := registry.Render(); got != "" {
		t.Fatalf("expected empty render after reset, got %q", got)
	}
}

func TestThemeResolver(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme",
			Files: map[string]string{
				"stylesheet": "theme.css",
				"vendor":     "vendor.js",
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Assets: theme.Assets{
					Files: map[string]string{
						"vendor": "vendor.dark.js",
					},
				},
			},
		},
	}
	selection := &theme.Selection{Theme: "acme", Variant: "dark", Manifest: manifest}

	registry := assets.New(assets.WithResolver(assets.ThemeResolver(selection)))
	registry.Register("page", []string{"theme:stylesheet", "/static/app.css"}, []string{"theme:vendor", "theme:unknown"})

	want := `<link crossorigin="anonymous" href="/assets/themes/acme/theme.css" rel="stylesheet">
<link crossorigin="anonymous" href="/static/app.css" rel="stylesheet">
<script src="/assets/themes/acme/vendor.dark.js" defer></script>
<script src="theme:unknown" defer></script>`

	if got := registry.Render(); got != want {
		t.Fatalf("render mismatch\nwant:\n%s\n got:\n%s", want, got)
	}
}

func TestThemeResolver_NilSelection(t *testing.T) {
	if assets.ThemeResolver(nil) != nil {
		t.Fatalf("expected nil resolver without selection")
	}
}
