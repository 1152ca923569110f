package component

import (
	"errors"
	"slices"
	"testing"
)

func TestRegistryRegisterAndDescriptor(t *testing.T) {
	reg := New()
	reg.MustRegister(Descriptor{
		Name:        "card",
		Template:    "components/card.html",
		Block:       true,
		Props:       []Prop{{Name: "title", Required: true}},
		Stylesheets: []string{"/static/card.css"},
	})

	got, ok := reg.Descriptor("card")
	if !ok {
		t.Fatalf("expected card descriptor")
	}
	if !got.Block || got.Template != "components/card.html" {
		t.Fatalf("unexpected descriptor: %+v", got)
	}

	got.Stylesheets[0] = "mutated"
	again, _ := reg.Descriptor("card")
	if again.Stylesheets[0] != "/static/card.css" {
		t.Fatalf("descriptor mutation leaked into registry")
	}
}

func TestRegistryValidation(t *testing.T) {
	cases := []Descriptor{
		{Name: "", Template: "x.html"},
		{Name: "my-card", Template: "x.html"},
		{Name: "card"},
		{Name: "card", Template: "x.html", Props: []Prop{{Name: "bad-name"}}},
		{Name: "card", Template: "x.html", Props: []Prop{{Name: "a"}, {Name: "a"}}},
	}
	reg := New()
	for _, tc := range cases {
		if err := reg.Register(tc); err == nil {
			t.Fatalf("expected error registering %+v", tc)
		}
	}
}

func TestRegistryLookupNotFound(t *testing.T) {
	_, err := New().Lookup("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistryAssetsDeduplicates(t *testing.T) {
	reg := New()
	reg.MustRegister(Descriptor{
		Name:        "card",
		Template:    "card.html",
		Stylesheets: []string{"/base.css", "/card.css"},
		Scripts:     []string{"/card.js"},
	})
	reg.MustRegister(Descriptor{
		Name:        "alert",
		Template:    "alert.html",
		Stylesheets: []string{"/base.css"},
		Scripts:     []string{"/card.js", "/alert.js"},
	})

	css, js := reg.Assets([]string{"card", "alert", "missing"})
	if !slices.Equal(css, []string{"/base.css", "/card.css"}) {
		t.Fatalf("unexpected stylesheets: %v", css)
	}
	if !slices.Equal(js, []string{"/card.js", "/alert.js"}) {
		t.Fatalf("unexpected scripts: %v", js)
	}
}

func TestRegistryCloneIsolated(t *testing.T) {
	reg := New()
	reg.MustRegister(Descriptor{Name: "card", Template: "card.html"})

	clone := reg.Clone()
	clone.MustRegister(Descriptor{Name: "alert", Template: "alert.html"})

	if slices.Contains(reg.Names(), "alert") {
		t.Fatalf("clone mutation leaked into original")
	}
	if !slices.Equal(clone.Names(), []string{"alert", "card"}) {
		t.Fatalf("unexpected clone names: %v", clone.Names())
	}
}
