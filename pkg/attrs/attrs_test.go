package attrs_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-component-kit/pkg/attrs"
)

func TestMerge_ClassConcatenatesDefaultsFirst(t *testing.T) {
	base := attrs.New()
	base.Set("class", attrs.String("mb-3"))

	spec := attrs.NewMergeSpec().Default("class", attrs.String("card shadow-lg"))

	got := attrs.Merge(base, spec)
	if value := got.Get("class").Text(); value != "card shadow-lg mb-3" {
		t.Fatalf("class merge mismatch: got %q", value)
	}
}

func TestMerge_OverwriteKeepsCallerValue(t *testing.T) {
	spec := attrs.NewMergeSpec().Default("type", attrs.String("button"))

	caller := attrs.New()
	caller.Set("type", attrs.String("submit"))
	if got := attrs.Merge(caller, spec).String(); got != `type="submit"` {
		t.Fatalf("overwrite with caller: got %q", got)
	}

	if got := attrs.Merge(attrs.New(), spec).String(); got != `type="button"` {
		t.Fatalf("overwrite fallback: got %q", got)
	}
}

func TestMerge_AppendPutsCallerValueFirst(t *testing.T) {
	base := attrs.New()
	base.Set("data-value", attrs.String("foo"))

	spec := attrs.NewMergeSpec().Append("data-value", attrs.String("some-value"))

	if got := attrs.Merge(base, spec).String(); got != `data-value="foo some-value"` {
		t.Fatalf("append merge mismatch: got %q", got)
	}
}

func TestMerge_AppendWithoutCallerUsesDefault(t *testing.T) {
	spec := attrs.NewMergeSpec().Append("class", attrs.String("baz"))

	if got := attrs.Merge(nil, spec).String(); got != `class="baz"` {
		t.Fatalf("append fallback mismatch: got %q", got)
	}
}

func TestMerge_DisjointKeysOrderSpecThenBase(t *testing.T) {
	base := attrs.New()
	base.Set("id", attrs.String("main"))
	base.Set("hx-get", attrs.String("/items"))

	spec := attrs.NewMergeSpec().
		Default("type", attrs.String("button")).
		Default("class", attrs.String("btn"))

	got := attrs.Merge(base, spec)

	want := []string{"type", "class", "id", "hx-get"}
	if diff := cmp.Diff(want, got.Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
	if base.Len() != 2 {
		t.Fatalf("merge mutated base: %v", base.Keys())
	}
}

func TestMerge_FlagCallerKeepsDefaultClass(t *testing.T) {
	base := attrs.New()
	base.Set("class", attrs.Bool(true))

	spec := attrs.NewMergeSpec().Default("class", attrs.String("card"))

	if got := attrs.Merge(base, spec).Get("class").Text(); got != "card" {
		t.Fatalf("expected default class, got %q", got)
	}
}

func TestMerge_ClassReferenceIsNormalized(t *testing.T) {
	base := attrs.New()
	base.Set("class", attrs.Reference(map[string]bool{"active": true, "hidden": false}))

	spec := attrs.NewMergeSpec().Default("class", attrs.String("tab"))

	if got := attrs.Merge(base, spec).String(); got != `class="tab active"` {
		t.Fatalf("class reference mismatch: got %q", got)
	}
}

func TestRender_Booleans(t *testing.T) {
	set := attrs.New()
	set.Set("required", attrs.Bool(true))
	set.Set("disabled", attrs.Bool(false))
	set.Set("hidden", attrs.Reference(nil))
	set.Set("name", attrs.String("email"))

	if got := set.String(); got != `required name="email"` {
		t.Fatalf("boolean rendering mismatch: got %q", got)
	}
}

func TestRender_EscapesValues(t *testing.T) {
	set := attrs.New()
	set.Set("title", attrs.String(`"quoted" & <b>'single'</b>`))
	set.Set("x-html", attrs.Safe("<em>ok</em>"))

	want := `title="&quot;quoted&quot; &amp; &lt;b&gt;&#39;single&#39;&lt;/b&gt;" x-html="<em>ok</em>"`
	if got := set.String(); got != want {
		t.Fatalf("escape mismatch\nwant: %s\n got: %s", want, got)
	}
}

func TestSet_ResetKeepsPosition(t *testing.T) {
	set := attrs.New()
	set.Set("a", attrs.String("1"))
	set.Set("b", attrs.String("2"))
	set.Set("a", attrs.String("3"))

	if diff := cmp.Diff([]string{"a", "b"}, set.Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
	if got := set.Get("a").Text(); got != "3" {
		t.Fatalf("expected updated value, got %q", got)
	}

	if _, ok := set.Pop("a"); !ok {
		t.Fatalf("expected pop to find key")
	}
	if set.Has("a") || set.Len() != 1 {
		t.Fatalf("pop did not remove key: %v", set.Keys())
	}
}

func TestSplitSpecial(t *testing.T) {
	set := attrs.New()
	set.Set(":let", attrs.String("item"))
	set.Set("class", attrs.String("row"))

	special, regular := attrs.SplitSpecial(set)
	if got := special.Get(":let").Text(); got != "item" {
		t.Fatalf("special mismatch: %q", got)
	}
	if diff := cmp.Diff([]string{"class"}, regular.Keys()); diff != "" {
		t.Fatalf("regular keys mismatch (-want +got):\n%s", diff)
	}
}

func TestOf_Classifies(t *testing.T) {
	cases := []struct {
		in   any
		kind attrs.Kind
	}{
		{in: "text", kind: attrs.KindString},
		{in: true, kind: attrs.KindBool},
		{in: 42, kind: attrs.KindReference},
		{in: nil, kind: attrs.KindReference},
	}
	for _, tc := range cases {
		if got := attrs.Of(tc.in).Kind(); got != tc.kind {
			t.Fatalf("Of(%v) kind = %s, want %s", tc.in, got, tc.kind)
		}
	}
}

func TestNormalizeClass(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{name: "string", in: "  a   b ", want: "a b"},
		{name: "slice", in: []string{"a", "b c"}, want: "a b c"},
		{name: "nested", in: []any{"a", []any{"b", []string{"c"}}}, want: "a b c"},
		{name: "map", in: map[string]any{"on": true, "off": false, "text": "yes", "empty": ""}, want: "on text"},
		{name: "nil", in: nil, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := attrs.NormalizeClass(tc.in); got != tc.want {
				t.Fatalf("NormalizeClass(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFromMap_SortsKeys(t *testing.T) {
	set := attrs.FromMap(map[string]any{"b": "2", "a": true})
	if got := set.String(); got != `a b="2"` {
		t.Fatalf("from map mismatch: got %q", got)
	}
}
