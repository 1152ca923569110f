package manifest

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-component-kit/pkg/component"
)

func TestLoadFSParsesYAMLAndJSON(t *testing.T) {
	fsys := fstest.MapFS{
		"ui/cards.yaml": {Data: []byte(`
components:
  card:
    template: components/card.html
    block: true
    props:
      - name: title
        required: true
      - name: tone
        default: neutral
    stylesheets: [" /static/card.css ", ""]
`)},
		"ui/nested/alert.json": {Data: []byte(`{
  "components": {
    "alert": {"template": "components/alert.html", "scripts": ["/static/alert.js"]}
  }
}`)},
		"ui/README.md": {Data: []byte("ignored")},
	}

	got, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := []component.Descriptor{
		{
			Name:     "alert",
			Template: "components/alert.html",
			Scripts:  []string{"/static/alert.js"},
		},
		{
			Name:     "card",
			Template: "components/card.html",
			Block:    true,
			Props: []component.Prop{
				{Name: "title", Required: true},
				{Name: "tone", Default: "neutral"},
			},
			Stylesheets: []string{"/static/card.css"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("descriptors mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFSPatterns(t *testing.T) {
	fsys := fstest.MapFS{
		"a/one.yaml": {Data: []byte("components:\n  one:\n    template: one.html\n")},
		"b/two.yaml": {Data: []byte("components:\n  two:\n    template: two.html\n")},
	}

	got, err := LoadFS(fsys, "a/**/*.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Name != "one" {
		t.Fatalf("unexpected descriptors: %+v", got)
	}
}

func TestLoadFSErrors(t *testing.T) {
	cases := map[string]struct {
		files fstest.MapFS
		want  string
	}{
		"empty file": {
			files: fstest.MapFS{"x.yaml": {Data: []byte("  \n")}},
			want:  "file x.yaml is empty",
		},
		"duplicate": {
			files: fstest.MapFS{
				"a.yaml": {Data: []byte("components:\n  card:\n    template: a.html\n")},
				"b.yaml": {Data: []byte("components:\n  card:\n    template: b.html\n")},
			},
			want: `duplicate component "card"`,
		},
		"missing template": {
			files: fstest.MapFS{"a.yaml": {Data: []byte("components:\n  card:\n    block: true\n")}},
			want:  "file a.yaml",
		},
		"invalid document": {
			files: fstest.MapFS{"a.json": {Data: []byte("{components: [")}},
			want:  "invalid JSON or YAML",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFS(tc.files)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadFSInvalidPattern(t *testing.T) {
	if _, err := LoadFS(fstest.MapFS{}, "[a"); err == nil {
		t.Fatalf("expected invalid pattern error")
	}
}
