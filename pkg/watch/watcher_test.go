package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingInvalidator struct {
	mu    sync.Mutex
	calls [][]string
	ch    chan []string
}

func newRecordingInvalidator() *recordingInvalidator {
	return &recordingInvalidator{ch: make(chan []string, 16)}
}

func (r *recordingInvalidator) Invalidate(names ...string) {
	r.mu.Lock()
	r.calls = append(r.calls, names)
	r.mu.Unlock()
	r.ch <- names
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	flushed := make(chan []string, 4)
	d := newDebouncer(20*time.Millisecond, 100, func(names []string) {
		flushed <- names
	})

	d.add("b.html")
	d.add("a.html")
	d.add("b.html")

	select {
	case names := <-flushed:
		if strings.Join(names, ",") != "a.html,b.html" {
			t.Fatalf("unexpected batch: %v", names)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("debouncer did not flush")
	}

	select {
	case names := <-flushed:
		t.Fatalf("unexpected second flush: %v", names)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncer_FlushesAtMaxBatch(t *testing.T) {
	var got []string
	d := newDebouncer(time.Hour, 2, func(names []string) {
		got = names
	})

	d.add("a.html")
	d.add("b.html")

	if strings.Join(got, ",") != "a.html,b.html" {
		t.Fatalf("expected an immediate flush, got %v", got)
	}
	d.stop()
}

func TestDebouncer_StopFlushesPending(t *testing.T) {
	var got []string
	d := newDebouncer(time.Hour, 100, func(names []string) {
		got = names
	})

	d.add("a.html")
	d.stop()
	d.add("b.html")

	if strings.Join(got, ",") != "a.html" {
		t.Fatalf("expected pending names on stop, got %v", got)
	}
}

func TestWatcher_TemplateName(t *testing.T) {
	root := filepath.FromSlash("/srv/templates")
	w := &Watcher{
		config: Config{IgnorePatterns: []string{"**/*.tmp", "**/node_modules/**"}},
		roots:  []string{root},
	}

	cases := []struct {
		path    string
		name    string
		ignored bool
	}{
		{path: "/srv/templates/page.html", name: "page.html"},
		{path: "/srv/templates/components/card.html", name: "components/card.html"},
		{path: "/srv/templates/components/.card.html.swp", name: "components/.card.html.swp", ignored: true},
		{path: "/srv/templates/.git/HEAD", name: ".git/HEAD", ignored: true},
		{path: "/srv/templates/draft.tmp", name: "draft.tmp", ignored: true},
		{path: "/srv/templates/node_modules/x/index.html", name: "node_modules/x/index.html", ignored: true},
		{path: "/srv/other/page.html", ignored: true},
	}
	for _, tc := range cases {
		name, ignored := w.templateName(filepath.FromSlash(tc.path))
		if name != tc.name || ignored != tc.ignored {
			t.Fatalf("%s: got (%q, %v), want (%q, %v)", tc.path, name, ignored, tc.name, tc.ignored)
		}
	}
}

func TestWatcher_AcceptsExtension(t *testing.T) {
	w := &Watcher{config: Config{Extensions: []string{".html"}}}
	if !w.acceptsExtension("components/card.html") {
		t.Fatalf("expected .html to be accepted")
	}
	if w.acceptsExtension("components.yaml") {
		t.Fatalf("expected .yaml to be rejected")
	}
}

func TestNew_ValidatesConfig(t *testing.T) {
	invalidator := newRecordingInvalidator()

	if _, err := New(Config{}, invalidator); err == nil {
		t.Fatalf("expected error without roots")
	}
	if _, err := New(Config{Roots: []string{t.TempDir()}}, nil); err == nil {
		t.Fatalf("expected error without invalidator")
	}
	if _, err := New(Config{Roots: []string{t.TempDir()}, IgnorePatterns: []string{"[a-"}}, invalidator); err == nil {
		t.Fatalf("expected error for invalid pattern")
	}
	if _, err := New(Config{Roots: []string{filepath.Join(t.TempDir(), "missing")}}, invalidator); err == nil {
		t.Fatalf("expected error for missing root")
	}
}

func TestWatcher_InvalidatesChangedTemplates(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "components"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	config := DefaultConfig()
	config.Roots = []string{root}
	config.DebounceWindow = 30 * time.Millisecond
	config.Extensions = []string{".html"}

	invalidator := newRecordingInvalidator()
	w, err := New(config, invalidator)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(root, "components", "card.html"), []byte("<div></div>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "components.yaml"), []byte("components: {}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case names := <-invalidator.ch:
		if strings.Join(names, ",") != "components/card.html" {
			t.Fatalf("unexpected invalidation: %v", names)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no invalidation received")
	}
}
