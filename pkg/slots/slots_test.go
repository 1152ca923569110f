package slots_test

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/goliatone/go-component-kit/pkg/attrs"
	"github.com/goliatone/go-component-kit/pkg/slots"
)

func TestSlot_RenderBinding(t *testing.T) {
	slot := slots.New("row", nil, "item", func(w io.Writer, binding any, bound bool) error {
		if !bound {
			return errors.New("expected binding")
		}
		_, err := fmt.Fprintf(w, "<td>%v</td>", binding)
		return err
	})

	var b strings.Builder
	if err := slot.Render(&b, "Ada"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := b.String(); got != "<td>Ada</td>" {
		t.Fatalf("render mismatch: %q", got)
	}
}

func TestSlot_MissingBinding(t *testing.T) {
	slot := slots.New("row", nil, "item", func(io.Writer, any, bool) error { return nil })

	err := slot.Render(io.Discard)
	if !errors.Is(err, slots.ErrMissingBinding) {
		t.Fatalf("expected ErrMissingBinding, got %v", err)
	}
	want := `<!-- slots: slot requires a binding argument: slot "row" binds "item" -->`
	if got := slot.String(); got != want {
		t.Fatalf("expected error comment\nwant: %q\n got: %q", want, got)
	}
	list := slots.List{slots.Static("row", "<b>hi</b>"), slot}
	if got := list.String(); got != "<b>hi</b>"+want {
		t.Fatalf("expected rendered prefix and error comment, got %q", got)
	}
}

func TestList_Attributes(t *testing.T) {
	set := attrs.New()
	set.Set("class", attrs.String("footer"))

	single := slots.List{slots.New("footer", set, "", nil)}
	if got := single.Attributes().String(); got != `class="footer"` {
		t.Fatalf("single slot attributes mismatch: %q", got)
	}

	double := slots.List{slots.Static("a", "1"), slots.Static("a", "2")}
	if double.Attributes().Len() != 0 {
		t.Fatalf("expected empty attributes for multiple slots")
	}
	if got := double.String(); got != "12" {
		t.Fatalf("list render mismatch: %q", got)
	}
}

func TestMap_ChildrenAlwaysPresent(t *testing.T) {
	m := slots.NewMap()
	if _, ok := m[slots.Children]; !ok {
		t.Fatalf("expected children entry")
	}
	m.Add(slots.Static("footer", "bye"))
	if names := m.Names(); len(names) != 1 || names[0] != "footer" {
		t.Fatalf("names mismatch: %v", names)
	}
	if !m.Get("missing").Empty() {
		t.Fatalf("expected empty list for missing slot")
	}
}
