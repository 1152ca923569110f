package attrs

import (
	"fmt"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	// KindReference wraps an arbitrary context object. The zero Value is a
	// nil reference and renders nothing.
	KindReference Kind = iota
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "reference"
	}
}

// Value is a single attribute value. It is classified once, when the tag
// arguments are evaluated, and never re-inspected by renderers.
type Value struct {
	kind Kind
	text string
	flag bool
	ref  any
	safe bool
}

// String returns a text value that is escaped when rendered.
func String(s string) Value {
	return Value{kind: KindString, text: s}
}

// Safe returns a text value holding markup that is rendered verbatim.
func Safe(s string) Value {
	return Value{kind: KindString, text: s, safe: true}
}

// Bool returns a boolean value. True renders as a bare attribute name,
// false is omitted.
func Bool(b bool) Value {
	return Value{kind: KindBool, flag: b}
}

// Reference wraps an arbitrary object resolved from the render context.
func Reference(v any) Value {
	return Value{kind: KindReference, ref: v}
}

// Of classifies a Go value into the matching variant.
func Of(v any) Value {
	switch typed := v.(type) {
	case Value:
		return typed
	case *Value:
		if typed == nil {
			return Value{}
		}
		return *typed
	case string:
		return String(typed)
	case bool:
		return Bool(typed)
	default:
		return Reference(v)
	}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsSafe reports whether the text is pre-escaped markup.
func (v Value) IsSafe() bool {
	return v.kind == KindString && v.safe
}

// Flag reports whether v is the boolean true.
func (v Value) Flag() bool {
	return v.kind == KindBool && v.flag
}

// Omitted reports whether v renders nothing: boolean false or a nil
// reference.
func (v Value) Omitted() bool {
	switch v.kind {
	case KindBool:
		return !v.flag
	case KindReference:
		return v.ref == nil
	default:
		return false
	}
}

// Text returns the textual form of v.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		if v.ref == nil {
			return ""
		}
		if s, ok := v.ref.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprint(v.ref)
	}
}

// String implements fmt.Stringer so templates print the raw text.
func (v Value) String() string {
	return v.Text()
}

// Interface unwraps v into a plain Go value.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.text
	case KindBool:
		return v.flag
	default:
		return v.ref
	}
}

// textFor returns the text used when v is rendered or joined under key.
// References under class are normalized into a class string.
func textFor(key string, v Value) string {
	if key == "class" && v.kind == KindReference {
		return NormalizeClass(v.ref)
	}
	return v.Text()
}
