package componentkit

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-component-kit/pkg/component"
	"github.com/goliatone/go-component-kit/pkg/manifest"
)

// BuiltinManifest is the manifest file describing the built-in components,
// relative to EmbeddedTemplates.
const BuiltinManifest = "components.yaml"

//go:embed templates/components.yaml templates/components/*.html
var embeddedTemplates embed.FS

// EmbeddedTemplates exposes the built-in component templates so callers can
// copy or extend them.
func EmbeddedTemplates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// BuiltinComponents returns the descriptors of the embedded components
// (alert, button, card).
func BuiltinComponents() ([]component.Descriptor, error) {
	return manifest.LoadFS(EmbeddedTemplates(), BuiltinManifest)
}
