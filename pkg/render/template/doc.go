// Package template defines the renderer contract shared by the engine
// adapters. The gotemplate subpackage implements it on top of pongo2 and
// adds the component, slot and partial tags.
package template
