package manifest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-component-kit/pkg/component"
)

// DefaultPatterns are used when LoadFS receives no patterns.
var DefaultPatterns = []string{"**/*.yaml", "**/*.yml", "**/*.json"}

type documentFile struct {
	Components map[string]componentFile `json:"components" yaml:"components"`
}

type componentFile struct {
	Template    string           `json:"template" yaml:"template"`
	Block       bool             `json:"block" yaml:"block"`
	Props       []component.Prop `json:"props" yaml:"props"`
	Stylesheets []string         `json:"stylesheets" yaml:"stylesheets"`
	Scripts     []string         `json:"scripts" yaml:"scripts"`
}

// Load reads manifests from dir on disk.
func Load(dir string, patterns ...string) ([]component.Descriptor, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("manifest: directory is required")
	}
	return LoadFS(os.DirFS(dir), patterns...)
}

// LoadFS finds manifest files matching patterns in fsys and returns their
// descriptors sorted by name. A component defined by two files is an error.
func LoadFS(fsys fs.FS, patterns ...string) ([]component.Descriptor, error) {
	if fsys == nil {
		return nil, nil
	}
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	files, err := match(fsys, patterns)
	if err != nil {
		return nil, err
	}

	sources := make(map[string]string)
	var out []component.Descriptor
	for _, path := range files {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("manifest: read %s: %w", path, err)
		}
		descriptors, err := Parse(data, path)
		if err != nil {
			return nil, err
		}
		for _, descriptor := range descriptors {
			if previous, exists := sources[descriptor.Name]; exists {
				return nil, fmt.Errorf("manifest: duplicate component %q (files %s and %s)", descriptor.Name, previous, path)
			}
			sources[descriptor.Name] = path
			out = append(out, descriptor)
		}
	}

	slices.SortFunc(out, func(a, b component.Descriptor) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// Parse decodes one manifest document. JSON is tried first, then YAML.
func Parse(data []byte, source string) ([]component.Descriptor, error) {
	doc, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(doc.Components))
	for name := range doc.Components {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]component.Descriptor, 0, len(names))
	for _, name := range names {
		descriptor, err := normaliseComponent(doc.Components[name], name, source)
		if err != nil {
			return nil, err
		}
		out = append(out, descriptor)
	}
	return out, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("manifest: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("manifest: parse %s: invalid JSON or YAML", source)
}

func normaliseComponent(raw componentFile, name, source string) (component.Descriptor, error) {
	descriptor := component.Descriptor{
		Name:        strings.TrimSpace(name),
		Template:    strings.TrimSpace(raw.Template),
		Block:       raw.Block,
		Props:       slices.Clone(raw.Props),
		Stylesheets: trimAll(raw.Stylesheets),
		Scripts:     trimAll(raw.Scripts),
	}
	for idx := range descriptor.Props {
		descriptor.Props[idx].Name = strings.TrimSpace(descriptor.Props[idx].Name)
	}
	if err := descriptor.Validate(); err != nil {
		return component.Descriptor{}, fmt.Errorf("manifest: file %s: %w", source, err)
	}
	return descriptor, nil
}

func match(fsys fs.FS, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("manifest: invalid pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("manifest: glob %q: %w", pattern, err)
		}
		for _, path := range matches {
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}
	slices.Sort(files)
	return files, nil
}

func trimAll(values []string) []string {
	var out []string
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
