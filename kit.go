package componentkit

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-component-kit/pkg/component"
	"github.com/goliatone/go-component-kit/pkg/manifest"
	"github.com/goliatone/go-component-kit/pkg/render/template/gotemplate"
)

// Option configures a Kit.
type Option func(*config)

type config struct {
	templates     []fs.FS
	manifests     []string
	components    []component.Descriptor
	skipBuiltins  bool
	selector      theme.ThemeSelector
	themeName     string
	themeVariant  string
	logger        *slog.Logger
	observer      gotemplate.Observer
	engineOptions []gotemplate.Option
}

// WithTemplatesDir loads application templates from dir.
func WithTemplatesDir(dir string) Option {
	return func(cfg *config) {
		if dir = strings.TrimSpace(dir); dir != "" {
			cfg.templates = append(cfg.templates, os.DirFS(dir))
		}
	}
}

// WithTemplatesFS loads application templates from files. Earlier template
// sources win over later ones; the built-in components come last.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = append(cfg.templates, files)
		}
	}
}

// WithManifests registers the components described by manifest files
// matching patterns in the first template source.
func WithManifests(patterns ...string) Option {
	return func(cfg *config) {
		cfg.manifests = append(cfg.manifests, patterns...)
	}
}

// WithComponents registers component descriptors. They replace built-ins
// and manifest entries of the same name.
func WithComponents(descriptors ...component.Descriptor) Option {
	return func(cfg *config) {
		cfg.components = append(cfg.components, descriptors...)
	}
}

// WithoutBuiltins skips the embedded alert, button and card components.
func WithoutBuiltins() Option {
	return func(cfg *config) {
		cfg.skipBuiltins = true
	}
}

// WithThemeSelector resolves the named theme and variant when the kit is
// built. Tokens are exposed to templates under "theme", "theme:KEY" asset
// references resolve through the theme assets and "components.NAME"
// templates replace component templates.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(cfg *config) {
		cfg.selector = selector
		cfg.themeName = strings.TrimSpace(name)
		cfg.themeVariant = strings.TrimSpace(variant)
	}
}

// WithLogger sets the logger passed to the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithMetrics reports renders to observer, typically a *metrics.Collector.
func WithMetrics(observer gotemplate.Observer) Option {
	return func(cfg *config) {
		cfg.observer = observer
	}
}

// WithEngineOptions passes extra options to the underlying engine.
func WithEngineOptions(opts ...gotemplate.Option) Option {
	return func(cfg *config) {
		cfg.engineOptions = append(cfg.engineOptions, opts...)
	}
}

// Kit is a ready to use engine with the built-in components, manifest
// components and the active theme wired in.
type Kit struct {
	*gotemplate.Engine

	theme *theme.RendererConfig
}

// New builds the engine and registers every component.
func New(options ...Option) (*Kit, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	sources := append([]fs.FS(nil), cfg.templates...)
	if !cfg.skipBuiltins {
		sources = append(sources, EmbeddedTemplates())
	}
	if len(sources) == 0 {
		return nil, errors.New("componentkit: no template source configured")
	}

	descriptors, err := cfg.descriptors()
	if err != nil {
		return nil, err
	}

	kit := &Kit{}
	if cfg.selector != nil {
		selection, err := cfg.selector.Select(cfg.themeName, cfg.themeVariant)
		if err != nil {
			return nil, fmt.Errorf("componentkit: select theme %q: %w", cfg.themeName, err)
		}
		kit.theme = themeConfig(selection)
	}
	overrides := componentOverrides(kit.theme)
	for idx := range descriptors {
		if tpl, ok := overrides[descriptors[idx].Name]; ok {
			descriptors[idx].Template = tpl
		}
	}

	engineOptions := make([]gotemplate.Option, 0, len(sources)+len(cfg.engineOptions)+5)
	for _, source := range sources {
		engineOptions = append(engineOptions, gotemplate.WithFS(source))
	}
	engineOptions = append(engineOptions,
		gotemplate.WithLogger(cfg.logger),
		gotemplate.WithComponents(descriptors...),
	)
	if cfg.observer != nil {
		engineOptions = append(engineOptions, gotemplate.WithMetrics(cfg.observer))
	}
	if kit.theme != nil {
		engineOptions = append(engineOptions,
			gotemplate.WithAssetResolver(kit.theme.AssetURL),
			gotemplate.WithGlobalData(map[string]any{ThemeGlobal: themeContext(kit.theme)}),
		)
	}
	engineOptions = append(engineOptions, cfg.engineOptions...)

	engine, err := gotemplate.New(engineOptions...)
	if err != nil {
		return nil, fmt.Errorf("componentkit: %w", err)
	}
	kit.Engine = engine

	cfg.logger.Debug("component kit ready",
		"component", "componentkit",
		"components", engine.Components().Names(),
		"theme", cfg.themeName,
	)
	return kit, nil
}

// Theme returns the resolved theme, or nil when no selector was configured.
func (k *Kit) Theme() *theme.RendererConfig {
	if k == nil {
		return nil
	}
	return k.theme
}

// descriptors merges built-ins, manifests and explicit components; later
// sources replace earlier ones by name.
func (cfg *config) descriptors() ([]component.Descriptor, error) {
	var ordered []component.Descriptor
	index := make(map[string]int)
	add := func(list []component.Descriptor) {
		for _, descriptor := range list {
			if idx, ok := index[descriptor.Name]; ok {
				ordered[idx] = descriptor
				continue
			}
			index[descriptor.Name] = len(ordered)
			ordered = append(ordered, descriptor)
		}
	}

	if !cfg.skipBuiltins {
		builtins, err := BuiltinComponents()
		if err != nil {
			return nil, fmt.Errorf("componentkit: builtin components: %w", err)
		}
		add(builtins)
	}

	if len(cfg.manifests) > 0 {
		if len(cfg.templates) == 0 {
			return nil, errors.New("componentkit: manifests require a template source")
		}
		loaded, err := manifest.LoadFS(cfg.templates[0], cfg.manifests...)
		if err != nil {
			return nil, fmt.Errorf("componentkit: %w", err)
		}
		add(loaded)
	}

	add(cfg.components)
	return ordered, nil
}
