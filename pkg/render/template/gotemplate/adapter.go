package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-component-kit/pkg/assets"
	"github.com/goliatone/go-component-kit/pkg/attrs"
	"github.com/goliatone/go-component-kit/pkg/component"
	"github.com/goliatone/go-component-kit/pkg/partial"
	"github.com/goliatone/go-component-kit/pkg/render/template"
	"github.com/goliatone/go-component-kit/pkg/slots"
	"github.com/goliatone/go-component-kit/pkg/tags"
)

const defaultExtension = ".html"

// stringTemplateKey is the file name pongo2 assigns to templates compiled
// from strings.
const stringTemplateKey = "<string>"

// Observer receives render measurements. The metrics package provides a
// Prometheus implementation.
type Observer interface {
	ObserveComponent(name string, duration time.Duration, err error)
	ObservePartial(name string, hit bool)
}

// Option configures the pongo2 adapter before construction.
type Option func(*config)

type config struct {
	baseDir    string
	templates  []fs.FS
	extension  string
	templateFn map[string]any
	globalData map[string]any
	components []component.Descriptor
	resolver   assets.Resolver
	debug      bool
	logger     *slog.Logger
	observer   Observer
}

// WithBaseDir configures the underlying engine to load templates from a base
// directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS configures the underlying engine to load templates from an fs.FS.
// Repeated calls add fallback file systems, searched in the order given.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = append(cfg.templates, files)
		}
	}
}

// WithExtension overrides the default template extension used by the engine.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithTemplateFunc registers helper functions or filters when the engine loads.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.templateFn == nil {
			cfg.templateFn = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.templateFn[strings.TrimSpace(name)] = fn
		}
	}
}

// WithGlobalData seeds global context values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// WithComponents registers component descriptors during construction.
func WithComponents(descriptors ...component.Descriptor) Option {
	return func(cfg *config) {
		cfg.components = append(cfg.components, descriptors...)
	}
}

// WithAssetResolver maps asset references to URLs when render_assets runs.
func WithAssetResolver(fn assets.Resolver) Option {
	return func(cfg *config) {
		cfg.resolver = fn
	}
}

// WithDebug recompiles templates on every load and drops their partial
// caches with them.
func WithDebug(debug bool) Option {
	return func(cfg *config) {
		cfg.debug = debug
	}
}

// WithLogger sets the logger used for template loads and invalidations.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithMetrics reports component renders and partial cache lookups to
// observer.
func WithMetrics(observer Observer) Option {
	return func(cfg *config) {
		cfg.observer = observer
	}
}

// Engine satisfies the template.TemplateRenderer contract using a
// pongo2-backed template set and provides the runtime the component tags
// execute against.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	loader      pongo2.TemplateLoader
	tplExt      string

	components *component.Registry
	assets     *assets.Registry
	partials   *partial.Store
	observer   Observer
	logger     *slog.Logger
}

// Ensure Engine implements the renderer and tag runtime interfaces.
var (
	_ template.PartialRenderer = (*Engine)(nil)
	_ tags.Runtime             = (*Engine)(nil)
	_ tags.RenderObserver      = (*Engine)(nil)
)

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		extension: defaultExtension,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.baseDir == "" && len(cfg.templates) == 0 {
		return nil, errors.New("gotemplate: need to provide either base dir or fs.FS")
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	for _, files := range cfg.templates {
		loaders = append(loaders, pongo2.NewFSLoader(files))
	}

	if err := tags.Register(); err != nil {
		return nil, fmt.Errorf("gotemplate: %w", err)
	}
	registerDefaultFilters()

	var partialOpts []partial.Option
	if cfg.observer != nil {
		partialOpts = append(partialOpts, partial.WithObserver(cfg.observer.ObservePartial))
	}

	engine := &Engine{
		templateSet: pongo2.NewSet("componentkit", loaders...),
		loader:      loaders[0],
		tplExt:      cfg.extension,
		components:  component.New(),
		assets:      assets.New(assets.WithResolver(cfg.resolver)),
		partials:    partial.NewStore(partialOpts...),
		observer:    cfg.observer,
		logger:      cfg.logger.With("component", "gotemplate"),
	}
	engine.templateSet.Debug = cfg.debug
	engine.templateSet.Globals = pongo2.Context{tags.RuntimeKey: engine}

	if err := engine.GlobalContext(cfg.globalData); err != nil {
		return nil, fmt.Errorf("gotemplate: apply global data: %w", err)
	}
	if len(cfg.templateFn) > 0 {
		for name, fn := range cfg.templateFn {
			if err := engine.registerTemplateFunc(name, fn); err != nil {
				return nil, fmt.Errorf("gotemplate: register template func %q: %w", name, err)
			}
		}
	}
	for _, descriptor := range cfg.components {
		if err := engine.RegisterComponent(descriptor); err != nil {
			return nil, err
		}
	}

	return engine, nil
}

// Render delegates to RenderString for inline template content and to
// RenderTemplate otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if isTemplateContent(name) {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate loads the named template through the set cache and executes
// it.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	templatePath := e.templatePath(name)

	tmpl, err := e.Template(templatePath)
	if err != nil {
		return "", err
	}

	viewContext, err := convertToContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: convert data: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(viewContext, &buf); err != nil {
		return "", &renderError{op: fmt.Sprintf("execute template %q", templatePath), err: err}
	}
	return writeOut(buf.String(), out)
}

// RenderString compiles templateContent and executes it. String templates
// share one partial cache, which is reset before every call.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}

	tmpl, err := e.templateSet.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse template string: %w", err)
	}

	viewContext, err := convertToContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: convert data: %w", err)
	}

	e.partials.Drop(stringTemplateKey)

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(viewContext, &buf); err != nil {
		return "", &renderError{op: "execute template string", err: err}
	}
	return writeOut(buf.String(), out)
}

// RenderPartial renders one partial of a template file. When the template
// has not registered its partials yet it is executed once, with data, and
// its output discarded.
func (e *Engine) RenderPartial(name, partialName string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	templatePath := e.templatePath(name)

	tmpl, err := e.Template(templatePath)
	if err != nil {
		return "", err
	}

	cache := e.partials.For(e.templateKey(templatePath))
	if !cache.Has(partialName) {
		viewContext, err := convertToContext(data)
		if err != nil {
			return "", fmt.Errorf("gotemplate: convert data: %w", err)
		}
		if err := tmpl.ExecuteWriter(viewContext, io.Discard); err != nil {
			return "", &renderError{op: fmt.Sprintf("execute template %q", templatePath), err: err}
		}
	}

	fragment, err := cache.Resolve(partialName)
	if err != nil {
		return "", &renderError{op: fmt.Sprintf("render partial %q of %q", partialName, templatePath), err: err}
	}
	return writeOut(fragment, out)
}

// Invalidate drops the compiled templates and partial caches of the named
// templates, or of every template when no names are given.
func (e *Engine) Invalidate(names ...string) {
	if e == nil || e.templateSet == nil {
		return
	}
	if len(names) == 0 {
		e.templateSet.CleanCache()
		e.partials.Reset()
		e.logger.Debug("templates invalidated", "scope", "all")
		return
	}

	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, e.templateKey(e.templatePath(name)))
	}
	e.templateSet.CleanCache(keys...)
	e.partials.Drop(keys...)
	e.logger.Debug("templates invalidated", "templates", keys)
}

// RegisterComponent stores the descriptor, installs its pongo2 tag and
// records its assets.
func (e *Engine) RegisterComponent(descriptor component.Descriptor) error {
	descriptor.Name = strings.TrimSpace(descriptor.Name)
	if err := descriptor.Validate(); err != nil {
		return fmt.Errorf("gotemplate: %w", err)
	}
	if err := tags.RegisterComponent(descriptor.Name, descriptor.Block); err != nil {
		return fmt.Errorf("gotemplate: %w", err)
	}
	if err := e.components.Register(descriptor); err != nil {
		return fmt.Errorf("gotemplate: %w", err)
	}
	e.assets.Register(descriptor.Name, descriptor.Stylesheets, descriptor.Scripts)
	e.logger.Debug("component registered", "name", descriptor.Name, "template", descriptor.Template, "block", descriptor.Block)
	return nil
}

// Components exposes the component registry.
func (e *Engine) Components() *component.Registry {
	return e.components
}

// Component implements tags.Runtime.
func (e *Engine) Component(name string) (component.Descriptor, bool) {
	return e.components.Descriptor(name)
}

// Template loads a template through the set cache. In debug mode the
// template is recompiled and its partial cache dropped.
func (e *Engine) Template(name string) (*pongo2.Template, error) {
	templatePath := e.templatePath(name)
	key := e.templateKey(templatePath)

	tmpl, err := e.templateSet.FromCache(key)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load template %q: %w", templatePath, err)
	}
	if e.templateSet.Debug {
		e.partials.Drop(key)
	}
	e.logger.Debug("template loaded", "template", key)
	return tmpl, nil
}

// Partials implements tags.Runtime.
func (e *Engine) Partials(key string) *partial.Cache {
	return e.partials.For(key)
}

// Assets returns the asset registry shared by every render.
func (e *Engine) Assets() *assets.Registry {
	return e.assets
}

// ObserveComponent forwards component render timings to the configured
// observer.
func (e *Engine) ObserveComponent(name string, duration time.Duration, err error) {
	if e.observer != nil {
		e.observer.ObserveComponent(name, duration, err)
	}
	if err != nil {
		e.logger.Debug("component render failed", "name", name, "error", err)
	}
}

// RegisterFilter registers template filters on the wrapped engine.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "custom_filter", OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, filter)
}

// GlobalContext seeds global data on the wrapped engine.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.templateSet == nil {
		return errors.New("gotemplate: engine is nil")
	}
	if data == nil {
		return nil
	}

	globalCtx, err := convertToContext(data)
	if err != nil {
		return err
	}
	if _, reserved := globalCtx[tags.RuntimeKey]; reserved {
		return fmt.Errorf("gotemplate: global key %q is reserved", tags.RuntimeKey)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals.Update(globalCtx)
	return nil
}

func (e *Engine) registerTemplateFunc(name string, fn any) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || fn == nil {
		return nil
	}

	if filter, ok := fn.(pongo2.FilterFunction); ok {
		if pongo2.FilterExists(trimmed) {
			return nil
		}
		return pongo2.RegisterFilter(trimmed, filter)
	}

	if !isCallable(fn) {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals[trimmed] = fn
	return nil
}

// templatePath appends the engine extension to names without one.
func (e *Engine) templatePath(name string) string {
	name = strings.TrimSpace(name)
	if path.Ext(name) == "" {
		name += e.tplExt
	}
	return name
}

// templateKey is the name pongo2 caches and lexes a template under. Partial
// caches use the same key.
func (e *Engine) templateKey(templatePath string) string {
	return e.loader.Abs("", templatePath)
}

func writeOut(rendered string, out []io.Writer) (string, error) {
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// renderError keeps the pongo2 error for its position and exposes the
// underlying cause to errors.Is.
type renderError struct {
	op  string
	err error
}

func (e *renderError) Error() string {
	return fmt.Sprintf("gotemplate: %s: %v", e.op, e.err)
}

func (e *renderError) Unwrap() []error {
	errs := []error{e.err}
	if root := rootCause(e.err); root != nil && root != e.err {
		errs = append(errs, root)
	}
	return errs
}

// rootCause follows pongo2 errors to the error that started the failure.
func rootCause(err error) error {
	for err != nil {
		var perr *pongo2.Error
		if !errors.As(err, &perr) || perr.OrigError == nil {
			return err
		}
		err = perr.OrigError
	}
	return err
}

func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}

func convertToContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return convertMapToContext(map[string]any(v))
	case map[string]any:
		return convertMapToContext(v)
	default:
		m, err := jsonToMap(v)
		if err != nil {
			return nil, err
		}
		return convertMapToContext(m)
	}
}

func convertMapToContext(in map[string]any) (pongo2.Context, error) {
	out := make(pongo2.Context, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func convertValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if isCallable(value) {
		return value, nil
	}

	switch v := value.(type) {
	case *attrs.Set, attrs.Value, slots.Map, slots.List, *slots.Slot:
		return v, nil
	case pongo2.Context:
		return convertMap(map[string]any(v))
	case map[string]any:
		return convertMap(v)
	case []any:
		return convertSlice(v)
	default:
		raw, err := jsonToAny(v)
		if err != nil {
			return nil, err
		}
		switch decoded := raw.(type) {
		case map[string]any:
			return convertMap(decoded)
		case []any:
			return convertSlice(decoded)
		default:
			return decoded, nil
		}
	}
}

func convertMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func convertSlice(in []any) ([]any, error) {
	out := make([]any, 0, len(in))
	for _, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func jsonToMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func jsonToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
